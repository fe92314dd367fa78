package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	placeholderWidth  = 1200
	placeholderHeight = 675
	placeholderMargin = 30
	maxTextLines      = 5
	lineHeight        = 45
)

var (
	placeholderBg = color.RGBA{R: 50, G: 50, B: 60, A: 255}
	placeholderFg = color.RGBA{R: 200, G: 200, B: 210, A: 255}
)

// Placeholder rasterizes a fixed-size canvas with the given text
// word-wrapped, capped at five lines and centered vertically. The result
// is JPEG bytes ready for Normalize/storage.
func Placeholder(text string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(placeholderFg),
		Face: basicfont.Face7x13,
	}

	lines := wrapText(d, text, fixed.I(placeholderWidth-2*placeholderMargin))
	if len(lines) > maxTextLines {
		lines = lines[:maxTextLines]
	}

	y := (placeholderHeight-len(lines)*lineHeight)/2 + lineHeight/2
	for _, line := range lines {
		lineWidth := d.MeasureString(line)
		d.Dot = fixed.Point26_6{
			X: (fixed.I(placeholderWidth) - lineWidth) / 2,
			Y: fixed.I(y),
		}
		d.DrawString(line)
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapText greedily packs words into lines no wider than maxWidth.
func wrapText(d *font.Drawer, text string, maxWidth fixed.Int26_6) []string {
	var lines []string
	var current string

	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if d.MeasureString(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
