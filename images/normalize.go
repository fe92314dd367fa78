// Package images holds the CPU-bound image transforms of the ingestion
// pipeline: JPEG normalization of downloaded images and placeholder
// rendering for articles without one.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const jpegQuality = 85

// Normalize decodes raw image bytes, flattens them to an opaque color
// model, downscales to maxWidth preserving aspect ratio when wider, and
// re-encodes as a quality-85 JPEG. Images already within bounds are
// re-encoded without resizing.
func Normalize(raw []byte, maxWidth int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var flat *image.RGBA
	if maxWidth > 0 && width > maxWidth {
		newHeight := height * maxWidth / width
		if newHeight < 1 {
			newHeight = 1
		}
		flat = image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
		xdraw.CatmullRom.Scale(flat, flat.Bounds(), src, bounds, xdraw.Src, nil)
	} else {
		flat = image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.Draw(flat, flat.Bounds(), src, bounds.Min, xdraw.Src)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
