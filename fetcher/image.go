package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"newsdesk/images"
	"newsdesk/logger"
)

// resolveImage produces a durable image URL for an article through an
// ordered fallback chain: the page's og:image, then a keyword image
// search, then a locally rendered placeholder. A failure at one tier
// silently advances to the next; only the final placeholder tier can fail
// the resolution as a whole.
func (f *Fetcher) resolveImage(ctx context.Context, htmlStr, title, pageURL string) (string, error) {
	if imgURL := ogImageURL(htmlStr, pageURL); imgURL != "" {
		stored, err := f.fetchAndStore(ctx, imgURL, nil)
		if err == nil {
			return stored, nil
		}
		logger.Log.Warnf("og:image %s unusable: %v", imgURL, err)
	}

	if f.pexelsKey != "" {
		stored, err := f.searchImage(ctx, title)
		if err == nil {
			return stored, nil
		}
		logger.Log.Warnf("image search for %q failed: %v", title, err)
	}

	raw, err := images.Placeholder(title)
	if err != nil {
		return "", err
	}
	return f.storeImage(ctx, raw)
}

// ogImageURL returns the page's declared og:image resolved to an absolute
// URL, or empty when none is declared.
func ogImageURL(htmlStr, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if !ok || strings.TrimSpace(content) == "" {
		return ""
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return strings.TrimSpace(content)
	}
	ref, err := url.Parse(strings.TrimSpace(content))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// searchImage queries the keyword image search for the article title and
// stores the first landscape result.
func (f *Fetcher) searchImage(ctx context.Context, title string) (string, error) {
	query := url.Values{}
	query.Set("query", title)
	query.Set("per_page", "1")
	query.Set("orientation", "landscape")

	header := http.Header{}
	header.Set("Authorization", f.pexelsKey)

	resp, err := f.get(ctx, f.pexelsURL+"?"+query.Encode(), header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search: unexpected status %s", resp.Status)
	}

	var result struct {
		Photos []struct {
			Src struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode image search response: %w", err)
	}
	if len(result.Photos) == 0 || result.Photos[0].Src.Large == "" {
		return "", fmt.Errorf("image search: no results")
	}

	return f.fetchAndStore(ctx, result.Photos[0].Src.Large, nil)
}

// fetchAndStore downloads an image and hands it to storeImage.
func (f *Fetcher) fetchAndStore(ctx context.Context, imgURL string, header http.Header) (string, error) {
	resp, err := f.get(ctx, imgURL, header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch image: unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return f.storeImage(ctx, raw)
}

// storeImage normalizes raw image bytes off the run goroutine, then saves
// the JPEG under a fresh unique name.
func (f *Fetcher) storeImage(ctx context.Context, raw []byte) (string, error) {
	normalized, err := f.normalizeAsync(ctx, raw)
	if err != nil {
		return "", err
	}

	name := uuid.New().String() + ".jpg"
	return f.store.Save(ctx, name, normalized, "image/jpeg")
}

// normalizeAsync runs the CPU-bound transform on its own goroutine so the
// run goroutine stays free to observe cancellation.
func (f *Fetcher) normalizeAsync(ctx context.Context, raw []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		data, err := images.Normalize(raw, f.imgCfg.MaxWidth)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.data, r.err
	}
}
