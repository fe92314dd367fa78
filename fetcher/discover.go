package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"newsdesk/models"
)

// pathBlacklist marks path fragments that point at listings, navigation or
// downloadable files rather than articles.
var pathBlacklist = []string{"/category/", "/tag/", "/author/", "/page/", "/search", ".pdf"}

// discoverLinks fetches the source's root document and returns up to
// MaxLinksPerSource absolute candidate article URLs. Syndication feeds are
// read in document order; HTML pages are scanned for same-site anchors that
// look like article links. Unknown content types yield an empty list.
func (f *Fetcher) discoverLinks(ctx context.Context, src models.NewsSource) ([]string, error) {
	resp, err := f.get(ctx, src.URL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", src.URL, resp.Status)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	body := io.LimitReader(resp.Body, maxFetchBytes)

	switch {
	case strings.Contains(contentType, "xml") || strings.Contains(contentType, "rss"):
		return f.linksFromFeed(body)
	case strings.Contains(contentType, "html"):
		return f.linksFromHTML(body, src.URL)
	default:
		return nil, nil
	}
}

func (f *Fetcher) linksFromFeed(body io.Reader) ([]string, error) {
	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var links []string
	for _, item := range feed.Items {
		if len(links) >= f.cfg.MaxLinksPerSource {
			break
		}
		if link := strings.TrimSpace(item.Link); link != "" {
			links = append(links, link)
		}
	}
	return links, nil
}

func (f *Fetcher) linksFromHTML(body io.Reader, sourceURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	var links []string
	inBatch := make(map[string]struct{})

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(links) >= f.cfg.MaxLinksPerSource {
			return false
		}

		href, _ := sel.Attr("href")
		if href == "" {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		full := base.ResolveReference(ref)

		if !isArticleCandidate(full, base, sel.Text()) {
			return true
		}

		link := full.String()
		if _, dup := inBatch[link]; dup {
			return true
		}
		inBatch[link] = struct{}{}
		links = append(links, link)
		return true
	})

	return links, nil
}

// isArticleCandidate applies the anchor heuristics: stay on http(s), stay
// same-site, skip fragments and the source page itself, skip blacklisted
// paths, and require at least 5 words of visible anchor text so bare
// navigation links are dropped.
func isArticleCandidate(full, base *url.URL, anchorText string) bool {
	if full.Scheme != "http" && full.Scheme != "https" {
		return false
	}
	if full.Host != base.Host {
		return false
	}
	if full.Fragment != "" {
		return false
	}
	if full.String() == base.String() {
		return false
	}
	path := strings.ToLower(full.Path)
	for _, blocked := range pathBlacklist {
		if strings.Contains(path, blocked) {
			return false
		}
	}
	if len(strings.Fields(strings.TrimSpace(anchorText))) < 5 {
		return false
	}
	return true
}
