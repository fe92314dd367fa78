package fetcher

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/advancedlogic/GoOse/pkg/goose"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"newsdesk/logger"
	"newsdesk/renderer"
)

// extractBody pulls clean article text out of raw markup. Trafilatura is
// the primary extractor; readability and goose cover pages it chokes on.
// When rendering is enabled and the static HTML carries no usable body,
// the page is re-fetched through a headless browser and extracted again.
func (f *Fetcher) extractBody(ctx context.Context, link, htmlStr string) string {
	body := extractTextLadder(htmlStr)

	if len([]rune(body)) < f.cfg.MinArticleChars && f.cfg.EnableRendering {
		rendered, err := renderer.RenderHTML(ctx, link)
		if err != nil {
			logger.Log.Warnf("rendering %s failed: %v", link, err)
			return body
		}
		if renderedBody := extractTextLadder(rendered); len(renderedBody) > len(body) {
			body = renderedBody
		}
	}

	return body
}

func extractTextLadder(htmlStr string) string {
	if text := extractWithTrafilatura(htmlStr); text != "" {
		return text
	}
	if text := extractWithReadability(htmlStr); text != "" {
		return text
	}
	return extractWithGoose(htmlStr)
}

func extractWithTrafilatura(htmlStr string) string {
	opts := trafilatura.Options{
		ExcludeComments: true,
		ExcludeTables:   true,
	}
	article, err := trafilatura.Extract(strings.NewReader(htmlStr), opts)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.ContentText)
}

func extractWithReadability(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func extractWithGoose(htmlStr string) string {
	g := goose.New()
	article, err := g.ExtractFromRawHTML(htmlStr, "")
	if err != nil || article == nil {
		return ""
	}
	return strings.TrimSpace(article.CleanedText)
}

// extractTitle resolves the article title: document <title> first, then
// the og:title meta tag, else empty.
func extractTitle(htmlStr string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}

	return ""
}
