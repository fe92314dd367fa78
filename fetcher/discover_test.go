package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/models"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <link>http://example.com</link>
    <item><title>First</title><link>http://example.com/articles/1</link></item>
    <item><title>Second</title><link>http://example.com/articles/2</link></item>
    <item><title>Third</title><link>http://example.com/articles/3</link></item>
  </channel>
</rss>`

func TestDiscoverLinksFromFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFeed)
	}))
	defer srv.Close()

	f := newTestFetcher(newMemPosts(), &memSources{}, newMemStore())
	links, err := f.discoverLinks(context.Background(), models.NewsSource{Name: "feed", URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://example.com/articles/1",
		"http://example.com/articles/2",
		"http://example.com/articles/3",
	}, links)
}

func TestDiscoverLinksFeedHonorsCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`)
		for i := 0; i < 25; i++ {
			fmt.Fprintf(w, "<item><title>i%d</title><link>http://example.com/a/%d</link></item>", i, i)
		}
		fmt.Fprint(w, `</channel></rss>`)
	}))
	defer srv.Close()

	f := newTestFetcher(newMemPosts(), &memSources{}, newMemStore())
	f.cfg.MaxLinksPerSource = 10

	links, err := f.discoverLinks(context.Background(), models.NewsSource{URL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, links, 10)
}

func TestDiscoverLinksFromHTMLFiltersCandidates(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body>
			<a href="/story/one">A very long headline about local politics today</a>
			<a href="/story/one">A very long headline about local politics today</a>
			<a href="/story/two">Another fairly long headline with many words inside</a>
			<a href="/category/sports">Sports category page with many many words here</a>
			<a href="/story/short">Too short</a>
			<a href="http://other-site.example/story">External headline with plenty of descriptive words</a>
			<a href="/story/frag#comments">Headline with fragment and plenty of words to pass</a>
			<a href="ftp://example.com/file">Strange scheme link with enough words to pass filter</a>
			<a href="/files/report.pdf">A downloadable report with plenty of words in anchor</a>
			<a href="%s">The source page itself linked with plenty of words</a>
		</body></html>`, srvURL)
	}))
	defer srv.Close()
	srvURL = srv.URL

	f := newTestFetcher(newMemPosts(), &memSources{}, newMemStore())
	links, err := f.discoverLinks(context.Background(), models.NewsSource{URL: srv.URL})

	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/story/one",
		srv.URL + "/story/two",
	}, links)
}

func TestDiscoverLinksUnknownContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "nothing to see")
	}))
	defer srv.Close()

	f := newTestFetcher(newMemPosts(), &memSources{}, newMemStore())
	links, err := f.discoverLinks(context.Background(), models.NewsSource{URL: srv.URL})

	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestDiscoverLinksPropagatesFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(newMemPosts(), &memSources{}, newMemStore())
	_, err := f.discoverLinks(context.Background(), models.NewsSource{URL: srv.URL})
	assert.Error(t, err)
}

func TestIsArticleCandidateAnchorTextHeuristic(t *testing.T) {
	base := mustParse(t, "http://example.com/")

	ok := isArticleCandidate(mustParse(t, "http://example.com/story/x"), base, "one two three four five")
	assert.True(t, ok)

	ok = isArticleCandidate(mustParse(t, "http://example.com/story/x"), base, "one two three four")
	assert.False(t, ok)
}
