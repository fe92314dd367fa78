package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"newsdesk/config"
	"newsdesk/models"
	"newsdesk/repositories"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

// memPosts is an in-memory PostStore mirroring the unique source_url guard.
type memPosts struct {
	mu    sync.Mutex
	items map[string]models.Post
}

func newMemPosts() *memPosts {
	return &memPosts{items: make(map[string]models.Post)}
}

func (m *memPosts) ExistsBySourceURL(_ context.Context, sourceURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[sourceURL]
	return ok, nil
}

func (m *memPosts) Insert(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.SourceURL]; ok {
		return repositories.ErrDuplicatePost
	}
	m.items[p.SourceURL] = *p
	return nil
}

func (m *memPosts) all() []models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Post, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, p)
	}
	return out
}

type memSources struct {
	items []models.NewsSource
}

func (m *memSources) List(context.Context) ([]models.NewsSource, error) {
	return m.items, nil
}

// memStore collects saved images instead of writing anywhere.
type memStore struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string][]byte)}
}

func (m *memStore) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[name] = data
	return "/static/test/" + name, nil
}

func newTestFetcher(posts PostStore, sources SourceStore, store *memStore) *Fetcher {
	return &Fetcher{
		cfg: config.FetcherConfig{
			GeminiModel:           "test-model",
			MaxLinksPerSource:     10,
			MinArticleChars:       250,
			RequestTimeoutSeconds: 5,
		},
		imgCfg:   config.ImagesConfig{MaxWidth: 1200},
		posts:    posts,
		sources:  sources,
		store:    store,
		authorID: "test-admin",
		client:   &http.Client{Timeout: 5 * time.Second},
		seen:     make(map[string]struct{}),
	}
}

// collectSink appends every event; optional failAfter simulates the
// observer's transport dying mid-run.
type collectSink struct {
	events    []ProgressEvent
	failAfter int
	err       error
}

func (s *collectSink) sink(ev ProgressEvent) error {
	if s.failAfter > 0 && len(s.events) >= s.failAfter {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}
