package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"google.golang.org/genai"

	"newsdesk/config"
	"newsdesk/logger"
	"newsdesk/models"
	"newsdesk/repositories"
	"newsdesk/storage"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxFetchBytes bounds how much of a response body is read into memory.
const maxFetchBytes = 16 << 20

// PostStore is the slice of post persistence the pipeline needs.
type PostStore interface {
	ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error)
	Insert(ctx context.Context, p *models.Post) error
}

// SourceStore lists the configured sources; read-only to the pipeline.
type SourceStore interface {
	List(ctx context.Context) ([]models.NewsSource, error)
}

// Deps are the external collaborators of one pipeline run.
type Deps struct {
	Posts   PostStore
	Sources SourceStore
	Store   storage.Store
}

// Fetcher drives one ingestion run: discover candidate links per source,
// deduplicate, extract, summarize, resolve an image and persist a post,
// streaming progress to a single observer. One Fetcher serves exactly one
// invocation; the HTTP client and the seen-set are never shared across runs.
type Fetcher struct {
	cfg      config.FetcherConfig
	imgCfg   config.ImagesConfig
	posts    PostStore
	sources  SourceStore
	store    storage.Store
	authorID string

	client *http.Client
	seen   map[string]struct{}

	// generate is nil when no AI credential is configured; the summarizer
	// then uses its deterministic local fallback.
	generate  func(ctx context.Context, prompt string) (string, error)
	pexelsKey string
	pexelsURL string
}

// New builds a Fetcher for a single run on behalf of authorID, the identity
// persisted as the owner of every post the run creates.
func New(ctx context.Context, cfg config.AppConfig, deps Deps, authorID string) *Fetcher {
	f := &Fetcher{
		cfg:      cfg.Fetcher,
		imgCfg:   cfg.Images,
		posts:    deps.Posts,
		sources:  deps.Sources,
		store:    deps.Store,
		authorID: authorID,
		client: &http.Client{
			Timeout: time.Duration(cfg.Fetcher.RequestTimeoutSeconds) * time.Second,
		},
		seen:      make(map[string]struct{}),
		pexelsKey: os.Getenv("PEXELS_API_KEY"),
		pexelsURL: "https://api.pexels.com/v1/search",
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			logger.Log.Warnf("gemini client init failed, falling back to local summaries: %v", err)
		} else {
			model := cfg.Fetcher.GeminiModel
			f.generate = func(ctx context.Context, prompt string) (string, error) {
				result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
				if err != nil {
					return "", err
				}
				return result.Text(), nil
			}
		}
	}

	return f
}

// Run executes the full ingestion pass and reports progress through emit.
// The returned error is non-nil only when the observer's transport failed
// or ctx was cancelled; processing faults are contained per item and per
// source and reported as Error events instead.
func (f *Fetcher) Run(ctx context.Context, emit Sink) error {
	e := &emitter{sink: emit}

	e.send(StageInitializing, 0, "Fetching saved news sources...", false)

	srcs, err := f.sources.List(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	if len(srcs) == 0 {
		e.send(StageComplete, 100, "No news sources configured. Add sources to begin.", true)
		return e.err
	}

	e.send(StageInitializing, 5, fmt.Sprintf("Found %d sources. Starting fetch loop.", len(srcs)), false)

	total := len(srcs)
	perSource := 95.0 / float64(total)

	for i, src := range srcs {
		if err := ctx.Err(); err != nil {
			return err
		}
		base := 5 + float64(i)*perSource

		if !e.send(StageDiscovery, base, fmt.Sprintf("(%d/%d) Discovering articles from: %s", i+1, total, src.Name), false) {
			return e.err
		}

		links, err := f.discoverLinks(ctx, src)
		if err != nil {
			// A failed source consumes its full slice and the run moves on.
			logger.Log.Warnf("discovery failed for %s: %v", src.URL, err)
			if !e.send(StageError, base+perSource, fmt.Sprintf("Failed to process %s: %v", src.Name, err), false) {
				return e.err
			}
			continue
		}

		if len(links) == 0 {
			if !e.send(StageDiscovery, base+perSource, fmt.Sprintf("No new links found for %s.", src.Name), false) {
				return e.err
			}
			continue
		}

		if !e.send(StageProcessing, base, fmt.Sprintf("Found %d potential articles for %s. Processing...", len(links), src.Name), false) {
			return e.err
		}

		count := len(links)
		for j, link := range links {
			if err := ctx.Err(); err != nil {
				return err
			}
			progress := base + float64(j+1)/float64(count)*perSource

			dup, err := f.isDuplicate(ctx, link)
			if err != nil {
				if !e.send(StageError, progress, fmt.Sprintf("(%d/%d) Failed to process %s: %v", j+1, count, link, err), false) {
					return e.err
				}
				continue
			}
			if dup {
				if !e.send(StageSkipping, progress, fmt.Sprintf("(%d/%d) Skipping duplicate: %s", j+1, count, lastPathSegment(link)), false) {
					return e.err
				}
				continue
			}

			// Mark before processing so a failing item is not retried within this run.
			f.seen[link] = struct{}{}

			if !e.send(StageProcessing, progress, fmt.Sprintf("(%d/%d) Processing article from %s...", j+1, count, src.Name), false) {
				return e.err
			}

			if err := f.processArticle(ctx, link, src); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Log.Warnf("article processing failed for %s: %v", link, err)
				if !e.send(StageError, progress, fmt.Sprintf("(%d/%d) Failed to process %s: %v", j+1, count, link, err), false) {
					return e.err
				}
			}
		}
	}

	e.send(StageComplete, 100, "News fetch loop finished.", true)
	return e.err
}

// isDuplicate consults the run-local seen set first, then persistence.
func (f *Fetcher) isDuplicate(ctx context.Context, link string) (bool, error) {
	if _, ok := f.seen[link]; ok {
		return true, nil
	}
	return f.posts.ExistsBySourceURL(ctx, link)
}

// processArticle fetches, extracts, summarizes and persists one candidate.
// A nil return either means a post was committed or the article failed the
// quality gate and was skipped silently.
func (f *Fetcher) processArticle(ctx context.Context, link string, src models.NewsSource) error {
	htmlStr, err := f.fetchPage(ctx, link)
	if err != nil {
		return err
	}

	body := f.extractBody(ctx, link, htmlStr)
	if len([]rune(body)) < f.cfg.MinArticleChars {
		// Quality gate, not an error: short or empty bodies are skipped silently.
		logger.Log.Debugf("skipping %s: extracted body too short (%d chars)", link, len([]rune(body)))
		return nil
	}

	title := extractTitle(htmlStr)
	if title == "" {
		title = "Untitled"
	}

	content := f.summarize(ctx, title, body)

	imageURL, err := f.resolveImage(ctx, htmlStr, content.Title, link)
	if err != nil {
		return fmt.Errorf("resolve image: %w", err)
	}

	post := &models.Post{
		Title:         content.Title,
		Summary:       content.Summary,
		Description:   content.Description,
		ImageURL:      imageURL,
		SourceName:    src.Name,
		SourceURL:     link,
		PublishedAt:   time.Now().UTC(),
		AuthorID:      f.authorID,
		IsAIGenerated: content.FromAI,
	}
	if err := f.posts.Insert(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrDuplicatePost) {
			// A concurrent run got there first; the unique index makes this a skip.
			return nil
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// fetchPage retrieves a page body as a string, failing on non-2xx status.
func (f *Fetcher) fetchPage(ctx context.Context, link string) (string, error) {
	resp, err := f.get(ctx, link, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: unexpected status %s", link, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", link, err)
	}
	return string(data), nil
}

// get issues a GET with the run's client and browser-like identification.
func (f *Fetcher) get(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", userAgent)
	return f.client.Do(req)
}

func lastPathSegment(link string) string {
	for i := len(link) - 1; i >= 0; i-- {
		if link[i] == '/' {
			return link[i+1:]
		}
	}
	return link
}
