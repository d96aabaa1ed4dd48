package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/caching"
)

type Fetcher struct {
	client         *http.Client
	userAgent      string
	alternateHosts map[string]string
	cache          *caching.Cache
	logger         *slog.Logger
}

type Option func(*Fetcher)

func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithAlternateHosts maps a host to the host retried when it fails.
func WithAlternateHosts(hosts map[string]string) Option {
	return func(f *Fetcher) {
		f.alternateHosts = hosts
	}
}

// WithCache keeps archive bytes on disk between runs.
func WithCache(c *caching.Cache) Option {
	return func(f *Fetcher) {
		f.cache = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: models.DefaultTimeout},
		userAgent: models.DefaultUserAgent,
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GetHtml fetches a publisher page and parses it.
func (f *Fetcher) GetHtml(ctx context.Context, pageURL string) (*goquery.Document, error) {
	bodyBytes, err := f.GetHtmlBytes(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, &models.TransportFailure{URL: pageURL, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}
	return doc, nil
}

// GetHtmlBytes fetches a page without caching; pages change between runs.
func (f *Fetcher) GetHtmlBytes(ctx context.Context, pageURL string) ([]byte, error) {
	return f.getWithFallback(ctx, pageURL)
}

// GetArchive fetches archive bytes, consulting the cache first.
func (f *Fetcher) GetArchive(ctx context.Context, archiveURL string) ([]byte, error) {
	if f.cache != nil {
		if data, ok := f.cache.Get(archiveURL); ok {
			f.logger.Debug("archive cache hit", "url", archiveURL, "bytes", len(data))
			return data, nil
		}
	}

	data, err := f.getWithFallback(ctx, archiveURL)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Set(archiveURL, data); err != nil {
			f.logger.Warn("failed to cache archive", "url", archiveURL, "error", err)
		}
	}
	return data, nil
}

// getWithFallback retries on the alternate host when the first request
// fails. The returned error names the original URL.
func (f *Fetcher) getWithFallback(ctx context.Context, rawURL string) ([]byte, error) {
	data, err := f.get(ctx, rawURL)
	if err == nil {
		return data, nil
	}

	alt, ok := f.alternate(rawURL)
	if !ok || ctx.Err() != nil {
		return nil, &models.TransportFailure{URL: rawURL, Err: err}
	}

	f.logger.Info("retrying on alternate host", "url", rawURL, "alternate", alt, "error", err)
	data, altErr := f.get(ctx, alt)
	if altErr != nil {
		return nil, &models.TransportFailure{URL: rawURL, Err: fmt.Errorf("%v; alternate %s: %w", err, alt, altErr)}
	}
	return data, nil
}

func (f *Fetcher) alternate(rawURL string) (string, bool) {
	if len(f.alternateHosts) == 0 {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host, ok := f.alternateHosts[u.Hostname()]
	if !ok || host == "" {
		return "", false
	}
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	u.Host = host
	return u.String(), true
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch, status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}
