// Package fetch retrieves pages over HTTP and extracts their main text
// content. It is the fusion pipeline's fetchAndExtract collaborator.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrFetch covers network failures and non-success statuses.
	ErrFetch = errors.New("fetch failed")
	// ErrNotHTML is returned for non-HTML content types.
	ErrNotHTML = errors.New("not an HTML page")
	// ErrExtract is returned when a page yields no extractable main content.
	ErrExtract = errors.New("no extractable content")
)

// Page is the extracted main content of one URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetcher fetches a URL and extracts its main content.
type Fetcher interface {
	FetchAndExtract(ctx context.Context, url string) (*Page, error)
}

const (
	defaultUserAgent = "hyperserp/0.3 (+https://github.com/hyperserp) Mozilla/5.0"
	defaultRPS       = 2.0
	maxBodyBytes     = 2 << 20 // 2 MiB
	cacheSize        = 256
	requestTimeout   = 15 * time.Second
)

// HTTPFetcher fetches with a shared politeness rate limit and caches
// extracted pages so a URL fetched for indexing is not refetched by the
// augmentation stage of the same request.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	cache     *lru.Cache[string, *Page]
	userAgent string
}

func New() *HTTPFetcher {
	rps := defaultRPS
	if v := os.Getenv("HYPERSERP_FETCH_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rps = f
		}
	}
	ua := os.Getenv("HYPERSERP_USER_AGENT")
	if ua == "" {
		ua = defaultUserAgent
	}
	cache, _ := lru.New[string, *Page](cacheSize)
	return &HTTPFetcher{
		client:    &http.Client{Timeout: requestTimeout},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		cache:     cache,
		userAgent: ua,
	}
}

func (f *HTTPFetcher) FetchAndExtract(ctx context.Context, url string) (*Page, error) {
	if p, ok := f.cache.Get(url); ok {
		return p, nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "text/html") && !strings.Contains(ct, "application/xhtml") {
		return nil, fmt.Errorf("%w: content-type %q", ErrNotHTML, ct)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	page, err := Extract(url, string(body))
	if err != nil {
		return nil, err
	}
	f.cache.Add(url, page)
	return page, nil
}
