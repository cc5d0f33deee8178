// Package websearch implements the cascading multi-source meta-search:
// an ordered list of keyless search-source adapters queried in priority
// order until a unique-result budget is met.
package websearch

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"hyperserp/internal/models"
)

// Source is one search backend in the cascade. Search returns at most limit
// raw hits; failures are reported as errors and contribute zero hits, they
// never abort the cascade.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]models.WebHit, error)
}

const (
	browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/124.0.0.0 Safari/537.36"
	sourceTimeout = 12 * time.Second
	maxSourceBody = 1 << 20
)

// httpGet issues a browser-like GET and returns the body for 200 responses.
func httpGet(ctx context.Context, client *http.Client, rawURL string, params url.Values, accept string) (string, error) {
	u := rawURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if accept == "" {
		accept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	req.Header.Set("Accept", accept)
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d from %s", resp.StatusCode, rawURL)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBody))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

var tagRE = regexp.MustCompile(`<[^>]+>`)

// cleanText strips residual markup and entities from a scraped fragment.
func cleanText(s string) string {
	s = tagRE.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
