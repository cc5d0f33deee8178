package websearch

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"regexp"

	"hyperserp/internal/models"
)

// DuckDuckGo scrapes the classic HTML results page. Primary source.
type DuckDuckGo struct {
	client  *http.Client
	baseURL string
	// mirror is tried when the main endpoint blocks or fails.
	mirrorURL string
}

func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{
		client:    &http.Client{Timeout: sourceTimeout},
		baseURL:   "https://duckduckgo.com/html/",
		mirrorURL: "https://html.duckduckgo.com/html/",
	}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

var (
	ddgResultRE  = regexp.MustCompile(`(?is)<a[^>]*class="result__a"[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	ddgSnippetRE = regexp.MustCompile(`(?is)class="result__snippet"[^>]*>(.*?)</(?:a|td|div|span)>`)
)

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]models.WebHit, error) {
	params := url.Values{"q": {query}}
	body, err := httpGet(ctx, d.client, d.baseURL, params, "")
	if err != nil && d.mirrorURL != "" {
		body, err = httpGet(ctx, d.client, d.mirrorURL, params, "")
	}
	if err != nil {
		return nil, err
	}
	return parseDDG(body, limit), nil
}

func parseDDG(body string, limit int) []models.WebHit {
	anchors := ddgResultRE.FindAllStringSubmatch(body, -1)
	snippets := ddgSnippetRE.FindAllStringSubmatch(body, -1)
	var hits []models.WebHit
	for i, a := range anchors {
		if len(hits) >= limit {
			break
		}
		href := html.UnescapeString(a[1])
		if href == "" {
			continue
		}
		snippet := ""
		if i < len(snippets) {
			snippet = cleanText(snippets[i][1])
		}
		hits = append(hits, models.WebHit{
			Title:   cleanText(a[2]),
			URL:     href,
			Snippet: snippet,
		})
	}
	return hits
}
