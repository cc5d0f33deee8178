package websearch

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"regexp"

	"hyperserp/internal/models"
)

// Startpage scrapes startpage.com result pages, best-effort: its markup
// changes, so two known anchor classes are tried. Tertiary source.
type Startpage struct {
	client  *http.Client
	baseURL string
}

func NewStartpage() *Startpage {
	return &Startpage{
		client:  &http.Client{Timeout: sourceTimeout},
		baseURL: "https://www.startpage.com/do/search",
	}
}

func (s *Startpage) Name() string { return "startpage" }

var (
	spResultRE  = regexp.MustCompile(`(?is)<a[^>]*class="(?:w-gl__result-title|result-link)"[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	spSnippetRE = regexp.MustCompile(`(?is)class="[^"]*(?:w-gl__description|result-snippet)[^"]*"[^>]*>(.*?)</(?:p|div|span)>`)
)

func (s *Startpage) Search(ctx context.Context, query string, limit int) ([]models.WebHit, error) {
	params := url.Values{"query": {query}}
	body, err := httpGet(ctx, s.client, s.baseURL, params, "")
	if err != nil {
		return nil, err
	}
	anchors := spResultRE.FindAllStringSubmatch(body, -1)
	snippets := spSnippetRE.FindAllStringSubmatch(body, -1)
	var hits []models.WebHit
	for i, a := range anchors {
		if len(hits) >= limit {
			break
		}
		href := html.UnescapeString(a[1])
		title := cleanText(a[2])
		if href == "" || title == "" {
			continue
		}
		snippet := ""
		if i < len(snippets) {
			snippet = cleanText(snippets[i][1])
		}
		hits = append(hits, models.WebHit{Title: title, URL: href, Snippet: snippet})
	}
	return hits, nil
}
