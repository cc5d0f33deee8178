package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"hyperserp/internal/llm"
	"hyperserp/internal/models"
)

// Wikipedia queries the MediaWiki opensearch API as the factual/reference
// source. When a generator is attached, article snippets are passed through
// a summarization call; enrichment failures keep the original snippet, the
// hit is never dropped.
type Wikipedia struct {
	client  *http.Client
	baseURL string
	gen     llm.Generator
}

func NewWikipedia(gen llm.Generator) *Wikipedia {
	return &Wikipedia{
		client:  &http.Client{Timeout: sourceTimeout},
		baseURL: "https://en.wikipedia.org/w/api.php",
		gen:     gen,
	}
}

func (w *Wikipedia) Name() string { return "wikipedia" }

func (w *Wikipedia) Search(ctx context.Context, query string, limit int) ([]models.WebHit, error) {
	params := url.Values{
		"action":    {"opensearch"},
		"search":    {query},
		"limit":     {strconv.Itoa(limit)},
		"namespace": {"0"},
		"format":    {"json"},
	}
	body, err := httpGet(ctx, w.client, w.baseURL, params, "application/json")
	if err != nil {
		return nil, err
	}
	// opensearch responds with [query, titles[], descriptions[], urls[]]
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, err
	}
	var titles, descs, urls []string
	if len(raw) > 1 {
		_ = json.Unmarshal(raw[1], &titles)
	}
	if len(raw) > 2 {
		_ = json.Unmarshal(raw[2], &descs)
	}
	if len(raw) > 3 {
		_ = json.Unmarshal(raw[3], &urls)
	}
	var hits []models.WebHit
	for i := range titles {
		if len(hits) >= limit || i >= len(urls) {
			break
		}
		snippet := ""
		if i < len(descs) {
			snippet = descs[i]
		}
		hits = append(hits, models.WebHit{Title: titles[i], URL: urls[i], Snippet: w.enrich(ctx, snippet)})
	}
	return hits, nil
}

func (w *Wikipedia) enrich(ctx context.Context, snippet string) string {
	if w.gen == nil || snippet == "" {
		return snippet
	}
	sum, err := w.gen.Summarize(ctx, snippet)
	if err != nil || sum == "" {
		return snippet
	}
	return sum
}
