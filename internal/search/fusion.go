// Package search implements the request-time fusion pipeline: live
// meta-search hits are fetched, ingested and merged with indexed results
// into one ranked, deduplicated list, with optional augmentation on a
// capped prefix.
package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"hyperserp/internal/builder"
	"hyperserp/internal/fetch"
	"hyperserp/internal/llm"
	"hyperserp/internal/log"
	"hyperserp/internal/models"
	"hyperserp/internal/urlutil"
)

const (
	// cascadeBudget is the internal fan-out budget for live retrieval,
	// independent of the caller's top_k.
	cascadeBudget = 10
	// fetchFanout bounds concurrent page fetches per request.
	fetchFanout = 4
	// snippetChars is the synthesized-snippet length when a hit carries none.
	snippetChars = 300
	// summarizeChars caps the page text handed to the summarizer.
	summarizeChars = 3000
	// shortQueryMax is the token count at or below which expansion runs.
	shortQueryMax = 2
)

// WebSearcher is the live-retrieval collaborator. It never fails; a total
// outage yields zero hits.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) []models.WebHit
}

type Pipeline struct {
	web WebSearcher
	bld *builder.Builder
	ftr fetch.Fetcher
	gen llm.Generator
	lg  *log.Logger
}

func NewPipeline(web WebSearcher, bld *builder.Builder, ftr fetch.Fetcher, gen llm.Generator, lg *log.Logger) *Pipeline {
	return &Pipeline{web: web, bld: bld, ftr: ftr, gen: gen, lg: lg}
}

// Response is the /search payload.
type Response struct {
	Query      string             `json:"query"`
	Expansions []string           `json:"expansions"`
	Results    []models.SearchHit `json:"results"`
}

// liveDoc pairs a cascade hit with its successfully extracted page.
type liveDoc struct {
	hit  models.WebHit
	page *fetch.Page
}

func (d liveDoc) title() string {
	if d.page != nil && d.page.Title != "" {
		return d.page.Title
	}
	if d.hit.Title != "" {
		return d.hit.Title
	}
	return d.hit.URL
}

func (d liveDoc) snippet() string {
	if d.hit.Snippet != "" {
		return d.hit.Snippet
	}
	if d.page != nil {
		return fetch.SnippetFromText(d.page.Text, snippetChars)
	}
	return ""
}

func (d liveDoc) document() models.Document {
	text := ""
	if d.page != nil {
		text = d.page.Text
	}
	return models.Document{URL: d.hit.URL, Title: d.title(), Snippet: d.snippet(), Text: text}
}

// Run executes the full fusion pipeline. It never fails: every collaborator
// error degrades to fewer or less-enriched results.
func (p *Pipeline) Run(ctx context.Context, query string, topK, summarizeTop int) *Response {
	resp := &Response{Query: query, Expansions: []string{}}

	// Expansions are suggestions only; the cascade still runs on the
	// original query.
	if p.gen != nil && len(strings.Fields(query)) <= shortQueryMax {
		if exp, err := p.gen.ExpandQuery(ctx, query); err == nil && len(exp) > 0 {
			resp.Expansions = exp
		}
	}

	hits := p.web.Search(ctx, query, cascadeBudget)
	live := p.fetchLive(ctx, hits)

	if len(live) > 0 {
		docs := make([]models.Document, len(live))
		for i, ld := range live {
			docs[i] = ld.document()
		}
		if _, err := p.bld.Ingest(docs); err != nil {
			p.lg.Warn("fusion.live_ingest_failed", "err", err.Error(), "docs", len(docs))
		}
	}

	indexed := p.bld.Search(query, topK)

	// Dedup indexed results by canonical URL, first occurrence wins, then
	// fill remaining slots from live hits the index did not surface.
	seen := make(map[string]bool, len(indexed))
	final := make([]models.SearchHit, 0, topK)
	for _, h := range indexed {
		key := urlutil.Canonicalize(h.URL)
		if key == "" {
			key = h.ID
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		final = append(final, h)
	}
	for _, ld := range live {
		if len(final) >= topK {
			break
		}
		// Cascade hits already carry canonical URLs.
		if ld.hit.URL == "" || seen[ld.hit.URL] {
			continue
		}
		seen[ld.hit.URL] = true
		final = append(final, models.SearchHit{
			ID:      "live-" + ld.hit.URL,
			URL:     ld.hit.URL,
			Title:   ld.title(),
			Snippet: ld.snippet(),
			Score:   0.0,
		})
	}

	p.augment(ctx, final, live, summarizeTop)
	resp.Results = final
	return resp
}

// fetchLive fetches and extracts each hit's page with bounded parallelism.
// Slot indices keep the cascade's priority ordering regardless of completion
// order; hits whose fetch or extraction fails are dropped entirely.
func (p *Pipeline) fetchLive(ctx context.Context, hits []models.WebHit) []liveDoc {
	if len(hits) == 0 {
		return nil
	}
	pages := make([]*fetch.Page, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchFanout)
	for i, h := range hits {
		g.Go(func() error {
			pg, err := p.ftr.FetchAndExtract(gctx, h.URL)
			if err != nil {
				p.lg.Debug("fusion.fetch_skipped", "url", h.URL, "err", err.Error())
				return nil
			}
			pages[i] = pg
			return nil
		})
	}
	_ = g.Wait()
	live := make([]liveDoc, 0, len(hits))
	for i, h := range hits {
		if pages[i] == nil {
			continue
		}
		live = append(live, liveDoc{hit: h, page: pages[i]})
	}
	return live
}

// augment fills summary and topic on the first summarizeTop results.
// Failures leave the fields null; results past the cap always carry null.
func (p *Pipeline) augment(ctx context.Context, results []models.SearchHit, live []liveDoc, summarizeTop int) {
	if p.gen == nil || summarizeTop <= 0 {
		return
	}
	texts := make(map[string]string, len(live))
	for _, ld := range live {
		if ld.page != nil {
			texts[ld.hit.URL] = ld.page.Text
		}
	}
	n := summarizeTop
	if n > len(results) {
		n = len(results)
	}
	for i := 0; i < n; i++ {
		r := &results[i]
		text := texts[r.URL]
		if text == "" {
			text = r.Snippet
		}
		if len(text) > summarizeChars {
			cut := summarizeChars
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut]
		}
		if sum, err := p.gen.Summarize(ctx, text); err == nil && sum != "" {
			r.Summary = &sum
		}
		if topic, err := p.gen.ClassifyTopic(ctx, r.Snippet); err == nil && topic != "" {
			r.Topic = &topic
		}
	}
}

// ScrapeAndIngest runs the cascade and ingests the resulting documents.
// With fetchPages, each hit's page is fetched and extracted first and
// failures are skipped; without it, hit title/snippet are indexed as-is.
func (p *Pipeline) ScrapeAndIngest(ctx context.Context, query string, fetchPages bool, maxResults int) ([]string, error) {
	hits := p.web.Search(ctx, query, maxResults)
	var docs []models.Document
	if fetchPages {
		for _, ld := range p.fetchLive(ctx, hits) {
			docs = append(docs, ld.document())
		}
	} else {
		for _, h := range hits {
			if h.URL == "" {
				continue
			}
			title := h.Title
			if title == "" {
				title = h.URL
			}
			docs = append(docs, models.Document{URL: h.URL, Title: title, Snippet: h.Snippet})
		}
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return p.bld.Ingest(docs)
}
