package websearch

import (
	"context"
	"time"

	"hyperserp/internal/log"
	"hyperserp/internal/models"
	"hyperserp/internal/urlutil"
)

// Cascade queries sources in priority order, deduplicating by canonical
// URL, until max unique results are collected. Each source is only asked
// for the remaining budget, and sources after the one that fills the
// budget are never invoked.
type Cascade struct {
	sources []Source
	timeout time.Duration
	lg      *log.Logger
}

func NewCascade(lg *log.Logger, sources ...Source) *Cascade {
	return &Cascade{sources: sources, timeout: sourceTimeout, lg: lg}
}

// accumulator is the cascade's merge state: the seen canonical-URL set and
// the ordered unique hit list, threaded explicitly through each merge step.
type accumulator struct {
	seen map[string]bool
	hits []models.WebHit
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[string]bool)}
}

// merge appends batch hits whose canonical URL is unseen, preserving the
// batch's internal ordering. Hits are stored with their canonical URL so
// every downstream set operation keys on the same form.
func (a *accumulator) merge(batch []models.WebHit) {
	for _, h := range batch {
		cu := urlutil.Canonicalize(h.URL)
		if cu == "" || a.seen[cu] {
			continue
		}
		a.seen[cu] = true
		h.URL = cu
		a.hits = append(a.hits, h)
	}
}

// Search runs the cascade. It never fails: a source error contributes zero
// hits and the walk continues with the next source.
func (c *Cascade) Search(ctx context.Context, query string, maxResults int) []models.WebHit {
	if maxResults <= 0 {
		return nil
	}
	acc := newAccumulator()
	for _, src := range c.sources {
		remaining := maxResults - len(acc.hits)
		if remaining <= 0 {
			break
		}
		sctx, cancel := context.WithTimeout(ctx, c.timeout)
		batch, err := src.Search(sctx, query, remaining)
		cancel()
		if err != nil {
			c.lg.Warn("websearch.source_failed", "source", src.Name(), "err", err.Error())
			continue
		}
		acc.merge(batch)
		c.lg.Debug("websearch.source_done", "source", src.Name(), "batch", len(batch), "unique", len(acc.hits))
	}
	if len(acc.hits) > maxResults {
		acc.hits = acc.hits[:maxResults]
	}
	return acc.hits
}
