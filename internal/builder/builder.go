// Package builder orchestrates ingestion into the lexical index and the
// metadata store, and joins the two on search.
package builder

import (
	"fmt"

	"github.com/google/uuid"

	"hyperserp/internal/index"
	"hyperserp/internal/log"
	"hyperserp/internal/models"
	"hyperserp/internal/store"
)

// compositeTextCap bounds the body text folded into the indexable
// composite, so one huge page cannot dominate index size.
const compositeTextCap = 10000

type Builder struct {
	idx  *index.Index
	meta *store.MetadataStore
	lg   *log.Logger
}

func New(idx *index.Index, meta *store.MetadataStore, lg *log.Logger) *Builder {
	return &Builder{idx: idx, meta: meta, lg: lg}
}

// Ingest assigns missing ids, builds the composite searchable text for each
// document, appends the whole batch to the lexical index in a single add
// (one statistics rebuild per batch, not per document) and upserts display
// metadata per document. Returns the assigned ids in input order.
func (b *Builder) Ingest(docs []models.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	for i, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		texts[i] = compositeText(d)
	}
	if err := b.idx.Add(ids, texts); err != nil {
		// The in-memory corpus is updated even when the snapshot write
		// fails; accepted documents stay queryable and the next successful
		// add persists them.
		b.lg.Warn("index.persist_failed", "err", err.Error(), "docs", len(docs))
	}
	for i, d := range docs {
		rec := models.MetadataRecord{
			ID:      ids[i],
			URL:     d.URL,
			Title:   d.Title,
			Snippet: d.Snippet,
			Meta:    map[string]any{"length": len(d.Text)},
		}
		if err := b.meta.Upsert(rec); err != nil {
			return ids, fmt.Errorf("upsert metadata for %s: %w", ids[i], err)
		}
	}
	return ids, nil
}

// Search queries the lexical index and joins the ranked ids with their
// metadata records, preserving score order. Ids whose metadata is missing
// are dropped.
func (b *Builder) Search(query string, topK int) []models.SearchHit {
	scored := b.idx.Query(query, topK)
	if len(scored) == 0 {
		return nil
	}
	ids := make([]string, len(scored))
	scores := make(map[string]float64, len(scored))
	for i, s := range scored {
		ids[i] = s.ID
		scores[s.ID] = s.Score
	}
	recs := b.meta.GetMany(ids)
	hits := make([]models.SearchHit, 0, len(recs))
	for _, rec := range recs {
		hits = append(hits, models.SearchHit{
			ID:      rec.ID,
			URL:     rec.URL,
			Title:   rec.Title,
			Snippet: rec.Snippet,
			Score:   scores[rec.ID],
		})
	}
	return hits
}

// IndexedDocs returns how many documents the lexical index holds.
func (b *Builder) IndexedDocs() int { return b.idx.Len() }

func compositeText(d models.Document) string {
	text := d.Text
	if len(text) > compositeTextCap {
		text = text[:compositeTextCap]
	}
	return d.Title + "\n" + d.Snippet + "\n" + text
}
