// Package index implements the persistent BM25 lexical index: parallel,
// order-aligned collections of document ids, composite texts and token
// sequences, with full-state snapshot persistence after every write.
package index

import (
	"fmt"
	"sort"
	"sync"
)

// Scored is one ranked (id, score) pair returned by Query.
type Scored struct {
	ID    string
	Score float64
}

// Index is the shared, append-only lexical index. Writes are serialized by
// the write lock; queries run under read locks and never observe a
// partially applied append.
type Index struct {
	mu   sync.RWMutex
	path string

	// Parallel slices; position is the implicit document index and insertion
	// order is the tie-break for equal scores.
	ids    []string
	texts  []string
	tokens [][]string

	sc *scorer
}

// Open loads the snapshot at path when present. A missing or unreadable
// snapshot starts an empty index rather than failing startup.
func Open(path string) (*Index, error) {
	x := &Index{path: path, sc: newScorer(nil)}
	snap, err := loadSnapshot(path)
	if err != nil {
		return x, err
	}
	if snap != nil {
		x.ids = snap.IDs
		x.texts = snap.Texts
		x.tokens = snap.Tokens
		x.sc = newScorer(x.tokens)
	}
	return x, nil
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Add appends documents and rebuilds the term-statistics structure over the
// whole corpus, then persists the full index state as one atomic snapshot.
// The in-memory append always takes effect; a snapshot write failure is
// returned for the caller to report.
func (x *Index) Add(ids, texts []string) error {
	if len(ids) != len(texts) {
		return fmt.Errorf("index: %d ids but %d texts", len(ids), len(texts))
	}
	if len(ids) == 0 {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for i := range ids {
		x.ids = append(x.ids, ids[i])
		x.texts = append(x.texts, texts[i])
		x.tokens = append(x.tokens, Tokenize(texts[i]))
	}
	x.sc = newScorer(x.tokens)
	return saveSnapshot(x.path, &snapshot{IDs: x.ids, Texts: x.texts, Tokens: x.tokens})
}

// Query tokenizes text, scores every document and returns the topK by
// descending score. Exact ties rank earlier-inserted documents first.
func (x *Index) Query(text string, topK int) []Scored {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.ids) == 0 || topK <= 0 {
		return nil
	}
	qtok := Tokenize(text)
	if len(qtok) == 0 {
		return nil
	}
	out := make([]Scored, len(x.ids))
	for i := range x.ids {
		out[i] = Scored{ID: x.ids[i], Score: x.sc.score(qtok, i)}
	}
	// Stable sort keeps insertion order on equal scores.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK < len(out) {
		out = out[:topK]
	}
	return out
}
