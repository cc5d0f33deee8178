package index

import "math"

// BM25 parameters at conventional defaults.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// scorer holds the term statistics for one immutable view of the corpus.
// It is rebuilt from scratch whenever documents are appended; correct IDF
// and length normalization over the live corpus are worth O(n) per write
// for the corpus sizes this service targets.
type scorer struct {
	termFreq []map[string]int // per-document term counts
	docFreq  map[string]int   // number of documents containing each term
	docLen   []int
	avgLen   float64
}

func newScorer(tokens [][]string) *scorer {
	s := &scorer{
		termFreq: make([]map[string]int, len(tokens)),
		docFreq:  make(map[string]int),
		docLen:   make([]int, len(tokens)),
	}
	total := 0
	for i, toks := range tokens {
		tf := make(map[string]int, len(toks))
		for _, tok := range toks {
			tf[tok]++
		}
		for tok := range tf {
			s.docFreq[tok]++
		}
		s.termFreq[i] = tf
		s.docLen[i] = len(toks)
		total += len(toks)
	}
	if len(tokens) > 0 {
		s.avgLen = float64(total) / float64(len(tokens))
	}
	return s
}

// idf uses the non-negative (Lucene-style) formulation
// ln(1 + (N - n + 0.5)/(n + 0.5)).
func (s *scorer) idf(term string) float64 {
	n := float64(s.docFreq[term])
	N := float64(len(s.termFreq))
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

// score returns the BM25 score of document i against the query tokens.
func (s *scorer) score(query []string, i int) float64 {
	if s.avgLen == 0 {
		return 0
	}
	norm := bm25K1 * (1 - bm25B + bm25B*float64(s.docLen[i])/s.avgLen)
	var sum float64
	for _, term := range query {
		tf := float64(s.termFreq[i][term])
		if tf == 0 {
			continue
		}
		sum += s.idf(term) * tf * (bm25K1 + 1) / (tf + norm)
	}
	return sum
}
