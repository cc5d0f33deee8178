package models

// Document is one unit of ingestable content. ID is assigned at ingestion
// when absent and is the join key between the lexical index and the
// metadata store.
type Document struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Text    string `json:"text,omitempty"`
}

// WebHit is a raw (title, url, snippet) result from a single search source.
type WebHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchHit is one ranked entry in a /search response. Summary and Topic are
// nil unless the augmentation stage filled them in.
type SearchHit struct {
	ID      string  `json:"id"`
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	Summary *string `json:"summary"`
	Topic   *string `json:"topic"`
}

// MetadataRecord is the persisted display metadata for one document,
// upserted by id.
type MetadataRecord struct {
	ID      string         `json:"id"`
	URL     string         `json:"url"`
	Title   string         `json:"title"`
	Snippet string         `json:"snippet"`
	Meta    map[string]any `json:"meta,omitempty"`
}
