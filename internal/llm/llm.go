// Package llm talks to a local generative-text service for the
// augmentation collaborators: summarize, topic classification and query
// expansion. Every call is best-effort; callers branch on the returned
// error and degrade to empty output.
package llm

import "context"

// Generator provides the augmentation calls consumed by the fusion
// pipeline and the Wikipedia adapter.
type Generator interface {
	// Summarize returns a short summary of text, or "" for empty input.
	Summarize(ctx context.Context, text string) (string, error)
	// ClassifyTopic returns one label from Topics, defaulting to "misc".
	ClassifyTopic(ctx context.Context, text string) (string, error)
	// ExpandQuery returns up to 3 alternative phrasings of q.
	ExpandQuery(ctx context.Context, q string) ([]string, error)
}

// Topics is the closed set of topic labels ClassifyTopic may return.
var Topics = []string{
	"music", "biography", "tech", "business", "politics",
	"film", "sports", "education", "news", "social", "misc",
}
