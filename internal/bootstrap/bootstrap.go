// Package bootstrap warms an empty index by fetching and ingesting a
// curated set of public pages once at startup.
package bootstrap

import (
	"context"
	"os"
	"strconv"

	"hyperserp/internal/builder"
	"hyperserp/internal/fetch"
	"hyperserp/internal/log"
	"hyperserp/internal/models"
	"hyperserp/internal/urlutil"
)

const defaultMaxPages = 80

// seedURLs is the curated warmup list. Broad topical spread so a fresh
// index answers something for common queries before any live ingestion.
var seedURLs = []string{
	// General knowledge
	"https://en.wikipedia.org/wiki/Artificial_intelligence",
	"https://en.wikipedia.org/wiki/Machine_learning",
	"https://en.wikipedia.org/wiki/Natural_language_processing",
	"https://en.wikipedia.org/wiki/Computer_vision",
	"https://www.britannica.com/technology/artificial-intelligence",

	// Programming
	"https://www.geeksforgeeks.org/machine-learning/",
	"https://www.geeksforgeeks.org/data-structures/",
	"https://realpython.com/",
	"https://www.freecodecamp.org/news/tag/python/",

	// Tech news and blogs
	"https://techcrunch.com/category/artificial-intelligence/",
	"https://www.theverge.com/tech",
	"https://venturebeat.com/ai/",
	"https://thenewstack.io/category/ai-ml/",
	"https://www.wired.com/tag/artificial-intelligence/",
	"https://towardsdatascience.com/",
	"https://medium.com/tag/ai",
	"https://medium.com/tag/machine-learning",

	// Research and institutions
	"https://news.mit.edu/topic/artificial-intelligence2",
	"https://ai.stanford.edu/blog/",
	"https://ai.harvard.edu/news",
	"https://www.sciencedaily.com/news/computers_math/artificial_intelligence/",
	"https://www.nature.com/subjects/machine-learning",
	"https://www.nasa.gov/",

	// World and technology news
	"https://www.bbc.com/news/technology",
	"https://www.reuters.com/technology/",
	"https://www.aljazeera.com/tag/technology/",
	"https://indianexpress.com/section/technology/",
	"https://www.hindustantimes.com/technology",

	// Community
	"https://old.reddit.com/r/MachineLearning/",
	"https://news.ycombinator.com/",
	"https://www.producthunt.com/topics/artificial-intelligence",

	// Entertainment and business reference
	"https://www.imdb.com/chart/moviemeter/",
	"https://www.billboard.com/charts/hot-100/",
	"https://www.investopedia.com/terms/a/artificial-intelligence-ai.asp",
	"https://www.investopedia.com/terms/m/machine-learning.asp",
}

// Enabled reports whether warmup was requested via HYPERSERP_BOOTSTRAP.
func Enabled() bool {
	return os.Getenv("HYPERSERP_BOOTSTRAP") == "1"
}

// MaxPages returns the warmup page cap, HYPERSERP_BOOTSTRAP_MAX_PAGES or 80.
func MaxPages() int {
	if v := os.Getenv("HYPERSERP_BOOTSTRAP_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxPages
}

// Run fetches up to maxPages seed URLs, deduplicated by canonical URL, and
// ingests the successfully extracted pages as one batch. Fetch and extract
// failures skip the URL. Returns the ingested count.
func Run(ctx context.Context, bld *builder.Builder, ftr fetch.Fetcher, lg *log.Logger, maxPages int) int {
	return run(ctx, bld, ftr, lg, seedURLs, maxPages)
}

func run(ctx context.Context, bld *builder.Builder, ftr fetch.Fetcher, lg *log.Logger, urls []string, maxPages int) int {
	seen := make(map[string]bool)
	var docs []models.Document
	for _, raw := range urls {
		if len(docs) >= maxPages {
			break
		}
		if ctx.Err() != nil {
			break
		}
		cu := urlutil.Canonicalize(raw)
		if cu == "" || seen[cu] {
			continue
		}
		seen[cu] = true
		page, err := ftr.FetchAndExtract(ctx, cu)
		if err != nil {
			lg.Debug("bootstrap.skip", "url", cu, "err", err.Error())
			continue
		}
		title := page.Title
		if title == "" {
			title = cu
		}
		docs = append(docs, models.Document{
			URL:     cu,
			Title:   title,
			Snippet: fetch.SnippetFromText(page.Text, 300),
			Text:    page.Text,
		})
	}
	if len(docs) == 0 {
		return 0
	}
	if _, err := bld.Ingest(docs); err != nil {
		lg.Warn("bootstrap.ingest_failed", "err", err.Error())
	}
	lg.Info("bootstrap.done", "ingested", len(docs))
	return len(docs)
}
