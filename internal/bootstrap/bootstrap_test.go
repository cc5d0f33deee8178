package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"hyperserp/internal/builder"
	"hyperserp/internal/fetch"
	"hyperserp/internal/index"
	"hyperserp/internal/log"
	"hyperserp/internal/store"
)

type fakeFetcher struct {
	pages map[string]*fetch.Page
	calls []string
}

func (f *fakeFetcher) FetchAndExtract(ctx context.Context, url string) (*fetch.Page, error) {
	f.calls = append(f.calls, url)
	if p, ok := f.pages[url]; ok {
		return p, nil
	}
	return nil, fetch.ErrFetch
}

func newTestBuilder(t *testing.T) *builder.Builder {
	t.Helper()
	dir := t.TempDir()
	idx, err := index.Open(filepath.Join(dir, "bm25.index"))
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	meta, err := store.Open(filepath.Join(dir, "meta.db"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { meta.Close() })
	return builder.New(idx, meta, log.New())
}

func TestRunDedupesAndSkipsFailures(t *testing.T) {
	ok := "https://a.example/page"
	ftr := &fakeFetcher{pages: map[string]*fetch.Page{
		ok: {URL: ok, Title: "Page", Text: "warmup body text"},
	}}
	b := newTestBuilder(t)
	urls := []string{
		"http://a.example/page?utm_source=x", // canonicalizes to ok
		"https://a.example/page",             // duplicate, not refetched
		"https://dead.example/",              // fetch fails, skipped
	}
	got := run(context.Background(), b, ftr, log.New(), urls, 10)
	if got != 1 {
		t.Fatalf("ingested = %d, want 1", got)
	}
	if len(ftr.calls) != 2 {
		t.Fatalf("fetch calls = %v, want the unique URL and the dead one", ftr.calls)
	}
	if b.IndexedDocs() != 1 {
		t.Fatalf("indexed = %d, want 1", b.IndexedDocs())
	}
}

func TestRunHonorsPageCap(t *testing.T) {
	ftr := &fakeFetcher{pages: map[string]*fetch.Page{
		"https://a.example/1": {Title: "1", Text: "one"},
		"https://a.example/2": {Title: "2", Text: "two"},
		"https://a.example/3": {Title: "3", Text: "three"},
	}}
	b := newTestBuilder(t)
	urls := []string{"https://a.example/1", "https://a.example/2", "https://a.example/3"}
	got := run(context.Background(), b, ftr, log.New(), urls, 2)
	if got != 2 {
		t.Fatalf("ingested = %d, want 2", got)
	}
}

func TestRunEmptyWhenNothingFetches(t *testing.T) {
	b := newTestBuilder(t)
	got := run(context.Background(), b, &fakeFetcher{}, log.New(), []string{"https://dead.example/"}, 10)
	if got != 0 || b.IndexedDocs() != 0 {
		t.Fatalf("ingested = %d, indexed = %d, want 0 and 0", got, b.IndexedDocs())
	}
}

func TestMaxPagesEnv(t *testing.T) {
	t.Setenv("HYPERSERP_BOOTSTRAP_MAX_PAGES", "7")
	if got := MaxPages(); got != 7 {
		t.Fatalf("MaxPages = %d, want 7", got)
	}
	t.Setenv("HYPERSERP_BOOTSTRAP_MAX_PAGES", "bogus")
	if got := MaxPages(); got != defaultMaxPages {
		t.Fatalf("MaxPages = %d, want default", got)
	}
}
