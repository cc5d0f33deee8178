package store

import (
	"path/filepath"
	"testing"

	"hyperserp/internal/models"
)

func openTestStore(t *testing.T) *MetadataStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "meta.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndGet(t *testing.T) {
	s := openTestStore(t)
	rec := models.MetadataRecord{
		ID: "d1", URL: "https://example.com", Title: "Example", Snippet: "demo",
		Meta: map[string]any{"length": float64(42)},
	}
	if err := s.Upsert(rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, ok := s.Get("d1")
	if !ok {
		t.Fatalf("expected record")
	}
	if got.URL != rec.URL || got.Title != rec.Title || got.Snippet != rec.Snippet {
		t.Fatalf("got %+v", got)
	}
	if got.Meta["length"] != float64(42) {
		t.Fatalf("meta round trip: %v", got.Meta)
	}

	// replace by id
	rec.Title = "Example v2"
	if err := s.Upsert(rec); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}
	got, _ = s.Get("d1")
	if got.Title != "Example v2" {
		t.Fatalf("upsert did not replace: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, ok := s.Get("nope"); ok {
		t.Fatalf("expected absence")
	}
}

func TestGetManyPreservesOrderAndOmitsUnknown(t *testing.T) {
	s := openTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Upsert(models.MetadataRecord{ID: id, URL: "https://x/" + id}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	got := s.GetMany([]string{"c", "missing", "a"})
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "a" {
		t.Fatalf("order not preserved: %+v", got)
	}
	if s.GetMany(nil) != nil {
		t.Fatalf("GetMany(nil) should be nil")
	}
}
