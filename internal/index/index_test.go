package index

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"...!!", nil},
		{"Hello, World!", []string{"hello", "world"}},
		{"snake_case and BM25-search", []string{"snake_case", "and", "bm25", "search"}},
	}
	for _, tc := range cases {
		if got := Tokenize(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	x, err := Open(filepath.Join(t.TempDir(), "bm25.index"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return x
}

func TestQueryRanksMatchingDocFirst(t *testing.T) {
	x := newTestIndex(t)
	if err := x.Add(
		[]string{"a", "b"},
		[]string{"cooking pasta at home", "golang concurrency patterns"},
	); err != nil {
		t.Fatalf("add: %v", err)
	}
	got := x.Query("golang patterns", 2)
	if len(got) == 0 || got[0].ID != "b" {
		t.Fatalf("expected doc b first, got %+v", got)
	}
	if got[0].Score <= got[1].Score {
		t.Fatalf("matching doc should outscore non-matching: %+v", got)
	}
}

func TestQueryTieBreakInsertionOrder(t *testing.T) {
	x := newTestIndex(t)
	text := "identical composite text about search"
	if err := x.Add([]string{"first", "second", "third"}, []string{text, text, text}); err != nil {
		t.Fatalf("add: %v", err)
	}
	got := x.Query("search text", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].ID != "first" || got[1].ID != "second" || got[2].ID != "third" {
		t.Fatalf("tie-break violated insertion order: %+v", got)
	}
}

func TestQueryTopKAndEmpty(t *testing.T) {
	x := newTestIndex(t)
	if got := x.Query("anything", 5); got != nil {
		t.Fatalf("empty index should return nil, got %+v", got)
	}
	if err := x.Add([]string{"a", "b", "c"}, []string{"x y", "x", "y"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := x.Query("x y", 2); len(got) != 2 {
		t.Fatalf("topK not respected: %+v", got)
	}
	if got := x.Query("...", 2); got != nil {
		t.Fatalf("separator-only query should return nil, got %+v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bm25.index")

	x, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := x.Add([]string{"a", "b"}, []string{"first document", "second document"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Len() != 2 {
		t.Fatalf("expected 2 docs after reload, got %d", reopened.Len())
	}
	got := reopened.Query("second", 1)
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("query after reload: %+v", got)
	}
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bm25.index")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	x, err := Open(path)
	if err == nil {
		t.Fatalf("expected decode error for corrupt snapshot")
	}
	if x == nil || x.Len() != 0 {
		t.Fatalf("corrupt snapshot must still yield an empty usable index")
	}
	// subsequent writes should succeed and persist
	if err := x.Add([]string{"a"}, []string{"hello"}); err != nil {
		t.Fatalf("add after corrupt load: %v", err)
	}
	y, err := Open(path)
	if err != nil || y.Len() != 1 {
		t.Fatalf("reload after rewrite: len=%d err=%v", y.Len(), err)
	}
}

func TestAddMisalignedBatch(t *testing.T) {
	x := newTestIndex(t)
	if err := x.Add([]string{"a"}, []string{"one", "two"}); err == nil {
		t.Fatalf("expected error on misaligned batch")
	}
}
