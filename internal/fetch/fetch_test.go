package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"
)

const samplePage = `<!DOCTYPE html>
<html><head><title>Sample &amp; Page</title><style>body{}</style></head>
<body>
<script>var x = 1;</script>
<h1>Heading</h1>
<p>First paragraph with <b>bold</b> text.</p>
<p>Second&nbsp;paragraph.</p>
<!-- comment -->
</body></html>`

func TestExtract(t *testing.T) {
	p, err := Extract("https://x", samplePage)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if p.Title != "Sample & Page" {
		t.Fatalf("title = %q", p.Title)
	}
	if strings.Contains(p.Text, "var x") || strings.Contains(p.Text, "<b>") {
		t.Fatalf("markup or script leaked into text: %q", p.Text)
	}
	for _, want := range []string{"Heading", "First paragraph with bold text.", "Second paragraph."} {
		if !strings.Contains(p.Text, want) {
			t.Fatalf("missing %q in %q", want, p.Text)
		}
	}
}

func TestExtractEmpty(t *testing.T) {
	if _, err := Extract("https://x", "<html><head><title>t</title></head><body></body></html>"); !errors.Is(err, ErrExtract) {
		t.Fatalf("expected ErrExtract, got %v", err)
	}
}

func TestFetchAndExtract(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := New()
	p, err := f.FetchAndExtract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.Title != "Sample & Page" {
		t.Fatalf("title = %q", p.Title)
	}

	// second call is served from cache
	if _, err := f.FetchAndExtract(context.Background(), srv.URL); err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestFetchRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	if _, err := New().FetchAndExtract(context.Background(), srv.URL); !errors.Is(err, ErrNotHTML) {
		t.Fatalf("expected ErrNotHTML, got %v", err)
	}
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()
	if _, err := New().FetchAndExtract(context.Background(), srv.URL); !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestSnippetFromText(t *testing.T) {
	got := SnippetFromText("line one\nline\ttwo   spaced", 300)
	if got != "line one line two spaced" {
		t.Fatalf("snippet = %q", got)
	}
	if got := SnippetFromText(strings.Repeat("a", 500), 300); len(got) != 300 {
		t.Fatalf("snippet not capped: %d", len(got))
	}
}

func TestSnippetFromTextKeepsRunesWhole(t *testing.T) {
	// 2-byte runes with an odd cap: the cut must back off to a boundary.
	got := SnippetFromText(strings.Repeat("é", 200), 301)
	if !utf8.ValidString(got) {
		t.Fatalf("snippet contains a split rune: %q", got)
	}
	if len(got) != 300 {
		t.Fatalf("snippet length = %d, want 300", len(got))
	}
}
