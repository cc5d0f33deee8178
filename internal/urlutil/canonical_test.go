package urlutil

import (
	"net/url"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"plain", "https://example.com/a", "https://example.com/a"},
		{"protocol relative", "//example.com/a", "https://example.com/a"},
		{"http upgraded", "http://example.com/a", "https://example.com/a"},
		{"host lowercased", "https://Example.COM/a", "https://example.com/a"},
		{"fragment dropped", "https://example.com/a#sec-2", "https://example.com/a"},
		{
			"trackers stripped order kept",
			"https://example.com/a?utm_source=x&b=2&gclid=123&a=1&fbclid=9",
			"https://example.com/a?b=2&a=1",
		},
		{
			"ddg redirect unwrapped",
			"https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%3Futm_medium%3Demail%26x%3D1",
			"https://example.com/a?x=1",
		},
		{
			"html mirror redirect unwrapped",
			"https://html.duckduckgo.com/l/?uddg=http%3A%2F%2FExample.com%2Fb",
			"https://example.com/b",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonicalize(tc.in); got != tc.want {
				t.Fatalf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"not a url",
		"//cdn.example.com/x.js?v=1",
		"HTTP://WWW.Example.com/Path/?utm_source=a&q=go#top",
		"https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa",
		"https://example.com/a?b=2&a=1",
		"https://example.com/a%20b?q=c%26d",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		twice := Canonicalize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCanonicalizeUnwrapsNestedRedirects(t *testing.T) {
	target := "https://example.com/a"
	wrapped := target
	for i := 0; i < 4; i++ {
		wrapped = "https://duckduckgo.com/l/?uddg=" + url.QueryEscape(wrapped)
	}
	once := Canonicalize(wrapped)
	if once != target {
		t.Fatalf("Canonicalize(wrap^4) = %q, want %q", once, target)
	}
	if twice := Canonicalize(once); twice != once {
		t.Fatalf("not idempotent: first %q, second %q", once, twice)
	}
}

func TestVariantsCollapse(t *testing.T) {
	a := Canonicalize("//example.com/page?utm_campaign=spring")
	b := Canonicalize("http://EXAMPLE.com/page")
	if a != b {
		t.Fatalf("variants did not collapse: %q vs %q", a, b)
	}
}
