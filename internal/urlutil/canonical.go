// Package urlutil normalizes URLs into the canonical form used as the
// dedup key across the cascade, the index and the fusion pipeline.
package urlutil

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters stripped during canonicalization.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"utm_id":       true,
	"gclid":        true,
	"fbclid":       true,
}

// Canonicalize normalizes raw into a stable dedup key. Empty input yields
// empty output. Protocol-relative URLs are pinned to https, known redirect
// wrappers are unwrapped, tracking parameters are stripped (remaining
// parameters keep their relative order), the scheme is forced to https, the
// host is lower-cased and the fragment dropped.
//
// Canonicalize is idempotent: Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		// No stable host to key on; whitespace trimming is the only safe
		// transformation.
		return s
	}
	// Unwrap nested redirect wrappers to a fixpoint. Each step extracts the
	// strictly shorter embedded target, so this terminates on finite input.
	for {
		target := strings.TrimSpace(unwrapRedirect(u))
		if target == "" {
			break
		}
		if strings.HasPrefix(target, "//") {
			target = "https:" + target
		}
		tu, err := url.Parse(target)
		if err != nil || tu.Host == "" {
			return target
		}
		u = tu
	}
	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = stripTracking(u.RawQuery)
	u.User = nil
	return u.String()
}

// unwrapRedirect returns the embedded target of a known redirect-wrapper
// URL, or "" when u is not a wrapper. Currently covers the DuckDuckGo
// outbound-link redirector (duckduckgo.com/l/?uddg=<target>).
func unwrapRedirect(u *url.URL) string {
	host := strings.ToLower(u.Host)
	if host != "duckduckgo.com" && host != "html.duckduckgo.com" && host != "www.duckduckgo.com" {
		return ""
	}
	if u.Path != "/l/" && u.Path != "/l" {
		return ""
	}
	return u.Query().Get("uddg")
}

// stripTracking removes denylisted parameters from a raw query string while
// preserving the relative order and encoding of the remaining segments.
func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	segs := strings.Split(rawQuery, "&")
	kept := segs[:0]
	for _, seg := range segs {
		if seg == "" {
			continue
		}
		key := seg
		if i := strings.IndexByte(seg, '='); i >= 0 {
			key = seg[:i]
		}
		if dec, err := url.QueryUnescape(key); err == nil {
			key = dec
		}
		if trackingParams[strings.ToLower(key)] {
			continue
		}
		kept = append(kept, seg)
	}
	return strings.Join(kept, "&")
}
