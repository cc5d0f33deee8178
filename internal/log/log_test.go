package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{out: &buf, level: Warn, fields: map[string]string{}}
	l.Info("dropped")
	l.Warn("kept", "k", "v")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["msg"] != "kept" || rec["k"] != "v" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestWithFieldsAndMasking(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{out: &buf, level: Info, fields: map[string]string{}}
	l := base.With(map[string]string{"component": "fetch"})
	l.Info("req", "github_token", "ghp_abcdefghijklmnop")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["component"] != "fetch" {
		t.Fatalf("missing With field: %v", rec)
	}
	tok, _ := rec["github_token"].(string)
	if !strings.Contains(tok, "***") || strings.Contains(tok, "abcdefghijkl") {
		t.Fatalf("token not masked: %q", tok)
	}
}
