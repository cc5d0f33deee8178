package config

import "testing"

func TestParseYAMLShallow(t *testing.T) {
	m, err := parseYAMLShallow(`
# comment
HYPERSERP_ADDR: ":9000"
HYPERSERP_FETCH_RPS: 2.5
HYPERSERP_BOOTSTRAP: true
nested:
  ignored: yes
`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m["HYPERSERP_ADDR"] != ":9000" {
		t.Fatalf("addr = %v", m["HYPERSERP_ADDR"])
	}
	if m["HYPERSERP_FETCH_RPS"] != 2.5 {
		t.Fatalf("rps = %v", m["HYPERSERP_FETCH_RPS"])
	}
	if m["HYPERSERP_BOOTSTRAP"] != true {
		t.Fatalf("bootstrap = %v", m["HYPERSERP_BOOTSTRAP"])
	}
	if _, ok := m["ignored"]; ok {
		t.Fatalf("nested key should be skipped")
	}
}

func TestToString(t *testing.T) {
	if got := toString(2.0); got != "2" {
		t.Fatalf("toString(2.0) = %q", got)
	}
	if got := toString(true); got != "true" {
		t.Fatalf("toString(true) = %q", got)
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("HYPERSERP_INDEX_PATH", "")
	if IndexPath() != "bm25.index" {
		t.Fatalf("default index path = %q", IndexPath())
	}
	t.Setenv("HYPERSERP_INDEX_PATH", "/tmp/x.index")
	if IndexPath() != "/tmp/x.index" {
		t.Fatalf("env index path = %q", IndexPath())
	}
}
