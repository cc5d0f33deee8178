package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// snapshot is the full persisted index state: the three order-aligned
// collections, serialized as zstd-compressed gob.
type snapshot struct {
	IDs    []string
	Texts  []string
	Tokens [][]string
}

// loadSnapshot returns (nil, nil) when no snapshot exists. A snapshot that
// exists but cannot be decoded is reported so the caller can log it, but
// callers treat it as an empty starting index.
func loadSnapshot(path string) (*snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot reader: %w", err)
	}
	defer zr.Close()
	var snap snapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.IDs) != len(snap.Texts) || len(snap.IDs) != len(snap.Tokens) {
		return nil, fmt.Errorf("decode snapshot: misaligned collections (%d/%d/%d)",
			len(snap.IDs), len(snap.Texts), len(snap.Tokens))
	}
	return &snap, nil
}

// saveSnapshot writes the snapshot to a temp file in the same directory and
// renames it into place, so readers of the file never see a partial write.
func saveSnapshot(path string, snap *snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	zw, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(snap); err != nil {
		zw.Close()
		tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
