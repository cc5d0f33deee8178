// Package store persists document display metadata keyed by document id.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"hyperserp/internal/models"
	sqlm "hyperserp/internal/storage/sqlite"
)

// MetadataStore is a durable id -> display-metadata mapping backed by
// SQLite with upsert semantics.
type MetadataStore struct {
	db *sql.DB
}

func Open(path string) (*MetadataStore, error) {
	if path == "" {
		return nil, errors.New("store: sqlite path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := (sqlm.Manager{}).UpToLatest(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return &MetadataStore{db: db}, nil
}

func (s *MetadataStore) Close() error { return s.db.Close() }

// Upsert inserts or replaces the record with rec.ID.
func (s *MetadataStore) Upsert(rec models.MetadataRecord) error {
	meta := rec.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	mb, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO docs(id,url,title,snippet,meta) VALUES(?,?,?,?,?)`,
		rec.ID, rec.URL, rec.Title, rec.Snippet, string(mb),
	)
	return err
}

// Get returns the record for id, reporting absence via the bool.
func (s *MetadataStore) Get(id string) (models.MetadataRecord, bool) {
	row := s.db.QueryRow(`SELECT id,url,title,snippet,meta FROM docs WHERE id=?`, id)
	rec, err := scanRecord(row.Scan)
	if err != nil {
		return models.MetadataRecord{}, false
	}
	return rec, true
}

// GetMany returns records for the given ids in the same order as the input,
// silently omitting unknown ids. Callers must handle output shorter than
// input.
func (s *MetadataStore) GetMany(ids []string) []models.MetadataRecord {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.Query(`SELECT id,url,title,snippet,meta FROM docs WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()
	byID := make(map[string]models.MetadataRecord, len(ids))
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			continue
		}
		byID[rec.ID] = rec
	}
	out := make([]models.MetadataRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func scanRecord(scan func(dest ...any) error) (models.MetadataRecord, error) {
	var rec models.MetadataRecord
	var meta sql.NullString
	if err := scan(&rec.ID, &rec.URL, &rec.Title, &rec.Snippet, &meta); err != nil {
		return rec, err
	}
	rec.Meta = map[string]any{}
	if meta.Valid && meta.String != "" {
		_ = json.Unmarshal([]byte(meta.String), &rec.Meta)
	}
	return rec, nil
}
