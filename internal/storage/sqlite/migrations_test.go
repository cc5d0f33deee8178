package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "meta.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpToLatestIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := (Manager{}).UpToLatest(ctx, db); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := (Manager{}).UpToLatest(ctx, db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := (Manager{}).version(ctx, db)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != latestVersion {
		t.Fatalf("version = %d, want %d", v, latestVersion)
	}
	if _, err := db.Exec(`INSERT INTO docs(id,url,title,snippet,meta) VALUES('a','u','t','s','{}')`); err != nil {
		t.Fatalf("docs table unusable: %v", err)
	}
}

func TestDownOne(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := (Manager{}).UpToLatest(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := (Manager{}).DownOne(ctx, db); err != nil {
		t.Fatalf("down: %v", err)
	}
	v, _ := (Manager{}).version(ctx, db)
	if v != latestVersion-1 {
		t.Fatalf("version after down = %d", v)
	}
}
