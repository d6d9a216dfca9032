package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/specsift/specsift/pkg/utils"
)

// originalSnippetLen bounds how much original text is stored per entry.
const originalSnippetLen = 200

// SQLite is a TranslationCache persisted across runs. A single upsert writes
// each entry, so concurrent readers never observe a partially written row.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the cache database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS translations (
		key TEXT PRIMARY KEY,
		original TEXT,
		translated TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Get returns the cached translation for key if present.
func (s *SQLite) Get(key string) (string, bool) {
	var translated string
	err := s.db.QueryRow(
		`SELECT translated FROM translations WHERE key = ?`, key,
	).Scan(&translated)
	if err != nil {
		return "", false
	}
	return translated, true
}

// Put stores a translation, keeping only a short original snippet for audit.
// The snippet is cut on a rune boundary so the stored text stays valid UTF-8.
func (s *SQLite) Put(key, original, translated string) error {
	if len(original) > originalSnippetLen {
		original = original[:utils.TruncateIndex(original, originalSnippetLen)]
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO translations (key, original, translated, created_at)
		 VALUES (?, ?, ?, ?)`,
		key, original, translated, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to store translation: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
