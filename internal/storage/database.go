// Package storage handles data persistence for artwork analyses.
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Blank import: registers the SQLite driver.
	// In Go, importing a package for its side effects (init function) is done
	// with `_`. The sqlite3 package registers itself as a database/sql driver.
)

// Schema is embedded directly in the binary — no migration files need to
// exist at runtime. Indexes are established here, once, at startup; they are
// never touched on the request path.
//
// artwork_name gets a NOCASE index because the cache resolver matches names
// case-insensitively. There is deliberately no UNIQUE constraint on
// artwork_name or image_hash: concurrent generations for the same new
// artwork may both insert, and the service tolerates the duplicates.
const schema = `
CREATE TABLE IF NOT EXISTS analyses (
    id              TEXT PRIMARY KEY,
    artwork_name    TEXT NOT NULL,
    interpretation  TEXT NOT NULL,
    artist          TEXT,
    year            TEXT,
    style           TEXT,
    emotions        TEXT NOT NULL DEFAULT '[]',
    image_hash      TEXT,
    image_url       TEXT,
    processing_time REAL NOT NULL DEFAULT 0,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS llm_calls (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    provider    TEXT NOT NULL,
    model       TEXT NOT NULL,
    operation   TEXT NOT NULL,
    subject     TEXT NOT NULL DEFAULT '',
    success     BOOLEAN NOT NULL DEFAULT 0,
    duration_ms INTEGER,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_analyses_name ON analyses(artwork_name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_analyses_hash ON analyses(image_hash);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
CREATE INDEX IF NOT EXISTS idx_llm_calls_operation ON llm_calls(operation);
`

// NewDatabase creates a new SQLite connection and runs migrations.
// sqlx wraps database/sql with convenience methods like StructScan and NamedExec.
//
// Key Go pattern: the constructor creates the resource AND validates it (Ping).
// If anything fails, we return an error — the caller decides what to do.
func NewDatabase(dbPath string) (*sqlx.DB, error) {
	// The DSN configures SQLite pragmas:
	// - WAL mode: allows concurrent reads while writing
	// - foreign_keys: enforce referential integrity
	// - busy_timeout: wait up to 5s instead of failing on lock contention
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Ping actually opens the connection (Open is lazy in database/sql)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// SQLite performs best with a single writer connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
