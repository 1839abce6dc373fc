package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/scholomance/pkg/scholomance/internalerr"
	"github.com/cognicore/scholomance/pkg/scholomance/lookupstore"
)

// sqliteStore implements lookupstore.Store using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled.
func Open(ctx context.Context, path string) (lookupstore.Store, error) {
	// busy_timeout is per connection, so it rides on the DSN
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// WAL lets several processes share one lookup cache
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS lookup_entries (
	key TEXT PRIMARY KEY,
	is_valid INTEGER NOT NULL,
	definitions TEXT NOT NULL,
	raw BLOB,
	cached_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lookup_entries_cached_at ON lookup_entries(cached_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Get retrieves an entry by key
func (s *sqliteStore) Get(ctx context.Context, key string) (lookupstore.Entry, bool, error) {
	var (
		e        lookupstore.Entry
		valid    int
		defsJSON string
		cachedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT is_valid, definitions, raw, cached_at
FROM lookup_entries
WHERE key = ?;
`, key).Scan(&valid, &defsJSON, &e.Raw, &cachedAt)
	if err == sql.ErrNoRows {
		return lookupstore.Entry{}, false, nil
	}
	if err != nil {
		return lookupstore.Entry{}, false, err
	}

	e.IsValid = valid != 0
	if err := json.Unmarshal([]byte(defsJSON), &e.Definitions); err != nil {
		return lookupstore.Entry{}, false, fmt.Errorf("decode definitions for %s: %w", key, err)
	}
	e.CachedAt = time.Unix(0, cachedAt).UTC()
	return e, true, nil
}

// Put inserts or replaces an entry
func (s *sqliteStore) Put(ctx context.Context, key string, e lookupstore.Entry) error {
	defs := e.Definitions
	if defs == nil {
		defs = []string{}
	}
	defsJSON, err := json.Marshal(defs)
	if err != nil {
		return err
	}

	valid := 0
	if e.IsValid {
		valid = 1
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO lookup_entries (key, is_valid, definitions, raw, cached_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	is_valid=excluded.is_valid,
	definitions=excluded.definitions,
	raw=excluded.raw,
	cached_at=excluded.cached_at;
`, key, valid, string(defsJSON), e.Raw, e.CachedAt.UnixNano())
	return err
}

// Delete removes an entry
func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lookup_entries WHERE key = ?`, key)
	return err
}

// Prune removes entries cached before cutoff. cached_at holds unix
// nanoseconds so the comparison is numeric.
func (s *sqliteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM lookup_entries WHERE cached_at < ?`,
		cutoff.UnixNano())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
