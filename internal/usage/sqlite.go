package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists monthly counts in a single-table SQLite database so
// the budget survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS api_usage (
	period     TEXT PRIMARY KEY,
	calls      INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// one writer keeps check-and-increment serialized across goroutines
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Count(ctx context.Context, period string) (int, error) {
	var calls int
	err := s.db.QueryRowContext(ctx, `SELECT calls FROM api_usage WHERE period = ?`, period).Scan(&calls)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: count %s", period)
	}
	return calls, nil
}

func (s *SQLiteStore) IncrementIfBelow(ctx context.Context, period string, limit int) (int, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO api_usage (period, calls, updated_at) VALUES (?, 0, ?)`,
		period, time.Now().UTC(),
	); err != nil {
		return 0, false, eris.Wrap(err, "sqlite: seed period")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE api_usage SET calls = calls + 1, updated_at = ? WHERE period = ? AND calls < ?`,
		time.Now().UTC(), period, limit,
	)
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: increment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: rows affected")
	}

	var calls int
	if err := tx.QueryRowContext(ctx, `SELECT calls FROM api_usage WHERE period = ?`, period).Scan(&calls); err != nil {
		return 0, false, eris.Wrap(err, "sqlite: read count")
	}
	if err := tx.Commit(); err != nil {
		return 0, false, eris.Wrap(err, "sqlite: commit")
	}
	return calls, n == 1, nil
}

func (s *SQLiteStore) Prune(ctx context.Context, keep string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM api_usage WHERE period <> ?`, keep)
	return eris.Wrap(err, "sqlite: prune")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
