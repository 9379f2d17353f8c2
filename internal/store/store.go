// Package store handles SQLite persistence of archived play sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/retrostats/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			game TEXT NOT NULL,
			system TEXT NOT NULL,
			started_at INTEGER NOT NULL, -- unix nanoseconds
			ended_at INTEGER NOT NULL,
			UNIQUE (game, system, started_at, ended_at)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_system ON sessions(system);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSessions archives sessions, skipping ones already stored. It returns the
// number of newly inserted rows.
func (s *Store) InsertSessions(ctx context.Context, sessions []model.Session) (inserted int, err error) {
	if len(sessions) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO sessions (game, system, started_at, ended_at)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, sess := range sessions {
		res, err := stmt.ExecContext(ctx, sess.Game, sess.System, sess.StartedAt.UnixNano(), sess.EndedAt.UnixNano())
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListSessions returns archived sessions ordered by start time.
func (s *Store) ListSessions(ctx context.Context, filter model.SessionFilter) ([]model.Session, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.System != "" {
		clauses = append(clauses, "system = ?")
		args = append(args, filter.System)
	}
	if filter.Since != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, filter.Since.UnixNano())
	}
	query := fmt.Sprintf(`SELECT game, system, started_at, ended_at
		FROM sessions
		WHERE %s
		ORDER BY started_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.Session
	for rows.Next() {
		var sess model.Session
		var started, ended int64
		if err := rows.Scan(&sess.Game, &sess.System, &started, &ended); err != nil {
			return nil, err
		}
		sess.StartedAt = time.Unix(0, started).UTC()
		sess.EndedAt = time.Unix(0, ended).UTC()
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListSystems returns every archived system with its session count.
func (s *Store) ListSystems(ctx context.Context) ([]model.SystemCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT system, COUNT(*) FROM sessions GROUP BY system ORDER BY system ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.SystemCount
	for rows.Next() {
		var sc model.SystemCount
		if err := rows.Scan(&sc.System, &sc.Sessions); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
