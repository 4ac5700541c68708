// Package history persists a summary of every simulation the server runs in
// a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"excitond/internal/history/migrations"
	"excitond/pkg/types"
)

// DefaultListLimit applies when List is called with a non-positive limit.
const DefaultListLimit = 50

const migrationTable = "schema_migrations"

// Store persists run records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) a SQLite run history and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record appends one run. A zero FinishedAtUnixMs is stamped with the current time.
func (s *Store) Record(ctx context.Context, rec types.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(rec.RunID) == "" {
		return fmt.Errorf("run id is required")
	}
	finished := rec.FinishedAtUnixMs
	if finished == 0 {
		finished = time.Now().UTC().UnixMilli()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO runs (
		   run_id, preset, seed, steps, injected, remaining,
		   radiative, nonradiative, elapsed_s, finished_at, error
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Preset,
		strconv.FormatUint(rec.Seed, 10),
		rec.Steps,
		rec.Injected,
		rec.Remaining,
		int64(rec.Counts.Radiative),
		int64(rec.Counts.NonRadiative),
		rec.ElapsedS,
		finished,
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// List returns up to limit records, most recently recorded first.
func (s *Store) List(ctx context.Context, limit int) ([]types.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT run_id, preset, seed, steps, injected, remaining,
		        radiative, nonradiative, elapsed_s, finished_at, error
		   FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := []types.RunRecord{}
	for rows.Next() {
		var (
			rec        types.RunRecord
			seed       string
			rad, nonra int64
		)
		if err := rows.Scan(&rec.RunID, &rec.Preset, &seed, &rec.Steps, &rec.Injected, &rec.Remaining,
			&rad, &nonra, &rec.ElapsedS, &rec.FinishedAtUnixMs, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if rec.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("parse seed %q: %w", seed, err)
		}
		rec.Counts = types.DecayCounts{Radiative: uint64(rad), NonRadiative: uint64(nonra)}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// applyMigrations executes every embedded *.sql file at most once, in name order.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var n int
		if err := sqlDB.QueryRow(`SELECT COUNT(*) FROM `+migrationTable+` WHERE name = ?`, file).Scan(&n); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if n > 0 {
			continue
		}
		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(upSection(string(content))); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`, file, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// upSection returns the SQL between "-- +migrate Up" and "-- +migrate Down".
func upSection(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	if i := strings.Index(content, up); i >= 0 {
		content = content[i+len(up):]
	}
	if i := strings.Index(content, down); i >= 0 {
		content = content[:i]
	}
	return content
}
