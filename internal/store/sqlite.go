// Package store persists filters and filter runs as JSON documents in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kingfs/go-llm-catalog/filter"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
)

// timeFormat is fixed width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

//go:embed schema.sql
var schemaSQL string

// Sqlite stores filters and runs. The filter document is the source of truth
// for everything except version and usage counters, which live in columns so
// they can be updated atomically.
type Sqlite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func Open(ctx context.Context, path string) (*Sqlite, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: SQLite serializes writers anyway and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)

	s, err := NewSqlite(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSqlite runs the embedded schema DDL against db.
func NewSqlite(ctx context.Context, db *sql.DB) (*Sqlite, error) {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Sqlite{db: db}, nil
}

// Close closes the underlying database.
func (s *Sqlite) Close() error { return s.db.Close() }

// CreateFilter inserts f. The caller assigns id, version and timestamps.
func (s *Sqlite) CreateFilter(ctx context.Context, f *filter.Filter) error {
	doc, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal filter: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO filters (id, owner_id, team_id, visibility, version, usage_count, last_used_at, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.OwnerID, f.TeamID, string(f.Visibility), f.Version, f.UsageCount,
		formatNullTime(f.LastUsedAt), string(doc), formatTime(f.CreatedAt), formatTime(f.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert filter %s: %w", f.ID, err)
	}
	return nil
}

const selectFilter = `SELECT document, version, usage_count, last_used_at FROM filters`

// GetFilter loads the filter with id.
func (s *Sqlite) GetFilter(ctx context.Context, id string) (*filter.Filter, error) {
	row := s.db.QueryRowContext(ctx, selectFilter+` WHERE id = ?`, id)
	f, err := scanFilter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("filter %s: %w", id, ErrNotFound)
	}
	return f, err
}

// ListQuery selects the filters visible to a user.
type ListQuery struct {
	UserID string
	TeamID string
}

// ListFilters returns the user's own filters, filters shared with the user's
// team and public filters, oldest first.
func (s *Sqlite) ListFilters(ctx context.Context, q ListQuery) ([]*filter.Filter, error) {
	rows, err := s.db.QueryContext(ctx, selectFilter+`
		WHERE owner_id = ?
		   OR (visibility = 'team' AND team_id <> '' AND team_id = ?)
		   OR visibility = 'public'
		ORDER BY created_at, id`, q.UserID, q.TeamID)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	var out []*filter.Filter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpdateFilter replaces the stored filter if its version still equals
// f.Version, then bumps f.Version.
func (s *Sqlite) UpdateFilter(ctx context.Context, f *filter.Filter) error {
	next := *f
	next.Version = f.Version + 1
	doc, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal filter: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE filters
		   SET team_id = ?, visibility = ?, version = ?, document = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		next.TeamID, string(next.Visibility), next.Version, string(doc), formatTime(next.UpdatedAt),
		f.ID, f.Version)
	if err != nil {
		return fmt.Errorf("update filter %s: %w", f.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update filter %s: %w", f.ID, err)
	}
	if n == 0 {
		if _, err := s.GetFilter(ctx, f.ID); err != nil {
			return err
		}
		return fmt.Errorf("filter %s at version %d: %w", f.ID, f.Version, ErrVersionConflict)
	}
	f.Version = next.Version
	return nil
}

// DeleteFilter removes the filter. Its runs are kept for audit.
func (s *Sqlite) DeleteFilter(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM filters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete filter %s: %w", id, err)
	}
	return requireRow(res, id)
}

// SaveRun stores a run snapshot and records the usage of its filter in one
// transaction: the usage counter is incremented and last_used_at set to the
// run's evaluation time.
func (s *Sqlite) SaveRun(ctx context.Context, run *filter.Run) error {
	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO filter_runs (id, filter_id, evaluated_at, total, matched, document)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.FilterID, formatTime(run.EvaluatedAt), run.Total, run.Matched, string(doc))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE filters SET usage_count = usage_count + 1, last_used_at = ? WHERE id = ?`,
		formatTime(run.EvaluatedAt), run.FilterID)
	if err != nil {
		return fmt.Errorf("record usage of filter %s: %w", run.FilterID, err)
	}
	if err := requireRow(res, run.FilterID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs of a filter, newest first. A limit below
// one returns every run.
func (s *Sqlite) ListRuns(ctx context.Context, filterID string, limit int) ([]*filter.Run, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT document FROM filter_runs
		 WHERE filter_id = ?
		 ORDER BY evaluated_at DESC, id DESC
		 LIMIT ?`, filterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*filter.Run
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var run filter.Run
		if err := json.Unmarshal([]byte(doc), &run); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}

// requireRow maps a statement that touched no filter row to ErrNotFound.
func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("filter %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("filter %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFilter(row scanner) (*filter.Filter, error) {
	var (
		doc        string
		version    int
		usageCount int64
		lastUsedAt sql.NullString
	)
	if err := row.Scan(&doc, &version, &usageCount, &lastUsedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan filter: %w", err)
	}
	var f filter.Filter
	if err := json.Unmarshal([]byte(doc), &f); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	f.Version = version
	f.UsageCount = usageCount
	f.LastUsedAt = nil
	if lastUsedAt.Valid {
		t, err := time.Parse(timeFormat, lastUsedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_used_at: %w", err)
		}
		f.LastUsedAt = &t
	}
	return &f, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

