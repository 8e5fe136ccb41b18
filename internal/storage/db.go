package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glasscom/catalog-builder/internal/grouping"
	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/types"
)

// ErrNotFound is returned by Get when no record is saved for a code.
var ErrNotFound = errors.New("saved record not found")

// DB stores finished model rows, one current record per parent code. Every
// replaced record is copied to saved_history first.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// SavedRecord is one row of saved_records.
type SavedRecord struct {
	ID          int64
	ParentSKU   string
	Mode        types.Mode
	Record      types.Record
	Category    string
	Subcategory string
	Title       string
	Finishes    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Row rebuilds the model row of the record.
func (r SavedRecord) Row() model.Row {
	return model.FromRecord(r.Record, r.Mode)
}

// HistoryEntry is a record that was replaced by a later save.
type HistoryEntry struct {
	ID         int64
	ParentSKU  string
	Mode       types.Mode
	Record     types.Record
	ArchivedAt time.Time
}

// SaveResult counts what Save did.
type SaveResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; avoids SQLITE_BUSY between the history insert and upsert
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS saved_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  parent_sku TEXT NOT NULL UNIQUE,
  mode TEXT NOT NULL,
  record TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  subcategory TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  finishes INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saved_records_category ON saved_records(category, subcategory);

CREATE TABLE IF NOT EXISTS saved_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  parent_sku TEXT NOT NULL,
  mode TEXT NOT NULL,
  record TEXT NOT NULL,
  archived_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saved_history_parent ON saved_history(parent_sku);
`

	_, err := d.conn.Exec(schema)
	return err
}

// =============================================================================
// WRITES
// =============================================================================

// Save upserts rows by uppercase Codice Articolo. Placeholder rows and rows
// without a code are skipped. All rows are written in one transaction.
func (d *DB) Save(ctx context.Context, rows []model.Row) (SaveResult, error) {
	var result SaveResult

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return result, err
	}
	defer func() { _ = tx.Rollback() }()

	archive, err := tx.PrepareContext(ctx, `
INSERT INTO saved_history (parent_sku, mode, record, archived_at)
SELECT parent_sku, mode, record, ? FROM saved_records WHERE parent_sku = ?`)
	if err != nil {
		return result, err
	}
	defer archive.Close()

	upsert, err := tx.PrepareContext(ctx, `
INSERT INTO saved_records (
  parent_sku, mode, record, category, subcategory, title, finishes, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(parent_sku) DO UPDATE SET
  mode=excluded.mode,
  record=excluded.record,
  category=excluded.category,
  subcategory=excluded.subcategory,
  title=excluded.title,
  finishes=excluded.finishes,
  updated_at=excluded.updated_at
`)
	if err != nil {
		return result, err
	}
	defer upsert.Close()

	now := formatTime(d.now())
	for _, row := range rows {
		code := strings.ToUpper(strings.TrimSpace(row.Code))
		if code == "" || row.NotFound {
			result.Skipped++
			continue
		}

		record := row.Record()
		payload, err := json.Marshal(record)
		if err != nil {
			return result, fmt.Errorf("failed to encode %s: %w", code, err)
		}
		category, subcategory := model.ExtractCategory(record[model.KeyCategory], record[model.KeySubtitle])

		archived, err := archive.ExecContext(ctx, now, code)
		if err != nil {
			return result, fmt.Errorf("failed to archive %s: %w", code, err)
		}
		if _, err := upsert.ExecContext(ctx,
			code, string(row.Mode), string(payload), category, subcategory,
			record[model.KeyTitle], model.CountFinishes(record), now, now,
		); err != nil {
			return result, fmt.Errorf("failed to save %s: %w", code, err)
		}

		if n, _ := archived.RowsAffected(); n > 0 {
			result.Updated++
		} else {
			result.Inserted++
		}
	}

	return result, tx.Commit()
}

// Delete removes saved records by id and returns how many were removed.
// Their history is kept.
func (d *DB) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := d.conn.ExecContext(ctx, `DELETE FROM saved_records WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// =============================================================================
// READS
// =============================================================================

// SortField names a List ordering.
type SortField string

const (
	SortID       SortField = "id"
	SortCode     SortField = "code"
	SortCategory SortField = "category"
	SortTitle    SortField = "title"
	SortFinishes SortField = "finishes"
	SortUpdated  SortField = "updated"
)

// ParseSortField accepts the names above; "" means SortID.
func ParseSortField(name string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return SortID, nil
	case SortID, SortCode, SortCategory, SortTitle, SortFinishes, SortUpdated:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", name)
}

// ListOptions filters and orders List. Empty filters match everything.
type ListOptions struct {
	// Category and Subcategory match case-insensitively after the category
	// path is split.
	Category    string
	Subcategory string

	// Query matches a substring of the code or the title, ignoring case.
	Query string

	// Mode restricts the result to one build mode.
	Mode types.Mode

	Sort SortField
	Desc bool
}

// List returns the saved records matching opts. Text fields sort in
// natural, case-insensitive order.
func (d *DB) List(ctx context.Context, opts ListOptions) ([]SavedRecord, error) {
	query := `
SELECT id, parent_sku, mode, record, category, subcategory, title, finishes, created_at, updated_at
FROM saved_records WHERE 1=1`
	var args []any

	if c := strings.TrimSpace(opts.Category); c != "" {
		query += ` AND category = ?`
		args = append(args, strings.ToUpper(c))
	}
	if s := strings.TrimSpace(opts.Subcategory); s != "" {
		query += ` AND subcategory = ?`
		args = append(args, strings.ToUpper(s))
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query += ` AND (lower(parent_sku) LIKE ? OR lower(title) LIKE ?)`
		args = append(args, like, like)
	}
	if opts.Mode != "" {
		query += ` AND mode = ?`
		args = append(args, string(opts.Mode))
	}
	query += ` ORDER BY id ASC`

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortRecords(out, opts.Sort, opts.Desc)
	return out, nil
}

// Get returns the saved record of a parent code.
func (d *DB) Get(ctx context.Context, parentSKU string) (SavedRecord, error) {
	row := d.conn.QueryRowContext(ctx, `
SELECT id, parent_sku, mode, record, category, subcategory, title, finishes, created_at, updated_at
FROM saved_records WHERE parent_sku = ?`, strings.ToUpper(strings.TrimSpace(parentSKU)))

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedRecord{}, fmt.Errorf("%w: %s", ErrNotFound, parentSKU)
	}
	return rec, err
}

// History returns the archived versions of a parent code, newest first.
func (d *DB) History(ctx context.Context, parentSKU string) ([]HistoryEntry, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT id, parent_sku, mode, record, archived_at
FROM saved_history WHERE parent_sku = ? ORDER BY id DESC`, strings.ToUpper(strings.TrimSpace(parentSKU)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			h        HistoryEntry
			mode     string
			payload  string
			archived string
		)
		if err := rows.Scan(&h.ID, &h.ParentSKU, &mode, &payload, &archived); err != nil {
			return nil, err
		}
		h.Mode = types.Mode(mode)
		if err := json.Unmarshal([]byte(payload), &h.Record); err != nil {
			return nil, fmt.Errorf("failed to decode history %d: %w", h.ID, err)
		}
		h.ArchivedAt = parseTime(archived)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Categories returns every saved category with its subcategories, both in
// natural order.
func (d *DB) Categories(ctx context.Context) (map[string][]string, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT DISTINCT category, subcategory FROM saved_records WHERE category <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var cat, sub string
		if err := rows.Scan(&cat, &sub); err != nil {
			return nil, err
		}
		if _, ok := out[cat]; !ok {
			out[cat] = []string{}
		}
		if sub != "" {
			out[cat] = append(out[cat], sub)
		}
	}
	for cat := range out {
		slices.SortFunc(out[cat], grouping.NaturalCompare)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (SavedRecord, error) {
	var (
		rec              SavedRecord
		mode, payload    string
		created, updated string
	)
	if err := s.Scan(&rec.ID, &rec.ParentSKU, &mode, &payload, &rec.Category, &rec.Subcategory,
		&rec.Title, &rec.Finishes, &created, &updated); err != nil {
		return SavedRecord{}, err
	}
	rec.Mode = types.Mode(mode)
	if err := json.Unmarshal([]byte(payload), &rec.Record); err != nil {
		return SavedRecord{}, fmt.Errorf("failed to decode record %d: %w", rec.ID, err)
	}
	rec.CreatedAt = parseTime(created)
	rec.UpdatedAt = parseTime(updated)
	return rec, nil
}

func sortRecords(records []SavedRecord, field SortField, desc bool) {
	cmp := func(a, b SavedRecord) int {
		switch field {
		case SortCode:
			return grouping.NaturalCompare(a.ParentSKU, b.ParentSKU)
		case SortCategory:
			if c := grouping.NaturalCompare(a.Category, b.Category); c != 0 {
				return c
			}
			return grouping.NaturalCompare(a.Subcategory, b.Subcategory)
		case SortTitle:
			return grouping.NaturalCompare(a.Title, b.Title)
		case SortFinishes:
			return a.Finishes - b.Finishes
		case SortUpdated:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
		return 0
	}

	slices.SortStableFunc(records, func(a, b SavedRecord) int {
		c := cmp(a, b)
		if c == 0 {
			c = int(a.ID - b.ID)
		}
		if desc {
			return -c
		}
		return c
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
