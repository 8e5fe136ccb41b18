// Package collection holds the rows picked for export. It is the only state
// that changes during a session, so every method takes the lock.
package collection

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/types"
)

var (
	// ErrDuplicate is returned when a row with the same Codice Articolo
	// (ignoring case) is already in the collection.
	ErrDuplicate = errors.New("code already in collection")

	// ErrEmptyCode is returned for rows without a Codice Articolo.
	ErrEmptyCode = errors.New("row has no code")

	// ErrIndex is returned by Remove for a position outside the collection.
	ErrIndex = errors.New("index out of range")
)

// Collection is an ordered list of model rows, unique by code.
type Collection struct {
	mu   sync.Mutex
	rows []model.Row
}

// New returns an empty collection.
func New() *Collection {
	return &Collection{}
}

// Add appends row. A rejected row leaves the collection unchanged.
func (c *Collection) Add(row model.Row) error {
	code := strings.TrimSpace(row.Code)
	if code == "" {
		return ErrEmptyCode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.rows {
		if strings.EqualFold(strings.TrimSpace(existing.Code), code) {
			return fmt.Errorf("%w: %s", ErrDuplicate, code)
		}
	}
	c.rows = append(c.rows, row)
	return nil
}

// Contains reports whether a row with code is present.
func (c *Collection) Contains(code string) bool {
	code = strings.TrimSpace(code)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.rows {
		if strings.EqualFold(strings.TrimSpace(existing.Code), code) {
			return true
		}
	}
	return false
}

// Remove deletes the row at index i, shifting later rows down.
func (c *Collection) Remove(i int) (model.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.rows) {
		return model.Row{}, fmt.Errorf("%w: %d", ErrIndex, i)
	}
	removed := c.rows[i]
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	return removed, nil
}

// Clear removes every row.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = nil
}

// Len returns the number of rows.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Rows returns a copy of the rows in order.
func (c *Collection) Rows() []model.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// Records flattens every row.
func (c *Collection) Records() []types.Record {
	rows := c.Rows()
	records := make([]types.Record, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}
	return records
}

// Export writes the collection as a semicolon separated table using the
// schema of mode, and returns the keys it used.
func (c *Collection) Export(w io.Writer, mode types.Mode) ([]string, error) {
	records := c.Records()
	keys := model.ExportKeys(mode, records)
	if err := csvparser.WriteRecords(w, keys, records); err != nil {
		return nil, fmt.Errorf("failed to export collection: %w", err)
	}
	return keys, nil
}
