package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/types"
	"github.com/glasscom/catalog-builder/pkg/utils"
)

// sessionFile is the on-disk form of the lookup workflow's output collection.
type sessionFile struct {
	Mode    types.Mode     `json:"mode"`
	Entries []sessionEntry `json:"entries"`
}

type sessionEntry struct {
	NotFound bool         `json:"not_found,omitempty"`
	Record   types.Record `json:"record"`
}

// SaveSession writes the collection rows to path atomically.
func SaveSession(path string, mode types.Mode, rows []model.Row) error {
	file := sessionFile{Mode: mode, Entries: make([]sessionEntry, len(rows))}
	for i, row := range rows {
		file.Entries[i] = sessionEntry{NotFound: row.NotFound, Record: row.Record()}
	}

	payload, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if _, err := utils.WriteFileAtomic(path, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession reads a session written by SaveSession. A missing file is an
// empty session with no mode.
func LoadSession(path string) (types.Mode, []model.Row, error) {
	payload, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read session: %w", err)
	}

	var file sessionFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return "", nil, fmt.Errorf("failed to decode session %s: %w", path, err)
	}
	if file.Mode != "" {
		if _, err := types.ParseMode(string(file.Mode)); err != nil {
			return "", nil, fmt.Errorf("session %s: %w", path, err)
		}
	}

	rows := make([]model.Row, len(file.Entries))
	for i, entry := range file.Entries {
		rows[i] = model.FromRecord(entry.Record, file.Mode)
		rows[i].NotFound = entry.NotFound
	}
	return file.Mode, rows, nil
}
