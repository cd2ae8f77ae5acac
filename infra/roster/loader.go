// Package roster loads scheduling input from a workbook or a YAML/JSON file.
package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/infra/workbook"
)

// Load reads the roster at path, choosing the format by extension. The roster
// is not validated.
func Load(path string) (*model.Roster, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		r, err := workbook.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		return r.Roster()
	case ".yaml", ".yml", ".json":
		return loadDocument(path)
	default:
		return nil, fmt.Errorf("%w: unsupported roster format %q", model.ErrInvalidInput, ext)
	}
}

// loadDocument decodes YAML, which also accepts JSON documents.
func loadDocument(path string) (*model.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	var r model.Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: decode roster %s: %v", model.ErrInvalidInput, path, err)
	}
	for i, s := range r.Slots {
		if s.ID == "" {
			r.Slots[i].ID = model.SlotID(s.Court, s.TimeBlock)
		}
	}
	return &r, nil
}
