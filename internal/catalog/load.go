package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hradek/fiskal/internal/model"
)

// Load reads extra catalog entries from a YAML or JSON file. Entries
// that fail validation are skipped with a warning; only an unreadable
// or unparseable file is an error.
func Load(path string, logger *zap.Logger) ([]model.CatalogEntry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raw []model.CatalogEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
	default:
		// YAML is the documented format (.yaml/.yml).
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
	}

	kept := make([]model.CatalogEntry, 0, len(raw))
	for i, e := range raw {
		if reason := validateEntry(e); reason != "" {
			logger.Warn("skipping catalog entry",
				zap.Int("index", i),
				zap.String("id", e.ID),
				zap.String("reason", reason))
			continue
		}
		kept = append(kept, e)
	}
	return kept, nil
}

func validateEntry(e model.CatalogEntry) string {
	switch {
	case e.ID == "":
		return "missing id"
	case e.Name == "":
		return "missing name"
	case len(e.Keywords) == 0:
		return "no keywords"
	case !e.Unit.Valid():
		return fmt.Sprintf("unknown unit %q", e.Unit)
	case e.Year <= 0:
		return "missing year"
	case e.Source == "":
		return "missing source"
	}
	return ""
}

// Merged returns the builtin catalog extended with entries from path.
// File entries override builtin entries with the same id in place, so
// tie-breaking order stays stable. An empty path returns the builtin
// catalog unchanged.
func Merged(path string, logger *zap.Logger) (*Catalog, error) {
	base := builtinEntries()
	if path == "" {
		return New(base)
	}

	extra, err := Load(path, logger)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(base))
	for i, e := range base {
		index[e.ID] = i
	}

	merged := base
	for _, e := range extra {
		if i, ok := index[e.ID]; ok {
			merged[i] = e
			continue
		}
		merged = append(merged, e)
	}
	return New(merged)
}
