package model

import "fmt"

// CatalogEntry describes one known statistical dataset. Entries are
// loaded once at startup and read-only afterwards; lookup order
// depends on catalog position, so entries must not move once loaded.
type CatalogEntry struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Value    float64  `json:"value" yaml:"value"`
	Unit     Unit     `json:"unit" yaml:"unit"`
	Year     int      `json:"year" yaml:"year"`
	Source   string   `json:"source" yaml:"source"` // Publishing office (ČSÚ, ČSSZ, MF ČR, ...)
}

// SourceID returns the provenance identifier for the entry. The csu_
// prefix is historical and applies to every dataset regardless of the
// publishing office; downstream tooling keys on it.
func (e CatalogEntry) SourceID() string {
	return "csu_" + e.ID
}

// SourceLabel returns the human-readable citation for the entry.
func (e CatalogEntry) SourceLabel() string {
	return fmt.Sprintf("%s: %s (%d)", e.Source, e.Name, e.Year)
}

// Suggestion records a dataset the catalog was missing, so coverage
// can be extended by hand where it actually matters.
type Suggestion struct {
	Keywords  []string `json:"keywords"`
	ClaimText string   `json:"claim_text,omitempty"`
	Action    string   `json:"action"`
}
