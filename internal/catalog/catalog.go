// Package catalog holds the known-dataset catalog and its scored
// keyword lookup. The catalog is the primary resolution path for
// statistical inputs; the statistics-office fallback is only consulted
// when nothing here matches.
package catalog

import (
	"fmt"
	"strings"

	"github.com/hradek/fiskal/internal/model"
	"github.com/hradek/fiskal/internal/util"
)

// Catalog is a read-only set of known datasets. Tie-breaking depends
// on insertion order, so a catalog is built once and never mutated.
type Catalog struct {
	entries  []model.CatalogEntry
	byID     map[string]int
	keywords [][]string // normalized keywords, parallel to entries
}

// New builds a catalog from entries, preserving their order.
func New(entries []model.CatalogEntry) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(entries))}
	for _, e := range entries {
		if err := c.add(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(e model.CatalogEntry) error {
	if e.ID == "" {
		return fmt.Errorf("catalog entry missing id")
	}
	if _, dup := c.byID[e.ID]; dup {
		return fmt.Errorf("duplicate catalog entry %q", e.ID)
	}

	normed := make([]string, 0, len(e.Keywords))
	for _, k := range e.Keywords {
		if n := util.Normalize(strings.TrimSpace(k)); n != "" {
			normed = append(normed, n)
		}
	}

	c.byID[e.ID] = len(c.entries)
	c.entries = append(c.entries, e)
	c.keywords = append(c.keywords, normed)
	return nil
}

// Get returns the entry with the given id.
func (c *Catalog) Get(id string) (model.CatalogEntry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.CatalogEntry{}, false
	}
	return c.entries[i], true
}

// Match returns the best-scoring entry for the claim text, or false
// when no keyword matches at all. The score of an entry is how many of
// its keywords occur in the normalized text; ties break to the longer
// matched keyword, then to the earlier entry.
func (c *Catalog) Match(text string) (model.CatalogEntry, bool) {
	return c.match(text, "")
}

// MatchUnit is Match restricted to entries with the given unit.
func (c *Catalog) MatchUnit(text string, unit model.Unit) (model.CatalogEntry, bool) {
	return c.match(text, unit)
}

func (c *Catalog) match(text string, unit model.Unit) (model.CatalogEntry, bool) {
	normed := util.Normalize(text)

	best := -1
	bestScore := 0
	bestLongest := 0

	for i := range c.entries {
		if unit != "" && c.entries[i].Unit != unit {
			continue
		}

		score, longest := 0, 0
		for _, k := range c.keywords[i] {
			if strings.Contains(normed, k) {
				score++
				if len(k) > longest {
					longest = len(k)
				}
			}
		}
		if score == 0 {
			continue
		}

		// Strict > keeps the earliest entry on full ties.
		if score > bestScore || (score == bestScore && longest > bestLongest) {
			best, bestScore, bestLongest = i, score, longest
		}
	}

	if best < 0 {
		return model.CatalogEntry{}, false
	}
	return c.entries[best], true
}

// Len returns the number of datasets in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the catalog in insertion order.
func (c *Catalog) Entries() []model.CatalogEntry {
	out := make([]model.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}
