package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hradek/fiskal/internal/model"
)

func testEntries() []model.CatalogEntry {
	return []model.CatalogEntry{
		{
			ID:       "pop_firefighters",
			Name:     "Počet profesionálních hasičů",
			Keywords: []string{"hasič", "hasiči"},
			Value:    11500,
			Unit:     model.UnitPersons,
			Year:     2024,
			Source:   "HZS ČR",
		},
		{
			ID:       "gdp_nominal",
			Name:     "Hrubý domácí produkt",
			Keywords: []string{"hdp", "hrubý domácí produkt"},
			Value:    6_500_000_000_000,
			Unit:     model.UnitCZK,
			Year:     2023,
			Source:   "ČSÚ",
		},
		{
			ID:       "pop_teachers",
			Name:     "Počet učitelů",
			Keywords: []string{"učitel", "učitelé"},
			Value:    175000,
			Unit:     model.UnitPersons,
			Year:     2023,
			Source:   "MŠMT",
		},
	}
}

func TestCatalog_Get(t *testing.T) {
	c, err := New(testEntries())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	entry, ok := c.Get("gdp_nominal")
	if !ok {
		t.Fatal("Expected gdp_nominal to exist")
	}
	if entry.Value != 6_500_000_000_000 {
		t.Errorf("Expected GDP value 6.5e12, got %v", entry.Value)
	}

	if _, ok := c.Get("nope"); ok {
		t.Error("Expected unknown id to be absent")
	}
}

func TestCatalog_RejectsDuplicateIDs(t *testing.T) {
	entries := testEntries()
	entries = append(entries, entries[0])

	if _, err := New(entries); err == nil {
		t.Fatal("Expected error for duplicate id")
	}
}

func TestCatalog_Match_DiacriticsInsensitive(t *testing.T) {
	c, _ := New(testEntries())

	// Claim text spells it differently than the keyword list.
	entry, ok := c.Match("Přidáme 5000 Kč ročně každému hasiči")
	if !ok {
		t.Fatal("Expected a match for firefighter claim")
	}
	if entry.ID != "pop_firefighters" {
		t.Errorf("Expected pop_firefighters, got %s", entry.ID)
	}
}

func TestCatalog_Match_NoKeywordHit(t *testing.T) {
	c, _ := New(testEntries())

	if _, ok := c.Match("Zjednodušíme stavební řízení"); ok {
		t.Error("Expected no match for unrelated claim")
	}
}

func TestCatalog_MatchUnit_FiltersByUnit(t *testing.T) {
	c, _ := New(testEntries())

	// "hdp" would win overall but is CZK; restricting to persons must
	// skip it entirely.
	if entry, ok := c.MatchUnit("růst hdp a počet učitelů", model.UnitPersons); !ok || entry.ID != "pop_teachers" {
		t.Errorf("Expected pop_teachers for persons filter, got %v (ok=%v)", entry.ID, ok)
	}
}

func TestCatalog_Match_MoreKeywordsWin(t *testing.T) {
	entries := []model.CatalogEntry{
		{ID: "a", Name: "A", Keywords: []string{"mzda"}, Value: 1, Unit: model.UnitCZK, Year: 2024, Source: "X"},
		{ID: "b", Name: "B", Keywords: []string{"mzda", "průměrná"}, Value: 2, Unit: model.UnitCZK, Year: 2024, Source: "X"},
	}
	c, _ := New(entries)

	entry, ok := c.Match("průměrná mzda letos vzroste")
	if !ok || entry.ID != "b" {
		t.Errorf("Expected entry with two keyword hits to win, got %v (ok=%v)", entry.ID, ok)
	}
}

func TestCatalog_Match_LongerKeywordBreaksTie(t *testing.T) {
	entries := []model.CatalogEntry{
		{ID: "short", Name: "S", Keywords: []string{"dan"}, Value: 1, Unit: model.UnitCZK, Year: 2024, Source: "X"},
		{ID: "long", Name: "L", Keywords: []string{"dan z prijmu"}, Value: 2, Unit: model.UnitCZK, Year: 2024, Source: "X"},
	}
	c, _ := New(entries)

	entry, ok := c.Match("snížíme daň z příjmu na 10 %")
	if !ok || entry.ID != "long" {
		t.Errorf("Expected longer keyword to break the tie, got %v (ok=%v)", entry.ID, ok)
	}
}

func TestCatalog_Match_InsertionOrderBreaksFullTie(t *testing.T) {
	// Same keyword length, same score: position decides.
	entries := []model.CatalogEntry{
		{ID: "first", Name: "F", Keywords: []string{"steel"}, Value: 1, Unit: model.UnitCZK, Year: 2024, Source: "X"},
		{ID: "second", Name: "S", Keywords: []string{"ocels"}, Value: 2, Unit: model.UnitCZK, Year: 2024, Source: "X"},
	}
	c, _ := New(entries)

	entry, ok := c.Match("steel a ocels v jednom textu")
	if !ok || entry.ID != "first" {
		t.Errorf("Expected first-inserted entry on a full tie, got %v (ok=%v)", entry.ID, ok)
	}
}

func TestBuiltin_ResolvesCoreDatasets(t *testing.T) {
	c := Builtin()

	for _, id := range []string{"gdp_nominal", "pop_pensioners", "avg_pension", "inflation", "real_wage_growth"} {
		if _, ok := c.Get(id); !ok {
			t.Errorf("Expected builtin catalog to contain %s", id)
		}
	}
}

func TestLoad_SkipsInvalidEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	content := `- id: good
  name: Valid entry
  keywords: [test]
  value: 42
  unit: CZK
  year: 2024
  source: Test
- id: ""
  name: Missing id
  keywords: [broken]
  value: 1
  unit: CZK
  year: 2024
  source: Test
- id: bad_unit
  name: Unknown unit
  keywords: [broken]
  value: 1
  unit: furlongs
  year: 2024
  source: Test
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test catalog: %v", err)
	}

	entries, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 valid entry, got %d", len(entries))
	}
	if entries[0].ID != "good" {
		t.Errorf("Expected entry 'good', got %s", entries[0].ID)
	}
}

func TestLoad_JSONFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	content := `[{"id":"json_entry","name":"JSON entry","keywords":["json"],"value":7,"unit":"persons","year":2024,"source":"Test"}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test catalog: %v", err)
	}

	entries, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "json_entry" {
		t.Fatalf("Expected json_entry, got %v", entries)
	}
}

func TestLoad_UnparseableFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	if err := os.WriteFile(path, []byte("{not valid: [yaml"), 0644); err != nil {
		t.Fatalf("Failed to write test catalog: %v", err)
	}

	if _, err := Load(path, zap.NewNop()); err == nil {
		t.Fatal("Expected error for unparseable catalog")
	}
}

func TestMerged_FileOverridesBuiltinInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	content := `- id: gdp_nominal
  name: Hrubý domácí produkt (aktualizace)
  keywords: [hdp]
  value: 6500000000000
  unit: CZK
  year: 2024
  source: ČSÚ
- id: pop_astronauts
  name: Počet astronautů
  keywords: [astronaut]
  value: 1
  unit: persons
  year: 2024
  source: Test
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test catalog: %v", err)
	}

	c, err := Merged(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	gdp, ok := c.Get("gdp_nominal")
	if !ok || gdp.Value != 6_500_000_000_000 {
		t.Errorf("Expected overridden GDP value, got %v (ok=%v)", gdp.Value, ok)
	}
	if _, ok := c.Get("pop_astronauts"); !ok {
		t.Error("Expected new entry to be appended")
	}
	if c.Len() != Builtin().Len()+1 {
		t.Errorf("Expected builtin size +1, got %d", c.Len())
	}
}

func TestMerged_EmptyPathReturnsBuiltin(t *testing.T) {
	c, err := Merged("", zap.NewNop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if c.Len() != Builtin().Len() {
		t.Errorf("Expected builtin catalog, got %d entries", c.Len())
	}
}
