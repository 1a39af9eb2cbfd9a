package catalog

import "github.com/hradek/fiskal/internal/model"

// builtinEntries is the compiled-in snapshot of commonly needed Czech
// datasets. Values are point-in-time statistics; refresh them through
// an external catalog file rather than by editing this table.
func builtinEntries() []model.CatalogEntry {
	return []model.CatalogEntry{
		{
			ID:       "gdp_nominal",
			Name:     "Hrubý domácí produkt (běžné ceny)",
			Keywords: []string{"hdp", "hrubý domácí produkt", "gdp"},
			Value:    7_300_000_000_000,
			Unit:     model.UnitCZK,
			Year:     2023,
			Source:   "ČSÚ",
		},
		{
			ID:       "pop_total",
			Name:     "Počet obyvatel ČR",
			Keywords: []string{"obyvatel", "obyvatelé", "populace", "občan"},
			Value:    10_827_529,
			Unit:     model.UnitPersons,
			Year:     2024,
			Source:   "ČSÚ",
		},
		{
			ID:       "pop_pensioners",
			Name:     "Počet starobních důchodců",
			Keywords: []string{"důchodce", "důchodci", "starobní důchod", "penzisté"},
			Value:    2_367_000,
			Unit:     model.UnitPersons,
			Year:     2024,
			Source:   "ČSSZ",
		},
		{
			ID:       "avg_pension",
			Name:     "Průměrný starobní důchod (měsíčně)",
			Keywords: []string{"průměrný důchod", "výše důchodu", "penze"},
			Value:    20_216,
			Unit:     model.UnitCZK,
			Year:     2024,
			Source:   "ČSSZ",
		},
		{
			ID:       "inflation",
			Name:     "Meziroční míra inflace",
			Keywords: []string{"inflace", "růst cen", "spotřebitelské ceny"},
			Value:    2.5,
			Unit:     model.UnitPercent,
			Year:     2024,
			Source:   "ČSÚ",
		},
		{
			ID:       "real_wage_growth",
			Name:     "Meziroční růst reálných mezd",
			Keywords: []string{"růst mezd", "reálné mzdy", "reálná mzda"},
			Value:    1.5,
			Unit:     model.UnitPercent,
			Year:     2024,
			Source:   "ČSÚ",
		},
		{
			ID:       "avg_wage",
			Name:     "Průměrná hrubá měsíční mzda",
			Keywords: []string{"průměrná mzda", "hrubá mzda", "plat"},
			Value:    45_854,
			Unit:     model.UnitCZK,
			Year:     2024,
			Source:   "ČSÚ",
		},
		{
			ID:       "pop_firefighters",
			Name:     "Počet profesionálních hasičů",
			Keywords: []string{"hasič", "hasiči", "hasičů", "firefighters"},
			Value:    11_500,
			Unit:     model.UnitPersons,
			Year:     2024,
			Source:   "HZS ČR",
		},
		{
			ID:       "pop_teachers",
			Name:     "Počet učitelů regionálního školství",
			Keywords: []string{"učitel", "učitelé", "učitelů", "pedagog"},
			Value:    175_000,
			Unit:     model.UnitPersons,
			Year:     2023,
			Source:   "MŠMT",
		},
		{
			ID:       "pop_nurses",
			Name:     "Počet všeobecných sester",
			Keywords: []string{"sestra", "sestry", "zdravotní sestra", "sester"},
			Value:    83_000,
			Unit:     model.UnitPersons,
			Year:     2023,
			Source:   "ÚZIS",
		},
		{
			ID:       "budget_education",
			Name:     "Výdaje kapitoly školství státního rozpočtu",
			Keywords: []string{"rozpočet školství", "školství", "vzdělávání"},
			Value:    269_000_000_000,
			Unit:     model.UnitCZK,
			Year:     2025,
			Source:   "MF ČR",
		},
		{
			ID:       "budget_defense",
			Name:     "Výdaje kapitoly obrany státního rozpočtu",
			Keywords: []string{"rozpočet obrany", "obrana", "armáda"},
			Value:    153_900_000_000,
			Unit:     model.UnitCZK,
			Year:     2025,
			Source:   "MF ČR",
		},
	}
}

// Builtin returns the compiled-in catalog snapshot.
func Builtin() *Catalog {
	c, err := New(builtinEntries())
	if err != nil {
		// The builtin table is compile-time data; a bad entry is a bug.
		panic("builtin catalog invalid: " + err.Error())
	}
	return c
}
