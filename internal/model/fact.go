package model

// Unit is the measurement unit of a statistical value.
type Unit string

const (
	UnitPersons Unit = "persons"
	UnitCZK     Unit = "CZK"
	UnitPercent Unit = "percent"
)

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitPersons, UnitCZK, UnitPercent:
		return true
	}
	return false
}

// Confidence grades how sturdy a value or an estimate is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FactRole names the calculation input a resolved value satisfies.
type FactRole string

const (
	RolePopulation     FactRole = "population"
	RoleGDP            FactRole = "gdp"
	RoleBaseAmount     FactRole = "base_amount"
	RoleInflation      FactRole = "inflation"
	RoleRealWageGrowth FactRole = "real_wage_growth"
	RoleAvgPension     FactRole = "avg_pension"
	RolePensionerCount FactRole = "pensioner_count"
)

// Fact is one statistical value resolved for a claim, tied to the
// dataset it came from. Facts are request-scoped: they are built fresh
// for every claim and never cached across runs.
type Fact struct {
	SourceID   string     `json:"source_id"`
	Role       FactRole   `json:"role"`
	Value      float64    `json:"value"`
	Unit       Unit       `json:"unit"`
	Confidence Confidence `json:"confidence"`
	Label      string     `json:"label,omitempty"` // Human-readable citation of the source
}

// Facts is the set of inputs resolved for one claim.
type Facts []Fact

// Role returns the fact filling the given role, if resolved.
func (f Facts) Role(r FactRole) (Fact, bool) {
	for _, fact := range f {
		if fact.Role == r {
			return fact, true
		}
	}
	return Fact{}, false
}

// Has reports whether a fact fills the given role.
func (f Facts) Has(r FactRole) bool {
	_, ok := f.Role(r)
	return ok
}
