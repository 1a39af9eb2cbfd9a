// Package formula implements the costing strategies claims are routed
// to. Every strategy is pure: identical inputs always produce the
// identical outcome, and no strategy invents a number that is not in
// the claim, in a resolved fact, or named as a statutory constant in
// the expression it emits.
package formula

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hradek/fiskal/internal/model"
)

// Formula names. These are stable identifiers: reports and the gap
// log carry them verbatim.
const (
	NameSimpleAddition      = "simple_addition"
	NamePerCapita           = "per_capita_multiplication"
	NameRateApplication     = "rate_application"
	NamePensionValorization = "pension_valorization"
	NameTaxRateChange       = "tax_rate_change"
	NameDebtToGDP           = "debt_to_gdp"
)

// Outcome is what a formula computed, before run-level assembly adds
// claim identity and confidence.
type Outcome struct {
	CostCZK    float64
	Expression string
	Inputs     []model.InputValue
	SourceIDs  []string // ids of the facts actually consumed
}

// Formula turns a claim and its resolved facts into a cost.
type Formula interface {
	Name() string
	Confidence() model.Confidence
	RequiredInputs() []model.FactRole
	Compute(claim model.Claim, facts model.Facts) (*Outcome, error)
}

// MissingInputError signals that a routed formula lacked a required
// input. The calculation engine turns it into a missing_data gap
// rather than guessing a value.
type MissingInputError struct {
	Input string // fact role or claim field that was absent
}

func (e *MissingInputError) Error() string {
	return "missing data: " + e.Input
}

// Registry holds the known formulas by name.
type Registry struct {
	formulas map[string]Formula
}

// NewRegistry returns a registry loaded with the built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{formulas: make(map[string]Formula)}
	for _, f := range []Formula{
		SimpleAddition{},
		PerCapitaMultiplication{},
		RateApplication{},
		PensionValorization{},
		TaxRateChange{},
		DebtToGDP{},
	} {
		if err := r.Register(f); err != nil {
			panic("builtin formula registration: " + err.Error())
		}
	}
	return r
}

// Register adds a formula. Duplicate names are rejected.
func (r *Registry) Register(f Formula) error {
	name := f.Name()
	if name == "" {
		return fmt.Errorf("formula with empty name")
	}
	if _, dup := r.formulas[name]; dup {
		return fmt.Errorf("formula %q already registered", name)
	}
	r.formulas[name] = f
	return nil
}

// Get returns the named formula.
func (r *Registry) Get(name string) (Formula, bool) {
	f, ok := r.formulas[name]
	return f, ok
}

// Names returns the registered formula names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formulas))
	for name := range r.formulas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatCZK renders an amount with space-grouped thousands, the Czech
// convention ("57 500 000").
func FormatCZK(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func factInput(name string, f model.Fact) model.InputValue {
	return model.InputValue{Name: name, Value: f.Value, SourceID: f.SourceID}
}

func claimInput(name string, v float64) model.InputValue {
	return model.InputValue{Name: name, Value: v}
}
