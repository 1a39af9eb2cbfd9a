package formula

import (
	"errors"
	"testing"

	"github.com/hradek/fiskal/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func fact(role model.FactRole, value float64, sourceID string) model.Fact {
	return model.Fact{
		SourceID:   sourceID,
		Role:       role,
		Value:      value,
		Unit:       model.UnitCZK,
		Confidence: model.ConfidenceHigh,
		Label:      "Test: " + sourceID,
	}
}

func TestSimpleAddition(t *testing.T) {
	claim := model.Claim{ID: "c1", ValueAmount: floatPtr(2_000_000_000)}

	out, err := SimpleAddition{}.Compute(claim, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.CostCZK != 2_000_000_000 {
		t.Errorf("Expected 2e9, got %v", out.CostCZK)
	}
	if len(out.SourceIDs) != 0 {
		t.Errorf("Expected no sources for a claim-supplied amount, got %v", out.SourceIDs)
	}
}

func TestSimpleAddition_MissingAmount(t *testing.T) {
	_, err := SimpleAddition{}.Compute(model.Claim{ID: "c1"}, nil)

	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingInputError, got %v", err)
	}
	if missing.Input != "value_amount" {
		t.Errorf("Expected value_amount, got %s", missing.Input)
	}
}

func TestPerCapitaMultiplication(t *testing.T) {
	claim := model.Claim{ID: "c1", ValueAmount: floatPtr(5000)}
	facts := model.Facts{fact(model.RolePopulation, 11_500, "csu_pop_firefighters")}

	out, err := PerCapitaMultiplication{}.Compute(claim, facts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.CostCZK != 57_500_000 {
		t.Errorf("Expected 57 500 000, got %v", out.CostCZK)
	}
	if len(out.SourceIDs) != 1 || out.SourceIDs[0] != "csu_pop_firefighters" {
		t.Errorf("Expected population source, got %v", out.SourceIDs)
	}
}

func TestPerCapitaMultiplication_MissingPopulation(t *testing.T) {
	claim := model.Claim{ID: "c1", ValueAmount: floatPtr(5000)}

	_, err := PerCapitaMultiplication{}.Compute(claim, nil)

	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingInputError, got %v", err)
	}
	if missing.Input != "population" {
		t.Errorf("Expected population, got %s", missing.Input)
	}
}

func TestRateApplication(t *testing.T) {
	claim := model.Claim{ID: "c1", ValuePercent: floatPtr(10)}
	facts := model.Facts{fact(model.RoleBaseAmount, 269_000_000_000, "csu_budget_education")}

	out, err := RateApplication{}.Compute(claim, facts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.CostCZK != 26_900_000_000 {
		t.Errorf("Expected 26.9e9, got %v", out.CostCZK)
	}
}

func TestRateApplication_MissingBase(t *testing.T) {
	claim := model.Claim{ID: "c1", ValuePercent: floatPtr(10)}

	_, err := RateApplication{}.Compute(claim, nil)

	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingInputError, got %v", err)
	}
	if missing.Input != "base_amount" {
		t.Errorf("Expected base_amount, got %s", missing.Input)
	}
	if missing.Error() != "missing data: base_amount" {
		t.Errorf("Unexpected error text: %s", missing.Error())
	}
}

func TestPensionValorization(t *testing.T) {
	facts := model.Facts{
		fact(model.RoleInflation, 3.0, "csu_inflation"),
		fact(model.RoleRealWageGrowth, 6.0, "csu_real_wage_growth"),
		fact(model.RoleAvgPension, 20_000, "csu_avg_pension"),
		fact(model.RolePensionerCount, 2_500_000, "csu_pop_pensioners"),
	}

	out, err := PensionValorization{}.Compute(model.Claim{ID: "c1"}, facts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// (3.0 + 6.0/3) = 5 % of 20 000 = 1 000 CZK/month, times
	// 2.5 million pensioners, times 12 months.
	if out.CostCZK != 30_000_000_000 {
		t.Errorf("Expected 30e9, got %v", out.CostCZK)
	}
	if len(out.SourceIDs) != 4 {
		t.Errorf("Expected 4 sources, got %v", out.SourceIDs)
	}
}

func TestPensionValorization_MissingInputNamesRole(t *testing.T) {
	facts := model.Facts{
		fact(model.RoleInflation, 3.0, "csu_inflation"),
		fact(model.RoleRealWageGrowth, 6.0, "csu_real_wage_growth"),
		fact(model.RoleAvgPension, 20_000, "csu_avg_pension"),
	}

	_, err := PensionValorization{}.Compute(model.Claim{ID: "c1"}, facts)

	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingInputError, got %v", err)
	}
	if missing.Input != "pensioner_count" {
		t.Errorf("Expected pensioner_count, got %s", missing.Input)
	}
}

func TestTaxRateChange_VAT(t *testing.T) {
	claim := model.Claim{ID: "c1", Target: "DPH", ValuePercent: floatPtr(25)}
	facts := model.Facts{fact(model.RoleGDP, 6_500_000_000_000, "csu_gdp_nominal")}

	out, err := TaxRateChange{}.Compute(claim, facts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Base 3.25e12 (half of GDP), rate delta +4 points.
	if out.CostCZK != 130_000_000_000 {
		t.Errorf("Expected 130e9, got %v", out.CostCZK)
	}
}

func TestTaxRateChange_IncomeTaxCut(t *testing.T) {
	claim := model.Claim{ID: "c1", Target: "daň z příjmu", ValuePercent: floatPtr(10)}
	facts := model.Facts{fact(model.RoleGDP, 6_500_000_000_000, "csu_gdp_nominal")}

	out, err := TaxRateChange{}.Compute(claim, facts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Base 2.6e12 (40 % of GDP), rate delta -5 points: revenue falls.
	if out.CostCZK != -130_000_000_000 {
		t.Errorf("Expected -130e9, got %v", out.CostCZK)
	}
}

func TestTaxRateChange_UnknownTargetHasNoBase(t *testing.T) {
	claim := model.Claim{ID: "c1", Target: "spotřební daň z tabáku", ValuePercent: floatPtr(30)}
	facts := model.Facts{fact(model.RoleGDP, 6_500_000_000_000, "csu_gdp_nominal")}

	_, err := TaxRateChange{}.Compute(claim, facts)

	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingInputError, got %v", err)
	}
}

func TestDebtToGDP(t *testing.T) {
	claim := model.Claim{ID: "c1", ValuePercent: floatPtr(30)}
	facts := model.Facts{fact(model.RoleGDP, 6_500_000_000_000, "csu_gdp_nominal")}

	out, err := DebtToGDP{}.Compute(claim, facts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.CostCZK != 1_950_000_000_000 {
		t.Errorf("Expected 1.95e12, got %v", out.CostCZK)
	}
}

func TestDebtToGDP_MissingGDP(t *testing.T) {
	claim := model.Claim{ID: "c1", ValuePercent: floatPtr(30)}

	_, err := DebtToGDP{}.Compute(claim, nil)

	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingInputError, got %v", err)
	}
	if missing.Input != "gdp" {
		t.Errorf("Expected gdp, got %s", missing.Input)
	}
}

func TestRegistry_BuiltinsPresent(t *testing.T) {
	r := NewRegistry()

	expected := []string{
		NameDebtToGDP,
		NamePensionValorization,
		NamePerCapita,
		NameRateApplication,
		NameSimpleAddition,
		NameTaxRateChange,
	}
	for _, name := range expected {
		if _, ok := r.Get(name); !ok {
			t.Errorf("Expected formula %s to be registered", name)
		}
	}
	if len(r.Names()) != len(expected) {
		t.Errorf("Expected %d formulas, got %v", len(expected), r.Names())
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(SimpleAddition{}); err == nil {
		t.Fatal("Expected error for duplicate formula name")
	}
}

func TestFormatCZK(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1 000"},
		{57_500_000, "57 500 000"},
		{6_500_000_000_000, "6 500 000 000 000"},
		{-130_000_000_000, "-130 000 000 000"},
	}

	for _, tt := range tests {
		if got := FormatCZK(tt.value); got != tt.expected {
			t.Errorf("FormatCZK(%v) = %q, expected %q", tt.value, got, tt.expected)
		}
	}
}
