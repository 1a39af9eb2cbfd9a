package formula

import (
	"fmt"
	"strings"

	"github.com/hradek/fiskal/internal/model"
	"github.com/hradek/fiskal/internal/util"
)

// Statutory tax constants. When the statute changes, these change with
// it; they are named in every expression that uses them.
const (
	vatRateCurrent       = 21.0
	incomeTaxRateCurrent = 15.0
	vatBaseShareOfGDP    = 0.50 // consumption approximated as half of GDP
	incomeBaseShareOfGDP = 0.40 // wage base approximated as two fifths of GDP
)

// PensionValorization prices the statutory indexation of old-age
// pensions: the monthly pension grows by inflation plus one third of
// real wage growth, paid twelve times a year.
type PensionValorization struct{}

func (PensionValorization) Name() string                 { return NamePensionValorization }
func (PensionValorization) Confidence() model.Confidence { return model.ConfidenceHigh }
func (PensionValorization) RequiredInputs() []model.FactRole {
	return []model.FactRole{
		model.RoleInflation,
		model.RoleRealWageGrowth,
		model.RoleAvgPension,
		model.RolePensionerCount,
	}
}

func (PensionValorization) Compute(_ model.Claim, facts model.Facts) (*Outcome, error) {
	inflation, ok := facts.Role(model.RoleInflation)
	if !ok {
		return nil, &MissingInputError{Input: string(model.RoleInflation)}
	}
	wageGrowth, ok := facts.Role(model.RoleRealWageGrowth)
	if !ok {
		return nil, &MissingInputError{Input: string(model.RoleRealWageGrowth)}
	}
	avgPension, ok := facts.Role(model.RoleAvgPension)
	if !ok {
		return nil, &MissingInputError{Input: string(model.RoleAvgPension)}
	}
	pensioners, ok := facts.Role(model.RolePensionerCount)
	if !ok {
		return nil, &MissingInputError{Input: string(model.RolePensionerCount)}
	}

	increasePct := inflation.Value + wageGrowth.Value/3
	monthlyIncrease := avgPension.Value * increasePct / 100
	cost := monthlyIncrease * pensioners.Value * 12

	return &Outcome{
		CostCZK: cost,
		Expression: fmt.Sprintf(
			"(%.1f %% inflation + 1/3 x %.1f %% wage growth) x %s CZK avg pension x %s pensioners x 12 months",
			inflation.Value, wageGrowth.Value,
			FormatCZK(avgPension.Value), FormatCZK(pensioners.Value)),
		Inputs: []model.InputValue{
			factInput("inflation_percent", inflation),
			factInput("real_wage_growth_percent", wageGrowth),
			factInput("avg_pension_czk", avgPension),
			factInput("pensioner_count", pensioners),
		},
		SourceIDs: []string{
			inflation.SourceID,
			wageGrowth.SourceID,
			avgPension.SourceID,
			pensioners.SourceID,
		},
	}, nil
}

// TaxRateChange prices moving a VAT or income tax rate. The tax base
// is estimated from GDP, which keeps the confidence medium.
type TaxRateChange struct{}

func (TaxRateChange) Name() string                 { return NameTaxRateChange }
func (TaxRateChange) Confidence() model.Confidence { return model.ConfidenceMedium }
func (TaxRateChange) RequiredInputs() []model.FactRole {
	return []model.FactRole{model.RoleGDP}
}

func (TaxRateChange) Compute(claim model.Claim, facts model.Facts) (*Outcome, error) {
	if claim.ValuePercent == nil {
		return nil, &MissingInputError{Input: "value_percent"}
	}
	gdp, ok := facts.Role(model.RoleGDP)
	if !ok {
		return nil, &MissingInputError{Input: string(model.RoleGDP)}
	}

	target := util.Normalize(claim.Target)
	newRate := *claim.ValuePercent

	var (
		base     float64
		baseName string
		oldRate  float64
	)
	switch {
	case strings.Contains(target, "dph") || strings.Contains(target, "vat"):
		base = gdp.Value * vatBaseShareOfGDP
		baseName = "VAT base, 50 % of GDP"
		oldRate = vatRateCurrent
	case strings.Contains(target, "dan") && (strings.Contains(target, "prijm") || strings.Contains(target, "income")):
		base = gdp.Value * incomeBaseShareOfGDP
		baseName = "income tax base, 40 % of GDP"
		oldRate = incomeTaxRateCurrent
	default:
		// Routed here only for tax targets; anything else has no base
		// to estimate from.
		return nil, &MissingInputError{Input: "tax_base"}
	}

	revenueDelta := base * (newRate - oldRate) / 100

	return &Outcome{
		CostCZK: revenueDelta,
		Expression: fmt.Sprintf("%s CZK (%s) x (%.1f %% - %.1f %% current rate)",
			FormatCZK(base), baseName, newRate, oldRate),
		Inputs: []model.InputValue{
			factInput("gdp_czk", gdp),
			claimInput("new_rate_percent", newRate),
			claimInput("current_rate_percent", oldRate),
		},
		SourceIDs: []string{gdp.SourceID},
	}, nil
}

// DebtToGDP translates a debt-to-GDP target into the implied debt
// level. The result is a level, not an annual flow; report totals
// exclude it.
type DebtToGDP struct{}

func (DebtToGDP) Name() string                 { return NameDebtToGDP }
func (DebtToGDP) Confidence() model.Confidence { return model.ConfidenceHigh }
func (DebtToGDP) RequiredInputs() []model.FactRole {
	return []model.FactRole{model.RoleGDP}
}

func (DebtToGDP) Compute(claim model.Claim, facts model.Facts) (*Outcome, error) {
	if claim.ValuePercent == nil {
		return nil, &MissingInputError{Input: "value_percent"}
	}
	gdp, ok := facts.Role(model.RoleGDP)
	if !ok {
		return nil, &MissingInputError{Input: string(model.RoleGDP)}
	}

	ratio := *claim.ValuePercent
	impliedDebt := gdp.Value * ratio / 100

	return &Outcome{
		CostCZK: impliedDebt,
		Expression: fmt.Sprintf("implied debt level: %s CZK GDP x %.1f %%",
			FormatCZK(gdp.Value), ratio),
		Inputs: []model.InputValue{
			factInput("gdp_czk", gdp),
			claimInput("target_ratio_percent", ratio),
		},
		SourceIDs: []string{gdp.SourceID},
	}, nil
}
