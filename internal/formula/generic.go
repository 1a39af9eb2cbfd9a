package formula

import (
	"fmt"

	"github.com/hradek/fiskal/internal/model"
)

// SimpleAddition prices a claim that names its own total cost.
type SimpleAddition struct{}

func (SimpleAddition) Name() string                     { return NameSimpleAddition }
func (SimpleAddition) Confidence() model.Confidence     { return model.ConfidenceHigh }
func (SimpleAddition) RequiredInputs() []model.FactRole { return nil }

func (SimpleAddition) Compute(claim model.Claim, _ model.Facts) (*Outcome, error) {
	if claim.ValueAmount == nil {
		return nil, &MissingInputError{Input: "value_amount"}
	}
	amount := *claim.ValueAmount

	return &Outcome{
		CostCZK:    amount,
		Expression: fmt.Sprintf("direct cost %s CZK", FormatCZK(amount)),
		Inputs:     []model.InputValue{claimInput("amount", amount)},
	}, nil
}

// PerCapitaMultiplication prices an amount granted to every member of
// a population group.
type PerCapitaMultiplication struct{}

func (PerCapitaMultiplication) Name() string                 { return NamePerCapita }
func (PerCapitaMultiplication) Confidence() model.Confidence { return model.ConfidenceHigh }
func (PerCapitaMultiplication) RequiredInputs() []model.FactRole {
	return []model.FactRole{model.RolePopulation}
}

func (PerCapitaMultiplication) Compute(claim model.Claim, facts model.Facts) (*Outcome, error) {
	if claim.ValueAmount == nil {
		return nil, &MissingInputError{Input: "value_amount"}
	}
	population, ok := facts.Role(model.RolePopulation)
	if !ok {
		return nil, &MissingInputError{Input: string(model.RolePopulation)}
	}

	amount := *claim.ValueAmount
	cost := amount * population.Value

	return &Outcome{
		CostCZK: cost,
		Expression: fmt.Sprintf("%s persons (%s) x %s CZK",
			FormatCZK(population.Value), population.Label, FormatCZK(amount)),
		Inputs: []model.InputValue{
			factInput("population", population),
			claimInput("amount", amount),
		},
		SourceIDs: []string{population.SourceID},
	}, nil
}

// RateApplication prices a percentage change against a resolved base
// amount. Medium confidence: the base is matched by keywords, not
// named by the claim.
type RateApplication struct{}

func (RateApplication) Name() string                 { return NameRateApplication }
func (RateApplication) Confidence() model.Confidence { return model.ConfidenceMedium }
func (RateApplication) RequiredInputs() []model.FactRole {
	return []model.FactRole{model.RoleBaseAmount}
}

func (RateApplication) Compute(claim model.Claim, facts model.Facts) (*Outcome, error) {
	if claim.ValuePercent == nil {
		return nil, &MissingInputError{Input: "value_percent"}
	}
	base, ok := facts.Role(model.RoleBaseAmount)
	if !ok {
		return nil, &MissingInputError{Input: string(model.RoleBaseAmount)}
	}

	rate := *claim.ValuePercent
	cost := base.Value * rate / 100

	return &Outcome{
		CostCZK: cost,
		Expression: fmt.Sprintf("%s CZK (%s) x %.1f %%",
			FormatCZK(base.Value), base.Label, rate),
		Inputs: []model.InputValue{
			factInput("base_amount", base),
			claimInput("rate_percent", rate),
		},
		SourceIDs: []string{base.SourceID},
	}, nil
}
