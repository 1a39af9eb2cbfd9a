// Package calc routes claims to costing formulas and executes them.
// Routing is an ordered rule list over the normalized claim text and
// target: specific measures (pensions, taxes, debt) are recognized
// before the generic per-capita, rate, and direct-cost fallbacks, and
// the first matching rule wins.
package calc

import (
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hradek/fiskal/internal/formula"
	"github.com/hradek/fiskal/internal/model"
	"github.com/hradek/fiskal/internal/util"
)

// Engine picks the first matching routing rule for a claim and runs
// its formula.
type Engine struct {
	formulas *formula.Registry
	rules    []rule
	logger   *zap.Logger
}

type rule struct {
	formula string
	when    func(c *claimView, facts model.Facts) bool
}

// claimView caches the normalized claim text for predicate checks.
type claimView struct {
	claim  model.Claim
	text   string
	target string
}

// NewEngine creates a calculation engine over the given registry.
func NewEngine(formulas *formula.Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		formulas: formulas,
		logger:   logger,
		rules:    routingRules(),
	}
}

// routingRules returns the routing table in priority order. Predicates
// compare against normalized (lowercased, diacritics-stripped) text,
// so "důchodů" matches "duchod".
func routingRules() []rule {
	return []rule{
		{formula.NamePensionValorization, func(c *claimView, _ model.Facts) bool {
			return strings.Contains(c.text, "valoriz") &&
				(strings.Contains(c.target, "duchod") || strings.Contains(c.target, "pension"))
		}},
		{formula.NameTaxRateChange, func(c *claimView, _ model.Facts) bool {
			if c.claim.ValuePercent == nil {
				return false
			}
			if strings.Contains(c.target, "dph") || strings.Contains(c.target, "vat") {
				return true
			}
			return strings.Contains(c.target, "dan") &&
				(strings.Contains(c.target, "prijm") || strings.Contains(c.target, "income"))
		}},
		// No percent guard: a debt target without a ratio should be
		// reported as missing data, not as unroutable.
		{formula.NameDebtToGDP, func(c *claimView, _ model.Facts) bool {
			return strings.Contains(c.target, "dluh") && strings.Contains(c.target, "hdp")
		}},
		{formula.NamePerCapita, func(c *claimView, facts model.Facts) bool {
			return c.claim.ValueAmount != nil && facts.Has(model.RolePopulation) &&
				(strings.Contains(c.text, "kazd") ||
					strings.Contains(c.text, "per capita") ||
					strings.Contains(c.text, "pro "))
		}},
		{formula.NameRateApplication, func(c *claimView, _ model.Facts) bool {
			return c.claim.ValuePercent != nil
		}},
		{formula.NameSimpleAddition, func(c *claimView, _ model.Facts) bool {
			return c.claim.ValueAmount != nil
		}},
	}
}

// Calculate costs one claim. Exactly one of the returns is non-nil: a
// result when a formula matched and computed, a gap otherwise. The
// engine itself is pure; gap timestamps are stamped by the caller.
func (e *Engine) Calculate(claim model.Claim, facts model.Facts) (*model.CalculationResult, *model.UnsupportedClaim) {
	view := &claimView{
		claim:  claim,
		text:   util.Normalize(claim.Text),
		target: util.Normalize(claim.Target),
	}

	for _, r := range e.rules {
		if !r.when(view, facts) {
			continue
		}
		f, ok := e.formulas.Get(r.formula)
		if !ok {
			e.logger.Error("routed to unregistered formula", zap.String("formula", r.formula))
			break
		}
		return e.run(f, claim, facts)
	}

	return nil, &model.UnsupportedClaim{
		ClaimID: claim.ID,
		Text:    claim.Text,
		Reason:  model.GapNoFormula,
		Detail:  "no costing formula matched",
	}
}

func (e *Engine) run(f formula.Formula, claim model.Claim, facts model.Facts) (*model.CalculationResult, *model.UnsupportedClaim) {
	out, err := f.Compute(claim, facts)
	if err != nil {
		var missing *formula.MissingInputError
		if errors.As(err, &missing) {
			e.logger.Debug("formula missing input",
				zap.String("claim_id", claim.ID),
				zap.String("formula", f.Name()),
				zap.String("input", missing.Input))
		}
		return nil, &model.UnsupportedClaim{
			ClaimID: claim.ID,
			Text:    claim.Text,
			Reason:  model.GapMissingData,
			Detail:  err.Error(),
		}
	}

	return &model.CalculationResult{
		ClaimID:    claim.ID,
		CostCZK:    out.CostCZK,
		Formula:    f.Name(),
		Expression: out.Expression,
		Inputs:     out.Inputs,
		Confidence: f.Confidence(),
		SourceIDs:  dedupeSorted(out.SourceIDs),
	}, nil
}

// dedupeSorted returns the unique ids in sorted order. The result is
// never nil, so reports always carry a source_ids array.
func dedupeSorted(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
