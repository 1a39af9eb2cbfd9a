// Package retrieval resolves the statistical facts a claim needs before
// it can be priced. Resolution is catalog-first with an optional
// statistics-office fallback, and every fact that reaches a formula
// carries the dataset it came from.
package retrieval

import (
	"context"
	"errors"
	"unicode"

	"go.uber.org/zap"

	"github.com/hradek/fiskal/internal/catalog"
	"github.com/hradek/fiskal/internal/model"
	"github.com/hradek/fiskal/internal/source"
	"github.com/hradek/fiskal/internal/statoffice"
	"github.com/hradek/fiskal/internal/util"
)

const maxFallbackKeywords = 5

// requirement is one data need implied by a claim type. Intrinsic
// quantities (GDP, the pension statistics) resolve by catalog id;
// claim-dependent ones (the affected group, the budget being changed)
// resolve by keyword match constrained to a unit.
type requirement struct {
	role      model.FactRole
	catalogID string
	unit      model.Unit
}

func requirementsFor(t model.ClaimType) []requirement {
	switch t {
	case model.ClaimTypeTaxChange, model.ClaimTypeDebtRatio:
		return []requirement{
			{role: model.RoleGDP, catalogID: "gdp_nominal", unit: model.UnitCZK},
		}
	case model.ClaimTypePension:
		return []requirement{
			{role: model.RoleInflation, catalogID: "inflation", unit: model.UnitPercent},
			{role: model.RoleRealWageGrowth, catalogID: "real_wage_growth", unit: model.UnitPercent},
			{role: model.RoleAvgPension, catalogID: "avg_pension", unit: model.UnitCZK},
			{role: model.RolePensionerCount, catalogID: "pop_pensioners", unit: model.UnitPersons},
		}
	default:
		// Spending, percentage and generic claims depend on what the
		// claim talks about. Both lookups are best-effort.
		return []requirement{
			{role: model.RolePopulation, unit: model.UnitPersons},
			{role: model.RoleBaseAmount, unit: model.UnitCZK},
		}
	}
}

// Engine resolves claims against the catalog and the fallback resolver,
// recording provenance for every fact it hands out. Unresolved
// requirements are not errors; formula selection downstream decides
// what a missing fact means.
type Engine struct {
	catalog  *catalog.Catalog
	fallback statoffice.Resolver
	sources  *source.Registry
	logger   *zap.Logger
}

// NewEngine creates a retrieval engine. fallback may be nil to disable
// the statistics-office lookup entirely.
func NewEngine(cat *catalog.Catalog, fallback statoffice.Resolver, sources *source.Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:  cat,
		fallback: fallback,
		sources:  sources,
		logger:   logger,
	}
}

// Resolve gathers the facts claim needs. The only error it returns is
// context cancellation; everything else degrades to missing facts.
func (e *Engine) Resolve(ctx context.Context, claim model.Claim) (model.Facts, error) {
	reqs := requirementsFor(claim.Type)
	facts := make(model.Facts, 0, len(reqs))
	matchText := claim.Target + " " + claim.Text

	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, confidence, found, err := e.resolveOne(ctx, req, claim, matchText)
		if err != nil {
			return nil, err
		}
		if !found {
			e.logger.Debug("requirement unresolved",
				zap.String("claim_id", claim.ID),
				zap.String("role", string(req.role)))
			continue
		}

		e.register(entry)
		facts = append(facts, model.Fact{
			SourceID:   entry.SourceID(),
			Role:       req.role,
			Value:      entry.Value,
			Unit:       entry.Unit,
			Confidence: confidence,
			Label:      entry.SourceLabel(),
		})
	}

	return facts, nil
}

// resolveOne follows the catalog-then-fallback order for a single
// requirement. Fallback entries come from an unvetted source, so they
// must match the expected unit and are graded medium.
func (e *Engine) resolveOne(ctx context.Context, req requirement, claim model.Claim, matchText string) (model.CatalogEntry, model.Confidence, bool, error) {
	var keywords []string
	if req.catalogID != "" {
		if entry, ok := e.catalog.Get(req.catalogID); ok {
			return entry, model.ConfidenceHigh, true, nil
		}
		keywords = []string{req.catalogID}
	} else {
		if entry, ok := e.catalog.MatchUnit(matchText, req.unit); ok {
			return entry, model.ConfidenceHigh, true, nil
		}
		keywords = fallbackKeywords(claim)
	}

	if e.fallback == nil {
		return model.CatalogEntry{}, "", false, nil
	}

	entry, err := e.fallback.Search(ctx, keywords, claim.Text)
	if err != nil {
		if ctx.Err() != nil {
			return model.CatalogEntry{}, "", false, ctx.Err()
		}
		e.logger.Warn("fallback search failed",
			zap.String("claim_id", claim.ID),
			zap.Error(err))
		return model.CatalogEntry{}, "", false, nil
	}
	if entry == nil {
		return model.CatalogEntry{}, "", false, nil
	}
	if entry.Unit != req.unit {
		e.logger.Debug("fallback entry unit mismatch",
			zap.String("dataset", entry.ID),
			zap.String("got", string(entry.Unit)),
			zap.String("want", string(req.unit)))
		return model.CatalogEntry{}, "", false, nil
	}

	return *entry, model.ConfidenceMedium, true, nil
}

func (e *Engine) register(entry model.CatalogEntry) {
	err := e.sources.Register(entry.SourceID(), entry.SourceLabel())
	if err == nil {
		return
	}

	var conflict *source.ConflictError
	if errors.As(err, &conflict) {
		// First label wins within a run.
		e.logger.Debug("source label conflict",
			zap.String("source_id", conflict.ID),
			zap.String("kept", conflict.Existing),
			zap.String("dropped", conflict.Attempted))
		return
	}
	e.logger.Warn("register source", zap.Error(err))
}

// fallbackKeywords derives search terms from the claim, target words
// first so the most specific ones survive the cap. Short and purely
// numeric tokens carry no dataset signal and are skipped.
func fallbackKeywords(claim model.Claim) []string {
	tokens := util.Tokens(claim.Target + " " + claim.Text)
	keywords := make([]string, 0, maxFallbackKeywords)
	seen := make(map[string]bool, maxFallbackKeywords)
	for _, tok := range tokens {
		if len(tok) <= 3 || seen[tok] || !hasLetter(tok) {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
		if len(keywords) == maxFallbackKeywords {
			break
		}
	}
	return keywords
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
