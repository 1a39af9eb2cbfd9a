// Package pipeline wires retrieval, calculation, and the gap log into
// complete analysis runs and assembles the report.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hradek/fiskal/internal/calc"
	"github.com/hradek/fiskal/internal/catalog"
	"github.com/hradek/fiskal/internal/extract"
	"github.com/hradek/fiskal/internal/formula"
	"github.com/hradek/fiskal/internal/gaplog"
	"github.com/hradek/fiskal/internal/llm"
	"github.com/hradek/fiskal/internal/model"
	"github.com/hradek/fiskal/internal/retrieval"
	"github.com/hradek/fiskal/internal/source"
	"github.com/hradek/fiskal/internal/statoffice"
)

// Pipeline orchestrates the costing of claims documents. One pipeline
// serves many runs; per-run state (source registry, fallback sink)
// is created inside AnalyzeClaims.
type Pipeline struct {
	catalog    *catalog.Catalog
	calculator *calc.Engine
	gaps       *gaplog.Store
	extractor  *llm.Extractor // nil unless an LLM provider is configured
	explainer  *llm.Explainer // nil unless an LLM provider is configured
	config     *model.Config
	logger     *zap.Logger
}

// NewPipeline assembles a pipeline from configuration. A configured
// LLM provider that fails to initialize is logged and skipped, never
// fatal: the costing core does not need it.
func NewPipeline(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cat, err := catalog.Merged(cfg.Catalog.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	gaps, err := gaplog.Open(cfg.GapLog.Path)
	if err != nil {
		return nil, fmt.Errorf("open gap log: %w", err)
	}

	p := &Pipeline{
		catalog:    cat,
		calculator: calc.NewEngine(formula.NewRegistry(), logger.Named("calc")),
		gaps:       gaps,
		config:     cfg,
		logger:     logger,
	}

	if cfg.LLM.Provider != "" {
		llmCfg := llm.ConfigFromModel(cfg.LLM)
		provider, err := llm.NewProvider(llmCfg)
		if err != nil {
			logger.Warn("LLM provider unavailable, continuing without it", zap.Error(err))
		} else if provider != nil {
			p.extractor = llm.NewExtractor(provider, llmCfg, logger)
			p.explainer = llm.NewExplainer(provider, llmCfg, logger)
		}
	}

	return p, nil
}

// Close releases the gap log.
func (p *Pipeline) Close() error {
	return p.gaps.Close()
}

// runSink forwards catalog-miss suggestions from the fallback resolver
// into the gap log under the owning run.
type runSink struct {
	store  *gaplog.Store
	runID  string
	logger *zap.Logger
}

func (s *runSink) Suggest(sug model.Suggestion) {
	if err := s.store.Suggest(s.runID, sug); err != nil {
		s.logger.Warn("suggestion log failed", zap.Error(err))
	}
}

// AnalyzeClaims costs a batch of claims and assembles the report.
// Claims are independent: each one resolves and calculates on its own,
// and a gap on one claim never blocks a result on another.
func (p *Pipeline) AnalyzeClaims(ctx context.Context, claims []model.Claim) (*model.AnalysisReport, error) {
	if len(claims) == 0 {
		return nil, fmt.Errorf("no claims to analyze")
	}

	startedAt := time.Now().UTC()
	runID := startedAt.Format("20060102T150405Z") + "-" + uuid.New().String()[:8]

	if err := p.gaps.BeginRun(runID, startedAt); err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	sources := source.NewRegistry()

	var fallback statoffice.Resolver
	if p.config.Fallback.Enabled {
		fallback = statoffice.NewStubResolver(p.logger.Named("statoffice"), &runSink{
			store:  p.gaps,
			runID:  runID,
			logger: p.logger,
		})
	}
	engine := retrieval.NewEngine(p.catalog, fallback, sources, p.logger.Named("retrieval"))

	outcomes := make([]model.ClaimOutcome, len(claims))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.claimWorkers())
	for i, claim := range claims {
		g.Go(func() error {
			facts, err := engine.Resolve(gctx, claim)
			if err != nil {
				return err
			}
			result, gap := p.calculator.Calculate(claim, facts)
			if gap != nil {
				gap.LoggedAt = time.Now().UTC()
				if err := p.gaps.Append(runID, *gap); err != nil {
					p.logger.Warn("gap log append failed",
						zap.String("claim_id", claim.ID),
						zap.Error(err))
				}
			}
			outcomes[i] = model.ClaimOutcome{Claim: claim, Result: result, Gap: gap}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &model.AnalysisReport{
		RunID:        runID,
		StartedAt:    startedAt,
		Outcomes:     outcomes,
		Sources:      sources.Snapshot(),
		TotalCostCZK: totalAnnualCost(outcomes),
	}

	// Narrative comes last and never changes a number: a failed
	// generation degrades to a report without prose.
	if p.explainer != nil {
		narrative, err := p.explainer.Explain(ctx, report)
		if err != nil {
			p.logger.Warn("narrative generation failed", zap.Error(err))
		} else {
			report.LLM = narrative
		}
	}

	return report, nil
}

// AnalyzeFile costs a claims document read from disk.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*model.AnalysisReport, error) {
	claims, err := extract.DecodeClaimsFile(path)
	if err != nil {
		return nil, err
	}
	return p.AnalyzeClaims(ctx, claims)
}

// AnalyzeText extracts claims from a free-text proposal and costs
// them. Needs a configured LLM provider.
func (p *Pipeline) AnalyzeText(ctx context.Context, proposal string) (*model.AnalysisReport, error) {
	if p.extractor == nil {
		return nil, fmt.Errorf("free-text analysis needs an LLM provider (--llm)")
	}

	claims, err := p.extractor.Extract(ctx, proposal)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	report, err := p.AnalyzeClaims(ctx, claims)
	if err != nil {
		return nil, err
	}
	report.Proposal = proposal
	return report, nil
}

// RenderReport renders the report to the requested outputs and prints
// the stdout summary.
func (p *Pipeline) RenderReport(report *model.AnalysisReport, jsonPath, mdPath string, verbose bool) error {
	renderer := NewRenderer(p.config.Output.IncludeFooter)

	if jsonPath != "" {
		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// Narrative renders to its own file so the report proper stays
	// model-free.
	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if md := llm.RenderNarrativeMarkdown(report.LLM); md != "" {
			if err := renderer.RenderLLMMarkdown(md, llmPath); err != nil {
				fmt.Printf("Warning: Failed to write LLM narrative: %v\n", err)
			} else if verbose {
				fmt.Printf("✓ Wrote LLM Narrative: %s\n", llmPath)
			}
		}
	}

	renderer.RenderSummary(report)
	return nil
}

func (p *Pipeline) claimWorkers() int {
	if n := p.config.Concurrency.ClaimWorkers; n > 0 {
		return n
	}
	return 4
}

// totalAnnualCost sums costed outcomes. Debt-to-GDP results are
// levels, not annual flows, and stay out of the total.
func totalAnnualCost(outcomes []model.ClaimOutcome) float64 {
	var total float64
	for _, o := range outcomes {
		if o.Result == nil || o.Result.Formula == formula.NameDebtToGDP {
			continue
		}
		total += o.Result.CostCZK
	}
	return total
}
