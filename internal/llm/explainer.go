package llm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hradek/fiskal/internal/formula"
	"github.com/hradek/fiskal/internal/model"
)

const explainSystem = "You explain fiscal costings to Czech readers. Every number you mention must cite its source id in square brackets. You never invent sources or figures."

// citationPattern matches [source_id] citations in the narrative.
var citationPattern = regexp.MustCompile(`\[([A-Za-z0-9_]+)\]`)

// Explainer narrates a finished report in Markdown, citing only source
// ids registered during the run. With strict sources on, a citation
// outside the registry fails the narrative rather than shipping it.
type Explainer struct {
	provider Provider
	config   Config
	logger   *zap.Logger
}

// NewExplainer creates a narrative explainer. Returns nil when no
// provider is configured.
func NewExplainer(provider Provider, config Config, logger *zap.Logger) *Explainer {
	if provider == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Explainer{provider: provider, config: config, logger: logger}
}

// Explain produces the narrative block for a report.
func (e *Explainer) Explain(ctx context.Context, report *model.AnalysisReport) (*model.LLMNarrative, error) {
	resp, err := e.provider.Complete(ctx, CompletionRequest{
		System:      explainSystem,
		Prompt:      buildExplainPrompt(report),
		MaxTokens:   e.config.MaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("narrative: %w", err)
	}

	narrative := &model.LLMNarrative{
		Enabled:       true,
		Provider:      e.provider.Name(),
		Model:         resp.Model,
		StrictSources: e.config.StrictSources,
		NarrativeMD:   resp.Text,
	}

	for _, id := range citedSources(resp.Text) {
		if _, ok := report.Sources[id]; ok {
			continue
		}
		if e.config.StrictSources {
			return nil, fmt.Errorf("citation leak: narrative cites unknown source %q", id)
		}
		narrative.Warnings = append(narrative.Warnings,
			fmt.Sprintf("narrative cites unknown source %q", id))
	}

	e.logger.Debug("narrative generated",
		zap.String("provider", e.provider.Name()),
		zap.Int("tokens", resp.TokensUsed))

	return narrative, nil
}

// citedSources returns the deduplicated source ids cited in text, in
// order of first appearance.
func citedSources(text string) []string {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var ids []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	}
	return ids
}

// buildExplainPrompt lays out the outcomes and the source allowlist.
func buildExplainPrompt(report *model.AnalysisReport) string {
	var b strings.Builder

	b.WriteString("Write a short Markdown narrative, in Czech, explaining the costing below.\n\n")
	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("1. You may cite ONLY these source ids, always in square brackets:\n")
	for _, id := range sortedSourceIDs(report.Sources) {
		fmt.Fprintf(&b, "   - [%s] %s\n", id, report.Sources[id])
	}
	b.WriteString("2. Never cite anything outside this list.\n")
	b.WriteString("3. Describe unsupported claims as not costable; do not guess their cost.\n\n")

	fmt.Fprintf(&b, "Total annual cost: %s CZK\n\nOutcomes:\n", formula.FormatCZK(report.TotalCostCZK))
	for _, outcome := range report.Outcomes {
		if outcome.Result != nil {
			fmt.Fprintf(&b, "- %s: %s CZK via %s (%s), sources: %s\n",
				outcome.Claim.Text,
				formula.FormatCZK(outcome.Result.CostCZK),
				outcome.Result.Formula,
				outcome.Result.Expression,
				strings.Join(outcome.Result.SourceIDs, ", "))
			continue
		}
		fmt.Fprintf(&b, "- %s: unsupported (%s)\n", outcome.Claim.Text, outcome.Gap.Reason)
	}

	return b.String()
}

func sortedSourceIDs(sources map[string]string) []string {
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
