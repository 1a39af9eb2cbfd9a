package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hradek/fiskal/internal/formula"
	"github.com/hradek/fiskal/internal/model"
)

// Renderer writes reports to disk and the terminal.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer. The footer is a determinism notice
// at the bottom of Markdown reports; batch operators can turn it off.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the canonical JSON report.
func (r *Renderer) RenderJSON(report *model.AnalysisReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes the human-readable report.
func (r *Renderer) RenderMarkdown(report *model.AnalysisReport, path string) error {
	if err := os.WriteFile(path, []byte(r.markdown(report)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderLLMMarkdown writes pre-rendered narrative markdown.
func (r *Renderer) RenderLLMMarkdown(markdown, path string) error {
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints the run outcome to stdout.
func (r *Renderer) RenderSummary(report *model.AnalysisReport) {
	supported := report.Supported()

	fmt.Println()
	fmt.Printf("Run %s: %d claims, %d costed, %d unsupported\n",
		report.RunID, len(report.Outcomes), supported, len(report.Outcomes)-supported)
	for _, o := range report.Outcomes {
		if o.Result != nil {
			fmt.Printf("  ✓ %s: %s CZK (%s)\n",
				o.Claim.ID, formula.FormatCZK(o.Result.CostCZK), o.Result.Formula)
		} else {
			fmt.Printf("  ✗ %s: unsupported (%s)\n", o.Claim.ID, o.Gap.Reason)
		}
	}
	fmt.Printf("Total annual cost: %s CZK\n", formula.FormatCZK(report.TotalCostCZK))
	fmt.Println()
}

func (r *Renderer) markdown(report *model.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Costing report %s\n\n", report.RunID)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.StartedAt.Format(time.RFC3339))
	if report.Proposal != "" {
		fmt.Fprintf(&b, "> %s\n\n", report.Proposal)
	}

	fmt.Fprintf(&b, "**Total annual cost: %s CZK**\n\n", formula.FormatCZK(report.TotalCostCZK))

	supported := report.Supported()
	fmt.Fprintf(&b, "## Claims (%d costed, %d unsupported)\n\n",
		supported, len(report.Outcomes)-supported)
	b.WriteString("| # | Claim | Cost (CZK) | Formula | Confidence |\n")
	b.WriteString("|---|-------|-----------:|---------|------------|\n")
	for i, o := range report.Outcomes {
		if o.Result != nil {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				i+1, o.Claim.Text, formula.FormatCZK(o.Result.CostCZK),
				o.Result.Formula, o.Result.Confidence)
		} else {
			fmt.Fprintf(&b, "| %d | %s | n/a | unsupported | n/a |\n", i+1, o.Claim.Text)
		}
	}
	b.WriteString("\n")

	if supported > 0 {
		b.WriteString("## Derivations\n\n")
		for _, o := range report.Outcomes {
			if o.Result == nil {
				continue
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", o.Claim.ID, o.Result.Expression)
		}
		b.WriteString("\n")
	}

	if gaps := report.Unsupported(); len(gaps) > 0 {
		b.WriteString("## Unsupported claims\n\n")
		for _, gap := range gaps {
			fmt.Fprintf(&b, "- **%s**: %s (%s", gap.ClaimID, gap.Text, gap.Reason)
			if gap.Detail != "" {
				fmt.Fprintf(&b, ": %s", gap.Detail)
			}
			b.WriteString(")\n")
		}
		b.WriteString("\n")
	}

	if len(report.Sources) > 0 {
		b.WriteString("## Sources\n\n")
		ids := make([]string, 0, len(report.Sources))
		for id := range report.Sources {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(&b, "- `%s`: %s\n", id, report.Sources[id])
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("Deterministic costing: the same claims against the same catalog always produce this exact report.\n")
	}

	return b.String()
}
