package model

import "time"

// AnalysisReport is the complete output envelope for one run: every
// claim paired with its outcome, plus the provenance snapshot that
// downstream consumers cite from.
type AnalysisReport struct {
	RunID        string            `json:"run_id"`
	StartedAt    time.Time         `json:"started_at"`
	Proposal     string            `json:"proposal,omitempty"` // Free-text origin when the extractor was used
	Outcomes     []ClaimOutcome    `json:"outcomes"`
	Sources      map[string]string `json:"sources"`        // source_id -> human-readable label
	TotalCostCZK float64           `json:"total_cost_czk"` // Annual flows only; debt levels excluded
	LLM          *LLMNarrative     `json:"llm,omitempty"`  // Optional narrative, never feeds back into results
}

// ClaimOutcome pairs a claim with exactly one of a result or a gap.
type ClaimOutcome struct {
	Claim  Claim              `json:"claim"`
	Result *CalculationResult `json:"result,omitempty"`
	Gap    *UnsupportedClaim  `json:"gap,omitempty"`
}

// Supported counts outcomes that produced a result.
func (r *AnalysisReport) Supported() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result != nil {
			n++
		}
	}
	return n
}

// Unsupported returns the gaps in claim order.
func (r *AnalysisReport) Unsupported() []UnsupportedClaim {
	var gaps []UnsupportedClaim
	for _, o := range r.Outcomes {
		if o.Gap != nil {
			gaps = append(gaps, *o.Gap)
		}
	}
	return gaps
}

// LLMNarrative carries the optional model-written narrative of a
// finished report. It renders to a separate file and never changes
// any number in the report itself.
type LLMNarrative struct {
	Enabled       bool     `json:"enabled"`
	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
	StrictSources bool     `json:"strict_sources"` // Whether citation enforcement was on
	NarrativeMD   string   `json:"narrative_md,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}
