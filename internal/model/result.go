package model

import "time"

// CalculationResult is the costed outcome for one claim. Every number
// in the derivation traces to a resolved fact or to the claim's own
// values; statutory coefficients are named in Expression, never hidden.
type CalculationResult struct {
	ClaimID    string       `json:"claim_id"`
	CostCZK    float64      `json:"cost_czk"`
	Formula    string       `json:"formula"`
	Expression string       `json:"expression"` // Human-readable derivation with inputs inlined
	Inputs     []InputValue `json:"inputs"`
	Confidence Confidence   `json:"confidence"`
	SourceIDs  []string     `json:"source_ids"` // Sorted and deduplicated; only facts actually consumed
}

// InputValue is one named numeric input a formula consumed.
type InputValue struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	SourceID string  `json:"source_id,omitempty"` // Empty when the claim or a statute supplied the number
}

// GapReason distinguishes why a claim could not be costed.
type GapReason string

const (
	GapNoFormula   GapReason = "no_formula"   // No routing rule matched
	GapMissingData GapReason = "missing_data" // A formula matched but a required input was unresolved
)

// UnsupportedClaim records a claim the engine declined to cost.
// Entries are append-only; a later run never rewrites an earlier one.
type UnsupportedClaim struct {
	ClaimID  string    `json:"claim_id"`
	Text     string    `json:"text"`
	Reason   GapReason `json:"reason"`
	Detail   string    `json:"detail,omitempty"` // Names the missing input for missing_data
	LoggedAt time.Time `json:"logged_at"`
}
