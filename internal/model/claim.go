package model

// Claim is a single structured policy assertion taken from a party
// programme or manifesto. Claims arrive already extracted; the costing
// engine itself never parses free text.
type Claim struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`                    // Original sentence, verbatim
	Type         ClaimType `json:"claim_type"`              // Closed routing vocabulary
	Target       string    `json:"target"`                  // Entity the measure applies to (e.g., "hasiči", "DPH")
	ValueAmount  *float64  `json:"value_amount,omitempty"`  // CZK figure named by the claim, if any
	ValuePercent *float64  `json:"value_percent,omitempty"` // Percentage figure (0-100), if any
}

// ClaimType categorizes the fiscal nature of a claim
type ClaimType string

const (
	ClaimTypeSpending   ClaimType = "spending"          // Direct or per-capita expenditure
	ClaimTypeTaxChange  ClaimType = "tax_change"        // VAT or income tax rate change
	ClaimTypePension    ClaimType = "pension"           // Pension valorization measure
	ClaimTypeDebtRatio  ClaimType = "debt_ratio"        // Debt-to-GDP target
	ClaimTypePercentage ClaimType = "percentage_change" // Relative change against a base amount
	ClaimTypeGeneric    ClaimType = "generic"           // Everything else
)

// Valid reports whether t is one of the known claim types.
func (t ClaimType) Valid() bool {
	switch t {
	case ClaimTypeSpending, ClaimTypeTaxChange, ClaimTypePension,
		ClaimTypeDebtRatio, ClaimTypePercentage, ClaimTypeGeneric:
		return true
	}
	return false
}
