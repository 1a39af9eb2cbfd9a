// Package extract decodes structured claims documents into model
// claims. The costing engine never parses free text itself; an
// upstream extraction stage (an LLM adapter or any other tool)
// produces the document this package validates.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hradek/fiskal/internal/model"
)

// MalformedClaimError rejects a claim before any retrieval happens.
// Malformed input is a caller error and never reaches the gap log.
type MalformedClaimError struct {
	Index  int
	ID     string
	Reason string
}

func (e *MalformedClaimError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("claim %q: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("claim #%d: %s", e.Index, e.Reason)
}

// legacyTypes maps the retired extraction vocabulary onto the current
// closed one. The old percent-change spending types become
// percentage_change, not spending, because they describe a relative
// change against a base.
var legacyTypes = map[string]model.ClaimType{
	"spending_increase_absolute": model.ClaimTypeSpending,
	"spending_cut_absolute":      model.ClaimTypeSpending,
	"spending_increase_percent":  model.ClaimTypePercentage,
	"spending_cut_percent":       model.ClaimTypePercentage,
	"tax_rate_increase":          model.ClaimTypeTaxChange,
	"tax_rate_decrease":          model.ClaimTypeTaxChange,
	"tax_base_change":            model.ClaimTypeTaxChange,
	"regulatory_change":          model.ClaimTypeGeneric,
	"general_policy":             model.ClaimTypeGeneric,
}

// rawClaim accepts both the current schema and the legacy flat schema
// (type / target_entity / value_czk). Legacy fields are normalized
// here so nothing downstream ever sees them.
type rawClaim struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	ClaimType    string   `json:"claim_type"`
	Target       string   `json:"target"`
	LegacyTarget string   `json:"target_entity"`
	ValueAmount  *float64 `json:"value_amount"`
	LegacyAmount *float64 `json:"value_czk"`
	ValuePercent *float64 `json:"value_percent"`
}

type rawDocument struct {
	Claims []rawClaim `json:"claims"`
}

// DecodeClaims parses a claims document: either {"claims": [...]} or a
// bare claim array, optionally wrapped in a markdown code fence.
func DecodeClaims(data []byte) ([]model.Claim, error) {
	text := []byte(StripFences(string(data)))

	var doc rawDocument
	if err := json.Unmarshal(text, &doc); err != nil || len(doc.Claims) == 0 {
		var list []rawClaim
		if listErr := json.Unmarshal(text, &list); listErr == nil && len(list) > 0 {
			doc.Claims = list
		} else if err != nil {
			return nil, fmt.Errorf("parse claims document: %w", err)
		}
	}
	if len(doc.Claims) == 0 {
		return nil, fmt.Errorf("claims document is empty")
	}

	claims := make([]model.Claim, 0, len(doc.Claims))
	seen := make(map[string]struct{}, len(doc.Claims))
	for i, raw := range doc.Claims {
		claim, err := normalizeClaim(i, raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[claim.ID]; dup {
			return nil, &MalformedClaimError{Index: i, ID: claim.ID, Reason: "duplicate id"}
		}
		seen[claim.ID] = struct{}{}
		claims = append(claims, claim)
	}
	return claims, nil
}

// DecodeClaimsFile reads and parses a claims document from disk.
func DecodeClaimsFile(path string) ([]model.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claims file: %w", err)
	}
	claims, err := DecodeClaims(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return claims, nil
}

func normalizeClaim(index int, raw rawClaim) (model.Claim, error) {
	claim := model.Claim{
		ID:           strings.TrimSpace(raw.ID),
		Text:         strings.TrimSpace(raw.Text),
		Target:       strings.TrimSpace(raw.Target),
		ValueAmount:  raw.ValueAmount,
		ValuePercent: raw.ValuePercent,
	}
	if claim.Target == "" {
		claim.Target = strings.TrimSpace(raw.LegacyTarget)
	}
	if claim.ValueAmount == nil {
		claim.ValueAmount = raw.LegacyAmount
	}

	if claim.ID == "" {
		return model.Claim{}, &MalformedClaimError{Index: index, Reason: "missing id"}
	}
	if claim.Text == "" {
		return model.Claim{}, &MalformedClaimError{Index: index, ID: claim.ID, Reason: "missing text"}
	}

	claim.Type = model.ClaimType(raw.ClaimType)
	if !claim.Type.Valid() {
		mapped, ok := legacyTypes[raw.ClaimType]
		if !ok {
			return model.Claim{}, &MalformedClaimError{
				Index: index, ID: claim.ID,
				Reason: fmt.Sprintf("unknown claim type %q", raw.ClaimType),
			}
		}
		claim.Type = mapped
	}

	if claim.ValueAmount != nil && *claim.ValueAmount < 0 {
		return model.Claim{}, &MalformedClaimError{Index: index, ID: claim.ID, Reason: "negative value_amount"}
	}
	if claim.ValuePercent != nil && (*claim.ValuePercent < 0 || *claim.ValuePercent > 100) {
		return model.Claim{}, &MalformedClaimError{Index: index, ID: claim.ID, Reason: "value_percent outside 0-100"}
	}

	return claim, nil
}

// StripFences removes a wrapping markdown code fence, which chat
// models like to add around JSON output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop the info string ("json").
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
