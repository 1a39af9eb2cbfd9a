package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hradek/fiskal/internal/extract"
	"github.com/hradek/fiskal/internal/model"
)

const extractSystem = "You are an extraction engine for Czech fiscal policy claims. You output only JSON, never prose."

// Extractor turns a free-text proposal into structured claims using a
// language model. Extraction is best-effort: an unparseable reply
// degrades to a single generic claim instead of failing the run.
type Extractor struct {
	provider Provider
	config   Config
	logger   *zap.Logger
}

// NewExtractor creates a claim extractor. Returns nil when no provider
// is configured, which callers treat as "extraction unavailable".
func NewExtractor(provider Provider, config Config, logger *zap.Logger) *Extractor {
	if provider == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{provider: provider, config: config, logger: logger}
}

// Extract asks the model for structured claims covering the proposal.
func (e *Extractor) Extract(ctx context.Context, proposal string) ([]model.Claim, error) {
	proposal = strings.TrimSpace(proposal)
	if proposal == "" {
		return nil, fmt.Errorf("proposal text is empty")
	}

	resp, err := e.provider.Complete(ctx, CompletionRequest{
		System:      extractSystem,
		Prompt:      buildExtractPrompt(proposal),
		MaxTokens:   e.config.MaxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("claim extraction: %w", err)
	}

	claims, err := extract.DecodeClaims([]byte(resp.Text))
	if err != nil {
		// A reply we cannot parse still gets costed, as one generic claim.
		e.logger.Warn("model reply not parseable as claims, degrading to generic claim",
			zap.String("provider", e.provider.Name()),
			zap.Error(err))
		return []model.Claim{{
			ID:   "c1",
			Text: proposal,
			Type: model.ClaimTypeGeneric,
		}}, nil
	}

	e.logger.Debug("claims extracted",
		zap.String("provider", e.provider.Name()),
		zap.Int("claims", len(claims)),
		zap.Int("tokens", resp.TokensUsed))

	return claims, nil
}

// buildExtractPrompt pins the reply to the claims JSON schema.
func buildExtractPrompt(proposal string) string {
	return fmt.Sprintf(`Extract every costable fiscal claim from the Czech policy proposal below.

Reply with ONLY a JSON document of this exact shape:
{"claims": [{"id": "c1", "text": "<verbatim sentence>", "claim_type": "<type>", "target": "<entity>", "value_amount": 5000, "value_percent": 10}]}

Rules:
- claim_type must be one of: spending, tax_change, pension, debt_ratio, percentage_change, generic.
- text carries the original sentence verbatim, in Czech.
- target names the entity the measure applies to (e.g. "hasiči", "DPH", "důchody").
- value_amount is the CZK figure named by the claim; omit it when the claim names none.
- value_percent is the percentage figure (0-100); omit it when the claim names none.
- Number ids c1, c2, ... in reading order.
- Skip sentences that make no costable assertion; if nothing remains, return {"claims": []}.

Proposal:
%s`, proposal)
}
