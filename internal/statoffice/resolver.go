// Package statoffice covers the Czech Statistical Office (ČSÚ) side of
// retrieval: a Resolver interface the retrieval engine falls back to when
// the local catalog has no match, and an HTTP client for the public
// dataset API.
//
// Live querying is deliberately not part of the analysis path. The stub
// resolver always reports not found and records a catalog suggestion, so
// misses surface as reviewable gaps instead of unvetted numbers.
package statoffice

import (
	"context"

	"go.uber.org/zap"

	"github.com/hradek/fiskal/internal/model"
)

// Resolver looks up a dataset for a claim the catalog could not serve.
// A nil entry with a nil error means not found.
type Resolver interface {
	Search(ctx context.Context, keywords []string, claimText string) (*model.CatalogEntry, error)
}

// SuggestionSink receives catalog suggestions for unresolved lookups.
type SuggestionSink interface {
	Suggest(s model.Suggestion)
}

// StubResolver is the deliberate no-op fallback. Every search misses,
// and the miss is forwarded to the suggestion sink for later curation.
type StubResolver struct {
	logger *zap.Logger
	sink   SuggestionSink
}

// NewStubResolver creates a stub resolver. The sink may be nil.
func NewStubResolver(logger *zap.Logger, sink SuggestionSink) *StubResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubResolver{logger: logger, sink: sink}
}

// Search always returns not found.
func (r *StubResolver) Search(ctx context.Context, keywords []string, claimText string) (*model.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.logger.Warn("statistics office search not wired, returning not found",
		zap.Strings("keywords", keywords))

	if r.sink != nil {
		r.sink.Suggest(model.Suggestion{
			Keywords:  keywords,
			ClaimText: claimText,
			Action:    "add dataset to catalog",
		})
	}

	return nil, nil
}
