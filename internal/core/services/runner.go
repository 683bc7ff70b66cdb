package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/halcyonops/spoadmin/internal/core/domain"
	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
)

// RunReport is what a completed batch hands back to the caller: every
// per-site result in enumeration order plus the folded summary.
type RunReport struct {
	Results []domain.OperationResult
	Summary domain.RunSummary
}

// runBatch drives one pipeline over the working set, strictly one site at
// a time. One site's failure never aborts the batch; the context is
// checked between sites so a cancelled run stops at a site boundary.
func runBatch(
	ctx context.Context,
	log zerolog.Logger,
	sites driven.SiteIterator,
	process func(ctx context.Context, site domain.Site) domain.OperationResult,
) (*RunReport, error) {
	agg := NewAggregator()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		site, ok := sites.Next()
		if !ok {
			break
		}

		result := process(ctx, site)
		agg.Record(result)
		logResult(log, result)
	}

	// Enumeration-time skips (dropped list rows, out-of-scope sites) are
	// part of the run record too.
	for _, skip := range sites.Skips() {
		agg.Record(skip)
		logResult(log, skip)
	}

	return &RunReport{Results: agg.Results(), Summary: agg.Summary()}, nil
}

func logResult(log zerolog.Logger, r domain.OperationResult) {
	evt := log.Info()
	if r.Outcome == domain.OutcomeFailed {
		evt = log.Error().Str("error_kind", r.ErrKind)
	}
	evt.Str("site", r.SiteURL).
		Str("action", r.Action).
		Str("outcome", string(r.Outcome)).
		Str("detail", r.Detail).
		Msg("site processed")
}
