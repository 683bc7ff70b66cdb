package services

import (
	"sync"

	"github.com/halcyonops/spoadmin/internal/core/domain"
)

// Aggregator collects per-site results in enumeration order. Recording is
// append-only; the summary is a pure fold over what has been recorded so
// far and can be read at any point during the run.
type Aggregator struct {
	mu      sync.Mutex
	results []domain.OperationResult
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends one result.
func (a *Aggregator) Record(result domain.OperationResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, result)
}

// Summary folds the recorded results into per-outcome counts.
func (a *Aggregator) Summary() domain.RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	var summary domain.RunSummary
	for _, r := range a.results {
		summary.Add(r)
	}
	return summary
}

// Results returns the recorded results in order.
func (a *Aggregator) Results() []domain.OperationResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.OperationResult, len(a.results))
	copy(out, a.results)
	return out
}
