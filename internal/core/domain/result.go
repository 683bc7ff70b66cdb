package domain

// Outcome tags an OperationResult.
type Outcome string

const (
	// OutcomeSuccess means the intended action completed.
	OutcomeSuccess Outcome = "success"
	// OutcomeSkipped means the site was evaluated but no action was taken,
	// either because it was already in the desired state or because a
	// disqualifying condition was found.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means a remote call failed for this site. The failure
	// is isolated to the site; the batch continues.
	OutcomeFailed Outcome = "failed"
)

// Well-known skip reasons.
const (
	SkipAlreadyPresent       = "AlreadyPresent"
	SkipAlreadyAbsent        = "AlreadyAbsent"
	SkipMissingURL           = "MissingUrl"
	SkipPersonalSite         = "PersonalSite"
	SkipAlreadyGroupified    = "AlreadyGroupConnected"
	SkipTemplateIncompatible = "TemplateIncompatible"
	SkipPublishingBlocking   = "PublishingFeatureBlocking"
	SkipAliasInUse           = "AliasInUse"
	SkipConversionLimit      = "ConversionSkipped: LimitReached"
	SkipDryRun               = "DryRun"
)

// OperationResult records the outcome of one attempted action against one
// site. It is created exactly once per site per run and never mutated.
type OperationResult struct {
	SiteURL string
	Action  string
	Outcome Outcome
	// Detail is a human-readable success note, skip reason, or error text.
	Detail string
	// ErrKind classifies failures ("RetryExhausted", "ResourceUnreachable", ...).
	// Empty unless Outcome is OutcomeFailed.
	ErrKind string
}

// Success builds a success result.
func Success(siteURL, action, detail string) OperationResult {
	return OperationResult{SiteURL: siteURL, Action: action, Outcome: OutcomeSuccess, Detail: detail}
}

// Skipped builds a skip result.
func Skipped(siteURL, action, reason string) OperationResult {
	return OperationResult{SiteURL: siteURL, Action: action, Outcome: OutcomeSkipped, Detail: reason}
}

// Failed builds a failure result.
func Failed(siteURL, action, errKind, message string) OperationResult {
	return OperationResult{SiteURL: siteURL, Action: action, Outcome: OutcomeFailed, Detail: message, ErrKind: errKind}
}

// RunSummary is the aggregate view of a run: counts per outcome. It is a
// pure fold over the recorded results and can be computed at any point.
type RunSummary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Total returns the number of results folded into the summary.
func (s RunSummary) Total() int {
	return s.Succeeded + s.Skipped + s.Failed
}

// Add folds one result into the summary.
func (s *RunSummary) Add(r OperationResult) {
	switch r.Outcome {
	case OutcomeSuccess:
		s.Succeeded++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}
