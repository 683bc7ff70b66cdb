package domain

import "errors"

// Error taxonomy for batch runs. Remote-call classification lives with the
// Microsoft connector; these cover the run-level failure modes.
var (
	// ErrConfigurationInvalid indicates missing or malformed configuration.
	// Fatal: the run aborts before any site is processed.
	ErrConfigurationInvalid = errors.New("configuration invalid")

	// ErrResourceUnreachable indicates a connection or authorisation
	// failure scoped to a single site. The site is skipped and the batch
	// continues.
	ErrResourceUnreachable = errors.New("resource unreachable")

	// ErrNoSites indicates the enumerator produced an empty working set.
	ErrNoSites = errors.New("no sites to process")
)
