package domain

import "errors"

// Boundary-visible failures. Per-analyst timeouts and failures are
// absorbed into DomainAnalysis statuses and never surface as errors;
// only these two cross the API boundary.
var (
	// ErrAllAnalystsFailed means the fan-out produced zero usable
	// analyses, so there is nothing to synthesize from
	ErrAllAnalystsFailed = errors.New("all domain analysts failed")

	// ErrSynthesisFailed means the synthesis capability errored or
	// returned empty text
	ErrSynthesisFailed = errors.New("synthesis failed")
)
