// Package core defines the value types and interfaces shared across the
// application. Implementations live in sibling packages so that the
// HTTP and CLI surfaces stay decoupled from the pipeline internals.
package core

import "context"

// NoIssuesSentinel marks an extraction stage that ran and found
// nothing, as opposed to one that has not run yet (a nil Issues slice).
const NoIssuesSentinel = "- no issues found"

// ReviewState is the per-run record threaded through the pipeline
// stages. Each run owns its own instance; fields are written once, in
// stage order, and Code is immutable input.
type ReviewState struct {
	Code     string
	Analysis string
	Issues   []string
	Report   string
}

// Reviewer runs a full staged review over a piece of source code and
// returns the populated state, or an error with no partial result.
// Implementations must be safe for concurrent use.
type Reviewer interface {
	Review(ctx context.Context, code string) (*ReviewState, error)
}
