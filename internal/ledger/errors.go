package ledger

import "errors"

// Validation errors returned by Graph.Submit. All are recoverable and
// leave the graph untouched.
var (
	// ErrEmptyContent rejects empty or whitespace-only thought text.
	ErrEmptyContent = errors.New("thought content is empty or whitespace-only")

	// ErrInvalidRevisionTarget rejects a revision whose target is
	// missing or was never accepted.
	ErrInvalidRevisionTarget = errors.New("revision target does not reference an accepted thought")

	// ErrInvalidBranchTarget rejects a branch whose fork point was
	// never accepted.
	ErrInvalidBranchTarget = errors.New("branch target does not reference an accepted thought")

	// ErrNonPositiveTotal rejects a non-positive total-steps estimate.
	ErrNonPositiveTotal = errors.New("total thought estimate must be positive")
)
