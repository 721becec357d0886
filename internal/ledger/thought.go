// Package ledger implements the sequential-thought ledger: an append-only
// graph of reasoning steps with revision and branch edges, validation at
// acceptance time, and completion tracking.
package ledger

import "time"

// Request is a caller-submitted reasoning step, already decoded from the
// transport layer into explicit typed fields.
type Request struct {
	// Content is the thought text. Must be non-empty after trimming.
	Content string

	// CallerNumber is the caller's own ordinal for this step. Display
	// only; the ledger assigns its own ids.
	CallerNumber int

	// TotalEstimate is the caller's current estimate of total steps.
	// Must be positive.
	TotalEstimate int

	// ContinueFlag signals more steps are coming. A false value marks
	// the session complete; a later true value reopens it.
	ContinueFlag bool

	// IsRevision marks this thought as superseding an earlier one.
	IsRevision bool

	// RevisesID names the thought being revised. Required when
	// IsRevision is set; must reference an accepted thought.
	RevisesID int

	// BranchFromID, when non-zero, forks an alternate line of thought
	// from an accepted thought.
	BranchFromID int

	// BranchID groups thoughts belonging to the same branch.
	BranchID string

	// NeedsMore signals the caller wants to extend past the estimate.
	NeedsMore bool
}

// Record is an accepted thought. Immutable once returned.
type Record struct {
	ID            int       `json:"id"`
	Content       string    `json:"thought"`
	CallerNumber  int       `json:"thoughtNumber"`
	TotalEstimate int       `json:"totalThoughts"`
	ContinueFlag  bool      `json:"nextThoughtNeeded"`
	IsRevision    bool      `json:"isRevision,omitempty"`
	RevisesID     int       `json:"revisesThought,omitempty"`
	BranchFromID  int       `json:"branchFromThought,omitempty"`
	BranchID      string    `json:"branchId,omitempty"`
	NeedsMore     bool      `json:"needsMoreThoughts,omitempty"`
	CreatedAt     time.Time `json:"timestamp"`
}

// Summary is a point-in-time view of the ledger.
type Summary struct {
	TotalThoughts        int     `json:"total_thoughts"`
	BranchCount          int     `json:"branch_count"`
	CurrentTotalEstimate int     `json:"current_total_estimate"`
	IsComplete           bool    `json:"is_complete"`
	LastThought          *Record `json:"last_thought,omitempty"`
}
