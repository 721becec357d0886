package ledger

import (
	"strings"
	"sync"
	"time"

	"ustad/internal/logging"
)

// CompletionState tracks whether a reasoning session is finished.
type CompletionState int32

const (
	StateActive CompletionState = iota
	StateComplete
)

func (s CompletionState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Graph is the append-only thought ledger for one session.
//
// Ids are assigned sequentially at acceptance, starting at 1. Revision and
// branch edges may only point backwards at already-accepted thoughts.
// Acceptance is atomic: a rejected request changes nothing.
type Graph struct {
	mu sync.RWMutex

	thoughts []Record
	branches map[string][]int // branch id -> thought ids in submission order

	// currentTotal is max over all accepted TotalEstimate values. It
	// never decreases, even if a later request carries a smaller one.
	currentTotal int

	state CompletionState
}

// NewGraph creates an empty ledger.
func NewGraph() *Graph {
	return &Graph{
		branches: make(map[string][]int),
		state:    StateActive,
	}
}

// Submit validates and appends a thought. On success the returned Record
// carries the ledger-assigned id. On failure one of the package's
// validation errors is returned and the graph is unchanged.
func (g *Graph) Submit(req Request) (*Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}
	if req.TotalEstimate <= 0 {
		return nil, ErrNonPositiveTotal
	}
	if req.IsRevision {
		if req.RevisesID <= 0 || !g.hasID(req.RevisesID) {
			return nil, ErrInvalidRevisionTarget
		}
	}
	if req.BranchFromID != 0 {
		if req.BranchFromID < 0 || !g.hasID(req.BranchFromID) {
			return nil, ErrInvalidBranchTarget
		}
	}

	rec := Record{
		ID:            len(g.thoughts) + 1,
		Content:       req.Content,
		CallerNumber:  req.CallerNumber,
		TotalEstimate: req.TotalEstimate,
		ContinueFlag:  req.ContinueFlag,
		IsRevision:    req.IsRevision,
		RevisesID:     req.RevisesID,
		BranchFromID:  req.BranchFromID,
		BranchID:      req.BranchID,
		NeedsMore:     req.NeedsMore,
		CreatedAt:     time.Now(),
	}

	g.thoughts = append(g.thoughts, rec)
	if req.BranchID != "" {
		g.branches[req.BranchID] = append(g.branches[req.BranchID], rec.ID)
	}
	if req.TotalEstimate > g.currentTotal {
		g.currentTotal = req.TotalEstimate
	}

	// Completion transitions both ways: a final thought closes the
	// session, a later continuing thought reopens it.
	if req.ContinueFlag {
		g.state = StateActive
	} else {
		g.state = StateComplete
	}

	logging.LedgerDebug("accepted thought id=%d caller=%d revision=%v branch=%q state=%s",
		rec.ID, rec.CallerNumber, rec.IsRevision, rec.BranchID, g.state)

	out := rec
	return &out, nil
}

// hasID reports whether an accepted thought carries the given id.
// Ids are dense and sequential, so a range check suffices.
func (g *Graph) hasID(id int) bool {
	return id >= 1 && id <= len(g.thoughts)
}

// History returns all accepted thoughts in append order.
func (g *Graph) History() []Record {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Record, len(g.thoughts))
	copy(out, g.thoughts)
	return out
}

// Branch returns the thoughts of one branch in submission order.
// Unknown branch ids yield an empty slice.
func (g *Graph) Branch(branchID string) []Record {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := g.branches[branchID]
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.thoughts[id-1])
	}
	return out
}

// BranchIDs returns the ids of all branches seen so far.
func (g *Graph) BranchIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.branches))
	for id := range g.branches {
		out = append(out, id)
	}
	return out
}

// IsComplete reports whether the most recent accepted thought closed the
// session. Pure query; never blocks on in-flight submissions.
func (g *Graph) IsComplete() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == StateComplete
}

// Summary returns the current ledger overview.
func (g *Graph) Summary() Summary {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Summary{
		TotalThoughts:        len(g.thoughts),
		BranchCount:          len(g.branches),
		CurrentTotalEstimate: g.currentTotal,
		IsComplete:           g.state == StateComplete,
	}
	if n := len(g.thoughts); n > 0 {
		last := g.thoughts[n-1]
		s.LastThought = &last
	}
	return s
}

// Reset discards all state, returning the graph to its initial form.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.thoughts = nil
	g.branches = make(map[string][]int)
	g.currentTotal = 0
	g.state = StateActive

	logging.Ledger("ledger reset")
}
