// Package session keys independent reasoning sessions by opaque id.
// Each session owns one thought graph; mutations within a session are
// serialized, sessions never share state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ustad/internal/dialogue"
	"ustad/internal/ledger"
	"ustad/internal/logging"
)

// ErrSessionNotFound is returned for ids that were never created or
// have been reset.
var ErrSessionNotFound = errors.New("session not found")

// Session holds the per-conversation state: the thought graph and the
// mutex that serializes its mutations with dialogue runs.
type Session struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	graph      *ledger.Graph
	lastActive time.Time
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// Store is the session registry. Lookup is read-locked; create and
// reset take the write lock. Work inside a session holds only that
// session's mutex, so sessions proceed independently.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	orch *dialogue.Orchestrator
}

// NewStore builds an empty registry. The orchestrator may be nil for
// ledger-only deployments; RunDialogue then fails cleanly.
func NewStore(orch *dialogue.Orchestrator) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		orch:     orch,
	}
}

// Create registers a new session and returns its id.
func (st *Store) Create() string {
	s := &Session{
		id:         uuid.NewString(),
		createdAt:  time.Now(),
		lastActive: time.Now(),
		graph:      ledger.NewGraph(),
	}

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()

	logging.Session("created session %s", s.id)
	return s.id
}

// get resolves an id or fails with ErrSessionNotFound.
func (st *Store) get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Submit appends one thought to a session's graph.
func (st *Store) Submit(id string, req ledger.Request) (*ledger.Record, error) {
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return s.graph.Submit(req)
}

// Summary returns the session's ledger summary.
func (st *Store) Summary(id string) (ledger.Summary, error) {
	s, err := st.get(id)
	if err != nil {
		return ledger.Summary{}, err
	}
	return s.graph.Summary(), nil
}

// History returns the session's full thought history in submission
// order.
func (st *Store) History(id string) ([]ledger.Record, error) {
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}
	return s.graph.History(), nil
}

// Branch returns the thoughts recorded under one branch id.
func (st *Store) Branch(id, branchID string) ([]ledger.Record, error) {
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}
	return s.graph.Branch(branchID), nil
}

// RunDialogue executes a dialogue inside the session, serialized with
// the session's ledger mutations. The dialogue state is discarded after
// the result is returned; the ledger is never touched, thoughts only
// enter it through Submit.
func (st *Store) RunDialogue(ctx context.Context, id, problem, probContext string, opts dialogue.SelectOptions) (*dialogue.Result, error) {
	if st.orch == nil {
		return nil, errors.New("dialogue engine not configured")
	}
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	return st.orch.Run(ctx, problem, probContext, opts)
}

// Reset destroys a session. It is the only way session state goes away;
// subsequent calls with the same id fail with ErrSessionNotFound.
func (st *Store) Reset(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(st.sessions, id)
	logging.Session("reset session %s", id)
	return nil
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
