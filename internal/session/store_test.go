package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ustad/internal/config"
	"ustad/internal/dialogue"
	"ustad/internal/ledger"
)

func testDialogueConfig() config.DialogueConfig {
	cfg := config.DefaultDialogueConfig()
	cfg.RoundTimeoutSeconds = 5
	return cfg
}

func TestStore_CreateAssignsDistinctIDs(t *testing.T) {
	st := NewStore(nil)
	a := st.Create()
	b := st.Create()
	if a == b {
		t.Fatalf("duplicate session ids: %s", a)
	}
	if st.Len() != 2 {
		t.Errorf("Len = %d, want 2", st.Len())
	}
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	st := NewStore(nil)
	a := st.Create()
	b := st.Create()

	if _, err := st.Submit(a, ledger.Request{
		Content: "only in a", CallerNumber: 1, TotalEstimate: 1, ContinueFlag: true,
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	histA, err := st.History(a)
	if err != nil {
		t.Fatalf("History(a): %v", err)
	}
	histB, err := st.History(b)
	if err != nil {
		t.Fatalf("History(b): %v", err)
	}
	if len(histA) != 1 || len(histB) != 0 {
		t.Errorf("histories = %d/%d, want 1/0", len(histA), len(histB))
	}
}

func TestStore_BranchAccess(t *testing.T) {
	st := NewStore(nil)
	id := st.Create()

	if _, err := st.Submit(id, ledger.Request{
		Content: "main line", CallerNumber: 1, TotalEstimate: 2, ContinueFlag: true,
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := st.Submit(id, ledger.Request{
		Content: "alternative", CallerNumber: 2, TotalEstimate: 2, ContinueFlag: true,
		BranchFromID: 1, BranchID: "alt",
	}); err != nil {
		t.Fatalf("Submit branch: %v", err)
	}

	branch, err := st.Branch(id, "alt")
	if err != nil {
		t.Fatalf("Branch: %v", err)
	}
	if len(branch) != 1 || branch[0].Content != "alternative" {
		t.Errorf("branch = %+v", branch)
	}
}

func TestStore_UnknownIDFails(t *testing.T) {
	st := NewStore(nil)
	_, err := st.Submit("nope", ledger.Request{Content: "x", TotalEstimate: 1})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
	if _, err := st.Summary("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Summary err = %v, want ErrSessionNotFound", err)
	}
}

func TestStore_ResetDestroys(t *testing.T) {
	st := NewStore(nil)
	id := st.Create()
	if err := st.Reset(id); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := st.History(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("use after reset err = %v, want ErrSessionNotFound", err)
	}
	if err := st.Reset(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double reset err = %v, want ErrSessionNotFound", err)
	}
}

func TestStore_ConcurrentSubmitsSerialize(t *testing.T) {
	st := NewStore(nil)
	id := st.Create()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := st.Submit(id, ledger.Request{
				Content:       fmt.Sprintf("thought %d", i),
				CallerNumber:  i + 1,
				TotalEstimate: n,
				ContinueFlag:  true,
			})
			if err != nil {
				t.Errorf("Submit: %v", err)
			}
		}(i)
	}
	wg.Wait()

	hist, err := st.History(id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != n {
		t.Fatalf("history = %d records, want %d", len(hist), n)
	}
	for i, rec := range hist {
		if rec.ID != i+1 {
			t.Fatalf("record %d has id %d, ids must be dense and ordered", i, rec.ID)
		}
	}
}

// stubClient satisfies the generation interface with canned text.
type stubClient struct {
	completeFunc func(ctx context.Context, system, prompt string) (string, error)
}

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.completeFunc(ctx, "", prompt)
}

func (s *stubClient) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	return s.completeFunc(ctx, system, prompt)
}

func dialogueStore() *Store {
	client := &stubClient{
		completeFunc: func(ctx context.Context, system, prompt string) (string, error) {
			return "All perspectives agree the plan is to cache results before scaling.", nil
		},
	}
	orch := dialogue.NewOrchestrator(client, nil, testDialogueConfig())
	return NewStore(orch)
}

func TestStore_RunDialogueLeavesLedgerUntouched(t *testing.T) {
	st := dialogueStore()
	id := st.Create()

	res, err := st.RunDialogue(context.Background(), id, "how should we structure the cache", "", dialogue.SelectOptions{
		Perspectives: []dialogue.Perspective{dialogue.Analytical, dialogue.Practical},
	})
	if err != nil {
		t.Fatalf("RunDialogue: %v", err)
	}
	if res.FinalText == "" {
		t.Fatal("expected a final text")
	}

	// Dialogue results live only in the returned transcript. The ledger
	// mutates through Submit alone.
	summary, err := st.Summary(id)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalThoughts != 0 {
		t.Errorf("total thoughts = %d, want 0 after a dialogue", summary.TotalThoughts)
	}
	if summary.IsComplete {
		t.Error("dialogue must not flip the ledger to complete")
	}
	if summary.CurrentTotalEstimate != 0 {
		t.Errorf("total estimate = %d, want 0", summary.CurrentTotalEstimate)
	}

	hist, err := st.History(id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("history = %d records, want empty", len(hist))
	}
}

func TestStore_RunDialogueWithoutEngine(t *testing.T) {
	st := NewStore(nil)
	id := st.Create()
	if _, err := st.RunDialogue(context.Background(), id, "anything", "", dialogue.SelectOptions{}); err == nil {
		t.Error("expected error when no dialogue engine is configured")
	}
}

func TestStore_RunDialogueUnknownSession(t *testing.T) {
	st := dialogueStore()
	_, err := st.RunDialogue(context.Background(), "ghost", "problem", "", dialogue.SelectOptions{})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
