package ledger

import (
	"errors"
	"testing"
)

func validRequest(content string) Request {
	return Request{
		Content:       content,
		CallerNumber:  1,
		TotalEstimate: 5,
		ContinueFlag:  true,
	}
}

func TestGraph_Submit_AppendsExactlyOne(t *testing.T) {
	g := NewGraph()

	rec, err := g.Submit(validRequest("first step"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if rec.ID != 1 {
		t.Errorf("Expected id 1, got %d", rec.ID)
	}
	if got := len(g.History()); got != 1 {
		t.Fatalf("Expected history length 1, got %d", got)
	}

	before := g.History()[0]
	if _, err := g.Submit(validRequest("second step")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	after := g.History()
	if len(after) != 2 {
		t.Fatalf("Expected history length 2, got %d", len(after))
	}
	if after[0] != before {
		t.Error("Prior entry mutated by later submission")
	}
}

func TestGraph_Submit_EmptyContent(t *testing.T) {
	g := NewGraph()

	for _, content := range []string{"", "   ", "\t\n"} {
		_, err := g.Submit(validRequest(content))
		if !errors.Is(err, ErrEmptyContent) {
			t.Errorf("content %q: expected ErrEmptyContent, got %v", content, err)
		}
	}
	if len(g.History()) != 0 {
		t.Error("Rejected submission mutated the graph")
	}
}

func TestGraph_Submit_NonPositiveTotal(t *testing.T) {
	g := NewGraph()

	req := validRequest("step")
	req.TotalEstimate = 0
	if _, err := g.Submit(req); !errors.Is(err, ErrNonPositiveTotal) {
		t.Errorf("Expected ErrNonPositiveTotal, got %v", err)
	}

	req.TotalEstimate = -3
	if _, err := g.Submit(req); !errors.Is(err, ErrNonPositiveTotal) {
		t.Errorf("Expected ErrNonPositiveTotal, got %v", err)
	}
}

func TestGraph_Submit_RevisionTargetMustExist(t *testing.T) {
	g := NewGraph()

	// Revising thought 999 in an empty session must fail.
	req := validRequest("revising nothing")
	req.IsRevision = true
	req.RevisesID = 999
	if _, err := g.Submit(req); !errors.Is(err, ErrInvalidRevisionTarget) {
		t.Fatalf("Expected ErrInvalidRevisionTarget, got %v", err)
	}
	if len(g.History()) != 0 {
		t.Error("Rejected revision mutated the graph")
	}

	// Revision flag without a target is equally invalid.
	req = validRequest("revising nothing")
	req.IsRevision = true
	if _, err := g.Submit(req); !errors.Is(err, ErrInvalidRevisionTarget) {
		t.Errorf("Expected ErrInvalidRevisionTarget for missing target, got %v", err)
	}
}

func TestGraph_Submit_BranchTargetMustExist(t *testing.T) {
	g := NewGraph()

	req := validRequest("branching from nowhere")
	req.BranchFromID = 7
	req.BranchID = "alt"
	if _, err := g.Submit(req); !errors.Is(err, ErrInvalidBranchTarget) {
		t.Fatalf("Expected ErrInvalidBranchTarget, got %v", err)
	}
}

func TestGraph_TotalEstimateNeverDecreases(t *testing.T) {
	g := NewGraph()

	req := validRequest("first")
	req.TotalEstimate = 5
	if _, err := g.Submit(req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	req = validRequest("second")
	req.TotalEstimate = 3
	if _, err := g.Submit(req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if got := g.Summary().CurrentTotalEstimate; got != 5 {
		t.Errorf("Expected current total estimate 5, got %d", got)
	}

	req = validRequest("third")
	req.TotalEstimate = 9
	if _, err := g.Submit(req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := g.Summary().CurrentTotalEstimate; got != 9 {
		t.Errorf("Expected current total estimate 9, got %d", got)
	}
}

func TestGraph_CompletionFlipsBothWays(t *testing.T) {
	g := NewGraph()

	if g.IsComplete() {
		t.Fatal("Empty graph should not be complete")
	}

	if _, err := g.Submit(validRequest("working")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if g.IsComplete() {
		t.Error("Graph complete while ContinueFlag=true")
	}

	final := validRequest("done")
	final.ContinueFlag = false
	if _, err := g.Submit(final); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !g.IsComplete() {
		t.Error("Graph not complete after ContinueFlag=false")
	}

	// A later continuing thought reopens the session.
	if _, err := g.Submit(validRequest("actually, one more")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if g.IsComplete() {
		t.Error("Graph still complete after reopening thought")
	}
}

func TestGraph_BranchVisibleAndDistinct(t *testing.T) {
	g := NewGraph()

	if _, err := g.Submit(validRequest("main line")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	branch := validRequest("alternate approach")
	branch.BranchFromID = 1
	branch.BranchID = "alt-1"
	rec, err := g.Submit(branch)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	got := g.Branch("alt-1")
	if len(got) != 1 || got[0].ID != rec.ID {
		t.Fatalf("Expected branch alt-1 to hold id %d, got %v", rec.ID, got)
	}
	if len(g.History()) != 2 {
		t.Errorf("Branch thought missing from main history")
	}
	if s := g.Summary(); s.BranchCount != 1 {
		t.Errorf("Expected branch count 1, got %d", s.BranchCount)
	}
	if len(g.Branch("no-such-branch")) != 0 {
		t.Error("Unknown branch id should return no records")
	}
}

func TestGraph_EndToEndScenario(t *testing.T) {
	g := NewGraph()

	first, err := g.Submit(Request{
		Content:       "Breaking down the problem",
		CallerNumber:  1,
		TotalEstimate: 5,
		ContinueFlag:  true,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(g.History()) != 1 {
		t.Fatalf("Expected history length 1, got %d", len(g.History()))
	}
	if g.IsComplete() {
		t.Fatal("Session complete too early")
	}

	second, err := g.Submit(Request{
		Content:       "Refining the breakdown",
		CallerNumber:  3,
		TotalEstimate: 5,
		ContinueFlag:  true,
		IsRevision:    true,
		RevisesID:     first.ID,
	})
	if err != nil {
		t.Fatalf("Revision submit failed: %v", err)
	}
	if second.RevisesID != first.ID {
		t.Errorf("Revision lost its back-reference")
	}
	if len(g.History()) != 2 {
		t.Errorf("Expected history length 2, got %d", len(g.History()))
	}
}

func TestGraph_Reset(t *testing.T) {
	g := NewGraph()

	final := validRequest("done")
	final.ContinueFlag = false
	if _, err := g.Submit(final); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	g.Reset()

	if len(g.History()) != 0 {
		t.Error("Reset left thoughts behind")
	}
	if g.IsComplete() {
		t.Error("Reset left completion state behind")
	}
	if s := g.Summary(); s.CurrentTotalEstimate != 0 || s.LastThought != nil {
		t.Errorf("Reset left summary state behind: %+v", s)
	}
}
