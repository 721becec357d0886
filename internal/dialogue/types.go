package dialogue

import "fmt"

// RoundKind identifies the purpose of a dialogue round.
type RoundKind string

const (
	RoundInitial   RoundKind = "initial"
	RoundChallenge RoundKind = "challenge"
	RoundConsensus RoundKind = "consensus"
	RoundSynthesis RoundKind = "synthesis"
)

// Statement is one perspective's contribution to one round.
type Statement struct {
	Role  Perspective `json:"perspective"`
	Round int         `json:"round"`
	Text  string      `json:"content"`

	// RespondsTo lists the roles this statement reacts to, split into
	// pattern-tagged agreement and disagreement. Tagging is lexical,
	// not semantic.
	RespondsTo    []Perspective `json:"responds_to,omitempty"`
	AgreesWith    []Perspective `json:"agrees_with,omitempty"`
	DisagreesWith []Perspective `json:"disagrees_with,omitempty"`

	// Failed marks a placeholder inserted for an unavailable
	// perspective whose generation call failed or timed out.
	Failed bool `json:"failed,omitempty"`
}

// Round is the transcript of one executed round.
type Round struct {
	Number     int         `json:"round"`
	Kind       RoundKind   `json:"type"`
	Statements []Statement `json:"interactions"`
}

// ConsensusRecord holds the synthesized consensus draft.
type ConsensusRecord struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Excluded   []Perspective `json:"excluded_perspectives,omitempty"`
}

// Result is the outcome of a completed dialogue.
type Result struct {
	Problem        string        `json:"problem"`
	FinalText      string        `json:"final_synthesis"`
	Confidence     float64       `json:"confidence"`
	Rounds         []Round       `json:"rounds"`
	Perspectives   []Perspective `json:"perspectives_used"`
	RoundsExecuted int           `json:"rounds_executed"`
	Excluded       []Perspective `json:"excluded_perspectives,omitempty"`

	// Converged is set when the consensus round met the convergence
	// threshold and the synthesis round was skipped.
	Converged bool `json:"converged,omitempty"`

	// Skipped is set for Simple-tier problems where the dialogue was
	// bypassed without any generation call.
	Skipped bool `json:"skipped,omitempty"`
}

// Complexity tiers for the selector.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityResearch Complexity = "research"
	ComplexityComplex  Complexity = "complex"
	ComplexityBuild    Complexity = "build"
)

// Classifier decides a problem's complexity tier. It is an external
// collaborator; the selector only consumes its output.
type Classifier interface {
	Classify(problem, context string) Complexity
}

// FailureReason categorizes an aborted dialogue.
type FailureReason string

const (
	ReasonMajorityFailed FailureReason = "majority_perspectives_failed"
	ReasonTimeout        FailureReason = "timeout"
)

// DialogueError aborts a dialogue and carries the partial transcript
// collected so far for diagnostics.
type DialogueError struct {
	Reason     FailureReason
	Round      int
	Transcript []Round
}

func (e *DialogueError) Error() string {
	return fmt.Sprintf("dialogue aborted in round %d: %s", e.Round, e.Reason)
}
