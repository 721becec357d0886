package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ustad/internal/dialogue"
	"ustad/internal/ledger"
)

type toolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

func toolDefinitions() []toolDefinition {
	return []toolDefinition{
		{
			Name:        "ustad_think",
			Description: "Run a multi-perspective collaborative dialogue on a problem and return the synthesized answer.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"problem": {"type": "string", "description": "The problem to reason about"},
					"context": {"type": "string", "description": "Optional background context"},
					"perspectives": {"type": "array", "items": {"type": "string"}, "description": "Explicit perspective names; overrides automatic selection"},
					"rounds": {"type": "integer", "description": "Round count override (1-4)"},
					"complexity": {"type": "string", "enum": ["simple", "research", "complex", "build"], "description": "Complexity tier override; bypasses classification"},
					"session_id": {"type": "string", "description": "Session to attach the outcome to"}
				},
				"required": ["problem"]
			}`),
		},
		{
			Name:        "ustad_quick",
			Description: "Fast single-round take from three core perspectives.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"problem": {"type": "string"},
					"session_id": {"type": "string"}
				},
				"required": ["problem"]
			}`),
		},
		{
			Name:        "ustad_decide",
			Description: "Decision analysis: evaluate named options against each other through a full dialogue.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"problem": {"type": "string", "description": "The decision to make"},
					"options": {"type": "array", "items": {"type": "string"}, "description": "The options to evaluate; at least two"},
					"context": {"type": "string", "description": "Constraints and background"},
					"session_id": {"type": "string"}
				},
				"required": ["problem", "options"]
			}`),
		},
		{
			Name:        "submit_thought",
			Description: "Append one thought to the session's sequential thinking ledger.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"thought": {"type": "string", "description": "The thought content"},
					"thoughtNumber": {"type": "integer", "description": "Caller-side sequence number"},
					"totalThoughts": {"type": "integer", "description": "Current estimate of total thoughts"},
					"nextThoughtNeeded": {"type": "boolean", "description": "False marks the session complete"},
					"isRevision": {"type": "boolean"},
					"revisesThought": {"type": "integer"},
					"branchFromThought": {"type": "integer"},
					"branchId": {"type": "string"},
					"needsMoreThoughts": {"type": "boolean"},
					"sessionId": {"type": "string"}
				},
				"required": ["thought", "thoughtNumber", "totalThoughts", "nextThoughtNeeded"]
			}`),
		},
		{
			Name:        "get_summary",
			Description: "Summarize the session's ledger: counts, branches, completion state, last thought.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {"sessionId": {"type": "string"}}
			}`),
		},
		{
			Name:        "get_thought_history",
			Description: "Return the session's full thought history in submission order.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {"sessionId": {"type": "string"}}
			}`),
		},
		{
			Name:        "reset_session",
			Description: "Destroy a session and all its recorded thoughts.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {"sessionId": {"type": "string"}}
			}`),
		},
	}
}

type toolHandler func(ctx context.Context, args json.RawMessage) (string, error)

func (s *Server) toolHandler(name string) (toolHandler, bool) {
	switch name {
	case "ustad_think":
		return s.handleThink, true
	case "ustad_quick":
		return s.handleQuick, true
	case "ustad_decide":
		return s.handleDecide, true
	case "submit_thought":
		return s.handleSubmitThought, true
	case "get_summary":
		return s.handleGetSummary, true
	case "get_thought_history":
		return s.handleGetHistory, true
	case "reset_session":
		return s.handleResetSession, true
	default:
		return nil, false
	}
}

type thinkArgs struct {
	Problem      string   `json:"problem"`
	Context      string   `json:"context"`
	Perspectives []string `json:"perspectives"`
	Rounds       int      `json:"rounds"`
	Complexity   string   `json:"complexity"`
	SessionID    string   `json:"session_id"`
}

func (s *Server) handleThink(ctx context.Context, raw json.RawMessage) (string, error) {
	var args thinkArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.Problem) == "" {
		return "", fmt.Errorf("problem is required")
	}

	opts := dialogue.SelectOptions{RoundOverride: args.Rounds}
	if args.Complexity != "" {
		tier, ok := parseComplexity(args.Complexity)
		if !ok {
			return "", fmt.Errorf("unknown complexity tier: %s", args.Complexity)
		}
		opts.ComplexityOverride = tier
	}
	for _, name := range args.Perspectives {
		p, ok := dialogue.ParsePerspective(name)
		if !ok {
			return "", fmt.Errorf("unknown perspective: %s", name)
		}
		opts.Perspectives = append(opts.Perspectives, p)
	}

	id := s.resolveSession(args.SessionID)
	res, err := s.store.RunDialogue(ctx, id, args.Problem, args.Context, opts)
	if err != nil {
		return "", err
	}
	return marshalResult(map[string]any{
		"session_id": id,
		"result":     res,
	})
}

type quickArgs struct {
	Problem   string `json:"problem"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleQuick(ctx context.Context, raw json.RawMessage) (string, error) {
	var args quickArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.Problem) == "" {
		return "", fmt.Errorf("problem is required")
	}

	id := s.resolveSession(args.SessionID)
	res, err := s.store.RunDialogue(ctx, id, args.Problem, "", dialogue.SelectOptions{
		Perspectives: []dialogue.Perspective{
			dialogue.Analytical, dialogue.Practical, dialogue.Critical,
		},
		RoundOverride: 1,
	})
	if err != nil {
		return "", err
	}
	return marshalResult(map[string]any{
		"session_id": id,
		"result":     res,
	})
}

type decideArgs struct {
	Problem   string   `json:"problem"`
	Options   []string `json:"options"`
	Context   string   `json:"context"`
	SessionID string   `json:"session_id"`
}

func (s *Server) handleDecide(ctx context.Context, raw json.RawMessage) (string, error) {
	var args decideArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.Problem) == "" {
		return "", fmt.Errorf("problem is required")
	}
	options := make([]string, 0, len(args.Options))
	for _, o := range args.Options {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	if len(options) < 2 {
		return "", fmt.Errorf("at least two options are required")
	}

	problem := fmt.Sprintf("Decision needed: %s\n\nOptions to evaluate: %s",
		args.Problem, strings.Join(options, ", "))
	probContext := "Evaluate each option with its pros and cons before committing to one."
	if args.Context != "" {
		probContext = args.Context + "\n\n" + probContext
	}

	id := s.resolveSession(args.SessionID)
	res, err := s.store.RunDialogue(ctx, id, problem, probContext, dialogue.SelectOptions{
		ComplexityOverride: dialogue.ComplexityComplex,
	})
	if err != nil {
		return "", err
	}
	return marshalResult(map[string]any{
		"session_id": id,
		"options":    options,
		"result":     res,
	})
}

// submitThoughtArgs mirrors the sequential-thinking wire format.
type submitThoughtArgs struct {
	Thought           string `json:"thought"`
	ThoughtNumber     int    `json:"thoughtNumber"`
	TotalThoughts     int    `json:"totalThoughts"`
	NextThoughtNeeded bool   `json:"nextThoughtNeeded"`
	IsRevision        bool   `json:"isRevision"`
	RevisesThought    int    `json:"revisesThought"`
	BranchFromThought int    `json:"branchFromThought"`
	BranchID          string `json:"branchId"`
	NeedsMoreThoughts bool   `json:"needsMoreThoughts"`
	SessionID         string `json:"sessionId"`
}

func (s *Server) handleSubmitThought(_ context.Context, raw json.RawMessage) (string, error) {
	var args submitThoughtArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	id := s.resolveSession(args.SessionID)
	rec, err := s.store.Submit(id, ledger.Request{
		Content:       args.Thought,
		CallerNumber:  args.ThoughtNumber,
		TotalEstimate: args.TotalThoughts,
		ContinueFlag:  args.NextThoughtNeeded,
		IsRevision:    args.IsRevision,
		RevisesID:     args.RevisesThought,
		BranchFromID:  args.BranchFromThought,
		BranchID:      args.BranchID,
		NeedsMore:     args.NeedsMoreThoughts,
	})
	if err != nil {
		return "", err
	}

	summary, err := s.store.Summary(id)
	if err != nil {
		return "", err
	}
	return marshalResult(map[string]any{
		"sessionId":         id,
		"thoughtId":         rec.ID,
		"totalThoughts":     summary.CurrentTotalEstimate,
		"thoughtCount":      summary.TotalThoughts,
		"nextThoughtNeeded": !summary.IsComplete,
	})
}

type sessionArgs struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleGetSummary(_ context.Context, raw json.RawMessage) (string, error) {
	var args sessionArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	id := s.resolveSession(args.SessionID)
	summary, err := s.store.Summary(id)
	if err != nil {
		return "", err
	}
	return marshalResult(map[string]any{
		"sessionId": id,
		"summary":   summary,
	})
}

func (s *Server) handleGetHistory(_ context.Context, raw json.RawMessage) (string, error) {
	var args sessionArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	id := s.resolveSession(args.SessionID)
	history, err := s.store.History(id)
	if err != nil {
		return "", err
	}
	return marshalResult(map[string]any{
		"sessionId": id,
		"thoughts":  history,
	})
}

func (s *Server) handleResetSession(_ context.Context, raw json.RawMessage) (string, error) {
	var args sessionArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	id := s.resolveSession(args.SessionID)
	if err := s.store.Reset(id); err != nil {
		return "", err
	}
	s.forgetDefault(id)
	return marshalResult(map[string]any{
		"sessionId": id,
		"status":    "reset",
	})
}

func parseComplexity(name string) (dialogue.Complexity, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "simple":
		return dialogue.ComplexitySimple, true
	case "research":
		return dialogue.ComplexityResearch, true
	case "complex":
		return dialogue.ComplexityComplex, true
	case "build":
		return dialogue.ComplexityBuild, true
	default:
		return "", false
	}
}

func marshalResult(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}
