package dialogue

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"ustad/internal/config"
	"ustad/internal/llm"
	"ustad/internal/logging"
)

// placeholderText stands in for a perspective whose generation call
// failed or timed out, keeping the transcript self-describing.
const placeholderText = "perspective unavailable"

// Searcher performs one verification lookup before the first round of a
// Research-tier dialogue. A failed or absent searcher never fails the
// dialogue.
type Searcher interface {
	Lookup(ctx context.Context, query string) (string, error)
}

// Orchestrator runs the round loop: initial positions, challenge,
// consensus, and an optional synthesis. Every round is a strict barrier;
// no perspective sees a later round until all calls of the current round
// have resolved.
type Orchestrator struct {
	client     llm.Client
	searcher   Searcher
	classifier Classifier
	cfg        config.DialogueConfig
}

func NewOrchestrator(client llm.Client, searcher Searcher, cfg config.DialogueConfig) *Orchestrator {
	return &Orchestrator{
		client:     client,
		searcher:   searcher,
		classifier: KeywordClassifier{},
		cfg:        cfg,
	}
}

// WithClassifier swaps the complexity classifier. Used by callers that
// route classification through an LLM instead of keyword heuristics.
func (o *Orchestrator) WithClassifier(c Classifier) *Orchestrator {
	o.classifier = c
	return o
}

// Run executes a full dialogue for one problem.
//
// Simple problems skip the dialogue entirely with zero generation calls.
// A round where more than half the perspectives fail aborts with a
// DialogueError carrying the partial transcript. Individual failures
// below that threshold degrade to placeholders and exclude the
// perspective from later rounds.
func (o *Orchestrator) Run(ctx context.Context, problem, probContext string, opts SelectOptions) (*Result, error) {
	if opts.MaxPerspectives == 0 {
		opts.MaxPerspectives = o.cfg.MaxPerspectives
	}
	plan := Select(o.classifier, problem, probContext, opts)

	if plan.RoundCount == 0 {
		logging.Dialogue("skipping dialogue for simple problem: %.60q", problem)
		return &Result{Problem: problem, Skipped: true, Confidence: 1.0}, nil
	}

	if plan.UseSearch && o.searcher != nil {
		snippet, err := o.searcher.Lookup(ctx, problem)
		if err != nil {
			logging.SearchWarn("verification lookup failed, continuing without: %v", err)
		} else if snippet != "" {
			if probContext != "" {
				probContext += "\n\n"
			}
			probContext += "Verified background:\n" + snippet
		}
	}

	logging.Dialogue("starting dialogue: tier=%s perspectives=%d rounds=%d",
		plan.Complexity, len(plan.Perspectives), plan.RoundCount)

	result := &Result{
		Problem:      problem,
		Perspectives: plan.Perspectives,
	}
	active := plan.Perspectives

	// Round 1: independent initial positions.
	initial, err := o.runRound(ctx, 1, RoundInitial, active, func(p Perspective) string {
		return initialPrompt(p, problem, probContext)
	}, result)
	if err != nil {
		return nil, err
	}
	active = surviving(active, initial)

	var challengeStmts []Statement
	if plan.RoundCount >= 2 {
		challenge, err := o.runRound(ctx, 2, RoundChallenge, active, func(p Perspective) string {
			return challengePrompt(p, problem, initial.Statements)
		}, result)
		if err != nil {
			return nil, err
		}
		tagStatements(challenge.Statements, plan.Perspectives)
		challengeStmts = challenge.Statements
		active = surviving(active, challenge)
	}

	var consensusStmts []Statement
	if plan.RoundCount >= 3 {
		consensus, err := o.runRound(ctx, 3, RoundConsensus, active, func(p Perspective) string {
			return consensusPrompt(p, problem, result.Rounds)
		}, result)
		if err != nil {
			return nil, err
		}
		consensusStmts = consensus.Statements
		active = surviving(active, consensus)
	}

	switch {
	case consensusStmts != nil:
		result.Confidence = confidence(challengeStmts, consensusStmts)
	case challengeStmts != nil:
		result.Confidence = confidence(challengeStmts, nil)
	default:
		result.Confidence = avgPairwiseOverlap(initial.Statements)
	}

	result.Excluded = excluded(plan.Perspectives, active)
	result.RoundsExecuted = len(result.Rounds)

	if consensusStmts != nil && result.Confidence >= o.cfg.ConvergenceThreshold {
		result.Converged = true
		if best, ok := centroidStatement(consensusStmts); ok {
			result.FinalText = best.Text
		}
		logging.Dialogue("converged at confidence %.2f, synthesis skipped", result.Confidence)
		return result, nil
	}

	if plan.AllowSynthesis && plan.RoundCount >= 3 {
		text, err := o.runSynthesis(ctx, result)
		if err != nil {
			return nil, err
		}
		result.FinalText = text
		result.RoundsExecuted = len(result.Rounds)
		return result, nil
	}

	// Short dialogues end on the most representative statement.
	pool := consensusStmts
	if pool == nil {
		pool = initial.Statements
	}
	if best, ok := centroidStatement(pool); ok {
		result.FinalText = best.Text
	}
	return result, nil
}

// runRound fans one prompt per active perspective out through an
// errgroup and waits for all of them. Results land in indexed slots so
// statement order matches perspective order regardless of completion
// order. Failures become placeholders; only a failed majority or parent
// cancellation aborts.
func (o *Orchestrator) runRound(ctx context.Context, number int, kind RoundKind, roles []Perspective, prompt func(Perspective) string, result *Result) (Round, error) {
	roundCtx, cancel := context.WithTimeout(ctx, o.cfg.RoundTimeout())
	defer cancel()

	stmts := make([]Statement, len(roles))
	g, gctx := errgroup.WithContext(roundCtx)
	for i, role := range roles {
		g.Go(func() error {
			text, err := o.client.CompleteWithSystem(gctx, systemPrompt(role), prompt(role))
			if err != nil {
				logging.DialogueWarn("round %d: %s failed: %v", number, role, err)
				stmts[i] = Statement{Role: role, Round: number, Text: placeholderText, Failed: true}
				return nil
			}
			stmts[i] = Statement{Role: role, Round: number, Text: strings.TrimSpace(text)}
			return nil
		})
	}
	g.Wait()

	round := Round{Number: number, Kind: kind, Statements: stmts}
	result.Rounds = append(result.Rounds, round)

	if ctx.Err() != nil {
		return Round{}, &DialogueError{Reason: ReasonTimeout, Round: number, Transcript: result.Rounds}
	}

	failures := 0
	for _, s := range stmts {
		if s.Failed {
			failures++
		}
	}
	if failures*2 > len(stmts) {
		logging.DialogueWarn("round %d: %d of %d perspectives failed, aborting", number, failures, len(stmts))
		return Round{}, &DialogueError{Reason: ReasonMajorityFailed, Round: number, Transcript: result.Rounds}
	}

	logging.DialogueDebug("round %d (%s) complete: %d statements, %d failed", number, kind, len(stmts), failures)
	return round, nil
}

// runSynthesis is the single integrating call of round 4.
func (o *Orchestrator) runSynthesis(ctx context.Context, result *Result) (string, error) {
	roundCtx, cancel := context.WithTimeout(ctx, o.cfg.RoundTimeout())
	defer cancel()

	number := len(result.Rounds) + 1
	text, err := o.client.CompleteWithSystem(roundCtx,
		"You are the synthesizer of a multi-perspective dialogue. Integrate, do not enumerate.",
		synthesisPrompt(result.Problem, result.Rounds))
	if err != nil {
		if ctx.Err() != nil {
			return "", &DialogueError{Reason: ReasonTimeout, Round: number, Transcript: result.Rounds}
		}
		logging.DialogueWarn("synthesis failed: %v", err)
		return "", &DialogueError{Reason: ReasonMajorityFailed, Round: number, Transcript: result.Rounds}
	}

	text = strings.TrimSpace(text)
	result.Rounds = append(result.Rounds, Round{
		Number: number,
		Kind:   RoundSynthesis,
		Statements: []Statement{
			{Role: "synthesizer", Round: number, Text: text},
		},
	})
	return text, nil
}

// surviving drops the roles whose call failed this round. A perspective
// without a position cannot usefully challenge or endorse later.
func surviving(roles []Perspective, round Round) []Perspective {
	failed := make(map[Perspective]bool)
	for _, s := range round.Statements {
		if s.Failed {
			failed[s.Role] = true
		}
	}
	if len(failed) == 0 {
		return roles
	}
	out := make([]Perspective, 0, len(roles))
	for _, r := range roles {
		if !failed[r] {
			out = append(out, r)
		}
	}
	return out
}

func excluded(all, active []Perspective) []Perspective {
	live := make(map[Perspective]bool, len(active))
	for _, p := range active {
		live[p] = true
	}
	var out []Perspective
	for _, p := range all {
		if !live[p] {
			out = append(out, p)
		}
	}
	return out
}
