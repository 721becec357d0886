package dialogue

import (
	"strings"

	"ustad/internal/logging"
)

// Plan is the selector's decision: which perspectives participate and
// how many rounds the orchestrator may run.
type Plan struct {
	Perspectives []Perspective
	RoundCount   int // 0 means dialogue skipped
	Complexity   Complexity

	// UseSearch requests one verification lookup before round 1
	// (Research tier).
	UseSearch bool

	// AllowSynthesis permits the 4th round when consensus does not
	// converge.
	AllowSynthesis bool
}

// SelectOptions carries caller overrides into Select.
type SelectOptions struct {
	// Perspectives, when non-empty, is used verbatim.
	Perspectives []Perspective

	// RoundOverride forces the round count (1-4) when positive.
	RoundOverride int

	// ComplexityOverride bypasses the classifier when non-empty.
	ComplexityOverride Complexity

	// MaxPerspectives caps automatic selection; 0 means the full
	// catalog.
	MaxPerspectives int
}

// Select decides perspectives and round count for a problem. Explicit
// perspective lists win outright; otherwise the classifier's tier drives
// the policy.
func Select(classifier Classifier, problem, context string, opts SelectOptions) Plan {
	if len(opts.Perspectives) > 0 {
		rounds := 3
		if opts.RoundOverride > 0 {
			rounds = clampRounds(opts.RoundOverride)
		}
		return Plan{
			Perspectives:   opts.Perspectives,
			RoundCount:     rounds,
			Complexity:     ComplexityComplex,
			AllowSynthesis: rounds >= 3,
		}
	}

	tier := opts.ComplexityOverride
	if tier == "" {
		tier = classifier.Classify(problem, context)
	}

	max := opts.MaxPerspectives
	if max <= 0 || max > len(Catalog()) {
		max = len(Catalog())
	}

	var plan Plan
	switch tier {
	case ComplexitySimple:
		plan = Plan{Complexity: tier}
	case ComplexityResearch:
		// Research runs with 3 or 4 perspectives; a lower cap would leave
		// the lookup unchallenged.
		n := minInt(4, max)
		if n < 3 {
			n = 3
		}
		plan = Plan{
			Perspectives: pickPerspectives(problem, context, n),
			RoundCount:   1,
			Complexity:   tier,
			UseSearch:    true,
		}
	case ComplexityBuild:
		plan = Plan{
			Perspectives:   pickPerspectives(problem, context, max),
			RoundCount:     3,
			Complexity:     tier,
			AllowSynthesis: true,
		}
	default: // ComplexityComplex
		plan = Plan{
			Perspectives:   pickPerspectives(problem, context, max),
			RoundCount:     3,
			Complexity:     ComplexityComplex,
			AllowSynthesis: true,
		}
	}

	if opts.RoundOverride > 0 && plan.RoundCount > 0 {
		plan.RoundCount = clampRounds(opts.RoundOverride)
		plan.AllowSynthesis = plan.RoundCount >= 4 || plan.AllowSynthesis
	}

	logging.DialogueDebug("selector: tier=%s perspectives=%d rounds=%d search=%v",
		plan.Complexity, len(plan.Perspectives), plan.RoundCount, plan.UseSearch)

	return plan
}

// pickPerspectives chooses up to n roles, biased by problem domain.
// Analytical, practical and critical always lead; domain keywords pull
// in the rest, then remaining catalog order fills the quota.
func pickPerspectives(problem, context string, n int) []Perspective {
	lower := strings.ToLower(problem + " " + context)

	picked := []Perspective{Analytical, Practical, Critical}

	switch {
	case containsAny(lower, "api", "database", "system", "code", "bug", "deploy"):
		picked = append(picked, Systematic, Empirical)
	case containsAny(lower, "business", "revenue", "market", "customer", "pricing"):
		picked = append(picked, Strategic, Empirical)
	case containsAny(lower, "team", "people", "culture", "management", "hiring"):
		picked = append(picked, Intuitive, Strategic)
	}

	if containsAny(lower, "complex", "architecture", "redesign", "novel") {
		picked = append(picked, Creative)
	}

	// Fill from the catalog, preserving canonical order, skipping
	// duplicates.
	seen := make(map[Perspective]bool, len(picked))
	out := make([]Perspective, 0, n)
	for _, p := range picked {
		if !seen[p] && len(out) < n {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range Catalog() {
		if !seen[p] && len(out) < n {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// KeywordClassifier is the default heuristic classifier. An LLM-backed
// classifier can replace it; the selector treats both as opaque.
type KeywordClassifier struct{}

// Classify buckets a problem by lexical cues and length.
func (KeywordClassifier) Classify(problem, context string) Complexity {
	lower := strings.ToLower(problem)

	if containsAny(lower, "build", "implement", "create", "design and", "write a") {
		return ComplexityBuild
	}
	if containsAny(lower, "what is", "who is", "when did", "look up", "find out", "verify") {
		return ComplexityResearch
	}

	words := len(strings.Fields(problem)) + len(strings.Fields(context))
	if words < 12 && !containsAny(lower, "why", "how", "should", "compare") {
		return ComplexitySimple
	}
	return ComplexityComplex
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clampRounds(n int) int {
	if n < 1 {
		return 1
	}
	if n > 4 {
		return 4
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
