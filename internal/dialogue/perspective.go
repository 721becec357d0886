// Package dialogue implements the multi-round collaborative dialogue
// engine: a fixed catalog of reasoning perspectives, a complexity-driven
// selector, and a round orchestrator with strict barriers, partial
// failure degradation and convergence detection.
package dialogue

import "strings"

// Perspective is a named reasoning stance used to frame one generation
// call per round.
type Perspective string

const (
	Analytical Perspective = "analytical"
	Creative   Perspective = "creative"
	Critical   Perspective = "critical"
	Practical  Perspective = "practical"
	Strategic  Perspective = "strategic"
	Empirical  Perspective = "empirical"
	Intuitive  Perspective = "intuitive"
	Systematic Perspective = "systematic"
)

// Catalog returns the fixed 8-role catalog in canonical order.
func Catalog() []Perspective {
	return []Perspective{
		Analytical, Creative, Critical, Practical,
		Strategic, Empirical, Intuitive, Systematic,
	}
}

// ParsePerspective resolves a caller-supplied role name. The boolean is
// false for names outside the catalog.
func ParsePerspective(name string) (Perspective, bool) {
	p := Perspective(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Catalog() {
		if p == known {
			return known, true
		}
	}
	return "", false
}

// framing is the short stance description injected into the system
// prompt of every call made on behalf of a perspective.
func (p Perspective) framing() string {
	switch p {
	case Analytical:
		return "an analytical thinker who breaks problems into components, maps cause-effect chains and argues from evidence"
	case Creative:
		return "a creative innovator who challenges assumptions, finds unexpected analogies and proposes non-obvious solutions"
	case Critical:
		return "a critical examiner who questions assumptions, hunts for gaps and risks, and challenges the problem framing itself"
	case Practical:
		return "a practical implementer focused on immediate actionable steps, realistic resources and quick wins"
	case Strategic:
		return "a strategic thinker weighing long-term implications, positioning and priorities"
	case Empirical:
		return "a data-driven analyst who reasons from measurable factors, metrics and testable hypotheses"
	case Intuitive:
		return "an intuitive pattern-recognizer drawing on experiential judgment about what feels right or off"
	case Systematic:
		return "a systems thinker mapping components, feedback loops, bottlenecks and leverage points"
	default:
		return "an expert collaborative thinker"
	}
}
