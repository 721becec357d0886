package dialogue

import (
	"fmt"
	"strings"
)

// Prompt construction is pure: (role, problem, context, prior
// statements) -> prompt text. The orchestrator never reaches into the
// client beyond sending these.

func systemPrompt(p Perspective) string {
	return fmt.Sprintf("You are %s engaged in collaborative problem-solving with other perspectives. Be concise but insightful.", p.framing())
}

func initialPrompt(p Perspective, problem, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem: %s\n", problem)
	if context != "" {
		fmt.Fprintf(&b, "Context: %s\n", context)
	}
	fmt.Fprintf(&b, "\nGive your %s take on this problem: the core insight your stance contributes, in 2-3 sentences. Do not hedge.", p)
	return b.String()
}

func challengePrompt(p Perspective, problem string, prior []Statement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original problem: %s\n\nOther perspectives said:\n", problem)
	writeStatements(&b, prior, p)
	fmt.Fprintf(&b, "\nAs the %s perspective, respond to the others by name: state explicitly which you agree with and which you disagree with, and why. 2-3 sentences.", p)
	return b.String()
}

func consensusPrompt(p Perspective, problem string, rounds []Round) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original problem: %s\n\nFull dialogue so far:\n", problem)
	for _, r := range rounds {
		fmt.Fprintf(&b, "--- round %d (%s) ---\n", r.Number, r.Kind)
		writeStatements(&b, r.Statements, "")
	}
	fmt.Fprintf(&b, "\nAs the %s perspective, state the working consensus you can endorse: the core insight most perspectives support and how conflicting views reconcile. 2-4 sentences, no new objections.", p)
	return b.String()
}

func synthesisPrompt(problem string, rounds []Round) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original problem: %s\n\nComplete dialogue history:\n", problem)
	for _, r := range rounds {
		fmt.Fprintf(&b, "--- round %d (%s) ---\n", r.Number, r.Kind)
		writeStatements(&b, r.Statements, "")
	}
	b.WriteString("\nProduce the final synthesis. Integrate the whole discussion into one answer, naming which perspectives' ideas you adopted and which you rejected, and why.")
	return b.String()
}

// writeStatements renders prior statements, skipping the addressee's own
// contribution and failure placeholders.
func writeStatements(b *strings.Builder, stmts []Statement, exclude Perspective) {
	for _, s := range stmts {
		if s.Role == exclude || s.Failed {
			continue
		}
		fmt.Fprintf(b, "%s: %s\n", strings.ToUpper(string(s.Role)), s.Text)
	}
}
