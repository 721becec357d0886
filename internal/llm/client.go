// Package llm provides the text-generation capability contract and its
// provider implementations. The dialogue engine depends only on the
// Client interface so rounds can be driven by deterministic fakes in
// tests.
package llm

import "context"

// Client defines the minimal interface the reasoning engine uses to call
// an LLM. No retry guarantees are assumed by callers; each dialogue call
// is attempted once per round.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
