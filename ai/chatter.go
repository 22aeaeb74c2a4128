// Package ai defines what the bot needs from a language model backend.

package ai

import "context"

const (
	// FailedResponse is shown to the user whenever inference fails.
	FailedResponse = "⚠️ AI failed to respond. Please try again later."
	// EmptyResponse is shown when the model answers with nothing.
	EmptyResponse = "🤔 No response."
)

// Asker relays a single prompt to a model and returns its answer.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}
