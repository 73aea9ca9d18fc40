package llm

import "context"

// Turn is one entry of generation context. Role is "user" or "model".
type Turn struct {
	Role    string
	Content string
}

// Provider is the generation collaborator. Both calls fail with an error on
// transport problems, timeouts, or an empty candidate list; callers decide
// the fallback.
type Provider interface {
	// GenerateText runs a single-shot generation over a fully built prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateConversation runs a multi-turn generation: the system text is
	// prepended as the first user turn, then the history in order, with the
	// final turn being the message to answer.
	GenerateConversation(ctx context.Context, system string, turns []Turn) (string, error)
	Close() error
}
