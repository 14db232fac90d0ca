// Package reply produces the bot's outgoing text. Two strategies exist,
// selected at construction time from configuration: a static one that picks
// a canned tip, and a generative one that calls Gemini and falls back to a
// canned tip on any failure. Neither strategy ever fails; they degrade.
package reply

import "context"

// Generator produces a reply given the participant's recent message history,
// oldest first. Implementations must always return non-empty text.
type Generator interface {
	Generate(ctx context.Context, history []string) string
}
