// Package speech turns the quiz master's lines into audio. Playback is
// fire-and-forget: a synthesis failure never affects judging or stage
// transitions, so callers log and move on.
package speech

import "context"

// Synthesizer produces audio bytes plus a MIME type for a line of text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}
