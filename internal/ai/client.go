// Package ai wraps the interchangeable chat-completion backends. The rest of
// the service only sees ChatClient; which provider answers is a config choice.
package ai

import "context"

// Message is one turn of conversation context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatClient produces one completion for a system instruction plus a message
// history. Implementations make exactly one bounded remote call; callers own
// the fallback behavior.
type ChatClient interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}
