// Package llm defines the chat-completion client used by the assistant.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client produces one assistant reply for an ordered conversation
// transcript.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
