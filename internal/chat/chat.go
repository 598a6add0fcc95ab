// Package chat provides clients for the external chat model, used by the
// model-classification router stage and by advice text synthesis.
package chat

import "context"

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends a conversation to the chat model and returns its reply.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Close() error
}
