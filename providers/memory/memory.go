package memory

import (
	"context"

	"github.com/leofalp/searchagent/providers/ai"
)

// Provider is an append-only conversation store. One instance backs one
// query run; messages are never removed or rewritten.
type Provider interface {
	// AppendMessage stores a copy of message at the end of the history.
	AppendMessage(ctx context.Context, message *ai.Message) error

	// AllMessages returns a copy of the full history in append order.
	AllMessages(ctx context.Context) ([]ai.Message, error)
}

// Factory creates a fresh, empty Provider. The orchestration loop calls it
// once per query so concurrent runs never share a conversation.
type Factory func() Provider
