package inmemory

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/leofalp/searchagent/providers/ai"
	"github.com/leofalp/searchagent/providers/memory"
)

// ErrNilMessage is returned when appending a nil message.
var ErrNilMessage = errors.New("nil message")

// ArrayMemory is a concurrency-safe in-memory message store.
type ArrayMemory struct {
	mu       sync.RWMutex
	messages []ai.Message
}

// New returns an empty ArrayMemory.
func New() *ArrayMemory {
	return &ArrayMemory{
		messages: []ai.Message{},
	}
}

// Factory returns a memory.Factory producing fresh ArrayMemory stores.
func Factory() memory.Factory {
	return func() memory.Provider { return New() }
}

var _ memory.Provider = (*ArrayMemory)(nil)

// AppendMessage stores a copy of message at the end of the history. When the
// context carries a recording span, an event with the message role and
// content length is added to it.
func (m *ArrayMemory) AppendMessage(ctx context.Context, message *ai.Message) error {
	if message == nil {
		return ErrNilMessage
	}

	stored := *message
	if len(message.ToolCalls) > 0 {
		stored.ToolCalls = append([]ai.ToolCall(nil), message.ToolCalls...)
	}

	m.mu.Lock()
	m.messages = append(m.messages, stored)
	total := len(m.messages)
	m.mu.Unlock()

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("memory.append", trace.WithAttributes(
			attribute.String("memory.message.role", string(message.Role)),
			attribute.Int("memory.message.length", len(message.Content)),
			attribute.Int("memory.total_messages", total),
		))
	}
	return nil
}

// AllMessages returns a copy of all messages. The error is always nil.
func (m *ArrayMemory) AllMessages(_ context.Context) ([]ai.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ai.Message, len(m.messages))
	copy(out, m.messages)
	return out, nil
}
