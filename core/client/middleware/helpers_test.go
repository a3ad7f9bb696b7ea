package middleware

import (
	"context"
	"sync"

	"github.com/leofalp/searchagent/core/client"
	"github.com/leofalp/searchagent/providers/ai"
)

// scriptedSend returns the queued results in order, repeating the last one
// once the queue is drained.
type scriptedSend struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (s *scriptedSend) send(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.calls++

	if idx >= 0 && s.results[idx] != nil {
		return nil, s.results[idx]
	}
	return &ai.ChatResponse{
		Model:        request.Model,
		Content:      "done",
		FinishReason: "stop",
		Usage:        &ai.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}, nil
}

func (s *scriptedSend) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func wrap(mw client.Middleware, s *scriptedSend) client.SendFunc {
	return mw(s.send)
}
