// Package ai defines the provider-agnostic conversation types shared by the
// model providers, the tool layer and the orchestration loop.
//
// A conversation is an ordered slice of [Message]. Assistant messages may
// carry [ToolCall] requests; tool messages answer them by ToolCallID. Each
// provider maps [ChatRequest] and [ChatResponse] to its own wire format, so
// the rest of the module never sees provider-specific shapes.
package ai
