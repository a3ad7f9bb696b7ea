package react

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/leofalp/searchagent/core/client"
	"github.com/leofalp/searchagent/core/cost"
	"github.com/leofalp/searchagent/core/overview"
	"github.com/leofalp/searchagent/internal/tracing"
	"github.com/leofalp/searchagent/providers/ai"
	"github.com/leofalp/searchagent/providers/memory"
	"github.com/leofalp/searchagent/providers/memory/inmemory"
	"github.com/leofalp/searchagent/providers/tool"
)

// DefaultSystemPrompt instructs the model to research with the search tool
// across several turns before answering.
const DefaultSystemPrompt = "You are a language model. Your task is to answer the complex queries of the user. " +
	"You can use brave search to search internet and get not just links and title and small description, " +
	"but also a deep dive into the original content of certain pages.\n\n" +
	"You can perform multiple search requests with breakdown'd queries, " +
	"and do multi-turn requests before answering the user's queries."

// DefaultMaxTurns bounds the number of model calls in one run.
const DefaultMaxTurns = 20

var (
	// ErrTurnBudgetExceeded is returned when the model still requests tools
	// on the last allowed turn.
	ErrTurnBudgetExceeded = errors.New("turn budget exceeded")
	// ErrNilSend is returned by New without a send function.
	ErrNilSend = errors.New("react: send function is nil")
	// ErrNilRegistry is returned by New without a tool registry.
	ErrNilRegistry = errors.New("react: tool registry is nil")
)

// Agent runs the orchestration loop. It holds no per-run state, so one Agent
// may serve concurrent queries.
type Agent struct {
	send         client.SendFunc
	tools        *tool.Registry
	systemPrompt string
	maxTurns     int
	echo         io.Writer
	logger       *slog.Logger
	newMemory    memory.Factory
	onState      func(runID string, state State)
	modelCost    *cost.ModelCost
}

// Option configures an Agent.
type Option func(*Agent)

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.systemPrompt = prompt
	}
}

// WithMaxTurns sets the maximum number of model calls per run. Zero means
// unbounded; negative values are ignored.
func WithMaxTurns(n int) Option {
	return func(a *Agent) {
		if n >= 0 {
			a.maxTurns = n
		}
	}
}

// WithEcho writes the free text that accompanies a tool-requesting reply to
// w, one line per reply.
func WithEcho(w io.Writer) Option {
	return func(a *Agent) {
		a.echo = w
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMemory sets the factory creating each run's conversation store.
// Defaults to an in-memory store.
func WithMemory(factory memory.Factory) Option {
	return func(a *Agent) {
		if factory != nil {
			a.newMemory = factory
		}
	}
}

// WithStateHook registers fn to be called on every state transition.
func WithStateHook(fn func(runID string, state State)) Option {
	return func(a *Agent) {
		a.onState = fn
	}
}

// WithModelCost prices each run's usage in Result.EstimatedCost.
func WithModelCost(mc cost.ModelCost) Option {
	return func(a *Agent) {
		if !mc.IsZero() {
			a.modelCost = &mc
		}
	}
}

// New returns an Agent calling the model through send and dispatching tool
// calls to tools, the active tool set.
//
//	c, _ := client.New(provider, client.WithModel("gpt-4o-2024-08-06"))
//	agent, _ := react.New(c.Send, registry, react.WithEcho(os.Stdout))
//	answer, err := agent.ProcessUserQuery(ctx, "Who won the 2022 world cup?")
func New(send client.SendFunc, tools *tool.Registry, opts ...Option) (*Agent, error) {
	if send == nil {
		return nil, ErrNilSend
	}
	if tools == nil {
		return nil, ErrNilRegistry
	}

	a := &Agent{
		send:         send,
		tools:        tools,
		systemPrompt: DefaultSystemPrompt,
		maxTurns:     DefaultMaxTurns,
		logger:       slog.Default(),
		newMemory:    inmemory.Factory(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Result is the outcome of a completed run.
type Result struct {
	overview.Overview
	RunID    string
	Answer   string
	Messages []ai.Message // Full conversation, system message first
}

// ProcessUserQuery runs the loop for query and returns the final answer.
func (a *Agent) ProcessUserQuery(ctx context.Context, query string) (string, error) {
	result, err := a.Run(ctx, query)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

// Run answers query. Model errors, conversation store errors, context
// cancellation and ErrTurnBudgetExceeded end the run; tool problems are
// reported back to the model and never do.
func (a *Agent) Run(ctx context.Context, query string) (result *Result, err error) {
	runID := ulid.Make().String()
	logger := a.logger.With(slog.String("run_id", runID))

	ctx, span := tracing.StartSpan(ctx, "react.run",
		attribute.String("run.id", runID),
		attribute.Int("run.max_turns", a.maxTurns),
	)
	defer func() { tracing.End(span, err) }()

	conversation := a.newMemory()
	if err := appendMessages(ctx, conversation, ai.NewSystemMessage(a.systemPrompt), ai.NewUserMessage(query)); err != nil {
		return nil, err
	}

	result = &Result{RunID: runID}
	result.ModelCost = a.modelCost
	result.Start(time.Now())
	descriptions := a.tools.Descriptions()

	logger.InfoContext(ctx, "run started", slog.Int("tools", len(descriptions)))

	for turn := 1; ; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a.transition(runID, StateAwaitingModel)
		messages, err := conversation.AllMessages(ctx)
		if err != nil {
			return nil, fmt.Errorf("read conversation: %w", err)
		}

		response, err := a.callModel(ctx, turn, ai.ChatRequest{Messages: messages, Tools: descriptions})
		if err != nil {
			logger.ErrorContext(ctx, "model call failed", slog.Int("turn", turn), slog.String("error", err.Error()))
			return nil, fmt.Errorf("model call on turn %d: %w", turn, err)
		}

		result.IncludeResponse(response)
		normalizeToolCalls(response)

		assistant := response.AssistantMessage()
		if err := appendMessages(ctx, conversation, assistant); err != nil {
			return nil, err
		}

		if !response.HasToolCalls() {
			a.transition(runID, StateDone)
			result.Answer = response.Content
			if result.Messages, err = conversation.AllMessages(ctx); err != nil {
				return nil, fmt.Errorf("read conversation: %w", err)
			}
			result.Finish(time.Now())
			logger.LogAttrs(ctx, slog.LevelInfo, "run completed", result.LogAttrs()...)
			return result, nil
		}

		a.echoContent(response.Content)

		if a.maxTurns > 0 && turn >= a.maxTurns {
			logger.WarnContext(ctx, "turn budget exceeded", slog.Int("max_turns", a.maxTurns))
			return nil, fmt.Errorf("%w: model still requested tools after %d turns", ErrTurnBudgetExceeded, turn)
		}

		a.transition(runID, StateExecutingTools)
		for _, call := range response.ToolCalls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			result.AddToolCall(call.Function.Name)
			content := a.executeTool(ctx, logger, call)
			if err := appendMessages(ctx, conversation, ai.NewToolMessage(call.ID, call.Function.Name, content)); err != nil {
				return nil, err
			}
		}
	}
}

func (a *Agent) callModel(ctx context.Context, turn int, request ai.ChatRequest) (response *ai.ChatResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "react.model_call",
		attribute.Int("turn", turn),
		attribute.Int("messages", len(request.Messages)),
	)
	defer func() { tracing.End(span, err) }()

	response, err = a.send(ctx, request)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, errors.New("model returned no response")
	}

	span.SetAttributes(
		attribute.Int("tool_calls", len(response.ToolCalls)),
		attribute.String("finish_reason", response.FinishReason),
	)
	return response, nil
}

func (a *Agent) echoContent(content string) {
	if a.echo == nil || content == "" {
		return
	}
	if _, err := fmt.Fprintln(a.echo, content); err != nil {
		a.logger.Warn("echo failed", slog.String("error", err.Error()))
	}
}

func (a *Agent) transition(runID string, state State) {
	a.logger.Debug("state", slog.String("run_id", runID), slog.String("state", state.String()))
	if a.onState != nil {
		a.onState(runID, state)
	}
}

// normalizeToolCalls fills in ids and types some providers leave empty, so
// every tool result can be matched to its request.
func normalizeToolCalls(response *ai.ChatResponse) {
	for i := range response.ToolCalls {
		call := &response.ToolCalls[i]
		if call.ID == "" {
			call.ID = "call_" + ulid.Make().String()
		}
		if call.Type == "" {
			call.Type = ai.ToolTypeFunction
		}
	}
}

func appendMessages(ctx context.Context, conversation memory.Provider, messages ...ai.Message) error {
	for i := range messages {
		if err := conversation.AppendMessage(ctx, &messages[i]); err != nil {
			return fmt.Errorf("append %s message: %w", messages[i].Role, err)
		}
	}
	return nil
}
