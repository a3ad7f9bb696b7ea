package react

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/leofalp/searchagent/internal/tracing"
	"github.com/leofalp/searchagent/providers/ai"
	"github.com/leofalp/searchagent/providers/tool"
)

// executeTool runs one tool call and returns the content of the tool message
// answering it. It never fails: problems become the content the model reads.
//
//   - unknown tool: empty content
//   - missing required argument: "No <name> found in arguments"
//   - any other error: "Error: <message>"
func (a *Agent) executeTool(ctx context.Context, logger *slog.Logger, call ai.ToolCall) string {
	name := call.Function.Name
	logger = logger.With(slog.String("tool", name), slog.String("tool_call_id", call.ID))

	ctx, span := tracing.StartSpan(ctx, "react.tool_call",
		attribute.String("tool.name", name),
		attribute.String("tool.call_id", call.ID),
	)

	t, ok := a.tools.Get(name)
	if !ok {
		logger.WarnContext(ctx, "model requested unknown tool")
		tracing.End(span, tool.ErrUnknownTool)
		return ""
	}

	start := time.Now()
	output, err := t.Call(ctx, call.Function.Arguments)
	elapsed := time.Since(start)
	tracing.End(span, err)

	if err != nil {
		var missing *tool.MissingArgumentError
		if errors.As(err, &missing) {
			logger.WarnContext(ctx, "tool call missing argument", slog.String("argument", missing.Name))
			return missing.Error()
		}

		logger.WarnContext(ctx, "tool call failed",
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return "Error: " + err.Error()
	}

	logger.DebugContext(ctx, "tool call completed",
		slog.Duration("duration", elapsed),
		slog.Int("output_bytes", len(output)),
	)
	return output
}
