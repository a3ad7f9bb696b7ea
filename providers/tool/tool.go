package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/invopop/jsonschema"
	jsonvalidate "github.com/kaptinlin/jsonschema"

	"github.com/leofalp/searchagent/core/parse"
	"github.com/leofalp/searchagent/providers/ai"
)

// Tool is a typed, callable tool. The parameter schema is derived from I
// and the output O is serialized as indented JSON.
type Tool[I, O any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Function    func(ctx context.Context, input I) (O, error)

	validator *jsonvalidate.Schema
}

// GenericTool is the type-erased view of a Tool used by the registry and
// the orchestration loop.
type GenericTool interface {
	// ToolInfo returns the metadata advertised to the model.
	ToolInfo() ai.ToolDescription

	// Call decodes inputJSON, runs the tool and returns its JSON output.
	// Argument problems are reported as *MissingArgumentError or errors
	// wrapping ErrInvalidArguments.
	Call(ctx context.Context, inputJSON string) (string, error)
}

var _ GenericTool = (*Tool[struct{}, struct{}])(nil)

type funcToolOptions struct {
	Description string
}

// WithDescription sets the human-readable description shown to the model.
func WithDescription(description string) func(tool *funcToolOptions) {
	return func(s *funcToolOptions) {
		s.Description = description
	}
}

// NewTool constructs a Tool named name around function.
//
//	search := tool.NewTool("search_brave", client.searchTool,
//	    tool.WithDescription("Search the web using Brave Search API."),
//	)
func NewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...func(tool *funcToolOptions)) *Tool[I, O] {
	toolOptions := &funcToolOptions{}
	for _, option := range options {
		option(toolOptions)
	}

	parameters := GenerateSchema[I]()
	validator, err := compileSchema(parameters)
	if err != nil {
		// Required-field checks still run; only schema validation is skipped.
		slog.Warn("tool schema validation disabled", "tool", name, "error", err.Error())
	}

	return &Tool[I, O]{
		Name:        name,
		Description: toolOptions.Description,
		Parameters:  parameters,
		Function:    function,
		validator:   validator,
	}
}

// ToolInfo returns the ai.ToolDescription advertised to the model.
func (t *Tool[I, O]) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Call decodes the model-supplied arguments into I, runs the function and
// returns the output as two-space indented JSON.
func (t *Tool[I, O]) Call(ctx context.Context, inputJSON string) (string, error) {
	input, err := t.DecodeArguments(inputJSON)
	if err != nil {
		return "", err
	}

	output, err := t.Function(ctx, input)
	if err != nil {
		return "", err
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s output: %w", t.Name, err)
	}
	return string(encoded), nil
}

// DecodeArguments turns a raw argument blob into I. The blob is repaired if
// needed, required fields are checked, and the object is validated against
// the parameter schema.
func (t *Tool[I, O]) DecodeArguments(inputJSON string) (I, error) {
	var input I

	args, err := parse.DecodeObject(inputJSON)
	if err != nil {
		return input, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	for _, name := range t.Parameters.Required {
		if value, ok := args[name]; !ok || value == nil {
			return input, &MissingArgumentError{Name: name}
		}
	}

	if err := validateAgainst(t.validator, args); err != nil {
		unwrapped := parse.UnwrapSchemaValues(args)
		if validateAgainst(t.validator, unwrapped) != nil {
			return input, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		args = unwrapped
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return input, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return input, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return input, nil
}
