package tool

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	jsonvalidate "github.com/kaptinlin/jsonschema"
)

// GenerateSchema derives the parameter schema advertised to the model from
// the struct T. Field docs come from `jsonschema:"description=...,required"`
// tags; only fields tagged required are listed as required. T may be an
// unnamed struct; DoNotReference inlines it without a definitions entry.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
	}

	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""
	return schema
}

// compileSchema turns a generated schema into a validator.
func compileSchema(schema *jsonschema.Schema) (*jsonvalidate.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	compiled, err := jsonvalidate.NewCompiler().Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// validateAgainst checks data against compiled. A nil validator accepts all.
func validateAgainst(compiled *jsonvalidate.Schema, data map[string]any) error {
	if compiled == nil {
		return nil
	}
	result := compiled.Validate(data)
	if !result.IsValid() {
		return fmt.Errorf("%s", result.Error())
	}
	return nil
}
