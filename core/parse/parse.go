package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNotObject is returned by DecodeObject when the blob is valid JSON but
// not an object.
var ErrNotObject = errors.New("arguments must be a JSON object")

// ParseStringAs unmarshals content into T. When plain unmarshaling fails the
// content is repaired with jsonrepair and decoded again; as a last resort
// schema-style {"type": ..., "value": ...} wrappers are unwrapped.
//
//	args, err := ParseStringAs[SearchInput](`{query: 'golang generics'}`)
func ParseStringAs[T any](content string) (T, error) {
	var result T

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	result = *new(T)
	err = json.Unmarshal([]byte(repaired), &result)
	if err == nil {
		return result, nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(repaired); unwrapErr == nil {
		result = *new(T)
		if json.Unmarshal([]byte(unwrapped), &result) == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", result, err)
}

// DecodeObject decodes a tool-call argument blob into a map. An empty or
// whitespace-only blob decodes to an empty map, so that required-argument
// checks report the missing field instead of a syntax error.
func DecodeObject(blob string) (map[string]any, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return map[string]any{}, nil
	}

	value, err := ParseStringAs[any](blob)
	if err != nil {
		return nil, err
	}

	object, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w, got %s", ErrNotObject, kindOf(value))
	}
	return object, nil
}

// UnwrapSchemaValues replaces every {"type": ..., "value": ...} envelope in
// object with its value. Models sometimes confuse a parameter schema with the
// data it describes.
func UnwrapSchemaValues(object map[string]any) map[string]any {
	unwrapped, ok := recursiveUnwrap(object).(map[string]any)
	if !ok {
		return object
	}
	return unwrapped
}

func unwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}

	result, err := json.Marshal(recursiveUnwrap(data))
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if _, hasType := v["type"]; hasType {
			if value, hasValue := v["value"]; hasValue && len(v) == 2 {
				return recursiveUnwrap(value)
			}
		}
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = recursiveUnwrap(val)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = recursiveUnwrap(val)
		}
		return result

	default:
		return data
	}
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}
