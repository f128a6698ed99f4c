// Package tools implements the fixed tool registry the model may invoke
// instead of replying with plain text. Each tool is a small state machine:
// an invocation starts Pending, may emit any number of Intermediate
// placeholder units, and Settles exactly once with a final display unit and
// a tool result.
package tools

import (
	"encoding/json"
	"fmt"
	"math"
)

// JSONSchema captures the subset of JSON Schema required for tool argument
// validation.
type JSONSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// ToMap renders the schema as a generic JSON Schema document for provider
// tool-definition payloads.
func (s *JSONSchema) ToMap() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": s.Type}
	if len(s.Properties) > 0 {
		out["properties"] = s.Properties
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

// Validate ensures that args satisfy the schema: required fields present and
// primitive types matching. Unknown fields pass through untouched.
func (s *JSONSchema) Validate(args map[string]any) error {
	if s == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	for _, field := range s.Required {
		if _, exists := args[field]; !exists {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	for key, value := range args {
		propDef, ok := s.Properties[key]
		if !ok {
			continue
		}
		expected := expectedType(propDef)
		if expected == "" {
			continue
		}
		if err := validateType(value, expected); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

func expectedType(definition any) string {
	if def, ok := definition.(map[string]any); ok {
		if value, ok := def["type"].(string); ok {
			return value
		}
	}
	return ""
}

func validateType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if isNumber(value) {
			return nil
		}
	case "integer":
		if isInteger(value) {
			return nil
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64:
		return true
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case float64:
		return math.Trunc(v) == v
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}
