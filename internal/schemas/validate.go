// Package schemas provides JSON Schema validation for external service
// responses before they are mapped into engine types.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rankResponseSchema is the contract for the external ranking service's
// response. Unknown extra fields are tolerated; items must carry a key and a
// numeric final_score.
const rankResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["items"],
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["key", "final_score"],
        "properties": {
          "key": {"type": "string", "minLength": 1},
          "final_score": {"type": "number"},
          "reason": {"type": "string"},
          "matched_skills": {"type": "array", "items": {"type": "string"}},
          "balance_note": {"type": "string"}
        }
      }
    }
  }
}`

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateRankResponse validates raw ranking-service JSON against the
// response contract.
func ValidateRankResponse(jsonContent string) error {
	return validateString(rankResponseSchema, jsonContent)
}

func validateString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed during load: %w", err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
