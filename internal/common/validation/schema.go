// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	apperrors "dispatch-workers/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateInput checks input against a JSON schema given as a decoded map.
// A nil or empty schema accepts everything.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	if len(schema) == 0 {
		return &ValidationResult{Valid: true}, nil
	}
	if input == nil {
		input = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		// gojsonschema reports required-property failures against the parent.
		if prop, ok := desc.Details()["property"].(string); ok && desc.Type() == "required" {
			if field == "(root)" {
				field = prop
			} else {
				field = field + "." + prop
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out, nil
}

// Validate is ValidateInput folded into a single INPUT_VALIDATION_FAILED
// error carrying every field message.
func Validate(input map[string]interface{}, schema map[string]interface{}) error {
	result, err := ValidateInput(input, schema)
	if err != nil {
		return apperrors.NewInputValidationError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewInputValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}

// CompileSchema reports whether schema is itself a usable JSON schema.
func CompileSchema(schema map[string]interface{}) error {
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	return nil
}

var taskTypePattern = regexp.MustCompile(`^[a-z]+(-[a-z]+)*$`)

// ValidateTaskTypeNaming enforces lower-kebab-case task types.
func ValidateTaskTypeNaming(taskType string) error {
	if !taskTypePattern.MatchString(taskType) {
		return fmt.Errorf("task type %q must be lower-kebab-case (e.g. rank-candidates)", taskType)
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}
