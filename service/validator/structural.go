package validator

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/viant/stepgate/model/step"
)

type compiledSchema struct {
	once   sync.Once
	source object
	schema *gojsonschema.Schema
	err    error
}

func (c *compiledSchema) get() (*gojsonschema.Schema, error) {
	c.once.Do(func() {
		c.schema, c.err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(c.source))
		if c.err != nil {
			c.err = fmt.Errorf("failed to compile schema: %w", c.err)
		}
	})
	return c.schema, c.err
}

var (
	inputSchema         = &compiledSchema{source: stepInputSchema}
	outputSchema        = &compiledSchema{source: stepOutputSchema}
	inputPartialSchema  = &compiledSchema{source: withoutRequired(stepInputSchema)}
	outputPartialSchema = &compiledSchema{source: withoutRequired(stepOutputSchema)}
)

// validateAgainst runs value through the compiled schema and converts every
// violation to a FieldError. The returned error reports mechanism failure
// (unloadable document, broken schema), never a validation outcome.
func validateAgainst(compiled *compiledSchema, value interface{}) ([]FieldError, error) {
	schema, err := compiled.get()
	if err != nil {
		return nil, err
	}
	var loader gojsonschema.JSONLoader
	switch actual := value.(type) {
	case nil:
		return []FieldError{{Path: "(root)", Message: "value is nil", Expected: "object"}}, nil
	case []byte:
		loader = gojsonschema.NewBytesLoader(actual)
	case json.RawMessage:
		loader = gojsonschema.NewBytesLoader(actual)
	case string:
		loader = gojsonschema.NewStringLoader(actual)
	default:
		loader = gojsonschema.NewGoLoader(value)
	}
	result, err := schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("failed to validate document: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]FieldError, 0, len(result.Errors()))
	for _, resultError := range result.Errors() {
		violations = append(violations, toFieldError(resultError))
	}
	return violations, nil
}

func toFieldError(resultError gojsonschema.ResultError) FieldError {
	fieldError := FieldError{
		Path:    resultError.Field(),
		Message: resultError.Description(),
	}
	details := resultError.Details()
	// Required-property violations are reported against the parent object;
	// point the path at the missing field instead.
	if resultError.Type() == "required" {
		if property, ok := details["property"].(string); ok {
			if fieldError.Path == "" || fieldError.Path == "(root)" {
				fieldError.Path = property
			} else {
				fieldError.Path += "." + property
			}
		}
	}
	if expected, ok := details["expected"]; ok {
		fieldError.Expected = fmt.Sprintf("%v", expected)
	}
	if value := resultError.Value(); value != nil {
		fieldError.Received = fmt.Sprintf("%v", value)
	}
	return fieldError
}

// ValidateStepInput checks an untyped value against the StepInput shape and
// returns every violation found. value may be a Go struct/map, raw JSON
// bytes, or a JSON string.
func ValidateStepInput(value interface{}) ([]FieldError, error) {
	return validateAgainst(inputSchema, value)
}

// ValidateStepOutput checks an untyped value against the StepOutput shape.
func ValidateStepOutput(value interface{}) ([]FieldError, error) {
	return validateAgainst(outputSchema, value)
}

// ValidateStepInputPartial checks only the fields present, accepting an
// incomplete envelope still under construction.
func ValidateStepInputPartial(value interface{}) ([]FieldError, error) {
	return validateAgainst(inputPartialSchema, value)
}

// ValidateStepOutputPartial checks only the fields present.
func ValidateStepOutputPartial(value interface{}) ([]FieldError, error) {
	return validateAgainst(outputPartialSchema, value)
}

// AssertValidStepInput is the fail-fast form of ValidateStepInput.
func AssertValidStepInput(value interface{}) error {
	violations, err := ValidateStepInput(value)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return NewStepValidationError("StepInput", violations)
	}
	return nil
}

// AssertValidStepOutput is the fail-fast form of ValidateStepOutput.
func AssertValidStepOutput(value interface{}) error {
	violations, err := ValidateStepOutput(value)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return NewStepValidationError("StepOutput", violations)
	}
	return nil
}

// ParseStepInput validates raw JSON and decodes it into a typed StepInput.
func ParseStepInput(data []byte) (*step.StepInput, error) {
	if err := AssertValidStepInput(data); err != nil {
		return nil, err
	}
	input := &step.StepInput{}
	if err := json.Unmarshal(data, input); err != nil {
		return nil, fmt.Errorf("failed to decode step input: %w", err)
	}
	return input, nil
}

// ParseStepOutput validates raw JSON and decodes it into a typed StepOutput.
func ParseStepOutput(data []byte) (*step.StepOutput, error) {
	if err := AssertValidStepOutput(data); err != nil {
		return nil, err
	}
	output := &step.StepOutput{}
	if err := json.Unmarshal(data, output); err != nil {
		return nil, fmt.Errorf("failed to decode step output: %w", err)
	}
	return output, nil
}
