package ai

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed assessment.schema.json
var assessmentSchemaJSON []byte

// ErrNoJSONObject means the model output has no {...} span at all.
var ErrNoJSONObject = errors.New("no JSON object found in model output")

// SyntaxError wraps a JSON parse failure of the located span.
type SyntaxError struct {
	Cause error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Cause)
}

func (e *SyntaxError) Unwrap() error {
	return e.Cause
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError lists every way the parsed object deviates from the result schema.
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "assessment does not match schema: " + strings.Join(parts, "; ")
}

// IsUnprocessable reports whether err came from rejecting model output, as
// opposed to failing to obtain it.
func IsUnprocessable(err error) bool {
	var syntaxErr *SyntaxError
	var schemaErr *SchemaError
	return errors.Is(err, ErrNoJSONObject) || errors.As(err, &syntaxErr) || errors.As(err, &schemaErr)
}

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaLoadErr  error
)

func assessmentSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaLoadErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(assessmentSchemaJSON))
	})
	return compiledSchema, schemaLoadErr
}

// LocateJSON returns the span from the first '{' to the last '}' of raw.
func LocateJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}
	return raw[start : end+1], nil
}

// ParseResult extracts and validates an AssessmentResult from free-form model
// output. Text around the JSON object is ignored, nothing else is repaired.
func ParseResult(raw string) (*AssessmentResult, error) {
	span, err := LocateJSON(raw)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal([]byte(span), &doc); err != nil {
		return nil, &SyntaxError{Cause: err}
	}

	if err := validateAssessment(doc); err != nil {
		return nil, err
	}

	return decodeAssessment(doc)
}

func validateAssessment(doc any) error {
	schema, err := assessmentSchema()
	if err != nil {
		return fmt.Errorf("load assessment schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate assessment: %w", err)
	}
	if result.Valid() {
		return nil
	}

	fieldErrors := make([]FieldError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   re.Field(),
			Message: re.Description(),
		})
	}
	return &SchemaError{Errors: fieldErrors}
}

func decodeAssessment(doc any) (*AssessmentResult, error) {
	var result AssessmentResult
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &result,
		TagName: "json",
	})
	if err != nil {
		return nil, fmt.Errorf("create assessment decoder: %w", err)
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}

	result.Strengths = nonNil(result.Strengths)
	result.Gaps = nonNil(result.Gaps)
	result.NextSteps = nonNil(result.NextSteps)
	return &result, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
