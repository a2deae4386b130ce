package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"-"`
	Message string      `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is the field-level detail returned to callers.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// Add records a failure found outside the rule helpers.
func (v *Validator) Add(fieldName, message string) *Validator {
	v.errors = append(v.errors, ValidationError{Field: fieldName, Message: message})
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error returns the collected failures as a ValidationErrors value, or nil.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return ValidationErrors(v.errors)
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case *string:
		if v == nil || strings.TrimSpace(*v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case uuid.UUID:
		if v == uuid.Nil {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	}
	return nil
}

func UUID(fieldName string, value interface{}) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}

	if _, err := uuid.Parse(str); err != nil {
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "must be a valid UUID",
		}
	}
	return nil
}

// ParseUUIDField parses a required UUID, reporting failures against field.
func ParseUUIDField(field, raw string) (uuid.UUID, error) {
	v := NewValidator()
	if v.Field(field, raw, Required); !v.HasErrors() {
		v.Field(field, strings.TrimSpace(raw), UUID)
	}
	if err := v.Error(); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(strings.TrimSpace(raw)), nil
}

// NonNegative rejects negative and non-finite numbers.
func NonNegative(fieldName string, value interface{}) *ValidationError {
	f, ok := value.(float64)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a non-negative number"}
	}
	return nil
}

// InRange builds a rule accepting numbers within [min, max].
func InRange(min, max float64) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		f, ok := value.(float64)
		if !ok {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be a number"}
		}
		if math.IsNaN(f) || f < min || f > max {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be between %g and %g", min, max),
			}
		}
		return nil
	}
}

var (
	Latitude  = InRange(-90, 90)
	Longitude = InRange(-180, 180)
)

// ValidateAndReturnError returns the collected ValidationErrors if validation failed.
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return ValidationErrors(validator.Errors())
	}
	return nil
}

// Schema is a compiled JSON schema used to vet request payloads before decoding.
type Schema struct {
	name   string
	schema *jsonschema.Schema
}

// CompileSchema compiles a schema expressed as a generic map.
func CompileSchema(name string, schemaMap map[string]any) (*Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	url := name + ".json"
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompileSchema is CompileSchema for package-level schema tables.
func MustCompileSchema(name string, schemaMap map[string]any) *Schema {
	s, err := CompileSchema(name, schemaMap)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateJSON checks data against the schema and reports one ValidationError per failing field.
func (s *Schema) ValidateJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return ValidationErrors{{Field: "(body)", Message: "invalid json"}}
	}
	err := s.schema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate %s: %w", s.name, err)
	}
	var out ValidationErrors
	collectLeaves(ve, &out)
	if len(out) == 0 {
		out = append(out, ValidationError{Field: "(root)", Message: ve.Message})
	}
	return out
}

// DecodeJSON validates data against the schema and decodes it into dst.
func (s *Schema) DecodeJSON(data []byte, dst any) error {
	if err := s.ValidateJSON(data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return ValidationErrors{{Field: "(body)", Message: err.Error()}}
	}
	return nil
}

func collectLeaves(ve *jsonschema.ValidationError, out *ValidationErrors) {
	if len(ve.Causes) == 0 {
		*out = append(*out, ValidationError{Field: pointerToField(ve.InstanceLocation), Message: ve.Message})
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

// pointerToField turns a JSON pointer ("/sealcoat/areaSqFt") into a dotted field name.
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "(root)"
	}
	return strings.ReplaceAll(ptr, "/", ".")
}
