// Package schemas validates service responses against embedded JSON Schemas
// before they are decoded into domain types.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Name identifies an embedded schema.
type Name string

const (
	Review                  Name = "review"
	EmailResponse           Name = "email_response"
	ReferralEmailResponse   Name = "referral_email_response"
	ReferralMessageResponse Name = "referral_message_response"
	JobDescription          Name = "job_description"
)

//go:embed json/*.json
var files embed.FS

var (
	mu       sync.Mutex
	compiled = make(map[Name]*gojsonschema.Schema)
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema Name
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return fmt.Sprintf("%s does not match schema: %s", ve.Schema, strings.Join(parts, "; "))
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Schema Name
	Cause  error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Schema, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Validate checks a decoded JSON document (maps, slices, scalars) against
// the named schema.
func Validate(name Name, document any) error {
	schema, err := load(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}

	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: name}
	for _, e := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   e.Field(),
			Message: e.Description(),
		})
	}
	return ve
}

func load(name Name) (*gojsonschema.Schema, error) {
	mu.Lock()
	defer mu.Unlock()

	if schema, ok := compiled[name]; ok {
		return schema, nil
	}

	data, err := files.ReadFile("json/" + string(name) + ".json")
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Cause: err}
	}

	compiled[name] = schema
	return schema, nil
}
