package payload

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed form_schema.json
var formSchemaJSON []byte

var (
	schemaOnce sync.Once
	formSchema *openapi3.Schema
	schemaErr  error
)

// Schema returns the OpenAPI schema describing the submission body.
func Schema() (*openapi3.Schema, error) {
	schemaOnce.Do(func() {
		schema := &openapi3.Schema{}
		if err := json.Unmarshal(formSchemaJSON, schema); err != nil {
			schemaErr = fmt.Errorf("payload: decode schema: %w", err)
			return
		}
		formSchema = schema
	})
	return formSchema, schemaErr
}

// Validate checks the encoded form against Schema. The schema only checks
// shape and types; field presence is enforced before a payload is built.
func Validate(form Form) error {
	raw, err := Marshal(form)
	if err != nil {
		return fmt.Errorf("payload: encode: %w", err)
	}
	return ValidateJSON(raw)
}

// ValidateJSON checks an encoded submission body against Schema.
func ValidateJSON(raw []byte) error {
	schema, err := Schema()
	if err != nil {
		return err
	}
	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("payload: decode: %w", err)
	}
	if err := schema.VisitJSON(document); err != nil {
		return fmt.Errorf("payload: schema: %w", err)
	}
	return nil
}
