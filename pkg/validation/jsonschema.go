package validation

import (
	"github.com/xeipuuv/gojsonschema"

	"github.com/schnitzelbub/bocadillo/pkg/fault"
)

func init() {
	Register(JSONSchema{})
}

// JSONSchema is the validation backend backed by
// github.com/xeipuuv/gojsonschema.
type JSONSchema struct{}

// Name implements Backend.
func (JSONSchema) Name() string { return "jsonschema" }

// Compile implements Backend.
func (JSONSchema) Compile(schema map[string]any) (Compiled, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, &fault.SchemaError{Backend: "jsonschema", Err: err}
	}
	return &jsonSchemaCompiled{schema: compiled}, nil
}

// jsonSchemaCompiled is the reusable artifact produced by Compile.
type jsonSchemaCompiled struct {
	schema *gojsonschema.Schema
}

// Validate implements Compiled.
func (c *jsonSchemaCompiled) Validate(payload any) error {
	result, err := c.schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fault.Validation(err.Error())
	}
	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		messages = append(messages, re.String())
	}
	return fault.Validation(messages...)
}
