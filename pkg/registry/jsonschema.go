package registry

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var schemaSeq atomic.Uint64

// JSONSchemaValidator validates props against a compiled Draft 2020-12 JSON
// Schema.
type JSONSchemaValidator struct {
	schema *jsonschema.Schema
}

// SchemaValidator compiles a JSON Schema document describing a component's
// prop shape.
func SchemaValidator(source string) (*JSONSchemaValidator, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, fmt.Errorf("registry: props schema is empty")
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://uischema.local/components/%d.schema.json", schemaSeq.Add(1))
	if err := compiler.AddResource(url, strings.NewReader(trimmed)); err != nil {
		return nil, fmt.Errorf("registry: load props schema: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("registry: compile props schema: %w", err)
	}
	return &JSONSchemaValidator{schema: compiled}, nil
}

// MustSchemaValidator panics when the schema does not compile.
func MustSchemaValidator(source string) *JSONSchemaValidator {
	v, err := SchemaValidator(source)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateProps implements PropsValidator.
func (v *JSONSchemaValidator) ValidateProps(props map[string]any) error {
	if v == nil || v.schema == nil {
		return nil
	}
	var value any = props
	if props == nil {
		value = map[string]any{}
	}
	if err := v.schema.Validate(value); err != nil {
		return fmt.Errorf("props do not match schema: %s", flattenSchemaError(err))
	}
	return nil
}

// flattenSchemaError reduces a jsonschema error tree to its leaf messages.
func flattenSchemaError(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var parts []string
	collectLeaves(ve, &parts)
	if len(parts) == 0 {
		return ve.Message
	}
	return strings.Join(parts, "; ")
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		location := ve.InstanceLocation
		if location == "" {
			location = "/"
		}
		*out = append(*out, location+": "+ve.Message)
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, out)
	}
}
