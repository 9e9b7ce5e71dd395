package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ComponentExtension marks an OpenAPI component schema as a UI component
// kind. The value is either `true` (use the schema name) or a string naming
// the component type.
const ComponentExtension = "x-uischema-component"

// LoadOpenAPI reads component kinds from the components.schemas section of an
// OpenAPI 3 document. Only schemas carrying ComponentExtension are
// registered. Property defaults become default props and the schema itself
// validates props through kin-openapi.
func LoadOpenAPI(ctx context.Context, data []byte) ([]Definition, error) {
	if len(data) == 0 {
		return nil, errors.New("registry: openapi document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("registry: load openapi document: %w", err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var defs []Definition
	for _, name := range names {
		ref := spec.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		componentType, ok := componentTypeFor(name, ref.Value.Extensions)
		if !ok {
			continue
		}
		defs = append(defs, Definition{
			Type:         componentType,
			Description:  strings.TrimSpace(ref.Value.Description),
			DefaultProps: defaultsFromSchema(ref.Value),
			Validator:    openAPIValidator{schema: ref.Value},
			Custom:       true,
		})
	}
	return defs, nil
}

func componentTypeFor(schemaName string, extensions map[string]any) (string, bool) {
	raw, ok := extensions[ComponentExtension]
	if !ok {
		return "", false
	}
	switch value := raw.(type) {
	case bool:
		if !value {
			return "", false
		}
		return normalize(schemaName), true
	case string:
		if name := normalize(value); name != "" {
			return name, true
		}
		return normalize(schemaName), true
	default:
		return "", false
	}
}

func defaultsFromSchema(s *openapi3.Schema) map[string]any {
	if len(s.Properties) == 0 {
		return nil
	}
	out := make(map[string]any)
	for prop, ref := range s.Properties {
		if ref == nil || ref.Value == nil || ref.Value.Default == nil {
			continue
		}
		out[prop] = ref.Value.Default
	}
	if len(out) == 0 {
		return nil
	}
	normalized, err := normalizeJSON(out)
	if err != nil {
		return nil
	}
	m, _ := normalized.(map[string]any)
	return m
}

type openAPIValidator struct {
	schema *openapi3.Schema
}

func (v openAPIValidator) ValidateProps(props map[string]any) error {
	if err := v.schema.VisitJSON(props, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("props do not match schema: %w", err)
	}
	return nil
}
