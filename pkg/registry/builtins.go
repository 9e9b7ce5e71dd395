package registry

import "github.com/goliatone/go-uischema/pkg/schema"

// Builtins returns the definitions for the known component kinds. Each kind
// carries a typed prop shape expressed as JSON Schema.
func Builtins() []Definition {
	return []Definition{
		{
			Type:        schema.KindStatCard,
			Description: "Single metric with optional trend indicator",
			DefaultProps: map[string]any{
				"trend": "flat",
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "required": ["label"],
  "properties": {
    "label": {"type": "string"},
    "value": {"type": ["string", "number"]},
    "unit": {"type": "string"},
    "delta": {"type": "number"},
    "trend": {"enum": ["up", "down", "flat"]}
  }
}`),
		},
		{
			Type:        schema.KindTable,
			Description: "Tabular data with optional paging",
			DefaultProps: map[string]any{
				"pageSize": float64(10),
				"striped":  true,
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "properties": {
    "columns": {
      "type": "array",
      "items": {
        "oneOf": [
          {"type": "string"},
          {"type": "object", "required": ["key"], "properties": {"key": {"type": "string"}, "label": {"type": "string"}}}
        ]
      }
    },
    "rows": {"type": "array"},
    "pageSize": {"type": "integer", "minimum": 1},
    "striped": {"type": "boolean"}
  }
}`),
		},
		{
			Type:        schema.KindKanban,
			Description: "Board of columns holding cards",
			DefaultProps: map[string]any{
				"columns": []any{},
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "properties": {
    "columns": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title"],
        "properties": {
          "id": {"type": "string"},
          "title": {"type": "string"},
          "cards": {"type": "array"}
        }
      }
    }
  }
}`),
		},
		{
			Type:        schema.KindChart,
			Description: "Line, bar, pie or area chart",
			DefaultProps: map[string]any{
				"kind":   "line",
				"legend": true,
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "properties": {
    "kind": {"enum": ["line", "bar", "pie", "area"]},
    "series": {"type": "array"},
    "xKey": {"type": "string"},
    "yKey": {"type": "string"},
    "legend": {"type": "boolean"}
  }
}`),
		},
		{
			Type:        schema.KindForm,
			Description: "Input group with a submit action",
			DefaultProps: map[string]any{
				"submitLabel": "Submit",
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "fields": {"type": "array"},
    "submitLabel": {"type": "string"}
  }
}`),
		},
		{
			Type:        schema.KindText,
			Description: "Static text block",
			DefaultProps: map[string]any{
				"variant": "body",
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "properties": {
    "content": {"type": "string"},
    "variant": {"enum": ["body", "heading", "caption", "code"]}
  }
}`),
		},
		{
			Type:        schema.KindButton,
			Description: "Clickable call to action",
			DefaultProps: map[string]any{
				"variant":  "primary",
				"disabled": false,
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "properties": {
    "label": {"type": "string"},
    "variant": {"enum": ["primary", "secondary", "ghost", "danger"]},
    "disabled": {"type": "boolean"}
  }
}`),
		},
		{
			Type:        schema.KindContainer,
			Description: "Grouping node for child components",
			DefaultProps: map[string]any{
				"direction": "column",
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "direction": {"enum": ["row", "column"]}
  }
}`),
		},
		{
			Type:        schema.KindList,
			Description: "Ordered or unordered list",
			DefaultProps: map[string]any{
				"ordered": false,
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "properties": {
    "items": {"type": "array"},
    "ordered": {"type": "boolean"}
  }
}`),
		},
		{
			Type:        schema.KindInput,
			Description: "Single form input",
			DefaultProps: map[string]any{
				"inputType": "text",
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "label": {"type": "string"},
    "placeholder": {"type": "string"},
    "inputType": {"enum": ["text", "number", "email", "password", "date", "textarea"]}
  }
}`),
		},
		{
			Type:        schema.KindImage,
			Description: "Image with alternative text",
			DefaultProps: map[string]any{
				"alt": "",
			},
			Validator: MustSchemaValidator(`{
  "type": "object",
  "required": ["src"],
  "properties": {
    "src": {"type": "string"},
    "alt": {"type": "string"}
  }
}`),
		},
	}
}
