package schema

import (
	"encoding/json"
	"fmt"
)

// ToMap converts the document into a generic JSON-shaped tree without
// marshalling node props or style, so values that cannot be serialised are
// still present for sanitisation to inspect.
func (d Document) ToMap() map[string]any {
	out := map[string]any{
		"layout":     layoutMap(d.Layout),
		"components": nodesToGeneric(d.Components),
	}
	if d.ID != "" {
		out["id"] = d.ID
	}
	if d.Version != 0 {
		out["version"] = float64(d.Version)
	}
	if meta := metadataMap(d.Metadata); len(meta) > 0 {
		out["metadata"] = meta
	}
	return out
}

// ToMap converts a node subtree into a generic JSON-shaped tree.
func (n Node) ToMap() map[string]any {
	out := map[string]any{
		"id":   n.ID,
		"type": n.Type,
	}
	if n.Props != nil {
		out["props"] = map[string]any(CloneMap(n.Props))
	}
	if n.Children != nil {
		out["children"] = nodesToGeneric(n.Children)
	}
	if n.Actions != nil {
		out["actions"] = actionsToGeneric(n.Actions)
	}
	if n.Conditions != nil {
		out["conditions"] = toGeneric(n.Conditions)
	}
	if n.Style != nil {
		out["style"] = CloneMap(n.Style)
	}
	if n.Animation != nil {
		out["animation"] = toGeneric(n.Animation)
	}
	return out
}

func nodesToGeneric(nodes []Node) []any {
	out := make([]any, len(nodes))
	for idx, node := range nodes {
		out[idx] = node.ToMap()
	}
	return out
}

func actionsToGeneric(actions []Action) []any {
	out := make([]any, len(actions))
	for idx, action := range actions {
		entry := map[string]any{"trigger": string(action.Trigger)}
		if action.Name != "" {
			entry["name"] = action.Name
		}
		if action.Intent != "" {
			entry["intent"] = action.Intent
		}
		if action.Updates != nil {
			updates := make([]any, len(action.Updates))
			for i, update := range action.Updates {
				item := map[string]any{"target": update.Target}
				if update.Props != nil {
					item["props"] = CloneMap(update.Props)
				}
				updates[i] = item
			}
			entry["updates"] = updates
		}
		out[idx] = entry
	}
	return out
}

func layoutMap(layout Layout) map[string]any {
	out := map[string]any{"mode": string(layout.Mode)}
	if layout.Columns != 0 {
		out["columns"] = float64(layout.Columns)
	}
	if layout.Gap != "" {
		out["gap"] = layout.Gap
	}
	if layout.Padding != "" {
		out["padding"] = layout.Padding
	}
	return out
}

func metadataMap(meta Metadata) map[string]any {
	generic, ok := toGeneric(meta).(map[string]any)
	if !ok {
		return nil
	}
	return generic
}

// toGeneric round-trips typed values whose fields are all serialisable.
func toGeneric(value any) any {
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// FromMap decodes a generic JSON-shaped tree into a Document.
func FromMap(raw map[string]any) (Document, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return Document{}, fmt.Errorf("schema: encode candidate: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("schema: decode candidate: %w", err)
	}
	return doc, nil
}
