package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeOperations parses a single operation object or a list of operations
// from JSON or YAML. YAML input is normalised through JSON so prop values
// carry the same types as JSON payloads.
func DecodeOperations(data []byte) ([]Operation, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("schema: operation payload is empty")
	}
	if !json.Valid(data) {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("schema: decode operations: %w", err)
		}
		encoded, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("schema: decode operations: %w", err)
		}
		data = encoded
	}

	if data[0] == '[' {
		var ops []Operation
		if err := json.Unmarshal(data, &ops); err != nil {
			return nil, fmt.Errorf("schema: decode operations: %w", err)
		}
		return ops, nil
	}
	var op Operation
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, fmt.Errorf("schema: decode operations: %w", err)
	}
	return []Operation{op}, nil
}
