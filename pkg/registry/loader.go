package registry

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type manifestFile struct {
	Components []manifestComponent `json:"components" yaml:"components"`
}

type manifestComponent struct {
	Type         string         `json:"type" yaml:"type"`
	Description  string         `json:"description" yaml:"description"`
	DefaultProps map[string]any `json:"defaultProps" yaml:"defaultProps"`
	PropsSchema  any            `json:"propsSchema" yaml:"propsSchema"`
}

// LoadFS walks fsys and parses JSON/YAML component manifests. Every
// component in a manifest becomes a custom Definition; its propsSchema (an
// inline object or a JSON string) becomes the props predicate.
func LoadFS(fsys fs.FS) ([]Definition, error) {
	if fsys == nil {
		return nil, nil
	}

	seen := make(map[string]string)
	var defs []Definition
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isManifestFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("registry: read %s: %w", path, err)
		}
		manifest, err := parseManifest(data, path)
		if err != nil {
			return err
		}

		for idx, raw := range manifest.Components {
			def, err := definitionFromManifest(raw)
			if err != nil {
				return fmt.Errorf("registry: %s component %d: %w", path, idx, err)
			}
			if prev, exists := seen[def.Type]; exists {
				return fmt.Errorf("registry: duplicate component %q (files %s, %s)", def.Type, prev, path)
			}
			seen[def.Type] = path
			defs = append(defs, def)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// RegisterAll registers every definition, stopping at the first failure.
func (r *Memory) RegisterAll(defs []Definition) error {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func parseManifest(data []byte, source string) (manifestFile, error) {
	var manifest manifestFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return manifestFile{}, fmt.Errorf("registry: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &manifest); err == nil {
		return manifest, nil
	}
	if err := yaml.Unmarshal(data, &manifest); err == nil {
		return manifest, nil
	}
	return manifestFile{}, fmt.Errorf("registry: parse %s: invalid JSON or YAML", source)
}

func definitionFromManifest(raw manifestComponent) (Definition, error) {
	name := normalize(raw.Type)
	if name == "" {
		return Definition{}, fmt.Errorf("type is required")
	}

	defaults, err := normalizeJSON(raw.DefaultProps)
	if err != nil {
		return Definition{}, fmt.Errorf("default props: %w", err)
	}
	def := Definition{
		Type:        name,
		Description: strings.TrimSpace(raw.Description),
		Custom:      true,
		Validator:   AllowAny,
	}
	if m, ok := defaults.(map[string]any); ok {
		def.DefaultProps = m
	}

	switch schemaSource := raw.PropsSchema.(type) {
	case nil:
	case string:
		v, err := SchemaValidator(schemaSource)
		if err != nil {
			return Definition{}, err
		}
		def.Validator = v
	default:
		encoded, err := json.Marshal(normalizeYAML(schemaSource))
		if err != nil {
			return Definition{}, fmt.Errorf("props schema: %w", err)
		}
		v, err := SchemaValidator(string(encoded))
		if err != nil {
			return Definition{}, err
		}
		def.Validator = v
	}
	return def, nil
}

// normalizeJSON round-trips YAML-decoded values so numbers and maps match what
// encoding/json would produce for the same document.
func normalizeJSON(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(normalizeYAML(value))
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeYAML converts map[any]any nodes, which older YAML payloads may
// produce, into map[string]any.
func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = normalizeYAML(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, v := range typed {
			out[idx] = normalizeYAML(v)
		}
		return out
	default:
		return value
	}
}

func isManifestFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
