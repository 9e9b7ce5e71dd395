// Package validation turns untrusted candidate documents into validated,
// sanitised schema.Document values, or into structured issues explaining the
// rejection. Validation is deterministic and has no side effects beyond
// read-only registry lookups.
package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-uischema/pkg/condition"
	"github.com/goliatone/go-uischema/pkg/registry"
	"github.com/goliatone/go-uischema/pkg/sanitize"
	"github.com/goliatone/go-uischema/pkg/schema"
)

// Option customises a Validator.
type Option func(*Validator)

// WithSanitizer overrides the sanitiser applied to props and style.
func WithSanitizer(s *sanitize.Sanitizer) Option {
	return func(v *Validator) {
		if s != nil {
			v.sanitizer = s
		}
	}
}

// Validator checks candidates against the document shape and the component
// registry.
type Validator struct {
	registry  registry.Registry
	sanitizer *sanitize.Sanitizer
}

// New constructs a Validator. The registry is consulted read-only.
func New(reg registry.Registry, opts ...Option) *Validator {
	v := &Validator{
		registry:  reg,
		sanitizer: sanitize.New(sanitize.DefaultConfig()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// ValidateOption tunes a single Validate call.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	retired map[string]struct{}
}

// WithRetired downgrades dangling references to the given ids to warnings.
// The engine passes the ids an evolution removed so that references the
// evolution broke are reported rather than rejected.
func WithRetired(ids ...string) ValidateOption {
	return func(cfg *validateConfig) {
		if len(ids) == 0 {
			return
		}
		if cfg.retired == nil {
			cfg.retired = make(map[string]struct{}, len(ids))
		}
		for _, id := range ids {
			cfg.retired[id] = struct{}{}
		}
	}
}

// Validate checks a candidate document. Accepted inputs are raw JSON or YAML
// ([]byte, json.RawMessage, string), a generic map, or a schema.Document.
func (v *Validator) Validate(candidate any, opts ...ValidateOption) Result {
	cfg := validateConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	tree, err := normalizeCandidate(candidate)
	if err != nil {
		return Result{Errors: []Issue{{Code: CodeShape, Message: err.Error()}}}
	}
	return v.run(tree, cfg, true)
}

// ValidateNode validates a single subtree as it would appear in a document:
// shape, id uniqueness within the subtree, type resolution and prop
// predicates. Cross references are left to the full-document pass. The
// returned node is the sanitised subtree.
func (v *Validator) ValidateNode(node schema.Node) (schema.Node, error) {
	tree := map[string]any{
		"layout":     map[string]any{"mode": string(schema.LayoutStack)},
		"components": []any{node.ToMap()},
	}
	result := v.run(tree, validateConfig{}, false)
	if !result.Valid {
		return schema.Node{}, result.Err()
	}
	return result.Document.Components[0], nil
}

func (v *Validator) run(tree map[string]any, cfg validateConfig, checkRefs bool) Result {
	result := Result{}
	result.Warnings = v.sanitizeTree(tree)

	if issues := checkStructure(tree); len(issues) > 0 {
		result.Errors = issues
		return result
	}

	doc, err := schema.FromMap(tree)
	if err != nil {
		result.Errors = []Issue{{Code: CodeShape, Message: err.Error()}}
		return result
	}

	if issue, ok := checkIdentifiers(doc); !ok {
		result.Errors = []Issue{issue}
		return result
	}

	result.Errors = append(result.Errors, v.checkTypes(doc)...)
	result.Errors = append(result.Errors, checkConditions(doc)...)

	if checkRefs {
		errs, warns := checkReferences(doc, cfg.retired)
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warns...)
	}

	if len(result.Errors) > 0 {
		return result
	}
	result.Valid = true
	result.Document = &doc
	return result
}

func normalizeCandidate(candidate any) (map[string]any, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("candidate is empty")
	case schema.Document:
		return typed.ToMap(), nil
	case *schema.Document:
		if typed == nil {
			return nil, fmt.Errorf("candidate is empty")
		}
		return typed.ToMap(), nil
	case map[string]any:
		return schema.CloneMap(typed), nil
	case json.RawMessage:
		return decodeCandidate([]byte(typed))
	case []byte:
		return decodeCandidate(typed)
	case string:
		return decodeCandidate([]byte(typed))
	default:
		return nil, fmt.Errorf("unsupported candidate type %T", candidate)
	}
}

// decodeCandidate parses JSON first and falls back to YAML, matching the
// manifest loaders.
func decodeCandidate(data []byte) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("candidate is empty")
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err == nil {
		if out == nil {
			return nil, fmt.Errorf("candidate is not an object")
		}
		return out, nil
	}

	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("candidate is not valid JSON or YAML")
	}
	encoded, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("candidate is not valid JSON or YAML")
	}
	if err := json.Unmarshal(encoded, &out); err != nil || out == nil {
		return nil, fmt.Errorf("candidate is not an object")
	}
	return out, nil
}

// sanitizeTree replaces props, style and action update props throughout the
// component tree with their sanitised form.
func (v *Validator) sanitizeTree(tree map[string]any) []Issue {
	nodes, ok := tree["components"].([]any)
	if !ok {
		return nil
	}
	var warnings []Issue
	v.sanitizeNodes(nodes, &warnings)
	return warnings
}

func (v *Validator) sanitizeNodes(nodes []any, warnings *[]Issue) {
	for _, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		nodeID, _ := node["id"].(string)
		nodeType, _ := node["type"].(string)
		record := func(findings []sanitize.Finding) {
			for _, f := range findings {
				*warnings = append(*warnings, Issue{
					Code:    CodeSanitized,
					NodeID:  nodeID,
					Type:    nodeType,
					Path:    f.Path,
					Message: f.Reason,
				})
			}
		}

		for _, key := range []string{"props", "style"} {
			if m, ok := node[key].(map[string]any); ok {
				clean, findings := v.sanitizer.Props(key, m)
				node[key] = clean
				record(findings)
			}
		}

		if actions, ok := node["actions"].([]any); ok {
			for ai, rawAction := range actions {
				action, ok := rawAction.(map[string]any)
				if !ok {
					continue
				}
				updates, ok := action["updates"].([]any)
				if !ok {
					continue
				}
				for ui, rawUpdate := range updates {
					update, ok := rawUpdate.(map[string]any)
					if !ok {
						continue
					}
					if m, ok := update["props"].(map[string]any); ok {
						path := "actions[" + strconv.Itoa(ai) + "].updates[" + strconv.Itoa(ui) + "].props"
						clean, findings := v.sanitizer.Props(path, m)
						update["props"] = clean
						record(findings)
					}
				}
			}
		}

		if children, ok := node["children"].([]any); ok {
			v.sanitizeNodes(children, warnings)
		}
	}
}

func checkIdentifiers(doc schema.Document) (Issue, bool) {
	seen := make(map[string]struct{})
	var (
		issue Issue
		ok    = true
	)
	doc.Walk(func(node schema.Node, _ string) bool {
		if strings.TrimSpace(node.ID) == schema.RootTarget {
			issue = Issue{
				Code:    CodeReservedID,
				NodeID:  node.ID,
				Type:    node.Type,
				Message: fmt.Sprintf("id %q is reserved for the document root", schema.RootTarget),
			}
			ok = false
			return false
		}
		if _, dup := seen[node.ID]; dup {
			issue = Issue{
				Code:    CodeDuplicateID,
				NodeID:  node.ID,
				Type:    node.Type,
				Message: fmt.Sprintf("id %q appears more than once", node.ID),
			}
			ok = false
			return false
		}
		seen[node.ID] = struct{}{}
		return true
	})
	return issue, ok
}

func (v *Validator) checkTypes(doc schema.Document) []Issue {
	var issues []Issue
	doc.Walk(func(node schema.Node, _ string) bool {
		if v.registry == nil || !v.registry.Exists(node.Type) {
			issues = append(issues, Issue{
				Code:    CodeUnknownType,
				NodeID:  node.ID,
				Type:    node.Type,
				Message: fmt.Sprintf("component type %q is not registered", node.Type),
			})
			return true
		}
		def, ok := v.registry.Resolve(node.Type)
		if !ok {
			issues = append(issues, Issue{
				Code:    CodeUnknownType,
				NodeID:  node.ID,
				Type:    node.Type,
				Message: fmt.Sprintf("component type %q could not be resolved", node.Type),
			})
			return true
		}
		if err := def.ValidateProps(map[string]any(node.Props)); err != nil {
			issues = append(issues, Issue{
				Code:    CodeInvalidProps,
				NodeID:  node.ID,
				Type:    node.Type,
				Path:    "props",
				Message: err.Error(),
			})
		}
		return true
	})
	return issues
}

// checkConditions compiles every condition expression so malformed ones are
// rejected before they reach a renderer.
func checkConditions(doc schema.Document) []Issue {
	var issues []Issue
	doc.Walk(func(node schema.Node, _ string) bool {
		for idx, cond := range node.Conditions {
			if _, err := condition.Compile(cond.Expr); err != nil {
				issues = append(issues, Issue{
					Code:    CodeInvalidCondition,
					NodeID:  node.ID,
					Type:    node.Type,
					Path:    "conditions[" + strconv.Itoa(idx) + "].expr",
					Message: err.Error(),
				})
			}
		}
		return true
	})
	return issues
}

func checkReferences(doc schema.Document, retired map[string]struct{}) (errs, warns []Issue) {
	ids := doc.IDSet()
	for _, ref := range doc.References() {
		if _, ok := ids[ref.Target]; ok {
			continue
		}
		issue := Issue{
			Code:    CodeDanglingReference,
			NodeID:  ref.Source,
			Path:    ref.Via,
			Message: fmt.Sprintf("reference to %q does not resolve", ref.Target),
		}
		if _, ok := retired[ref.Target]; ok {
			warns = append(warns, issue)
			continue
		}
		errs = append(errs, issue)
	}
	return errs, warns
}
