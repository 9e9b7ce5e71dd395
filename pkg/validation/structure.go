package validation

import (
	"bytes"
	_ "embed"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/document.schema.json
var documentSchemaJSON []byte

const documentSchemaURL = "https://uischema.local/document.schema.json"

var (
	documentSchemaOnce sync.Once
	documentSchema     *jsonschema.Schema
	documentSchemaErr  error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(documentSchemaURL, bytes.NewReader(documentSchemaJSON)); err != nil {
			documentSchemaErr = err
			return
		}
		documentSchema, documentSchemaErr = compiler.Compile(documentSchemaURL)
	})
	return documentSchema, documentSchemaErr
}

// checkStructure validates the generic tree against the embedded document
// schema. Issues are sorted so repeated runs report them identically.
func checkStructure(tree map[string]any) []Issue {
	compiled, err := compiledDocumentSchema()
	if err != nil {
		return []Issue{{Code: CodeShape, Message: "document schema unavailable: " + err.Error()}}
	}
	err = compiled.Validate(tree)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Issue{{Code: CodeShape, Message: strings.TrimSpace(err.Error())}}
	}

	var issues []Issue
	collectShapeIssues(tree, ve, &issues)
	if len(issues) == 0 {
		issues = append(issues, Issue{Code: CodeShape, Path: ve.InstanceLocation, Message: ve.Message})
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Path == issues[j].Path {
			return issues[i].Message < issues[j].Message
		}
		return issues[i].Path < issues[j].Path
	})
	return dedupeIssues(issues)
}

func collectShapeIssues(tree map[string]any, ve *jsonschema.ValidationError, out *[]Issue) {
	if len(ve.Causes) == 0 {
		nodeID, nodeType := nodeAtPointer(tree, ve.InstanceLocation)
		*out = append(*out, Issue{
			Code:    CodeShape,
			NodeID:  nodeID,
			Type:    nodeType,
			Path:    ve.InstanceLocation,
			Message: ve.Message,
		})
		return
	}
	for _, cause := range ve.Causes {
		collectShapeIssues(tree, cause, out)
	}
}

func dedupeIssues(issues []Issue) []Issue {
	out := issues[:0]
	seen := make(map[Issue]struct{}, len(issues))
	for _, issue := range issues {
		if _, ok := seen[issue]; ok {
			continue
		}
		seen[issue] = struct{}{}
		out = append(out, issue)
	}
	return out
}

// nodeAtPointer resolves the innermost component node that contains the JSON
// pointer location, returning its id and type when they are strings.
func nodeAtPointer(tree map[string]any, pointer string) (string, string) {
	trimmed := strings.TrimPrefix(pointer, "/")
	if trimmed == "" {
		return "", ""
	}
	segments := strings.Split(trimmed, "/")

	var (
		current  any = tree
		nodeID   string
		nodeType string
	)
	for idx, segment := range segments {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		switch typed := current.(type) {
		case map[string]any:
			current = typed[segment]
		case []any:
			pos, err := strconv.Atoi(segment)
			if err != nil || pos < 0 || pos >= len(typed) {
				return nodeID, nodeType
			}
			current = typed[pos]
			if idx > 0 && isNodeList(segments[idx-1]) {
				if node, ok := current.(map[string]any); ok {
					nodeID, _ = node["id"].(string)
					nodeType, _ = node["type"].(string)
				}
			}
		default:
			return nodeID, nodeType
		}
	}
	return nodeID, nodeType
}

func isNodeList(segment string) bool {
	return segment == "components" || segment == "children"
}
