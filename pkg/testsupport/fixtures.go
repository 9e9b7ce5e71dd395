package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-uischema/pkg/schema"
)

// LoadCandidate reads a candidate document fixture and returns its raw bytes.
// Candidates are kept raw so tests exercise the same decode path as callers.
func LoadCandidate(t *testing.T, path string) []byte {
	t.Helper()

	data, err := LoadCandidateFromPath(path)
	if err != nil {
		t.Fatalf("load candidate: %v", err)
	}
	return data
}

// LoadCandidateFromPath returns a candidate fixture without requiring
// testing.T.
func LoadCandidateFromPath(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("testsupport: candidate path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read candidate: %w", err)
	}
	return data, nil
}

// MustLoadOperations decodes a JSON or YAML fixture holding one operation or
// a list of operations.
func MustLoadOperations(t *testing.T, path string) []schema.Operation {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load operations: %v", err)
	}
	ops, err := schema.DecodeOperations(data)
	if err != nil {
		t.Fatalf("decode operations: %v", err)
	}
	return ops
}

// MustLoadDocument loads a JSON golden file into a Document.
func MustLoadDocument(t *testing.T, path string) schema.Document {
	t.Helper()

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocument reads a JSON document golden, returning an error for callers
// managing setup outside of *testing.T.
func LoadDocument(path string) (schema.Document, error) {
	if path == "" {
		return schema.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	var out schema.Document
	if err := json.Unmarshal(data, &out); err != nil {
		return schema.Document{}, fmt.Errorf("testsupport: unmarshal document: %w", err)
	}
	return out, nil
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareDocuments diffs two documents ignoring the content fingerprint and
// the nil/empty distinction JSON goldens cannot express.
func CompareDocuments(want, got schema.Document) string {
	return cmp.Diff(want, got,
		cmpopts.EquateEmpty(),
		cmpopts.IgnoreFields(schema.Metadata{}, "Fingerprint"),
	)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
