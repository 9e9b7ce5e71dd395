package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-uischema/pkg/schema"
)

// IssueCode classifies a validation finding.
type IssueCode string

const (
	CodeShape             IssueCode = "shape"
	CodeDuplicateID       IssueCode = "duplicate_id"
	CodeReservedID        IssueCode = "reserved_id"
	CodeUnknownType       IssueCode = "unknown_type"
	CodeInvalidProps      IssueCode = "invalid_props"
	CodeDanglingReference IssueCode = "dangling_reference"
	CodeInvalidCondition  IssueCode = "invalid_condition"
	CodeSanitized         IssueCode = "sanitized"
)

// Issue is one validation error or warning with optional location metadata.
type Issue struct {
	Code    IssueCode `json:"code"`
	NodeID  string    `json:"nodeId,omitempty"`
	Type    string    `json:"type,omitempty"`
	Path    string    `json:"path,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(string(i.Code))
	if i.NodeID != "" {
		b.WriteString(" [")
		b.WriteString(i.NodeID)
		if i.Type != "" {
			b.WriteString(":")
			b.WriteString(i.Type)
		}
		b.WriteString("]")
	}
	if i.Path != "" {
		b.WriteString(" at ")
		b.WriteString(i.Path)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	return b.String()
}

// Result captures the outcome of a validation pass. Document is set only when
// Valid is true and holds the sanitised document.
type Result struct {
	Valid    bool             `json:"valid"`
	Document *schema.Document `json:"document,omitempty"`
	Errors   []Issue          `json:"errors,omitempty"`
	Warnings []Issue          `json:"warnings,omitempty"`
}

// Err returns the result's errors as a *ValidationError, or nil when valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Issues: append([]Issue(nil), r.Errors...)}
}

// WarningMessages flattens warnings into display strings.
func (r Result) WarningMessages() []string {
	if len(r.Warnings) == 0 {
		return nil
	}
	out := make([]string, len(r.Warnings))
	for idx, w := range r.Warnings {
		out[idx] = w.String()
	}
	return out
}

// ValidationError reports why a candidate or evolved document was rejected.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "validation: document rejected"
	}
	parts := make([]string, len(e.Issues))
	for idx, issue := range e.Issues {
		parts[idx] = issue.String()
	}
	return fmt.Sprintf("validation: %d issue(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// NodeIDs lists the distinct node identifiers named by the issues.
func (e *ValidationError) NodeIDs() []string {
	if e == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, issue := range e.Issues {
		if issue.NodeID == "" {
			continue
		}
		if _, ok := seen[issue.NodeID]; ok {
			continue
		}
		seen[issue.NodeID] = struct{}{}
		out = append(out, issue.NodeID)
	}
	return out
}

// Has reports whether any issue carries code.
func (e *ValidationError) Has(code IssueCode) bool {
	if e == nil {
		return false
	}
	for _, issue := range e.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}
