package schema

import (
	"strings"
	"time"
)

// RootTarget names the document root in operations that accept a parent or a
// container target. Node identifiers may not use it.
const RootTarget = "root"

// LayoutMode enumerates the layout kinds a renderer knows how to arrange.
type LayoutMode string

const (
	LayoutGrid      LayoutMode = "grid"
	LayoutFlex      LayoutMode = "flex"
	LayoutStack     LayoutMode = "stack"
	LayoutFlow      LayoutMode = "flow"
	LayoutDashboard LayoutMode = "dashboard"
)

// LayoutModes lists the recognised layout kinds in declaration order.
func LayoutModes() []LayoutMode {
	return []LayoutMode{LayoutGrid, LayoutFlex, LayoutStack, LayoutFlow, LayoutDashboard}
}

// Valid reports whether the mode is one of the recognised kinds.
func (m LayoutMode) Valid() bool {
	for _, mode := range LayoutModes() {
		if m == mode {
			return true
		}
	}
	return false
}

// Layout captures top-level arrangement hints. The engine never performs
// layout arithmetic; these values are forwarded to renderers untouched.
type Layout struct {
	Mode    LayoutMode `json:"mode" yaml:"mode"`
	Columns int        `json:"columns,omitempty" yaml:"columns,omitempty"`
	Gap     string     `json:"gap,omitempty" yaml:"gap,omitempty"`
	Padding string     `json:"padding,omitempty" yaml:"padding,omitempty"`
}

// Metadata records where a document came from and how it was processed.
type Metadata struct {
	Intent         string     `json:"intent,omitempty" yaml:"intent,omitempty"`
	ConversationID string     `json:"conversationId,omitempty" yaml:"conversationId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	ProcessedAt    *time.Time `json:"processedAt,omitempty" yaml:"processedAt,omitempty"`
	EngineVersion  string     `json:"engineVersion,omitempty" yaml:"engineVersion,omitempty"`
	Fingerprint    string     `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Warnings       []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Document is one snapshot of the full UI description.
type Document struct {
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Version    int      `json:"version,omitempty" yaml:"version,omitempty"`
	Layout     Layout   `json:"layout" yaml:"layout"`
	Components []Node   `json:"components" yaml:"components"`
	Metadata   Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Components = cloneNodes(d.Components)
	out.Metadata = d.Metadata.clone()
	return out
}

func (m Metadata) clone() Metadata {
	out := m
	if m.ProcessedAt != nil {
		ts := *m.ProcessedAt
		out.ProcessedAt = &ts
	}
	if m.Warnings != nil {
		out.Warnings = append([]string(nil), m.Warnings...)
	}
	return out
}

// Walk visits every node in depth-first preorder. Returning false from fn
// stops the traversal.
func (d Document) Walk(fn func(node Node, parentID string) bool) {
	walkNodes(d.Components, "", fn)
}

func walkNodes(nodes []Node, parentID string, fn func(Node, string) bool) bool {
	for _, node := range nodes {
		if !fn(node, parentID) {
			return false
		}
		if !walkNodes(node.Children, node.ID, fn) {
			return false
		}
	}
	return true
}

// Find performs a single preorder search for the node with the given id.
func (d Document) Find(id string) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	d.Walk(func(node Node, _ string) bool {
		if node.ID == id {
			found, ok = node, true
			return false
		}
		return true
	})
	if !ok {
		return Node{}, false
	}
	return found.Clone(), true
}

// IDs returns every node identifier in preorder. Duplicates are preserved so
// callers can detect them.
func (d Document) IDs() []string {
	var ids []string
	d.Walk(func(node Node, _ string) bool {
		ids = append(ids, node.ID)
		return true
	})
	return ids
}

// IDSet returns the node identifiers as a set.
func (d Document) IDSet() map[string]struct{} {
	set := make(map[string]struct{})
	d.Walk(func(node Node, _ string) bool {
		set[node.ID] = struct{}{}
		return true
	})
	return set
}

// Reference is an action or condition pointing at another node.
type Reference struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Via    string `json:"via"`
}

// References lists every cross-node reference in preorder.
func (d Document) References() []Reference {
	var refs []Reference
	d.Walk(func(node Node, _ string) bool {
		refs = append(refs, node.References()...)
		return true
	})
	return refs
}

// DanglingReferences returns the references whose target is not present in
// the document.
func (d Document) DanglingReferences() []Reference {
	ids := d.IDSet()
	var out []Reference
	for _, ref := range d.References() {
		if _, ok := ids[ref.Target]; !ok {
			out = append(out, ref)
		}
	}
	return out
}

// IsRootTarget reports whether target addresses the document root.
func IsRootTarget(target string) bool {
	trimmed := strings.TrimSpace(target)
	return trimmed == "" || trimmed == RootTarget
}
