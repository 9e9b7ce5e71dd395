// Package evolution applies discrete operations (add, remove, update, morph,
// reorder) to a schema.Document. Application is pure: the input document is
// cloned, the clone is transformed, and either the whole result or an error
// is returned.
package evolution

import (
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-uischema/pkg/schema"
)

// NodeValidator checks a subtree before add or morph inserts it. It returns
// the sanitised subtree to insert.
type NodeValidator interface {
	ValidateNode(node schema.Node) (schema.Node, error)
}

// Option customises an Applier.
type Option func(*Applier)

// WithNodeValidator validates nodes introduced by add and morph.
func WithNodeValidator(v NodeValidator) Option {
	return func(a *Applier) {
		a.nodes = v
	}
}

// Applier applies evolution operations.
type Applier struct {
	nodes NodeValidator
}

// New constructs an Applier.
func New(opts ...Option) *Applier {
	a := &Applier{}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Result is the outcome of a successful application.
type Result struct {
	Document schema.Document
	// Retired lists ids present before the operation and absent after it.
	Retired []string
	// Warnings describes references left dangling by retired ids.
	Warnings []string
}

// Apply applies a single operation to doc.
func (a *Applier) Apply(doc schema.Document, op schema.Operation) (Result, error) {
	return a.ApplyAll(doc, op)
}

// ApplyAll applies ops in order as one unit: if any operation fails, no
// result is produced.
func (a *Applier) ApplyAll(doc schema.Document, ops ...schema.Operation) (Result, error) {
	if len(ops) == 0 {
		return Result{}, &Error{Code: CodeInvalidOperation, Message: "no operations supplied"}
	}
	next := doc.Clone()
	for _, op := range ops {
		if err := a.applyOne(&next, op); err != nil {
			return Result{}, err
		}
		if dup, ok := firstDuplicate(next); ok {
			return Result{}, newError(CodeDuplicateID, op, "id %q appears more than once after application", dup)
		}
	}
	return finalize(doc, next), nil
}

func (a *Applier) applyOne(doc *schema.Document, op schema.Operation) error {
	switch op.Type {
	case schema.OpAdd:
		return a.add(doc, op)
	case schema.OpRemove:
		return remove(doc, op)
	case schema.OpUpdate:
		return update(doc, op)
	case schema.OpMorph:
		return a.morph(doc, op)
	case schema.OpReorder:
		return reorder(doc, op)
	default:
		return newError(CodeInvalidOperation, op, "unknown operation type %q", op.Type)
	}
}

func (a *Applier) add(doc *schema.Document, op schema.Operation) error {
	if op.Node == nil {
		return newError(CodeInvalidOperation, op, "add requires a node")
	}
	node, err := a.checkNode(*op.Node, op)
	if err != nil {
		return err
	}
	if op.Animation != nil {
		anim := *op.Animation
		node.Animation = &anim
	}

	siblings, err := childrenOf(doc, op)
	if err != nil {
		return err
	}
	pos := len(*siblings)
	if op.Position != nil {
		pos = clamp(*op.Position, 0, len(*siblings))
	}
	*siblings = slices.Insert(*siblings, pos, node)
	return nil
}

func remove(doc *schema.Document, op schema.Operation) error {
	if schema.IsRootTarget(op.Target) {
		return newError(CodeInvalidOperation, op, "the document root cannot be removed")
	}
	container, idx, ok := locate(&doc.Components, op.Target)
	if !ok {
		return newError(CodeTargetNotFound, op, "no node with id %q", op.Target)
	}
	*container = slices.Delete(*container, idx, idx+1)
	return nil
}

func update(doc *schema.Document, op schema.Operation) error {
	if schema.IsRootTarget(op.Target) {
		return newError(CodeInvalidOperation, op, "update requires a node target")
	}
	if op.Patch == nil {
		return newError(CodeInvalidOperation, op, "update requires a patch")
	}
	container, idx, ok := locate(&doc.Components, op.Target)
	if !ok {
		return newError(CodeTargetNotFound, op, "no node with id %q", op.Target)
	}
	target := &(*container)[idx]
	patch := op.Patch

	if t := strings.TrimSpace(patch.Type); t != "" {
		target.Type = t
	}
	if patch.Props != nil {
		target.Props = schema.Props(mergeMap(target.Props, patch.Props))
	}
	if patch.Style != nil {
		target.Style = mergeMap(target.Style, patch.Style)
	}
	if patch.Children != nil {
		target.Children = (schema.Node{Children: patch.Children}).Clone().Children
	}
	if patch.Actions != nil {
		target.Actions = (schema.Node{Actions: patch.Actions}).Clone().Actions
	}
	if patch.Conditions != nil {
		target.Conditions = append([]schema.Condition{}, patch.Conditions...)
	}
	switch {
	case patch.Animation != nil:
		anim := *patch.Animation
		target.Animation = &anim
	case op.Animation != nil:
		anim := *op.Animation
		target.Animation = &anim
	}
	return nil
}

func (a *Applier) morph(doc *schema.Document, op schema.Operation) error {
	if schema.IsRootTarget(op.Target) {
		return newError(CodeInvalidOperation, op, "morph requires a node target")
	}
	if op.Node == nil {
		return newError(CodeInvalidOperation, op, "morph requires a replacement node")
	}
	container, idx, ok := locate(&doc.Components, op.Target)
	if !ok {
		return newError(CodeTargetNotFound, op, "no node with id %q", op.Target)
	}
	node, err := a.checkNode(*op.Node, op)
	if err != nil {
		return err
	}
	if op.Animation != nil {
		anim := *op.Animation
		node.Animation = &anim
	}
	(*container)[idx] = node
	return nil
}

func reorder(doc *schema.Document, op schema.Operation) error {
	siblings, err := childrenOf(doc, op)
	if err != nil {
		return err
	}
	current := *siblings
	if len(op.Order) != len(current) {
		return newError(CodeInvalidReorder, op, "order lists %d ids but the target has %d children", len(op.Order), len(current))
	}

	byID := make(map[string]schema.Node, len(current))
	for _, child := range current {
		byID[child.ID] = child
	}
	used := make(map[string]struct{}, len(op.Order))
	reordered := make([]schema.Node, 0, len(current))
	for _, id := range op.Order {
		child, ok := byID[id]
		if !ok {
			return newError(CodeInvalidReorder, op, "%q is not a child of the target", id)
		}
		if _, dup := used[id]; dup {
			return newError(CodeInvalidReorder, op, "%q is listed more than once", id)
		}
		used[id] = struct{}{}
		reordered = append(reordered, child)
	}
	*siblings = reordered

	if op.Animation != nil && !schema.IsRootTarget(op.Target) {
		container, idx, _ := locate(&doc.Components, op.Target)
		anim := *op.Animation
		(*container)[idx].Animation = &anim
	}
	return nil
}

func (a *Applier) checkNode(node schema.Node, op schema.Operation) (schema.Node, error) {
	if a.nodes == nil {
		return node.Clone(), nil
	}
	checked, err := a.nodes.ValidateNode(node)
	if err != nil {
		return schema.Node{}, fmt.Errorf("evolution: %s rejected node %q: %w", op, node.ID, err)
	}
	return checked, nil
}

// childrenOf resolves the child list addressed by op.Target: the document
// root for an empty or root target, otherwise the named node's children.
func childrenOf(doc *schema.Document, op schema.Operation) (*[]schema.Node, error) {
	if schema.IsRootTarget(op.Target) {
		return &doc.Components, nil
	}
	container, idx, ok := locate(&doc.Components, op.Target)
	if !ok {
		return nil, newError(CodeTargetNotFound, op, "no node with id %q", op.Target)
	}
	return &(*container)[idx].Children, nil
}

// locate performs a depth-first preorder search and returns the slice that
// holds the match together with its index.
func locate(nodes *[]schema.Node, id string) (*[]schema.Node, int, bool) {
	for idx := range *nodes {
		if (*nodes)[idx].ID == id {
			return nodes, idx, true
		}
		if container, pos, ok := locate(&(*nodes)[idx].Children, id); ok {
			return container, pos, true
		}
	}
	return nil, 0, false
}

func firstDuplicate(doc schema.Document) (string, bool) {
	seen := make(map[string]struct{})
	dup := ""
	found := false
	doc.Walk(func(node schema.Node, _ string) bool {
		if _, ok := seen[node.ID]; ok {
			dup, found = node.ID, true
			return false
		}
		seen[node.ID] = struct{}{}
		return true
	})
	return dup, found
}

func finalize(before, after schema.Document) Result {
	remaining := after.IDSet()
	var retired []string
	retiredSet := make(map[string]struct{})
	for _, id := range before.IDs() {
		if _, ok := remaining[id]; ok {
			continue
		}
		if _, seen := retiredSet[id]; seen {
			continue
		}
		retiredSet[id] = struct{}{}
		retired = append(retired, id)
	}

	var warnings []string
	for _, ref := range after.DanglingReferences() {
		if _, ok := retiredSet[ref.Target]; !ok {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("node %q references removed node %q via %s", ref.Source, ref.Target, ref.Via))
	}
	return Result{Document: after, Retired: retired, Warnings: warnings}
}

// mergeMap merges patch into base key-wise. Nil patch values delete keys.
func mergeMap(base, patch map[string]any) map[string]any {
	out := schema.CloneMap(base)
	if out == nil {
		out = make(map[string]any, len(patch))
	}
	for key, value := range patch {
		if value == nil {
			delete(out, key)
			continue
		}
		out[key] = schema.CloneValue(value)
	}
	return out
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
