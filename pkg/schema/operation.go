package schema

import "fmt"

// OperationType names a discrete evolution.
type OperationType string

const (
	OpAdd     OperationType = "add"
	OpRemove  OperationType = "remove"
	OpUpdate  OperationType = "update"
	OpMorph   OperationType = "morph"
	OpReorder OperationType = "reorder"
)

// Valid reports whether the operation type is recognised.
func (t OperationType) Valid() bool {
	switch t {
	case OpAdd, OpRemove, OpUpdate, OpMorph, OpReorder:
		return true
	default:
		return false
	}
}

// Operation is one evolution request against the current document.
//
// Target names the node the operation acts on. For add it names the parent
// (empty or RootTarget inserts at the document root); for reorder it names
// the container whose children are permuted.
type Operation struct {
	Type      OperationType `json:"type" yaml:"type"`
	Target    string        `json:"target,omitempty" yaml:"target,omitempty"`
	Node      *Node         `json:"node,omitempty" yaml:"node,omitempty"`
	Patch     *NodePatch    `json:"patch,omitempty" yaml:"patch,omitempty"`
	Position  *int          `json:"position,omitempty" yaml:"position,omitempty"`
	Order     []string      `json:"order,omitempty" yaml:"order,omitempty"`
	Animation *Animation    `json:"animation,omitempty" yaml:"animation,omitempty"`
}

// String renders a compact description used in logs and errors.
func (o Operation) String() string {
	target := o.Target
	if target == "" {
		target = RootTarget
	}
	return fmt.Sprintf("%s(%s)", o.Type, target)
}

// NodePatch is a partial node definition for update operations. Props are
// merged key-wise (a nil value deletes the key); slices replace the target's
// wholesale when non-nil.
type NodePatch struct {
	Type       string         `json:"type,omitempty" yaml:"type,omitempty"`
	Props      map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Children   []Node         `json:"children,omitempty" yaml:"children,omitempty"`
	Actions    []Action       `json:"actions,omitempty" yaml:"actions,omitempty"`
	Conditions []Condition    `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Style      map[string]any `json:"style,omitempty" yaml:"style,omitempty"`
	Animation  *Animation     `json:"animation,omitempty" yaml:"animation,omitempty"`
}

// AddOp builds an add operation. An empty parent inserts at the root.
func AddOp(parent string, node Node) Operation {
	return Operation{Type: OpAdd, Target: parent, Node: &node}
}

// AddOpAt builds an add operation with an explicit position.
func AddOpAt(parent string, position int, node Node) Operation {
	op := AddOp(parent, node)
	op.Position = &position
	return op
}

// RemoveOp builds a remove operation.
func RemoveOp(target string) Operation {
	return Operation{Type: OpRemove, Target: target}
}

// UpdateOp builds an update operation.
func UpdateOp(target string, patch NodePatch) Operation {
	return Operation{Type: OpUpdate, Target: target, Patch: &patch}
}

// MorphOp builds a morph operation replacing target with node.
func MorphOp(target string, node Node) Operation {
	return Operation{Type: OpMorph, Target: target, Node: &node}
}

// ReorderOp builds a reorder operation over target's children.
func ReorderOp(target string, order ...string) Operation {
	return Operation{Type: OpReorder, Target: target, Order: append([]string(nil), order...)}
}
