package condition

import (
	"fmt"

	"github.com/goliatone/go-uischema/pkg/schema"
)

// State is the evaluated visibility and enablement of a node.
type State struct {
	Visible bool `json:"visible"`
	Enabled bool `json:"enabled"`
}

// EnvFor builds the evaluation environment of a condition attached to owner.
// The props of the node the condition targets (owner itself when Target is
// empty) are exposed at the top level and under "target"; the owner's props
// are always available under "self".
func EnvFor(doc schema.Document, owner schema.Node, cond schema.Condition) Env {
	self := map[string]any(schema.CloneMap(owner.Props))
	target := self
	if cond.Target != "" && cond.Target != owner.ID {
		target = nil
		if node, ok := doc.Find(cond.Target); ok {
			target = schema.CloneMap(node.Props)
		}
	}

	env := make(Env, len(target)+2)
	for key, value := range target {
		env[key] = value
	}
	env["self"] = self
	env["target"] = target
	return env
}

// Resolve evaluates every condition on the node with the given id.
// Conditions of the same kind must all hold. A node without conditions is
// visible and enabled.
func Resolve(doc schema.Document, nodeID string) (State, error) {
	node, ok := doc.Find(nodeID)
	if !ok {
		return State{}, fmt.Errorf("condition: node %q not found", nodeID)
	}

	state := State{Visible: true, Enabled: true}
	for idx, cond := range node.Conditions {
		expr, err := Compile(cond.Expr)
		if err != nil {
			return State{}, fmt.Errorf("condition: node %q condition %d: %w", nodeID, idx, err)
		}
		holds := expr.Eval(EnvFor(doc, node, cond))
		switch cond.Kind {
		case schema.ConditionVisible:
			state.Visible = state.Visible && holds
		case schema.ConditionEnabled:
			state.Enabled = state.Enabled && holds
		}
	}
	return state, nil
}
