package schema

// Known component kinds. The set is open: any kind registered in a component
// registry is accepted, these are only the ones shipped with typed prop
// shapes.
const (
	KindStatCard  = "stat-card"
	KindTable     = "table"
	KindKanban    = "kanban"
	KindChart     = "chart"
	KindForm      = "form"
	KindText      = "text"
	KindButton    = "button"
	KindContainer = "container"
	KindList      = "list"
	KindInput     = "input"
	KindImage     = "image"
)

// KnownKinds lists the built-in component kinds.
func KnownKinds() []string {
	return []string{
		KindStatCard, KindTable, KindKanban, KindChart, KindForm, KindText,
		KindButton, KindContainer, KindList, KindInput, KindImage,
	}
}

// Props is the opaque property mapping of a node. Values are JSON shaped.
type Props map[string]any

// Node is one element of the component tree.
type Node struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Props      Props          `json:"props,omitempty" yaml:"props,omitempty"`
	Children   []Node         `json:"children,omitempty" yaml:"children,omitempty"`
	Actions    []Action       `json:"actions,omitempty" yaml:"actions,omitempty"`
	Conditions []Condition    `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Style      map[string]any `json:"style,omitempty" yaml:"style,omitempty"`
	Animation  *Animation     `json:"animation,omitempty" yaml:"animation,omitempty"`
}

// Trigger enumerates the interaction kinds an action can react to.
type Trigger string

const (
	TriggerClick  Trigger = "click"
	TriggerSubmit Trigger = "submit"
	TriggerChange Trigger = "change"
	TriggerHover  Trigger = "hover"
	TriggerFocus  Trigger = "focus"
	TriggerCustom Trigger = "custom"
)

// Action binds an interaction to an intent and/or declarative updates.
type Action struct {
	Trigger Trigger  `json:"trigger" yaml:"trigger"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Intent  string   `json:"intent,omitempty" yaml:"intent,omitempty"`
	Updates []Update `json:"updates,omitempty" yaml:"updates,omitempty"`
}

// Update is a declarative props merge against another node.
type Update struct {
	Target string         `json:"target" yaml:"target"`
	Props  map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
}

// ConditionKind selects what a condition controls.
type ConditionKind string

const (
	ConditionVisible ConditionKind = "visible"
	ConditionEnabled ConditionKind = "enabled"
)

// Condition gates visibility or enablement. Target optionally names the node
// whose state Expr reads.
type Condition struct {
	Kind   ConditionKind `json:"kind" yaml:"kind"`
	Target string        `json:"target,omitempty" yaml:"target,omitempty"`
	Expr   string        `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// Animation is renderer pass-through data.
type Animation struct {
	Kind       string `json:"kind" yaml:"kind"`
	DurationMs int    `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`
	Easing     string `json:"easing,omitempty" yaml:"easing,omitempty"`
	DelayMs    int    `json:"delayMs,omitempty" yaml:"delayMs,omitempty"`
}

// Clone returns a deep copy of the node and its subtree.
func (n Node) Clone() Node {
	out := n
	out.Props = Props(CloneMap(n.Props))
	out.Style = CloneMap(n.Style)
	out.Children = cloneNodes(n.Children)
	if n.Actions != nil {
		out.Actions = make([]Action, len(n.Actions))
		for idx, action := range n.Actions {
			out.Actions[idx] = action.clone()
		}
	}
	if n.Conditions != nil {
		out.Conditions = append([]Condition(nil), n.Conditions...)
	}
	if n.Animation != nil {
		anim := *n.Animation
		out.Animation = &anim
	}
	return out
}

func (a Action) clone() Action {
	out := a
	if a.Updates != nil {
		out.Updates = make([]Update, len(a.Updates))
		for idx, update := range a.Updates {
			out.Updates[idx] = Update{Target: update.Target, Props: CloneMap(update.Props)}
		}
	}
	return out
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for idx, node := range nodes {
		out[idx] = node.Clone()
	}
	return out
}

// References lists the node's own outgoing references.
func (n Node) References() []Reference {
	var refs []Reference
	for _, action := range n.Actions {
		for _, update := range action.Updates {
			if update.Target == "" {
				continue
			}
			refs = append(refs, Reference{Source: n.ID, Target: update.Target, Via: "action:" + string(action.Trigger)})
		}
	}
	for _, cond := range n.Conditions {
		if cond.Target == "" {
			continue
		}
		refs = append(refs, Reference{Source: n.ID, Target: cond.Target, Via: "condition:" + string(cond.Kind)})
	}
	return refs
}

// Action returns the first action bound to trigger.
func (n Node) Action(trigger Trigger) (Action, bool) {
	for _, action := range n.Actions {
		if action.Trigger == trigger {
			return action.clone(), true
		}
	}
	return Action{}, false
}

// CloneMap deep copies a JSON-shaped map.
func CloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneValue deep copies JSON-shaped values (maps and slices). Other values
// are returned as-is.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneMap(typed)
	case Props:
		return Props(CloneMap(typed))
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = CloneValue(item)
		}
		return out
	default:
		return value
	}
}
