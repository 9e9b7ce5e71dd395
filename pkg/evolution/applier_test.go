package evolution

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-uischema/pkg/registry"
	"github.com/goliatone/go-uischema/pkg/schema"
	"github.com/goliatone/go-uischema/pkg/validation"
)

func dashboard() schema.Document {
	return schema.Document{
		Version: 3,
		Layout:  schema.Layout{Mode: schema.LayoutGrid, Columns: 2},
		Components: []schema.Node{
			{ID: "a", Type: schema.KindStatCard, Props: schema.Props{"label": "Revenue"}},
			{ID: "panel", Type: schema.KindContainer, Children: []schema.Node{
				{ID: "k", Type: schema.KindKanban, Props: schema.Props{"columns": []any{"todo", "done"}}},
				{ID: "note", Type: schema.KindText, Props: schema.Props{"content": "hi"}},
			}},
			{ID: "btn", Type: schema.KindButton, Props: schema.Props{"label": "Refresh"}, Actions: []schema.Action{{
				Trigger: schema.TriggerClick,
				Updates: []schema.Update{{Target: "note", Props: map[string]any{"content": "refreshed"}}},
			}}},
		},
	}
}

func TestApplyAddAppendsUnderRoot(t *testing.T) {
	doc := schema.Document{
		Layout:     schema.Layout{Mode: schema.LayoutGrid},
		Components: []schema.Node{{ID: "a", Type: schema.KindStatCard}},
	}

	res, err := New().Apply(doc, schema.AddOp(schema.RootTarget, schema.Node{ID: "b", Type: schema.KindTable}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, res.Document.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Components) != 1 {
		t.Fatalf("input document was modified")
	}
}

func TestApplyAddPositions(t *testing.T) {
	cases := []struct {
		name     string
		position int
		want     []string
	}{
		{name: "front", position: 0, want: []string{"x", "k", "note"}},
		{name: "middle", position: 1, want: []string{"k", "x", "note"}},
		{name: "negative clamps to front", position: -4, want: []string{"x", "k", "note"}},
		{name: "past end clamps to back", position: 99, want: []string{"k", "note", "x"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := New().Apply(dashboard(), schema.AddOpAt("panel", tc.position, schema.Node{ID: "x", Type: schema.KindText}))
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			panel, _ := res.Document.Find("panel")
			var got []string
			for _, child := range panel.Children {
				got = append(got, child.ID)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyAddRejectsDuplicateID(t *testing.T) {
	_, err := New().Apply(dashboard(), schema.AddOp("", schema.Node{ID: "note", Type: schema.KindText}))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	var evoErr *Error
	if !errors.As(err, &evoErr) || evoErr.Code != CodeDuplicateID {
		t.Fatalf("expected *Error with DuplicateId code, got %#v", err)
	}
}

func TestApplyAddUnknownParent(t *testing.T) {
	_, err := New().Apply(dashboard(), schema.AddOp("missing", schema.Node{ID: "x", Type: schema.KindText}))
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
}

func TestApplyAddRunsNodeValidator(t *testing.T) {
	applier := New(WithNodeValidator(validation.New(registry.NewDefault())))

	_, err := applier.Apply(dashboard(), schema.AddOp("", schema.Node{ID: "x", Type: "unknown-widget"}))
	var verr *validation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if diff := cmp.Diff([]string{"x"}, verr.NodeIDs()); diff != "" {
		t.Fatalf("node ids mismatch (-want +got):\n%s", diff)
	}

	res, err := applier.Apply(dashboard(), schema.AddOp("", schema.Node{ID: "x", Type: schema.KindText, Props: schema.Props{"content": "<i>x</i>"}}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	added, _ := res.Document.Find("x")
	if added.Props["content"] != "x" {
		t.Fatalf("expected sanitised node to be inserted, got %#v", added.Props)
	}
}

func TestApplyRemoveRetiresSubtreeAndWarns(t *testing.T) {
	res, err := New().Apply(dashboard(), schema.RemoveOp("panel"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "btn"}, res.Document.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"panel", "k", "note"}, res.Retired); diff != "" {
		t.Fatalf("retired mismatch (-want +got):\n%s", diff)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one dangling reference warning, got %#v", res.Warnings)
	}
}

func TestApplyRemoveRootIsInvalid(t *testing.T) {
	_, err := New().Apply(dashboard(), schema.RemoveOp(schema.RootTarget))
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
}

func TestApplyUpdateMergesProps(t *testing.T) {
	patch := schema.NodePatch{
		Props: map[string]any{"content": "updated", "tone": "muted"},
		Style: map[string]any{"color": "red"},
	}
	res, err := New().Apply(dashboard(), schema.UpdateOp("note", patch))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	note, _ := res.Document.Find("note")
	want := schema.Props{"content": "updated", "tone": "muted"}
	if diff := cmp.Diff(want, note.Props); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}

	res, err = New().Apply(res.Document, schema.UpdateOp("note", schema.NodePatch{Props: map[string]any{"tone": nil}}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	note, _ = res.Document.Find("note")
	if _, ok := note.Props["tone"]; ok {
		t.Fatalf("nil patch value should delete the key, got %#v", note.Props)
	}
	if note.Style["color"] != "red" {
		t.Fatalf("style lost on later update: %#v", note.Style)
	}
}

func TestApplyUpdateReplacesChildren(t *testing.T) {
	patch := schema.NodePatch{Children: []schema.Node{{ID: "fresh", Type: schema.KindText}}}
	res, err := New().Apply(dashboard(), schema.UpdateOp("panel", patch))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "panel", "fresh", "btn"}, res.Document.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"k", "note"}, res.Retired); diff != "" {
		t.Fatalf("retired mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyMorphReplacesInPlace(t *testing.T) {
	applier := New()
	res, err := applier.Apply(dashboard(), schema.MorphOp("k", schema.Node{ID: "t", Type: schema.KindTable}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	panel, _ := res.Document.Find("panel")
	if panel.Children[0].ID != "t" || panel.Children[0].Type != schema.KindTable {
		t.Fatalf("morph did not replace in place: %#v", panel.Children)
	}
	if diff := cmp.Diff([]string{"k"}, res.Retired); diff != "" {
		t.Fatalf("retired mismatch (-want +got):\n%s", diff)
	}

	_, err = applier.Apply(res.Document, schema.UpdateOp("k", schema.NodePatch{Props: map[string]any{"x": 1}}))
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound after morph, got %v", err)
	}
}

func TestApplyMorphKeepingID(t *testing.T) {
	res, err := New().Apply(dashboard(), schema.MorphOp("k", schema.Node{ID: "k", Type: schema.KindList}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Retired) != 0 {
		t.Fatalf("expected nothing retired, got %v", res.Retired)
	}
	node, _ := res.Document.Find("k")
	if node.Type != schema.KindList {
		t.Fatalf("type not replaced: %s", node.Type)
	}
}

func TestApplyReorder(t *testing.T) {
	res, err := New().Apply(dashboard(), schema.ReorderOp(schema.RootTarget, "btn", "a", "panel"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	var got []string
	for _, node := range res.Document.Components {
		got = append(got, node.ID)
	}
	if diff := cmp.Diff([]string{"btn", "a", "panel"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyReorderRejectsNonPermutation(t *testing.T) {
	cases := []struct {
		name  string
		order []string
	}{
		{name: "unknown id", order: []string{"a", "panel", "ghost"}},
		{name: "missing id", order: []string{"a", "panel"}},
		{name: "repeated id", order: []string{"a", "a", "panel"}},
		{name: "grandchild", order: []string{"a", "k", "btn"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc := dashboard()
			_, err := New().Apply(doc, schema.ReorderOp("root", tc.order...))
			if !errors.Is(err, ErrInvalidReorder) {
				t.Fatalf("expected ErrInvalidReorder, got %v", err)
			}
			if diff := cmp.Diff(dashboard(), doc); diff != "" {
				t.Fatalf("input document changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyUnknownOperation(t *testing.T) {
	_, err := New().Apply(dashboard(), schema.Operation{Type: "explode", Target: "a"})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
}

func TestApplyAllIsAtomic(t *testing.T) {
	doc := dashboard()
	_, err := New().ApplyAll(doc,
		schema.RemoveOp("a"),
		schema.UpdateOp("missing", schema.NodePatch{Props: map[string]any{"x": 1}}),
	)
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	if diff := cmp.Diff(dashboard(), doc); diff != "" {
		t.Fatalf("input document changed (-want +got):\n%s", diff)
	}

	res, err := New().ApplyAll(doc,
		schema.RemoveOp("note"),
		schema.AddOp("panel", schema.Node{ID: "note", Type: schema.KindText}),
	)
	if err != nil {
		t.Fatalf("ApplyAll: %v", err)
	}
	if len(res.Retired) != 0 || len(res.Warnings) != 0 {
		t.Fatalf("re-added id should not be retired: %#v", res)
	}
}

func TestApplyAnimationPassThrough(t *testing.T) {
	op := schema.AddOp("", schema.Node{ID: "x", Type: schema.KindText})
	op.Animation = &schema.Animation{Kind: "fade", DurationMs: 200}

	res, err := New().Apply(dashboard(), op)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	added, _ := res.Document.Find("x")
	if diff := cmp.Diff(op.Animation, added.Animation); diff != "" {
		t.Fatalf("animation mismatch (-want +got):\n%s", diff)
	}
}
