package registry

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-uischema/pkg/schema"
)

func TestDefaultRegistryKnowsBuiltins(t *testing.T) {
	reg := NewDefault()

	for _, kind := range schema.KnownKinds() {
		if !reg.Exists(kind) {
			t.Fatalf("expected builtin %q to be registered", kind)
		}
	}
	if reg.Exists("unknown-widget") {
		t.Fatalf("unknown-widget should not resolve")
	}
}

func TestResolveReturnsClone(t *testing.T) {
	reg := NewDefault()

	def, ok := reg.Resolve(schema.KindTable)
	if !ok {
		t.Fatalf("table not registered")
	}
	def.DefaultProps["pageSize"] = float64(99)

	again, _ := reg.Resolve(" TABLE ")
	if got := again.DefaultProps["pageSize"]; got != float64(10) {
		t.Fatalf("registry defaults mutated through resolve: %v", got)
	}
}

func TestBuiltinPropPredicates(t *testing.T) {
	reg := NewDefault()

	cases := []struct {
		name    string
		kind    string
		props   map[string]any
		wantErr bool
	}{
		{name: "stat card ok", kind: schema.KindStatCard, props: map[string]any{"label": "Revenue", "value": 12.0}},
		{name: "stat card missing label", kind: schema.KindStatCard, props: map[string]any{"value": 12.0}, wantErr: true},
		{name: "stat card bad trend", kind: schema.KindStatCard, props: map[string]any{"label": "x", "trend": "sideways"}, wantErr: true},
		{name: "table columns", kind: schema.KindTable, props: map[string]any{"columns": []any{"a", map[string]any{"key": "b"}}}},
		{name: "table page size", kind: schema.KindTable, props: map[string]any{"pageSize": 0.0}, wantErr: true},
		{name: "image needs src", kind: schema.KindImage, props: nil, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			def, ok := reg.Resolve(tc.kind)
			if !ok {
				t.Fatalf("kind %q missing", tc.kind)
			}
			err := def.ValidateProps(tc.props)
			if tc.wantErr && err == nil {
				t.Fatalf("expected predicate failure")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected predicate failure: %v", err)
			}
		})
	}
}

func TestRegisterRequiresType(t *testing.T) {
	reg := New()
	if err := reg.Register(Definition{Type: "  "}); err == nil {
		t.Fatalf("expected error for empty type")
	}
}

func TestLoadFSManifests(t *testing.T) {
	fsys := fstest.MapFS{
		"components/metrics.yaml": &fstest.MapFile{Data: []byte(`
components:
  - type: Metric-Strip
    description: Row of compact metrics
    defaultProps:
      compact: true
      limit: 4
    propsSchema:
      type: object
      required: [metrics]
      properties:
        metrics:
          type: array
`)},
		"components/notes.json": &fstest.MapFile{Data: []byte(`{"components":[{"type":"sticky-note"}]}`)},
		"README.md":             &fstest.MapFile{Data: []byte("ignored")},
	}

	defs, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	reg := New()
	if err := reg.RegisterAll(defs); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	if diff := cmp.Diff([]string{"metric-strip", "sticky-note"}, reg.Types()); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}

	def, _ := reg.Resolve("metric-strip")
	if !def.Custom {
		t.Fatalf("manifest components should be custom")
	}
	wantDefaults := map[string]any{"compact": true, "limit": float64(4)}
	if diff := cmp.Diff(wantDefaults, def.DefaultProps); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if err := def.ValidateProps(map[string]any{}); err == nil {
		t.Fatalf("expected manifest schema to require metrics")
	}
	if err := def.ValidateProps(map[string]any{"metrics": []any{}}); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}

	note, _ := reg.Resolve("sticky-note")
	if err := note.ValidateProps(map[string]any{"anything": 1.0}); err != nil {
		t.Fatalf("schema-less component should accept any props: %v", err)
	}
}

func TestLoadFSRejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": &fstest.MapFile{Data: []byte(`{"components":[{"type":"dup"}]}`)},
		"b.json": &fstest.MapFile{Data: []byte(`{"components":[{"type":"DUP"}]}`)},
	}
	if _, err := LoadFS(fsys); err == nil {
		t.Fatalf("expected duplicate component error")
	}
}

func TestLoadOpenAPI(t *testing.T) {
	doc := []byte(`{
  "openapi": "3.0.3",
  "info": {"title": "widgets", "version": "1.0.0"},
  "paths": {},
  "components": {
    "schemas": {
      "Gauge": {
        "type": "object",
        "x-uischema-component": true,
        "required": ["value"],
        "properties": {
          "value": {"type": "number"},
          "max": {"type": "number", "default": 100}
        }
      },
      "Timeline": {
        "type": "object",
        "x-uischema-component": "event-timeline",
        "properties": {"events": {"type": "array", "items": {"type": "object"}}}
      },
      "Plain": {"type": "object"}
    }
  }
}`)

	defs, err := LoadOpenAPI(context.Background(), doc)
	if err != nil {
		t.Fatalf("LoadOpenAPI: %v", err)
	}
	reg := New()
	if err := reg.RegisterAll(defs); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if diff := cmp.Diff([]string{"event-timeline", "gauge"}, reg.Types()); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}

	gauge, _ := reg.Resolve("gauge")
	if diff := cmp.Diff(map[string]any{"max": float64(100)}, gauge.DefaultProps); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if err := gauge.ValidateProps(map[string]any{"value": "high"}); err == nil {
		t.Fatalf("expected type mismatch to fail")
	}
	if err := gauge.ValidateProps(map[string]any{"value": 42.0}); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
}
