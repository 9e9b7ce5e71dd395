// Package uischema is the quick-start entry point to the schema engine.
package uischema

import (
	"context"

	"github.com/goliatone/go-uischema/pkg/engine"
	"github.com/goliatone/go-uischema/pkg/registry"
	"github.com/goliatone/go-uischema/pkg/schema"
)

// Document aliases schema.Document for callers using the top-level module.
type Document = schema.Document

// Operation aliases schema.Operation.
type Operation = schema.Operation

// Engine aliases engine.Engine.
type Engine = engine.Engine

// NewEngine builds an engine over the builtin component registry.
func NewEngine(options ...engine.Option) (*engine.Engine, error) {
	return engine.New(registry.NewDefault(), options...)
}

// Validate processes candidate through a throwaway engine over the builtin
// registry. The result is what a fresh engine would commit: version 1 with
// registry default props and processing metadata stamped. No caller-owned
// engine is touched.
func Validate(ctx context.Context, candidate any) (Document, error) {
	eng, err := NewEngine()
	if err != nil {
		return Document{}, err
	}
	return eng.ProcessCandidate(ctx, candidate)
}
