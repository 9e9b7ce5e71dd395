// Package registry answers the questions the validator asks about component
// kinds: does a type exist, what are its default props, and does a candidate
// prop set satisfy it. The engine only ever reads from a Registry; callers own
// registration.
package registry

import (
	"errors"
	"strings"

	"github.com/goliatone/go-uischema/pkg/schema"
)

// Registry is the read-only lookup contract consumed by the validator and
// engine.
type Registry interface {
	Exists(componentType string) bool
	Resolve(componentType string) (Definition, bool)
}

// PropsValidator decides whether a prop mapping satisfies a component kind.
type PropsValidator interface {
	ValidateProps(props map[string]any) error
}

// PropsValidatorFunc adapts a function into a PropsValidator.
type PropsValidatorFunc func(props map[string]any) error

// ValidateProps calls the underlying function.
func (fn PropsValidatorFunc) ValidateProps(props map[string]any) error {
	return fn(props)
}

// AllowAny accepts every prop mapping.
var AllowAny PropsValidator = PropsValidatorFunc(func(map[string]any) error { return nil })

// Definition describes one registered component kind.
type Definition struct {
	Type         string
	Description  string
	DefaultProps map[string]any
	Validator    PropsValidator
	// Custom marks kinds outside the built-in set.
	Custom bool
}

// ValidateProps runs the definition's predicate. A definition without a
// predicate accepts any props.
func (d Definition) ValidateProps(props map[string]any) error {
	if d.Validator == nil {
		return nil
	}
	if props == nil {
		props = map[string]any{}
	}
	return d.Validator.ValidateProps(props)
}

// Defaults returns a deep copy of the default props.
func (d Definition) Defaults() map[string]any {
	return schema.CloneMap(d.DefaultProps)
}

func (d Definition) clone() Definition {
	out := d
	out.DefaultProps = schema.CloneMap(d.DefaultProps)
	return out
}

// ErrUnknownType is returned by registry helpers when a kind is missing.
var ErrUnknownType = errors.New("registry: unknown component type")

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
