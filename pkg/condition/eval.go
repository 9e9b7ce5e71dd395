package condition

import (
	"fmt"
	"strconv"
	"strings"
)

type node interface {
	value(env Env) any
	idents(into map[string]struct{})
}

type orNode struct{ left, right node }

func (n orNode) value(env Env) any {
	return truthy(n.left.value(env)) || truthy(n.right.value(env))
}

func (n orNode) idents(into map[string]struct{}) {
	n.left.idents(into)
	n.right.idents(into)
}

type andNode struct{ left, right node }

func (n andNode) value(env Env) any {
	return truthy(n.left.value(env)) && truthy(n.right.value(env))
}

func (n andNode) idents(into map[string]struct{}) {
	n.left.idents(into)
	n.right.idents(into)
}

type notNode struct{ inner node }

func (n notNode) value(env Env) any { return !truthy(n.inner.value(env)) }

func (n notNode) idents(into map[string]struct{}) { n.inner.idents(into) }

type identNode struct{ path string }

func (n identNode) value(env Env) any {
	v, _ := lookup(env, n.path)
	return v
}

func (n identNode) idents(into map[string]struct{}) { into[n.path] = struct{}{} }

type literalNode struct{ val any }

func (n literalNode) value(Env) any { return n.val }

func (literalNode) idents(map[string]struct{}) {}

type compareNode struct {
	op          tokenKind
	left, right node
}

func (n compareNode) idents(into map[string]struct{}) {
	n.left.idents(into)
	n.right.idents(into)
}

func (n compareNode) value(env Env) any {
	left, right := n.left.value(env), n.right.value(env)
	switch n.op {
	case tokEq:
		return equal(left, right)
	case tokNeq:
		return !equal(left, right)
	}

	if a, ok := toNumber(left); ok {
		if b, ok := toNumber(right); ok {
			return ordered(n.op, compareFloat(a, b))
		}
	}
	a, aok := left.(string)
	b, bok := right.(string)
	if aok && bok {
		return ordered(n.op, strings.Compare(a, b))
	}
	return false
}

func ordered(op tokenKind, cmp int) bool {
	switch op {
	case tokLt:
		return cmp < 0
	case tokLte:
		return cmp <= 0
	case tokGt:
		return cmp > 0
	case tokGte:
		return cmp >= 0
	default:
		return false
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// equal compares loosely: null only equals null, booleans accept "true" and
// "false" strings, numbers accept numeric strings.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := a.(bool); ok {
		bb, ok := toBool(b)
		return ok && ab == bb
	}
	if bb, ok := b.(bool); ok {
		ab, ok := toBool(a)
		return ok && ab == bb
	}
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			return an == bn
		}
	}
	return toString(a) == toString(b)
}

func lookup(env Env, path string) (any, bool) {
	if len(env) == 0 || path == "" {
		return nil, false
	}
	if v, ok := env[path]; ok {
		return v, true
	}
	var current any = map[string]any(env)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := m[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		trimmed := strings.TrimSpace(typed)
		return trimmed != "" && !strings.EqualFold(trimmed, "false")
	case []any:
		return len(typed) > 0
	case map[string]any:
		return len(typed) > 0
	}
	if n, ok := toNumber(v); ok {
		return n != 0
	}
	return true
}

func toBool(v any) (bool, bool) {
	switch typed := v.(type) {
	case bool:
		return typed, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(typed))
		return b, err == nil
	}
	return false, false
}

func toNumber(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	}
	return 0, false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
