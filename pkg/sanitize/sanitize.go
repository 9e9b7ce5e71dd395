// Package sanitize narrows untrusted property values to a JSON-shaped allow
// list. It never rejects input: anything it cannot keep is dropped or
// trimmed and reported as a Finding.
package sanitize

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	DefaultMaxStringLength = 4096
	DefaultMaxDepth        = 8
)

// Config bounds sanitised values.
type Config struct {
	MaxStringLength int  `json:"maxStringLength" yaml:"maxStringLength" validate:"gte=0"`
	MaxDepth        int  `json:"maxDepth" yaml:"maxDepth" validate:"gte=0"`
	StripMarkup     bool `json:"stripMarkup" yaml:"stripMarkup"`
}

// DefaultConfig returns the limits used when none are supplied.
func DefaultConfig() Config {
	return Config{
		MaxStringLength: DefaultMaxStringLength,
		MaxDepth:        DefaultMaxDepth,
		StripMarkup:     true,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxStringLength <= 0 {
		c.MaxStringLength = DefaultMaxStringLength
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return c
}

// Finding describes one value the sanitiser removed or narrowed.
type Finding struct {
	Path   string
	Reason string
}

func (f Finding) String() string {
	return f.Path + ": " + f.Reason
}

// Sanitizer applies Config to property mappings. The zero value is not
// usable; construct with New.
type Sanitizer struct {
	cfg Config
}

// New builds a sanitiser. Zero limits fall back to the defaults.
func New(cfg Config) *Sanitizer {
	return &Sanitizer{cfg: cfg.withDefaults()}
}

// Config reports the effective limits.
func (s *Sanitizer) Config() Config {
	return s.cfg
}

// Props sanitises a property mapping rooted at path. The input is never
// modified; a nil input yields nil.
func (s *Sanitizer) Props(path string, props map[string]any) (map[string]any, []Finding) {
	if props == nil {
		return nil, nil
	}
	w := walker{cfg: s.cfg}
	out := w.object(path, props, 1)
	return out, w.findings
}

// Value sanitises a single value rooted at path. The second result is false
// when the value was stripped entirely.
func (s *Sanitizer) Value(path string, value any) (any, bool, []Finding) {
	w := walker{cfg: s.cfg}
	out, ok := w.value(path, value, 1)
	return out, ok, w.findings
}

type walker struct {
	cfg      Config
	findings []Finding
}

func (w *walker) note(path, format string, args ...any) {
	w.findings = append(w.findings, Finding{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (w *walker) object(path string, in map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(in))
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		child := joinKey(path, key)
		if value, ok := w.value(child, in[key], depth+1); ok {
			out[key] = value
		}
	}
	return out
}

func (w *walker) array(path string, in []any, depth int) []any {
	out := make([]any, 0, len(in))
	for idx, item := range in {
		if value, ok := w.value(path+"["+strconv.Itoa(idx)+"]", item, depth+1); ok {
			out = append(out, value)
		}
	}
	return out
}

func (w *walker) value(path string, value any, depth int) (any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case bool:
		return typed, true
	case string:
		return w.str(path, typed), true
	case float64:
		return w.float(path, typed)
	case float32:
		return w.float(path, float64(typed))
	case int:
		return float64(typed), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(typed).Convert(reflect.TypeOf(float64(0))).Float(), true
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			w.note(path, "invalid number %q removed", typed.String())
			return nil, false
		}
		return w.float(path, f)
	case map[string]any:
		if depth > w.cfg.MaxDepth {
			w.note(path, "nesting deeper than %d removed", w.cfg.MaxDepth)
			return nil, false
		}
		return w.object(path, typed, depth), true
	case []any:
		if depth > w.cfg.MaxDepth {
			w.note(path, "nesting deeper than %d removed", w.cfg.MaxDepth)
			return nil, false
		}
		return w.array(path, typed, depth), true
	}
	return w.reflected(path, value, depth)
}

func (w *walker) reflected(path string, value any, depth int) (any, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		w.note(path, "non-serializable %s removed", rv.Kind())
		return nil, false
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, true
		}
		return w.value(path, rv.Elem().Interface(), depth)
	case reflect.String:
		return w.str(path, rv.String()), true
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Float32, reflect.Float64:
		return w.float(path, rv.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, true
		}
		items := make([]any, rv.Len())
		for idx := range items {
			items[idx] = rv.Index(idx).Interface()
		}
		return w.value(path, items, depth)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			w.note(path, "map with %s keys removed", rv.Type().Key().Kind())
			return nil, false
		}
		if rv.IsNil() {
			return nil, true
		}
		entries := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries[iter.Key().String()] = iter.Value().Interface()
		}
		return w.value(path, entries, depth)
	}

	data, err := json.Marshal(value)
	if err != nil {
		w.note(path, "non-serializable %T removed", value)
		return nil, false
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		w.note(path, "non-serializable %T removed", value)
		return nil, false
	}
	return w.value(path, generic, depth)
}

func (w *walker) float(path string, f float64) (any, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		w.note(path, "non-finite number removed")
		return nil, false
	}
	return f, true
}

func (w *walker) str(path, value string) string {
	out := value
	if !utf8.ValidString(out) {
		out = strings.ToValidUTF8(out, "�")
		w.note(path, "invalid UTF-8 replaced")
	}
	if w.cfg.StripMarkup && strings.ContainsAny(out, "<>") {
		cleaned := stripMarkup(out)
		if cleaned != out {
			w.note(path, "markup stripped")
			out = cleaned
		}
	}
	if utf8.RuneCountInString(out) > w.cfg.MaxStringLength {
		runes := []rune(out)
		out = string(runes[:w.cfg.MaxStringLength])
		w.note(path, "string truncated to %d characters", w.cfg.MaxStringLength)
	}
	return out
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// maxStripRounds bounds how many entity layers stripMarkup peels.
const maxStripRounds = 8

// stripMarkup removes tags and returns plain text. Decoded entities are fed
// back through the policy until the text no longer changes, so encoded
// markup cannot come back as live tags.
func stripMarkup(value string) string {
	p := markupPolicy()
	current := value
	for range maxStripRounds {
		decoded := html.UnescapeString(p.Sanitize(current))
		if decoded == current {
			return current
		}
		current = decoded
	}
	return p.Sanitize(current)
}

func markupPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
