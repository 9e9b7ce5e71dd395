package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/goliatone/go-uischema/pkg/condition"
	"github.com/goliatone/go-uischema/pkg/evolution"
	"github.com/goliatone/go-uischema/pkg/history"
	"github.com/goliatone/go-uischema/pkg/registry"
	"github.com/goliatone/go-uischema/pkg/sanitize"
	"github.com/goliatone/go-uischema/pkg/schema"
	"github.com/goliatone/go-uischema/pkg/validation"
)

// Engine serialises candidate documents and evolution operations through
// validation, application and commit, and notifies subscribers of every new
// current document.
//
// Submissions are processed one at a time in arrival order. Submissions that
// arrive while another is processing wait in a bounded FIFO queue; once the
// queue is full they fail fast with ErrBusy.
type Engine struct {
	cfg               Config
	registry          registry.Registry
	validator         *validation.Validator
	applier           *evolution.Applier
	logger            *zap.Logger
	metricsRegisterer prometheus.Registerer
	metrics           *metrics
	now               func() time.Time
	newID             func() string
	onListenerError   func(*ListenerError)

	gate    *semaphore.Weighted
	pending atomic.Int64

	// mu spans validate/apply through commit and notify. Rewind and advance
	// take it without queueing.
	mu      sync.Mutex
	history *history.Store
	current atomic.Pointer[schema.Document]

	listenersMu  sync.RWMutex
	listeners    []subscription
	nextListener uint64
}

// New constructs an Engine around a read-only component registry.
func New(reg registry.Registry, opts ...Option) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("engine: registry is required")
	}
	e := &Engine{
		cfg:      DefaultConfig(),
		registry: reg,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	e.cfg = e.cfg.normalized()

	m, err := newMetrics(e.metricsRegisterer)
	if err != nil {
		return nil, err
	}
	e.metrics = m

	if e.validator == nil {
		e.validator = validation.New(reg, validation.WithSanitizer(sanitize.New(e.cfg.Sanitize)))
	}
	if e.applier == nil {
		e.applier = evolution.New(evolution.WithNodeValidator(e.validator))
	}
	e.history = history.New(e.cfg.HistoryDepth)
	e.gate = semaphore.NewWeighted(1)
	e.logger = e.logger.With(zap.String("engineVersion", e.cfg.EngineVersion))
	return e, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Current returns the authoritative document, or false before the first
// commit. It never blocks, so listeners may call it.
func (e *Engine) Current() (schema.Document, bool) {
	doc := e.current.Load()
	if doc == nil {
		return schema.Document{}, false
	}
	return doc.Clone(), true
}

// NodeState evaluates the conditions of a node in the current document.
func (e *Engine) NodeState(nodeID string) (condition.State, error) {
	doc := e.current.Load()
	if doc == nil {
		return condition.State{}, ErrNoDocument
	}
	return condition.Resolve(*doc, nodeID)
}

// ProcessCandidate validates candidate and commits it as a brand-new
// document. Registry default props are merged beneath the node props and
// processing metadata is stamped. On failure the current document is
// unchanged and the error is a *validation.ValidationError, ErrBusy or the
// context error of a cancelled submission.
func (e *Engine) ProcessCandidate(ctx context.Context, candidate any) (schema.Document, error) {
	var committed schema.Document
	err := e.submit(ctx, sourceCandidate, func() error {
		result := e.validator.Validate(candidate)
		if !result.Valid {
			err := result.Err()
			e.reject(sourceCandidate, reasonValidation, err)
			return err
		}
		doc := *result.Document
		e.applyDefaults(doc.Components, nil)
		if err := e.stamp(&doc, result.WarningMessages()); err != nil {
			e.reject(sourceCandidate, reasonInternal, err)
			return err
		}
		committed = e.commit(sourceCandidate, doc)
		return nil
	})
	return committed, err
}

// ProcessEvolution applies op to the current document, re-validates the
// result and commits it. Failures leave the current document unchanged and
// are reported as *evolution.Error, *validation.ValidationError,
// ErrNoDocument or ErrBusy.
func (e *Engine) ProcessEvolution(ctx context.Context, op schema.Operation) (schema.Document, error) {
	return e.process(ctx, sourceEvolution, []schema.Operation{op})
}

// ProcessBatch applies ops in order and commits the outcome as one version.
// If any operation fails nothing is committed.
func (e *Engine) ProcessBatch(ctx context.Context, ops ...schema.Operation) (schema.Document, error) {
	return e.process(ctx, sourceBatch, ops)
}

func (e *Engine) process(ctx context.Context, source string, ops []schema.Operation) (schema.Document, error) {
	var committed schema.Document
	err := e.submit(ctx, source, func() error {
		doc, err := e.evolve(source, ops)
		if err != nil {
			return err
		}
		committed = doc
		return nil
	})
	return committed, err
}

// DispatchResult describes a dispatched action.
type DispatchResult struct {
	Name   string
	Intent string
	// Committed reports whether the action carried updates that produced a
	// new version.
	Committed bool
	Document  schema.Document
}

// Dispatch runs the action bound to trigger on node nodeID. Its declarative
// updates are applied as one atomic batch; the action intent is returned for
// the caller to forward.
func (e *Engine) Dispatch(ctx context.Context, nodeID string, trigger schema.Trigger) (DispatchResult, error) {
	var out DispatchResult
	err := e.submit(ctx, sourceDispatch, func() error {
		current := e.current.Load()
		if current == nil {
			e.reject(sourceDispatch, reasonNoDocument, ErrNoDocument)
			return ErrNoDocument
		}
		node, ok := current.Find(nodeID)
		if !ok {
			err := fmt.Errorf("engine: dispatch %s on %q: %w", trigger, nodeID, evolution.ErrTargetNotFound)
			e.reject(sourceDispatch, reasonEvolution, err)
			return err
		}
		action, ok := node.Action(trigger)
		if !ok {
			err := fmt.Errorf("engine: dispatch %s on %q: %w", trigger, nodeID, ErrNoAction)
			e.reject(sourceDispatch, reasonEvolution, err)
			return err
		}
		out.Name = action.Name
		out.Intent = action.Intent
		if len(action.Updates) == 0 {
			out.Document = current.Clone()
			return nil
		}

		ops := make([]schema.Operation, 0, len(action.Updates))
		for _, update := range action.Updates {
			ops = append(ops, schema.UpdateOp(update.Target, schema.NodePatch{Props: update.Props}))
		}
		doc, err := e.evolve(sourceDispatch, ops)
		if err != nil {
			return err
		}
		out.Document = doc
		out.Committed = true
		return nil
	})
	return out, err
}

// Rewind moves back one committed document and notifies subscribers. At the
// oldest retained document it returns the unchanged current document with
// ErrHistoryBoundary.
func (e *Engine) Rewind() (schema.Document, error) {
	return e.move(sourceRewind, e.history.Rewind)
}

// Advance moves forward one document after a Rewind. With nothing to redo it
// returns the unchanged current document with ErrHistoryBoundary.
func (e *Engine) Advance() (schema.Document, error) {
	return e.move(sourceAdvance, e.history.Advance)
}

func (e *Engine) move(source string, step func() (schema.Document, bool)) (schema.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, ok := step()
	if !ok {
		current, _ := e.Current()
		e.logger.Debug("history boundary", zap.String("source", source), zap.Int("version", current.Version))
		return current, ErrHistoryBoundary
	}
	e.publish(source, doc)
	return doc, nil
}

// submit queues fn behind in-flight submissions. ctx only cancels the wait;
// once fn starts it runs to completion.
func (e *Engine) submit(ctx context.Context, source string, fn func() error) error {
	if ctx == nil {
		return errors.New("engine: context is required")
	}
	if err := ctx.Err(); err != nil {
		e.reject(source, reasonCancelled, err)
		return err
	}

	depth := e.pending.Add(1)
	e.metrics.queueDepth.Set(float64(depth))
	defer func() {
		e.metrics.queueDepth.Set(float64(e.pending.Add(-1)))
	}()
	if depth > int64(e.cfg.QueueDepth)+1 {
		e.reject(source, reasonBusy, ErrBusy)
		return ErrBusy
	}

	if err := e.gate.Acquire(ctx, 1); err != nil {
		e.reject(source, reasonCancelled, err)
		return err
	}
	defer e.gate.Release(1)

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn()
}

// evolve applies ops to the current document and commits the result. The
// caller holds mu.
func (e *Engine) evolve(source string, ops []schema.Operation) (schema.Document, error) {
	current := e.current.Load()
	if current == nil {
		e.reject(source, reasonNoDocument, ErrNoDocument)
		return schema.Document{}, ErrNoDocument
	}

	applied, err := e.applier.ApplyAll(*current, ops...)
	if err != nil {
		reason := reasonEvolution
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			reason = reasonValidation
		}
		e.reject(source, reason, err)
		return schema.Document{}, err
	}

	// References that already dangled in the current document stay warnings.
	tolerated := append([]string(nil), applied.Retired...)
	for _, ref := range current.DanglingReferences() {
		tolerated = append(tolerated, ref.Target)
	}
	result := e.validator.Validate(applied.Document, validation.WithRetired(tolerated...))
	if !result.Valid {
		err := result.Err()
		e.reject(source, reasonValidation, err)
		return schema.Document{}, err
	}

	doc := *result.Document
	e.applyDefaults(doc.Components, typesByID(*current))

	warnings := append([]string(nil), applied.Warnings...)
	warnings = append(warnings, carriedDangling(doc, applied.Retired)...)
	for _, issue := range result.Warnings {
		if issue.Code == validation.CodeDanglingReference {
			continue
		}
		warnings = append(warnings, issue.String())
	}
	if err := e.stamp(&doc, warnings); err != nil {
		e.reject(source, reasonInternal, err)
		return schema.Document{}, err
	}
	if len(applied.Retired) > 0 {
		e.logger.Debug("ids retired", zap.String("source", source), zap.Strings("ids", applied.Retired))
	}
	return e.commit(source, doc), nil
}

// carriedDangling describes dangling references left over from earlier
// versions. References to ids retired by this evolution are reported by the
// applier.
func carriedDangling(doc schema.Document, retired []string) []string {
	fresh := make(map[string]struct{}, len(retired))
	for _, id := range retired {
		fresh[id] = struct{}{}
	}
	var out []string
	for _, ref := range doc.DanglingReferences() {
		if _, ok := fresh[ref.Target]; ok {
			continue
		}
		out = append(out, fmt.Sprintf("node %q references missing node %q via %s", ref.Source, ref.Target, ref.Via))
	}
	return out
}

// applyDefaults merges registry default props beneath node props. Nodes
// whose id and type both appear in skip keep their props as they are.
func (e *Engine) applyDefaults(nodes []schema.Node, skip map[string]string) {
	for idx := range nodes {
		node := &nodes[idx]
		if prevType, ok := skip[node.ID]; !ok || prevType != node.Type {
			if def, found := e.registry.Resolve(node.Type); found {
				if merged := mergeBeneath(def.Defaults(), node.Props); merged != nil {
					node.Props = schema.Props(merged)
				}
			}
		}
		e.applyDefaults(node.Children, skip)
	}
}

func (e *Engine) stamp(doc *schema.Document, warnings []string) error {
	now := e.now().UTC()
	if doc.ID == "" {
		doc.ID = e.newID()
	}
	meta := &doc.Metadata
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	processed := now
	meta.ProcessedAt = &processed
	meta.EngineVersion = e.cfg.EngineVersion
	meta.Warnings = nil
	if len(warnings) > 0 {
		meta.Warnings = warnings
	}

	fingerprint, err := schema.Fingerprint(*doc)
	if err != nil {
		return fmt.Errorf("engine: fingerprint document: %w", err)
	}
	meta.Fingerprint = fingerprint
	return nil
}

// commit stores doc in history, publishes it and returns the committed copy.
// The caller holds mu.
func (e *Engine) commit(source string, doc schema.Document) schema.Document {
	committed := e.history.Commit(doc)
	e.publish(source, committed)
	return committed
}

func (e *Engine) publish(source string, doc schema.Document) {
	snapshot := doc.Clone()
	e.current.Store(&snapshot)
	e.metrics.commits.WithLabelValues(source).Inc()
	e.metrics.currentVersion.Set(float64(doc.Version))
	e.logger.Info("document committed",
		zap.String("source", source),
		zap.String("documentId", doc.ID),
		zap.Int("version", doc.Version),
		zap.Int("warnings", len(doc.Metadata.Warnings)),
	)
	e.notify(doc)
}

func (e *Engine) reject(source, reason string, err error) {
	e.metrics.rejections.WithLabelValues(source, reason).Inc()
	e.logger.Warn("submission rejected",
		zap.String("source", source),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func typesByID(doc schema.Document) map[string]string {
	out := make(map[string]string)
	doc.Walk(func(node schema.Node, _ string) bool {
		out[node.ID] = node.Type
		return true
	})
	return out
}

// mergeBeneath returns props with defaults filled in for absent keys. Nested
// objects present on both sides are merged recursively.
func mergeBeneath(defaults, props map[string]any) map[string]any {
	if len(defaults) == 0 {
		return props
	}
	out := schema.CloneMap(props)
	if out == nil {
		out = make(map[string]any, len(defaults))
	}
	for key, def := range defaults {
		existing, ok := out[key]
		if !ok {
			out[key] = schema.CloneValue(def)
			continue
		}
		nestedProps, propsIsMap := existing.(map[string]any)
		nestedDefaults, defaultsIsMap := def.(map[string]any)
		if propsIsMap && defaultsIsMap {
			out[key] = mergeBeneath(nestedDefaults, nestedProps)
		}
	}
	return out
}
