package engine

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-uischema/pkg/schema"
)

// Listener receives every new current document, including those reached by
// Rewind and Advance. Listeners run synchronously in registration order while
// the engine holds its commit lock: they may call Current but must not submit
// to the engine or move its history from the same goroutine.
type Listener func(doc schema.Document) error

type subscription struct {
	id uint64
	fn Listener
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is safe.
func (e *Engine) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	e.listenersMu.Lock()
	e.nextListener++
	id := e.nextListener
	e.listeners = append(e.listeners, subscription{id: id, fn: fn})
	e.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.listenersMu.Lock()
			defer e.listenersMu.Unlock()
			e.listeners = slices.DeleteFunc(e.listeners, func(sub subscription) bool {
				return sub.id == id
			})
		})
	}
}

// notify invokes every listener with its own copy of doc. Failures and panics
// are isolated so later listeners still run.
func (e *Engine) notify(doc schema.Document) {
	e.listenersMu.RLock()
	subs := slices.Clone(e.listeners)
	e.listenersMu.RUnlock()

	for _, sub := range subs {
		lerr := invoke(sub, doc.Clone())
		if lerr == nil {
			continue
		}
		e.metrics.listenerFailures.Inc()
		e.logger.Error("listener failed",
			zap.Uint64("listener", lerr.Listener),
			zap.Int("version", lerr.Version),
			zap.Error(lerr),
		)
		if e.onListenerError != nil {
			e.onListenerError(lerr)
		}
	}
}

func invoke(sub subscription, doc schema.Document) (lerr *ListenerError) {
	version := doc.Version
	defer func() {
		if r := recover(); r != nil {
			lerr = &ListenerError{Listener: sub.id, Version: version, Panic: r}
		}
	}()
	if err := sub.fn(doc); err != nil {
		return &ListenerError{Listener: sub.id, Version: version, Err: err}
	}
	return nil
}
