package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when the submission queue is full.
	ErrBusy = errors.New("engine: busy, submission queue is full")
	// ErrNoDocument is returned by evolutions submitted before the first
	// commit.
	ErrNoDocument = errors.New("engine: no current document")
	// ErrHistoryBoundary reports a rewind or advance with nowhere to go. The
	// current document is unchanged.
	ErrHistoryBoundary = errors.New("engine: history boundary reached")
	// ErrNoAction is returned by Dispatch when the node has no action bound to
	// the trigger.
	ErrNoAction = errors.New("engine: no action bound to trigger")
)

// ListenerError reports a listener that failed or panicked while handling a
// committed document. It never affects the commit.
type ListenerError struct {
	Listener uint64
	Version  int
	Err      error
	Panic    any
}

func (e *ListenerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("engine: listener %d panicked on version %d: %v", e.Listener, e.Version, e.Panic)
	}
	return fmt.Sprintf("engine: listener %d failed on version %d: %v", e.Listener, e.Version, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}
