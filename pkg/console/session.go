// Package console drives an engine interactively: candidates and operation
// files are submitted from disk, actions dispatched and history navigated
// through terminal prompts.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-uischema/pkg/engine"
	"github.com/goliatone/go-uischema/pkg/schema"
)

const (
	actionCandidate  = "Submit candidate file"
	actionOperations = "Apply operations file"
	actionDispatch   = "Dispatch action"
	actionRewind     = "Rewind"
	actionAdvance    = "Advance"
	actionShow       = "Show current document"
	actionState      = "Show node state"
	actionQuit       = "Quit"
)

var menu = []string{
	actionCandidate,
	actionOperations,
	actionDispatch,
	actionRewind,
	actionAdvance,
	actionShow,
	actionState,
	actionQuit,
}

var triggers = []string{
	string(schema.TriggerClick),
	string(schema.TriggerSubmit),
	string(schema.TriggerChange),
	string(schema.TriggerHover),
	string(schema.TriggerFocus),
	string(schema.TriggerCustom),
}

// Session binds a prompt driver to an engine.
type Session struct {
	engine   *engine.Engine
	driver   PromptDriver
	logger   *zap.Logger
	readFile func(string) ([]byte, error)
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the logger used for rejected submissions.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadFile overrides how fixture paths are read.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(s *Session) {
		if fn != nil {
			s.readFile = fn
		}
	}
}

// NewSession constructs a Session. A nil driver falls back to survey prompts.
func NewSession(eng *engine.Engine, driver PromptDriver, opts ...Option) *Session {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	s := &Session{
		engine:   eng,
		driver:   driver,
		logger:   zap.NewNop(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run loops over the menu until the user quits or aborts. Rejected
// submissions are reported and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	unsubscribe := s.engine.Subscribe(func(doc schema.Document) error {
		return s.driver.Info(ctx, fmt.Sprintf("version %d is current (%d components)", doc.Version, len(doc.Components)))
	})
	defer unsubscribe()

	for {
		idx, err := s.driver.Select(ctx, SelectConfig{Message: "What next?", Options: menu, PageSize: len(menu)})
		if err != nil {
			if errors.Is(err, ErrAborted) {
				return nil
			}
			return err
		}
		if idx < 0 || idx >= len(menu) {
			continue
		}
		choice := menu[idx]
		if choice == actionQuit {
			return nil
		}
		if err := s.handle(ctx, choice); err != nil {
			if errors.Is(err, ErrAborted) {
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.logger.Warn("submission rejected", zap.String("action", choice), zap.Error(err))
			if infoErr := s.driver.Info(ctx, "error: "+err.Error()); infoErr != nil {
				return infoErr
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, choice string) error {
	switch choice {
	case actionCandidate:
		data, err := s.askFile(ctx, "Candidate document path")
		if err != nil {
			return err
		}
		_, err = s.engine.ProcessCandidate(ctx, data)
		return err
	case actionOperations:
		data, err := s.askFile(ctx, "Operations file path")
		if err != nil {
			return err
		}
		ops, err := schema.DecodeOperations(data)
		if err != nil {
			return err
		}
		if len(ops) == 1 {
			_, err = s.engine.ProcessEvolution(ctx, ops[0])
		} else {
			_, err = s.engine.ProcessBatch(ctx, ops...)
		}
		return err
	case actionDispatch:
		return s.dispatch(ctx)
	case actionRewind:
		_, err := s.engine.Rewind()
		return err
	case actionAdvance:
		_, err := s.engine.Advance()
		return err
	case actionShow:
		doc, ok := s.engine.Current()
		if !ok {
			return engine.ErrNoDocument
		}
		payload, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		return s.driver.Info(ctx, string(payload))
	case actionState:
		id, err := s.askNodeID(ctx)
		if err != nil {
			return err
		}
		state, err := s.engine.NodeState(id)
		if err != nil {
			return err
		}
		return s.driver.Info(ctx, fmt.Sprintf("%s: visible=%t enabled=%t", id, state.Visible, state.Enabled))
	}
	return fmt.Errorf("console: unknown action %q", choice)
}

func (s *Session) dispatch(ctx context.Context) error {
	id, err := s.askNodeID(ctx)
	if err != nil {
		return err
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Trigger", Options: triggers})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(triggers) {
		return fmt.Errorf("console: no trigger selected")
	}
	result, err := s.engine.Dispatch(ctx, id, schema.Trigger(triggers[idx]))
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("dispatched %q", result.Name)
	if result.Intent != "" {
		msg += " intent: " + result.Intent
	}
	if !result.Committed {
		msg += " (no updates)"
	}
	return s.driver.Info(ctx, msg)
}

func (s *Session) askFile(ctx context.Context, message string) ([]byte, error) {
	path, err := s.driver.Input(ctx, InputConfig{Message: message, Validator: required})
	if err != nil {
		return nil, err
	}
	data, err := s.readFile(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("console: read %s: %w", path, err)
	}
	return data, nil
}

func (s *Session) askNodeID(ctx context.Context) (string, error) {
	id, err := s.driver.Input(ctx, InputConfig{Message: "Node id", Validator: required})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(id), nil
}

func required(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("a value is required")
	}
	return nil
}
