// Package session wraps one native engine handle in a connection state
// machine.
//
// A Session owns exactly one handle from Create until Close. Calls on a
// Session are serialized; concurrent work needs independent sessions.
// Context values are forwarded to the engine untouched; the session adds
// no timeouts or retries of its own.
package session

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/engine"
)

// Session is a connection to a backing store through a core.Engine.
type Session struct {
	engine core.Engine
	cfg    core.ConnectionConfig
	logger *slog.Logger

	mu     sync.Mutex
	handle core.Handle
	state  atomic.Int32
	inUse  atomic.Bool
}

// Create allocates an unconnected handle. cfg.Reset and cfg.UseTLS are
// passed to the engine as given.
// If logger is nil, a discard logger is used.
func Create(eng core.Engine, cfg core.ConnectionConfig, logger *slog.Logger) (*Session, error) {
	if eng == nil {
		return nil, fmt.Errorf("session: engine is nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	h, err := eng.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate handle: %w", err)
	}

	s := &Session{engine: eng, cfg: cfg, handle: h}
	s.logger = logger.With(slog.String("session_id", h.ID()), slog.String("engine", cfg.Type))
	s.setState(StateUninitialized)
	return s, nil
}

// Open resolves the engine named by cfg.Type from the engine registry and
// creates a session on it.
func Open(cfg core.ConnectionConfig, logger *slog.Logger) (*Session, error) {
	eng, err := engine.NewEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	return Create(eng, cfg, logger)
}

// Dial creates a session and connects it. On connect failure the handle is
// released and the session is not returned.
func Dial(ctx context.Context, eng core.Engine, cfg core.ConnectionConfig, logger *slog.Logger) (*Session, error) {
	s, err := Create(eng, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := s.Connect(ctx); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// ID returns the id of the session's handle.
func (s *Session) ID() string { return s.handle.ID() }

// Config returns the configuration the session was created with.
func (s *Session) Config() core.ConnectionConfig { return s.cfg }

// State returns the current state. It does not block on in-flight calls.
func (s *Session) State() State { return State(s.state.Load()) }

// InUse reports whether the session is inside a Use scope.
func (s *Session) InUse() bool { return s.inUse.Load() }

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	s.logger.Debug("session state", slog.String("state", st.String()))
}

// Connect establishes the native session. Valid from Uninitialized or Failed.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.State(); !st.canConnect() {
		return &core.InvalidStateError{Op: "connect", State: st.String()}
	}

	s.setState(StateConnecting)
	if err := s.engine.Connect(ctx, s.handle); err != nil {
		s.setState(StateFailed)
		s.logger.Debug("connect failed", slog.String("error", err.Error()))
		return &core.ConnectionError{Host: s.cfg.Host, Err: err}
	}
	s.setState(StateConnected)
	return nil
}

// RawQuery sends text to the engine as bytes and returns the engine's
// result. The caller owns the result and must close it.
func (s *Session) RawQuery(ctx context.Context, text string) (core.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.State(); st != StateConnected {
		return nil, &core.NotConnectedError{State: st.String()}
	}

	res, err := s.engine.RawQuery(ctx, s.handle, []byte(text))
	if err != nil {
		if isConnectionLost(err) {
			s.setState(StateFailed)
		}
		return nil, &core.QueryError{Query: text, Err: err}
	}
	return res, nil
}

// Close releases the handle. Closing a closed session fails with
// *core.InvalidStateError.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.State(); st == StateClosed {
		return &core.InvalidStateError{Op: "close", State: st.String()}
	}

	err := s.engine.Free(s.handle)
	s.setState(StateClosed)
	if err != nil {
		return fmt.Errorf("failed to free handle: %w", err)
	}
	return nil
}

// Use runs fn with the session marked in use and closes the session when fn
// returns or panics. A close error is joined with fn's error. fn receives a
// context carrying the session (see FromContext).
func (s *Session) Use(ctx context.Context, fn func(ctx context.Context, s *Session) error) (err error) {
	if st := s.State(); st == StateClosed {
		return &core.InvalidStateError{Op: "use", State: st.String()}
	}
	if !s.inUse.CompareAndSwap(false, true) {
		return &core.InvalidStateError{Op: "use", State: "in use"}
	}

	defer func() {
		r := recover()
		s.inUse.Store(false)
		closeErr := s.Close()
		if r != nil {
			if closeErr != nil {
				s.logger.Warn("close after panic failed", slog.String("error", closeErr.Error()))
			}
			panic(r)
		}
		err = errors.Join(err, closeErr)
	}()

	return fn(NewContext(ctx, s), s)
}

// With dials a session, runs fn inside Use and releases the session on
// every exit path.
func With(ctx context.Context, eng core.Engine, cfg core.ConnectionConfig, logger *slog.Logger, fn func(ctx context.Context, s *Session) error) error {
	s, err := Dial(ctx, eng, cfg, logger)
	if err != nil {
		return err
	}
	return s.Use(ctx, fn)
}

func isConnectionLost(err error) bool {
	return errors.Is(err, core.ErrConnectionLost) || errors.Is(err, driver.ErrBadConn)
}
