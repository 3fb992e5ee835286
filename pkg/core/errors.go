package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below unwrap to these where it makes sense,
// so callers can match with errors.Is.
var (
	// ErrInvalidState is matched by every InvalidStateError and NotConnectedError.
	ErrInvalidState = errors.New("invalid session state")

	// ErrMasterAlreadyBound is returned when a Part relation's master is bound twice.
	ErrMasterAlreadyBound = errors.New("master already bound")

	// ErrConnectionLost is returned by engines when the native session is gone
	// and the handle must be reconnected before further use.
	ErrConnectionLost = errors.New("connection lost")

	// ErrEmptyDatabase is returned when a full table name is requested without a database.
	ErrEmptyDatabase = errors.New("database name is empty")
)

// NamingError reports an identifier that does not yield a pattern-valid storage name.
type NamingError struct {
	Identifier string
	Name       string // derived name, empty if derivation stopped early
	Reason     string
}

func (e *NamingError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid storage name %q for %q: %s", e.Name, e.Identifier, e.Reason)
	}
	return fmt.Sprintf("invalid identifier %q: %s", e.Identifier, e.Reason)
}

// UnboundMasterError reports a Part relation whose master is missing or not a valid master tier.
type UnboundMasterError struct {
	Part       string
	MasterTier Tier // TierUnknown when no master is bound
}

func (e *UnboundMasterError) Error() string {
	if e.MasterTier == TierUnknown {
		return fmt.Sprintf("part relation %q has no master bound", e.Part)
	}
	return fmt.Sprintf("part relation %q cannot have a %s master", e.Part, e.MasterTier)
}

// InvalidStateError reports an operation invoked in a state that does not allow it.
type InvalidStateError struct {
	Op    string
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: session is %s", e.Op, e.State)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidState).
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NotConnectedError is returned when a query is issued on a session that is not connected.
type NotConnectedError struct {
	State string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("session not connected (state: %s)", e.State)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidState).
func (e *NotConnectedError) Unwrap() error { return ErrInvalidState }

// ConnectionError carries the native diagnostic of a failed connect.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("failed to connect to %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("failed to connect: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError carries the native diagnostic of a failed query.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
