package testutil

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/leapstack-labs/tiersql/pkg/core"
)

// FakeEngine is an in-memory core.Engine. Queries are answered from
// Responses, keyed by exact query text; "SELECT 1" answers a single row
// holding int64(1) unless overridden.
type FakeEngine struct {
	mu sync.Mutex

	NewErr     error
	ConnectErr error
	QueryErr   error
	FreeErr    error

	Responses map[string]*FakeResult

	handles []*FakeHandle
	queries [][]byte
}

// FakeHandle is the handle allocated by FakeEngine.
type FakeHandle struct {
	id        string
	Config    core.ConnectionConfig
	Connects  int
	Connected bool
	Frees     int
}

// ID returns the handle id.
func (h *FakeHandle) ID() string { return h.id }

// NewFakeEngine returns an engine with no canned responses beyond SELECT 1.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{Responses: make(map[string]*FakeResult)}
}

// New allocates a handle and records the config it was given.
func (e *FakeEngine) New(cfg core.ConnectionConfig) (core.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.NewErr != nil {
		return nil, e.NewErr
	}
	h := &FakeHandle{id: uuid.NewString(), Config: cfg}
	e.handles = append(e.handles, h)
	return h, nil
}

// Connect marks the handle connected unless ConnectErr is set.
func (e *FakeEngine) Connect(ctx context.Context, h core.Handle) error {
	fh, err := e.handle(h)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fh.Connects++
	if e.ConnectErr != nil {
		fh.Connected = false
		return e.ConnectErr
	}
	fh.Connected = true
	return nil
}

// RawQuery records the query bytes and returns a fresh copy of the canned
// response.
func (e *FakeEngine) RawQuery(ctx context.Context, h core.Handle, query []byte) (core.Result, error) {
	fh, err := e.handle(h)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries = append(e.queries, append([]byte(nil), query...))

	if !fh.Connected {
		return nil, errors.New("fake: handle not connected")
	}
	if e.QueryErr != nil {
		if errors.Is(e.QueryErr, core.ErrConnectionLost) {
			fh.Connected = false
		}
		return nil, e.QueryErr
	}
	if res, ok := e.Responses[string(query)]; ok {
		return res.clone(), nil
	}
	if string(query) == "SELECT 1" {
		return NewFakeResult([]string{"1"}, []string{"BIGINT"}, []any{int64(1)}), nil
	}
	return NewFakeResult(nil, nil), nil
}

// Free releases the handle. Every call is counted so tests can assert
// exactly-once release.
func (e *FakeEngine) Free(h core.Handle) error {
	fh, err := e.handle(h)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fh.Frees++
	fh.Connected = false
	return e.FreeErr
}

// Handles returns every handle allocated so far.
func (e *FakeEngine) Handles() []*FakeHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*FakeHandle(nil), e.handles...)
}

// Queries returns the raw bytes of every query received.
func (e *FakeEngine) Queries() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]byte(nil), e.queries...)
}

func (e *FakeEngine) handle(h core.Handle) (*FakeHandle, error) {
	fh, ok := h.(*FakeHandle)
	if !ok || fh == nil {
		return nil, fmt.Errorf("fake: foreign handle %T", h)
	}
	return fh, nil
}

// FakeResult is an in-memory core.Result.
type FakeResult struct {
	columns []string
	types   []string
	rows    [][]any
	pos     int
	closed  bool
}

// NewFakeResult builds a result. Each row must have len(columns) values.
func NewFakeResult(columns, types []string, rows ...[]any) *FakeResult {
	return &FakeResult{columns: columns, types: types, rows: rows, pos: -1}
}

func (r *FakeResult) clone() *FakeResult {
	return NewFakeResult(r.columns, r.types, r.rows...)
}

// Columns returns the column names.
func (r *FakeResult) Columns() ([]string, error) {
	if r.closed {
		return nil, errors.New("fake: result closed")
	}
	return r.columns, nil
}

// ColumnTypeNames returns the declared column types.
func (r *FakeResult) ColumnTypeNames() ([]string, error) {
	return r.types, nil
}

// Next advances to the next row.
func (r *FakeResult) Next() bool {
	if r.closed || r.pos+1 >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

// Scan copies the current row into dest.
func (r *FakeResult) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.rows) {
		return errors.New("fake: Scan called without a current row")
	}
	row := r.rows[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("fake: expected %d destination arguments, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return fmt.Errorf("fake: destination %d is not a pointer", i)
		}
		target := dv.Elem()
		if row[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(row[i])
		switch {
		case v.Type().AssignableTo(target.Type()):
			target.Set(v)
		case v.Type().ConvertibleTo(target.Type()):
			target.Set(v.Convert(target.Type()))
		default:
			return fmt.Errorf("fake: cannot scan %T into %s", row[i], target.Type())
		}
	}
	return nil
}

// Err always returns nil.
func (r *FakeResult) Err() error { return nil }

// Close marks the result closed.
func (r *FakeResult) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *FakeResult) Closed() bool { return r.closed }

var (
	_ core.Engine      = (*FakeEngine)(nil)
	_ core.Result      = (*FakeResult)(nil)
	_ core.ColumnTyper = (*FakeResult)(nil)
)
