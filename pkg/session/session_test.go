package session

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/leapstack-labs/tiersql/internal/testutil"
	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, eng *testutil.FakeEngine) *Session {
	t.Helper()
	s, err := Create(eng, core.ConnectionConfig{Type: "fake", Host: "db.lab", User: "alice"}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	return s
}

func TestCreate(t *testing.T) {
	eng := testutil.NewFakeEngine()
	cfg := core.ConnectionConfig{Type: "fake", Host: "db.lab", User: "alice", Password: "pw", Reset: true, UseTLS: true}

	s, err := Create(eng, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, StateUninitialized, s.State())
	assert.False(t, s.InUse())
	require.Len(t, eng.Handles(), 1)
	h := eng.Handles()[0]
	assert.Equal(t, h.ID(), s.ID())
	assert.Equal(t, cfg, h.Config, "flags must be forwarded verbatim")
	assert.Equal(t, 0, h.Connects, "create must not connect")
}

func TestCreate_Errors(t *testing.T) {
	_, err := Create(nil, core.ConnectionConfig{}, nil)
	require.Error(t, err)

	eng := testutil.NewFakeEngine()
	eng.NewErr = errors.New("out of handles")
	_, err = Create(eng, core.ConnectionConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of handles")
}

func TestRawQuery_WithoutConnect(t *testing.T) {
	eng := testutil.NewFakeEngine()
	s := newSession(t, eng)

	_, err := s.RawQuery(context.Background(), "SELECT 1")

	var notConnected *core.NotConnectedError
	require.ErrorAs(t, err, &notConnected)
	assert.Equal(t, "uninitialized", notConnected.State)
	assert.ErrorIs(t, err, core.ErrInvalidState)
	assert.Empty(t, eng.Queries(), "nothing should reach the engine")
}

func TestConnectAndQuery(t *testing.T) {
	ctx := context.Background()
	eng := testutil.NewFakeEngine()
	s := newSession(t, eng)

	require.NoError(t, s.Connect(ctx))
	assert.Equal(t, StateConnected, s.State())

	res, err := s.RawQuery(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NotNil(t, res)
	defer func() { _ = res.Close() }()

	require.True(t, res.Next())
	var one int64
	require.NoError(t, res.Scan(&one))
	assert.Equal(t, int64(1), one)

	assert.Equal(t, [][]byte{[]byte("SELECT 1")}, eng.Queries())
}

func TestRawQuery_EncodesUTF8(t *testing.T) {
	ctx := context.Background()
	eng := testutil.NewFakeEngine()
	s := newSession(t, eng)
	require.NoError(t, s.Connect(ctx))

	q := "SELECT 'größe'"
	res, err := s.RawQuery(ctx, q)
	require.NoError(t, err)
	_ = res.Close()

	assert.Equal(t, []byte(q), eng.Queries()[0])
}

func TestConnect_Failure(t *testing.T) {
	ctx := context.Background()
	eng := testutil.NewFakeEngine()
	native := errors.New("access denied for user 'alice'")
	eng.ConnectErr = native
	s := newSession(t, eng)

	err := s.Connect(ctx)
	var connErr *core.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "db.lab", connErr.Host)
	assert.ErrorIs(t, err, native)
	assert.Equal(t, StateFailed, s.State())

	// Failed sessions may reconnect.
	eng.ConnectErr = nil
	require.NoError(t, s.Connect(ctx))
	assert.Equal(t, StateConnected, s.State())
}

func TestConnect_InvalidStates(t *testing.T) {
	ctx := context.Background()
	eng := testutil.NewFakeEngine()
	s := newSession(t, eng)
	require.NoError(t, s.Connect(ctx))

	var stateErr *core.InvalidStateError
	require.ErrorAs(t, s.Connect(ctx), &stateErr)
	assert.Equal(t, "connected", stateErr.State)

	require.NoError(t, s.Close())
	require.ErrorAs(t, s.Connect(ctx), &stateErr)
	assert.Equal(t, "closed", stateErr.State)
}

func TestRawQuery_Failure(t *testing.T) {
	tests := []struct {
		name      string
		native    error
		wantState State
	}{
		{"syntax error keeps session", errors.New("You have an error in your SQL syntax"), StateConnected},
		{"lost connection fails session", fmt.Errorf("read tcp: %w", core.ErrConnectionLost), StateFailed},
		{"bad conn fails session", driver.ErrBadConn, StateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			eng := testutil.NewFakeEngine()
			s := newSession(t, eng)
			require.NoError(t, s.Connect(ctx))

			eng.QueryErr = tt.native
			_, err := s.RawQuery(ctx, "SELEC 1")

			var qErr *core.QueryError
			require.ErrorAs(t, err, &qErr)
			assert.Equal(t, "SELEC 1", qErr.Query)
			assert.ErrorIs(t, err, tt.native)
			assert.Equal(t, tt.wantState, s.State())
		})
	}
}

func TestClose(t *testing.T) {
	eng := testutil.NewFakeEngine()
	s := newSession(t, eng)
	require.NoError(t, s.Connect(context.Background()))

	require.NoError(t, s.Close())
	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 1, eng.Handles()[0].Frees)

	err := s.Close()
	var stateErr *core.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "close", stateErr.Op)
	assert.ErrorIs(t, err, core.ErrInvalidState)
	assert.Equal(t, 1, eng.Handles()[0].Frees, "handle must be freed exactly once")

	_, err = s.RawQuery(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestClose_Unconnected(t *testing.T) {
	eng := testutil.NewFakeEngine()
	s := newSession(t, eng)
	require.NoError(t, s.Close())
	assert.Equal(t, 1, eng.Handles()[0].Frees)
}

func TestClose_FreeError(t *testing.T) {
	eng := testutil.NewFakeEngine()
	eng.FreeErr = errors.New("free failed")
	s := newSession(t, eng)

	err := s.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, eng.FreeErr)
	assert.Equal(t, StateClosed, s.State())
}

func TestDial(t *testing.T) {
	eng := testutil.NewFakeEngine()
	s, err := Dial(context.Background(), eng, core.ConnectionConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, StateConnected, s.State())
	require.NoError(t, s.Close())

	eng = testutil.NewFakeEngine()
	eng.ConnectErr = errors.New("refused")
	_, err = Dial(context.Background(), eng, core.ConnectionConfig{}, nil)
	var connErr *core.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 1, eng.Handles()[0].Frees, "failed dial releases the handle")
}

func TestSession_SerializesCalls(t *testing.T) {
	ctx := context.Background()
	eng := testutil.NewFakeEngine()
	s := newSession(t, eng)
	require.NoError(t, s.Connect(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.RawQuery(ctx, "SELECT 1")
			if assert.NoError(t, err) {
				_ = res.Close()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, eng.Queries(), 16)
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateUninitialized: "uninitialized",
		StateConnecting:    "connecting",
		StateConnected:     "connected",
		StateClosed:        "closed",
		StateFailed:        "failed",
		State(42):          "unknown",
	}
	for st, want := range tests {
		assert.Equal(t, want, st.String())
	}
}
