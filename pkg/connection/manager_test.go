package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackoff() ManagerOption {
	return WithBackoff(BackoffConfig{Initial: 5 * time.Millisecond, Max: 20 * time.Millisecond})
}

func TestManagerConnect(t *testing.T) {
	m := NewManager(func(context.Context) error { return nil }, testBackoff())
	defer m.Close()

	assert.Equal(t, StateDisconnected, m.State())
	require.NoError(t, m.Connect(context.Background()))
	assert.True(t, m.IsConnected())

	assert.ErrorIs(t, m.Connect(context.Background()), ErrAlreadyConnected)
}

func TestManagerConnectFailure(t *testing.T) {
	errDown := errors.New("down")
	m := NewManager(func(context.Context) error { return errDown }, testBackoff())
	defer m.Close()

	assert.ErrorIs(t, m.Connect(context.Background()), errDown)
	assert.Equal(t, StateDisconnected, m.State())
}

func TestManagerReconnects(t *testing.T) {
	var calls atomic.Int32
	var mu sync.Mutex
	var transitions []State

	m := NewManager(func(context.Context) error {
		// Initial connect, then two failures, then success.
		switch calls.Add(1) {
		case 2, 3:
			return errors.New("core unreachable")
		}
		return nil
	}, testBackoff(), OnStateChange(func(_, next State) {
		mu.Lock()
		transitions = append(transitions, next)
		mu.Unlock()
	}))
	m.Start()
	defer m.Close()

	require.NoError(t, m.Connect(context.Background()))
	m.NotifyConnectionLost()

	assert.Eventually(t, m.IsConnected, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(4), calls.Load())
	assert.Zero(t, m.Attempts())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateConnecting, StateConnected, StateReconnecting, StateConnected}, transitions)
}

func TestManagerLostWhileDisconnected(t *testing.T) {
	var calls atomic.Int32
	m := NewManager(func(context.Context) error {
		calls.Add(1)
		return nil
	}, testBackoff())
	m.Start()
	defer m.Close()

	m.NotifyConnectionLost()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, StateDisconnected, m.State())
	assert.Zero(t, calls.Load())
}

func TestManagerClose(t *testing.T) {
	m := NewManager(func(context.Context) error { return errors.New("down") },
		WithBackoff(BackoffConfig{Initial: time.Hour}))
	m.Start()

	m.mu.Lock()
	m.state = StateConnected
	m.mu.Unlock()
	m.NotifyConnectionLost()

	done := make(chan struct{})
	go func() {
		m.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return while waiting for backoff")
	}
	assert.Equal(t, StateClosed, m.State())
	assert.ErrorIs(t, m.Connect(context.Background()), ErrManagerClosed)

	m.Close()
}

func TestManagerMarkDisconnected(t *testing.T) {
	var calls atomic.Int32
	m := NewManager(func(context.Context) error {
		calls.Add(1)
		return nil
	}, testBackoff())
	m.Start()
	defer m.Close()

	require.NoError(t, m.Connect(context.Background()))
	m.MarkDisconnected()
	assert.Equal(t, StateDisconnected, m.State())

	m.NotifyConnectionLost()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "no reconnect after a deliberate disconnect")

	require.NoError(t, m.Connect(context.Background()), "manager can connect again")
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "DISCONNECTED"},
		{StateConnecting, "CONNECTING"},
		{StateConnected, "CONNECTED"},
		{StateReconnecting, "RECONNECTING"},
		{StateClosed, "CLOSED"},
		{State(255), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
