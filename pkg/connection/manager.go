package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Manager errors.
var (
	ErrManagerClosed    = errors.New("connection manager closed")
	ErrAlreadyConnected = errors.New("already connected")
)

// DefaultAttemptTimeout bounds a single background reconnect attempt.
const DefaultAttemptTimeout = 30 * time.Second

// State represents the connection state.
type State uint8

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithBackoff sets the reconnect backoff.
func WithBackoff(cfg BackoffConfig) ManagerOption {
	return func(m *Manager) { m.backoff = NewBackoffWithConfig(cfg) }
}

// WithAttemptTimeout bounds each background reconnect attempt.
func WithAttemptTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.attemptTimeout = d
		}
	}
}

// WithManagerLogger sets the logger for reconnect attempts.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// OnStateChange sets a callback run after every state change. It is called
// without internal locks held.
func OnStateChange(fn func(old, next State)) ManagerOption {
	return func(m *Manager) { m.onStateChange = fn }
}

// Manager keeps a connection established. After NotifyConnectionLost it
// calls the connect function again in the background, with backoff, until
// it succeeds or the manager is closed.
type Manager struct {
	mu    sync.RWMutex
	state State

	backoff        *Backoff
	connectFn      AttemptFunc
	attemptTimeout time.Duration
	logger         *slog.Logger
	onStateChange  func(old, next State)

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	reconnectCh chan struct{}
	startOnce   sync.Once
}

// NewManager creates a manager around connectFn. Call Start to enable
// background reconnection.
func NewManager(connectFn AttemptFunc, opts ...ManagerOption) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		state:          StateDisconnected,
		backoff:        NewBackoff(),
		connectFn:      connectFn,
		attemptTimeout: DefaultAttemptTimeout,
		logger:         slog.Default(),
		ctx:            ctx,
		cancel:         cancel,
		reconnectCh:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected returns true if currently connected.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Connect runs the connect function once in the caller's goroutine.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateClosed:
		m.mu.Unlock()
		return ErrManagerClosed
	}
	old := m.state
	m.state = StateConnecting
	m.mu.Unlock()
	m.notify(old, StateConnecting)

	if err := m.connectFn(ctx); err != nil {
		m.transition(StateConnecting, StateDisconnected)
		return err
	}
	m.backoff.Reset()
	m.transition(StateConnecting, StateConnected)
	return nil
}

// NotifyConnectionLost marks the connection as lost and schedules a
// reconnect. It is a no-op unless connected.
func (m *Manager) NotifyConnectionLost() {
	if !m.transition(StateConnected, StateReconnecting) {
		return
	}
	select {
	case m.reconnectCh <- struct{}{}:
	default:
	}
}

// MarkDisconnected records a deliberate disconnect. Nothing is scheduled
// and a pending reconnect stops after its current attempt.
func (m *Manager) MarkDisconnected() {
	if !m.transition(StateConnected, StateDisconnected) {
		m.transition(StateReconnecting, StateDisconnected)
	}
}

// Start launches the background reconnect loop. Later calls do nothing.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go m.loop()
	})
}

// Close stops reconnection and waits for the loop to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	old := m.state
	m.state = StateClosed
	m.mu.Unlock()
	m.notify(old, StateClosed)

	m.cancel()
	m.wg.Wait()
}

// Attempts returns the number of reconnect attempts since the last success.
func (m *Manager) Attempts() int {
	return m.backoff.Attempts()
}

func (m *Manager) loop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.reconnectCh:
			m.reconnect()
		}
	}
}

func (m *Manager) reconnect() {
	for m.State() == StateReconnecting {
		delay := m.backoff.Next()
		m.logger.Info("reconnecting", "attempt", m.backoff.Attempts(), "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(m.ctx, m.attemptTimeout)
		err := m.connectFn(ctx)
		cancel()
		if err == nil {
			m.backoff.Reset()
			m.transition(StateReconnecting, StateConnected)
			return
		}
		m.logger.Warn("reconnect attempt failed", "error", err)
	}
}

// transition moves from -> to if the manager is in from.
func (m *Manager) transition(from, to State) bool {
	m.mu.Lock()
	if m.state != from {
		m.mu.Unlock()
		return false
	}
	m.state = to
	m.mu.Unlock()
	m.notify(from, to)
	return true
}

func (m *Manager) notify(old, next State) {
	if m.onStateChange != nil {
		m.onStateChange(old, next)
	}
}
