package broker

import (
	"context"
	"crypto/tls"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	opts := DefaultOptions()
	opts.Host = "127.0.0.1"
	opts.Port = 8883
	opts.ClientID = "thing-1"
	opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	return opts
}

func TestBrokerURL(t *testing.T) {
	assert.Equal(t, "ssl://192.0.2.10:8883", BrokerURL("192.0.2.10", 8883))
	assert.Equal(t, "ssl://core.example.local:8443", BrokerURL("core.example.local", 8443))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 600*time.Second, opts.KeepAlive)
	assert.Equal(t, 20*time.Second, opts.CommandTimeout)
	assert.True(t, opts.CleanSession)
}

func TestNewMQTTValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"NoHost", func(o *Options) { o.Host = "" }},
		{"NoPort", func(o *Options) { o.Port = 0 }},
		{"NoClientID", func(o *Options) { o.ClientID = "" }},
		{"NoTLS", func(o *Options) { o.TLSConfig = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.mutate(&opts)
			_, err := NewMQTT(opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}

	opts := validOptions()
	opts.KeepAlive = 0
	m, err := NewMQTT(opts)
	require.NoError(t, err)
	assert.Equal(t, DefaultKeepAlive, m.opts.KeepAlive, "zero timers take defaults")
	assert.False(t, m.IsConnected())
}

func TestMQTTRequiresConnection(t *testing.T) {
	m, err := NewMQTT(validOptions())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, m.Publish(ctx, "t", []byte("x"), AtMostOnce), ErrNotConnected)
	assert.ErrorIs(t, m.Subscribe(ctx, "t", AtMostOnce, func(string, []byte) {}), ErrNotConnected)
	assert.ErrorIs(t, m.Unsubscribe(ctx, "t"), ErrNotConnected)
	assert.NoError(t, m.Unsubscribe(ctx), "nothing to unsubscribe")

	assert.ErrorIs(t, m.Publish(ctx, "t", nil, QoS(3)), ErrInvalidQoS)
	assert.ErrorIs(t, m.Subscribe(ctx, "t", QoS(7), nil), ErrInvalidQoS)
}

func TestMQTTConnectRefused(t *testing.T) {
	// Reserve a port and close it so nothing listens there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	opts := validOptions()
	opts.Port = uint16(port)
	opts.CommandTimeout = 2 * time.Second
	m, err := NewMQTT(opts)
	require.NoError(t, err)

	err = m.Connect(context.Background())
	assert.Error(t, err)
	assert.False(t, m.IsConnected())
}

func TestQoSValid(t *testing.T) {
	assert.True(t, AtMostOnce.Valid())
	assert.True(t, AtLeastOnce.Valid())
	assert.True(t, ExactlyOnce.Valid())
	assert.False(t, QoS(3).Valid())
}
