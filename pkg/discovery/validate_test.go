package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1", false},
		{"10.0.0.5", true},
		{"203.0.113.9", true},
		{"fe80::1", false},
		{"::1", false},
		{"2001:db8::8a2e:370:7334", false},
		{"example.local", true},
		{"127.0.0.2", true},
		{"localhost", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAddress(tt.address))
		})
	}
}
