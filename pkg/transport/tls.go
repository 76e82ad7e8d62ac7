package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/ggd-protocol/ggd-go/pkg/cert"
)

// TLS constants.
const (
	// ALPNProtocol lets MQTT over TLS share port 443 with HTTPS on the
	// cloud endpoint.
	ALPNProtocol = "x-amzn-mqtt-ca"

	// MinVersion is the lowest TLS version offered.
	MinVersion = tls.VersionTLS12
)

// Configuration errors.
var (
	ErrNoConfig      = errors.New("TLS config is required")
	ErrNoCertificate = errors.New("device certificate is required")
	ErrNoRootCAs     = errors.New("root CA pool is required")
)

// TLSConfig holds the material for one TLS connection.
type TLSConfig struct {
	// Certificate is the device certificate and key.
	Certificate tls.Certificate

	// RootCAs verifies the peer. For cores this is the group CA from the
	// discovery document; for cloud endpoints the cloud root CA.
	RootCAs *x509.CertPool

	// ServerName is sent as SNI and, for cloud endpoints, checked against
	// the peer certificate.
	ServerName string

	// ALPN sets NextProtos to ALPNProtocol.
	ALPN bool

	// InsecureSkipVerify disables certificate verification.
	// Only for testing - never use in production!
	InsecureSkipVerify bool
}

func (c *TLSConfig) check() error {
	if c == nil {
		return ErrNoConfig
	}
	if len(c.Certificate.Certificate) == 0 {
		return ErrNoCertificate
	}
	if c.RootCAs == nil && !c.InsecureSkipVerify {
		return ErrNoRootCAs
	}
	return nil
}

func (c *TLSConfig) base() *tls.Config {
	tlsConfig := &tls.Config{
		MinVersion:   MinVersion,
		Certificates: []tls.Certificate{c.Certificate},
		RootCAs:      c.RootCAs,
		ServerName:   c.ServerName,
	}
	if c.ALPN {
		tlsConfig.NextProtos = []string{ALPNProtocol}
	}
	return tlsConfig
}

// NewCloudTLSConfig creates a mutual TLS configuration for the discovery
// service and the cloud broker. The peer chain and hostname are verified.
func NewCloudTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}

	tlsConfig := cfg.base()
	tlsConfig.InsecureSkipVerify = cfg.InsecureSkipVerify
	return tlsConfig, nil
}

// NewCoreTLSConfig creates a mutual TLS configuration for a discovered core.
//
// The chain must lead to RootCAs; the host name is not checked.
func NewCoreTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}

	tlsConfig := cfg.base()
	// Skips only the built-in check; VerifyPeerCertificate still verifies
	// the chain.
	tlsConfig.InsecureSkipVerify = true
	if !cfg.InsecureSkipVerify {
		tlsConfig.VerifyPeerCertificate = cert.VerifyChain(cfg.RootCAs)
	}
	return tlsConfig, nil
}

// VerifyVersion checks that a connection negotiated at least MinVersion.
func VerifyVersion(state tls.ConnectionState) error {
	if state.Version < MinVersion {
		return fmt.Errorf("TLS version %x is below TLS 1.2 (0x0303)", state.Version)
	}
	return nil
}
