// Package transport builds the TLS configurations used to reach the
// discovery service, the IoT cloud broker and Greengrass cores.
//
// Every connection is mutually authenticated with the device certificate.
// The way the peer is checked differs by target:
//
//	target              roots                  hostname check
//	discovery service   cloud root CA          yes
//	cloud broker        cloud root CA          yes
//	Greengrass core     discovered group CA    no
//
// Core certificates are issued for the core's thing, so the core config
// verifies the chain through cert.VerifyChain and skips the built-in
// hostname check.
//
// TLS 1.2 is the minimum version; the cloud endpoints do not all offer 1.3.
package transport
