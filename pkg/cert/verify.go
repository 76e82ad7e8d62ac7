package cert

import (
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// Verification errors.
var (
	ErrNoPeerCertificate = errors.New("no peer certificate")
	ErrInvalidChain      = errors.New("invalid certificate chain")
)

// VerifyChain returns a tls.Config VerifyPeerCertificate callback that checks
// the presented chain against roots without looking at host names.
//
// Greengrass core certificates are issued for the core's thing, not for the
// address it is reached at, so the usual hostname check cannot pass.
func VerifyChain(roots *x509.CertPool) func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return ErrNoPeerCertificate
		}
		if roots == nil {
			return fmt.Errorf("%w: no root CAs configured", ErrInvalidChain)
		}

		leaf, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("parse peer certificate: %w", err)
		}

		intermediates := x509.NewCertPool()
		for _, raw := range rawCerts[1:] {
			c, err := x509.ParseCertificate(raw)
			if err != nil {
				return fmt.Errorf("parse intermediate certificate: %w", err)
			}
			intermediates.AddCert(c)
		}

		opts := x509.VerifyOptions{
			Roots:         roots,
			Intermediates: intermediates,
			CurrentTime:   time.Now(),
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
		}
		if _, err := leaf.Verify(opts); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidChain, err)
		}
		return nil
	}
}

// CertificateInfo extracts human-readable information from a certificate.
type CertificateInfo struct {
	CommonName string
	Issuer     string
	NotBefore  time.Time
	NotAfter   time.Time
	IsCA       bool
	SKI        []byte
	AKI        []byte
}

// GetCertificateInfo extracts information from a certificate.
func GetCertificateInfo(cert *x509.Certificate) *CertificateInfo {
	if cert == nil {
		return nil
	}

	return &CertificateInfo{
		CommonName: cert.Subject.CommonName,
		Issuer:     cert.Issuer.CommonName,
		NotBefore:  cert.NotBefore,
		NotAfter:   cert.NotAfter,
		IsCA:       cert.IsCA,
		SKI:        cert.SubjectKeyId,
		AKI:        cert.AuthorityKeyId,
	}
}
