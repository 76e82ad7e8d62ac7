package cert

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ggd-protocol/ggd-go/pkg/cert/certtest"
)

func TestVerifyChain(t *testing.T) {
	group := certtest.NewCA(t, "Group CA")
	other := certtest.NewCA(t, "Other CA")
	core := group.Issue(t, "core-thing")
	stranger := other.Issue(t, "core-thing")

	verify := VerifyChain(group.Pool())

	t.Run("IssuedByRoot", func(t *testing.T) {
		assert.NoError(t, verify([][]byte{core.Cert.Raw}, nil))
	})

	t.Run("HostnameIgnored", func(t *testing.T) {
		// No SANs at all; a hostname check would fail.
		assert.Empty(t, core.Cert.DNSNames)
		assert.NoError(t, verify([][]byte{core.Cert.Raw}, nil))
	})

	t.Run("OtherRoot", func(t *testing.T) {
		assert.ErrorIs(t, verify([][]byte{stranger.Cert.Raw}, nil), ErrInvalidChain)
	})

	t.Run("NoCertificate", func(t *testing.T) {
		assert.ErrorIs(t, verify(nil, nil), ErrNoPeerCertificate)
	})

	t.Run("Garbage", func(t *testing.T) {
		assert.Error(t, verify([][]byte{[]byte("junk")}, nil))
	})

	t.Run("NilPool", func(t *testing.T) {
		assert.ErrorIs(t, VerifyChain(nil)([][]byte{core.Cert.Raw}, nil), ErrInvalidChain)
	})
}

func TestGetCertificateInfo(t *testing.T) {
	ca := certtest.NewCA(t, "Group CA")
	leaf := ca.Issue(t, "core-thing")

	info := GetCertificateInfo(leaf.Cert)
	assert.Equal(t, "core-thing", info.CommonName)
	assert.Equal(t, "Group CA", info.Issuer)
	assert.False(t, info.IsCA)

	assert.True(t, GetCertificateInfo(ca.Cert).IsCA)
	assert.Nil(t, GetCertificateInfo(nil))
}
