package discovery

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"strings"
	"testing"
	"time"
)

// testCA is a JSON-escaped certificate body as it appears on the wire.
const testCA = `-----BEGIN CERTIFICATE-----\nMIIBszCCAVmgAwIBAgIUTESTTESTTESTTEST\nAAAA\n-----END CERTIFICATE-----\n`

type fixtureInterface struct {
	host string
	port string // raw JSON value
}

type fixtureCore struct {
	arn        string
	interfaces []fixtureInterface
}

type fixtureGroup struct {
	id    string
	cores []fixtureCore
	cas   []string // JSON-escaped string contents
}

func iface(host string, port string) fixtureInterface {
	return fixtureInterface{host: host, port: port}
}

// buildDoc renders groups in the layout returned by the discovery service.
func buildDoc(groups ...fixtureGroup) []byte {
	var b strings.Builder
	b.WriteString(`{"GGGroups":[`)
	for gi, g := range groups {
		if gi > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"GGGroupId":"` + g.id + `","Cores":[`)
		for ci, c := range g.cores {
			if ci > 0 {
				b.WriteString(",")
			}
			b.WriteString(`{"thingArn":"` + c.arn + `","Connectivity":[`)
			for ii, itf := range c.interfaces {
				if ii > 0 {
					b.WriteString(",")
				}
				b.WriteString(`{"Id":"ep` + itf.host + `","HostAddress":"` + itf.host +
					`","PortNumber":` + itf.port + `,"Metadata":""}`)
			}
			b.WriteString(`]}`)
		}
		b.WriteString(`],"CAs":[`)
		for ai, ca := range g.cas {
			if ai > 0 {
				b.WriteString(",")
			}
			b.WriteString(`"` + ca + `"`)
		}
		b.WriteString(`]}`)
	}
	b.WriteString(`]}`)
	return []byte(b.String())
}

func singleGroupDoc(interfaces ...fixtureInterface) []byte {
	return buildDoc(fixtureGroup{
		id: "group-1",
		cores: []fixtureCore{{
			arn:        "arn:aws:iot:eu-west-1:123456789012:thing/core-1",
			interfaces: interfaces,
		}},
		cas: []string{testCA},
	})
}

func manualCore1(ordinal uint8) Selection {
	return Manual(HostSelectionCriteria{
		GroupName:        "group-1",
		CoreIdentity:     "arn:aws:iot:eu-west-1:123456789012:thing/core-1",
		InterfaceOrdinal: ordinal,
	})
}

// escapeForJSON converts PEM text into the wire form used by the service.
func escapeForJSON(pemText string) string {
	return strings.ReplaceAll(pemText, "\n", `\n`)
}

// generatePEM creates a self-signed CA certificate for realistic documents.
func generatePEM(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(7),
		Subject:               pkix.Name{CommonName: "Greengrass Core CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}
