package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggd-protocol/ggd-go/pkg/cert/certtest"
	"github.com/ggd-protocol/ggd-go/pkg/discovery"
	"github.com/ggd-protocol/ggd-go/pkg/version"
)

func writeDocument(t *testing.T, caPEM []byte) string {
	t.Helper()
	ca := strings.ReplaceAll(string(caPEM), "\n", `\n`)
	doc := `{"GGGroups":[{"GGGroupId":"group-1","Cores":[{"thingArn":"arn:core","Connectivity":[` +
		`{"Id":"a","HostAddress":"127.0.0.1","PortNumber":8883,"Metadata":""},` +
		`{"Id":"b","HostAddress":"192.168.1.20","PortNumber":8883,"Metadata":""},` +
		`{"Id":"c","HostAddress":"core.local","PortNumber":9883,"Metadata":""}]}],` +
		`"CAs":["` + ca + `"]}]}`
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestRunAuto(t *testing.T) {
	ca := certtest.NewCA(t, "Group CA")
	path := writeDocument(t, ca.PEM)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{path}, nil, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "Host:      192.168.1.20\n")
	assert.Contains(t, out, "Interface: 2\n")
	assert.True(t, strings.HasSuffix(out, string(ca.PEM)), "PEM printed last")
}

func TestRunManualWritesCertificate(t *testing.T) {
	ca := certtest.NewCA(t, "Group CA")
	path := writeDocument(t, ca.PEM)
	certOut := filepath.Join(t.TempDir(), "ca.pem")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--group", "group-1", "--core", "arn:core", "--interface", "3", "-o", certOut, "--inspect", path},
		nil, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Host:      core.local\n")
	assert.Contains(t, stdout.String(), "Port:      9883\n")
	assert.Contains(t, stdout.String(), "Subject:   Group CA")

	written, err := os.ReadFile(certOut)
	require.NoError(t, err)
	assert.Equal(t, ca.PEM, written)
}

func TestRunStdinWithTrace(t *testing.T) {
	ca := certtest.NewCA(t, "Group CA")
	doc, err := os.ReadFile(writeDocument(t, ca.PEM))
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--trace", "-"}, bytes.NewReader(doc), &stdout, &stderr))
	assert.Contains(t, stderr.String(), "AUTO_SELECT_LOOP")
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--version"}, nil, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "ggd-parse "+version.Current), stdout.String())
}

func TestRunErrors(t *testing.T) {
	ca := certtest.NewCA(t, "Group CA")
	path := writeDocument(t, ca.PEM)
	var stdout, stderr bytes.Buffer

	assert.Error(t, run(nil, nil, &stdout, &stderr), "document path required")
	assert.Error(t, run([]string{filepath.Join(t.TempDir(), "none.json")}, nil, &stdout, &stderr))

	err := run([]string{"--group", "group-2", "--core", "arn:core", path}, nil, &stdout, &stderr)
	assert.ErrorIs(t, err, discovery.ErrGroupOrCoreNotFound)

	err = run([]string{"--max-tokens", "8", path}, nil, &stdout, &stderr)
	assert.ErrorIs(t, err, discovery.ErrTokenizationFailed)

	err = run([]string{"--group", "group-1", path}, nil, &stdout, &stderr)
	assert.ErrorIs(t, err, discovery.ErrInvalidSelection)
}
