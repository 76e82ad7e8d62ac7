package discovery

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggd-protocol/ggd-go/pkg/jsontok"
	"github.com/ggd-protocol/ggd-go/pkg/log"
)

func TestParseAutoAndManualAgree(t *testing.T) {
	doc := singleGroupDoc(iface("192.0.2.10", "8883"))

	auto, err := ParseAuto(bytes.Clone(doc))
	require.NoError(t, err)

	manual, err := Parse(bytes.Clone(doc), manualCore1(1))
	require.NoError(t, err)

	assert.Equal(t, auto.Host(), manual.Host())
	assert.Equal(t, auto.Port, manual.Port)
	assert.Equal(t, auto.Interface, manual.Interface)
	assert.Equal(t, auto.CertificateLength, manual.CertificateLength)
	assert.Equal(t, auto.CertificatePEM(), manual.CertificatePEM())

	assert.Equal(t, "192.0.2.10", auto.Host())
	assert.Equal(t, uint16(8883), auto.Port)
	assert.Equal(t, "192.0.2.10:8883", auto.Address())
}

func TestParseAutoSkipsLoopback(t *testing.T) {
	doc := singleGroupDoc(
		iface("127.0.0.1", "8883"),
		iface("203.0.113.9", "8443"),
	)

	result, err := ParseAuto(doc)
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.9", result.Host())
	assert.Equal(t, uint16(8443), result.Port)
	assert.Equal(t, 2, result.Interface)
}

func TestParseAutoSkipsIPv6(t *testing.T) {
	doc := singleGroupDoc(
		iface("fe80::1", "8883"),
		iface("::1", "8883"),
		iface("core.example.local", "8883"),
	)

	result, err := ParseAuto(doc)
	require.NoError(t, err)
	assert.Equal(t, "core.example.local", result.Host())
	assert.Equal(t, 3, result.Interface)
}

func TestParseAutoNoReachableInterface(t *testing.T) {
	doc := singleGroupDoc(
		iface("127.0.0.1", "8883"),
		iface("fe80::1", "8883"),
	)

	result, err := ParseAuto(doc)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoReachableInterface)
}

func TestParseAutoNoInterfaces(t *testing.T) {
	doc := singleGroupDoc()

	_, err := ParseAuto(doc)
	assert.ErrorIs(t, err, ErrNoReachableInterface)
}

func TestParseAutoCrossesCores(t *testing.T) {
	doc := buildDoc(fixtureGroup{
		id: "group-1",
		cores: []fixtureCore{
			{arn: "core-a", interfaces: []fixtureInterface{iface("127.0.0.1", "8883")}},
			{arn: "core-b", interfaces: []fixtureInterface{iface("10.0.0.5", "8883")}},
		},
		cas: []string{testCA},
	})

	result, err := ParseAuto(doc)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", result.Host())
}

func TestParseManualOrdinal(t *testing.T) {
	doc := singleGroupDoc(
		iface("10.0.0.1", "8883"),
		iface("10.0.0.2", "8884"),
		iface("10.0.0.3", "8885"),
	)

	result, err := Parse(doc, manualCore1(2))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", result.Host())
	assert.Equal(t, uint16(8884), result.Port)
	assert.Equal(t, 2, result.Interface)
}

func TestParseManualZeroOrdinalMeansFirst(t *testing.T) {
	doc := singleGroupDoc(iface("10.0.0.1", "8883"), iface("10.0.0.2", "8884"))

	result, err := Parse(doc, manualCore1(0))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", result.Host())
}

func TestParseManualDoesNotValidateAddress(t *testing.T) {
	doc := singleGroupDoc(iface("127.0.0.1", "8883"))

	result, err := Parse(doc, manualCore1(1))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", result.Host())
}

func TestParseManualOrdinalBeyondInterfaces(t *testing.T) {
	doc := singleGroupDoc(iface("10.0.0.1", "8883"))

	result, err := Parse(doc, manualCore1(2))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInterfaceOrdinalNotFound)
}

func TestParseManualSelectsGroupAndCore(t *testing.T) {
	otherPEM := strings.Replace(testCA, "AAAA", "BBBB", 1)
	doc := buildDoc(
		fixtureGroup{
			id: "group-1",
			cores: []fixtureCore{
				{arn: "core-1", interfaces: []fixtureInterface{iface("10.1.0.1", "8883")}},
			},
			cas: []string{testCA},
		},
		fixtureGroup{
			id: "group-2",
			cores: []fixtureCore{
				{arn: "core-1", interfaces: []fixtureInterface{iface("10.2.0.1", "8883")}},
				{arn: "core-2", interfaces: []fixtureInterface{iface("10.2.0.2", "9883")}},
			},
			cas: []string{otherPEM},
		},
	)

	result, err := Parse(doc, Manual(HostSelectionCriteria{
		GroupName:        "group-2",
		CoreIdentity:     "core-2",
		InterfaceOrdinal: 1,
	}))
	require.NoError(t, err)

	assert.Equal(t, "10.2.0.2", result.Host())
	assert.Equal(t, uint16(9883), result.Port)
	assert.Contains(t, string(result.CertificatePEM()), "BBBB")
	assert.NotContains(t, string(result.CertificatePEM()), "AAAA")
}

func TestParseGroupMismatch(t *testing.T) {
	doc := singleGroupDoc(iface("10.0.0.1", "8883"))

	result, err := Parse(doc, Manual(HostSelectionCriteria{
		GroupName:    "some-other-group",
		CoreIdentity: "arn:aws:iot:eu-west-1:123456789012:thing/core-1",
	}))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrGroupOrCoreNotFound)
}

func TestParseCoreMismatch(t *testing.T) {
	doc := singleGroupDoc(iface("10.0.0.1", "8883"))

	_, err := Parse(doc, Manual(HostSelectionCriteria{
		GroupName:    "group-1",
		CoreIdentity: "arn:aws:iot:eu-west-1:123456789012:thing/missing",
	}))
	assert.ErrorIs(t, err, ErrGroupOrCoreNotFound)
}

func TestParseCoreMustBeInsideGroup(t *testing.T) {
	doc := buildDoc(
		fixtureGroup{id: "group-1", cas: []string{testCA}},
		fixtureGroup{
			id:    "group-2",
			cores: []fixtureCore{{arn: "core-x", interfaces: []fixtureInterface{iface("10.0.0.9", "8883")}}},
			cas:   []string{testCA},
		},
	)

	_, err := Parse(doc, Manual(HostSelectionCriteria{GroupName: "group-1", CoreIdentity: "core-x"}))
	assert.ErrorIs(t, err, ErrGroupOrCoreNotFound)
}

func TestParseCertificateNotFound(t *testing.T) {
	doc := []byte(`{"GGGroups":[{"GGGroupId":"group-1","Cores":[{"thingArn":"c","Connectivity":[` +
		`{"HostAddress":"10.0.0.1","PortNumber":8883}]}]}]}`)

	_, err := ParseAuto(bytes.Clone(doc))
	assert.ErrorIs(t, err, ErrCertificateNotFound)

	_, err = Parse(bytes.Clone(doc), Manual(HostSelectionCriteria{GroupName: "group-1", CoreIdentity: "c"}))
	assert.ErrorIs(t, err, ErrCertificateNotFound)
}

func TestParseCertificateOfOtherGroupIgnored(t *testing.T) {
	doc := []byte(`{"GGGroups":[` +
		`{"GGGroupId":"group-1","Cores":[{"thingArn":"c","Connectivity":[{"HostAddress":"10.0.0.1","PortNumber":8883}]}]},` +
		`{"GGGroupId":"group-2","CAs":["` + testCA + `"]}]}`)

	_, err := Parse(doc, Manual(HostSelectionCriteria{GroupName: "group-1", CoreIdentity: "c"}))
	assert.ErrorIs(t, err, ErrCertificateNotFound)
}

func TestParseMalformedStructure(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"CAsNotArray", `{"GGGroupId":"g","CAs":"pem"}`},
		{"CAsEmpty", `{"GGGroupId":"g","CAs":[]}`},
		{"CAsEntryNotString", `{"GGGroupId":"g","CAs":[{"pem":"x"}]}`},
		{"HostAddressObject", `{"GGGroupId":"g","CAs":["x"],"thingArn":"c","HostAddress":{"v":"1"},"PortNumber":1}`},
		{"PortNumberArray", `{"GGGroupId":"g","CAs":["x"],"thingArn":"c","HostAddress":"10.0.0.1","PortNumber":[1]}`},
		{"PortOutOfRange", `{"GGGroupId":"g","CAs":["x"],"thingArn":"c","HostAddress":"10.0.0.1","PortNumber":70000}`},
		{"PortNotNumber", `{"GGGroupId":"g","CAs":["x"],"thingArn":"c","HostAddress":"10.0.0.1","PortNumber":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAuto([]byte(tt.doc))
			if !errors.Is(err, ErrMalformedDocument) {
				t.Errorf("ParseAuto(%s) error = %v, want ErrMalformedDocument", tt.doc, err)
			}
		})
	}
}

func TestParsePortAsString(t *testing.T) {
	doc := singleGroupDoc(iface("10.0.0.1", `"8883"`))

	result, err := ParseAuto(doc)
	require.NoError(t, err)
	assert.Equal(t, uint16(8883), result.Port)
}

func TestParseKeyOrderWithinInterface(t *testing.T) {
	doc := []byte(`{"GGGroupId":"g","CAs":["x"],"thingArn":"c","Connectivity":[` +
		`{"PortNumber":1111,"Id":"a","HostAddress":"10.0.0.1"},` +
		`{"HostAddress":"10.0.0.2","PortNumber":2222}]}`)

	result, err := Parse(doc, Manual(HostSelectionCriteria{GroupName: "g", CoreIdentity: "c", InterfaceOrdinal: 2}))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", result.Host())
	assert.Equal(t, uint16(2222), result.Port)
}

func TestParseIgnoresKeyNamesInValues(t *testing.T) {
	doc := []byte(`{"GGGroupId":"g","CAs":["x"],"thingArn":"c","Connectivity":[` +
		`{"Id":"1","Metadata":"HostAddress","PortNumber":8883,"HostAddress":"10.0.0.1"}]}`)

	result, err := ParseAuto(doc)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", result.Host())
	assert.Equal(t, uint16(8883), result.Port)
}

func TestParseValueNamedCAsIsNotACertificate(t *testing.T) {
	doc := []byte(`{"GGGroupId":"g","Metadata":"CAs","x":["not-a-ca"],"thingArn":"c",` +
		`"HostAddress":"10.0.0.1","PortNumber":8883}`)

	result, err := ParseAuto(doc)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCertificateNotFound)
}

func TestParseHalfInterfacesAreNotMerged(t *testing.T) {
	doc := []byte(`{"GGGroupId":"g","CAs":["x"],"thingArn":"c","Connectivity":[` +
		`{"Id":"1","HostAddress":"10.0.0.1"},` +
		`{"Id":"2","PortNumber":8443,"HostAddress":"10.0.0.2"}]}`)

	result, err := ParseAuto(doc)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", result.Host())
	assert.Equal(t, uint16(8443), result.Port)
	assert.Equal(t, 1, result.Interface, "the incomplete entry has no ordinal")
}

func TestParseHalfInterfaceOnlyFails(t *testing.T) {
	doc := []byte(`{"GGGroupId":"g","CAs":["x"],"thingArn":"c","Connectivity":[` +
		`{"Id":"1","HostAddress":"10.0.0.1"},{"Id":"2","PortNumber":8443}]}`)

	_, err := ParseAuto(doc)
	assert.ErrorIs(t, err, ErrNoReachableInterface)
}

func TestParseManualStaysInsideCore(t *testing.T) {
	twoCores := func() []byte {
		return buildDoc(fixtureGroup{
			id: "group-1",
			cores: []fixtureCore{
				{arn: "core-a", interfaces: []fixtureInterface{iface("10.0.0.1", "8883")}},
				{arn: "core-b", interfaces: []fixtureInterface{iface("10.0.0.2", "8883")}},
			},
			cas: []string{testCA},
		})
	}

	sel := Manual(HostSelectionCriteria{GroupName: "group-1", CoreIdentity: "core-a", InterfaceOrdinal: 2})
	result, err := Parse(twoCores(), sel)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInterfaceOrdinalNotFound, "core-b's interface is not core-a's second")

	sel = Manual(HostSelectionCriteria{GroupName: "group-1", CoreIdentity: "core-b", InterfaceOrdinal: 1})
	result, err = Parse(twoCores(), sel)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", result.Host())
}

func TestParseTokenizationFailed(t *testing.T) {
	t.Run("Malformed", func(t *testing.T) {
		_, err := ParseAuto([]byte(`{"GGGroups":[`))
		assert.ErrorIs(t, err, ErrTokenizationFailed)
		assert.ErrorIs(t, err, jsontok.ErrMalformed)
	})

	t.Run("CapacityOverflow", func(t *testing.T) {
		doc := singleGroupDoc(iface("10.0.0.1", "8883"), iface("10.0.0.2", "8883"))

		_, err := ParseAuto(bytes.Clone(doc), WithMaxTokens(10))
		assert.ErrorIs(t, err, ErrTokenizationFailed)
		assert.ErrorIs(t, err, jsontok.ErrTooManyTokens)

		_, err = ParseAuto(bytes.Clone(doc), WithMaxTokens(1000))
		assert.NoError(t, err)
	})
}

func TestParseInvalidSelection(t *testing.T) {
	doc := singleGroupDoc(iface("10.0.0.1", "8883"))

	tests := []struct {
		name string
		sel  Selection
	}{
		{"Zero", Selection{}},
		{"NoGroup", Manual(HostSelectionCriteria{CoreIdentity: "c"})},
		{"NoCore", Manual(HostSelectionCriteria{GroupName: "g"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(bytes.Clone(doc), tt.sel)
			assert.ErrorIs(t, err, ErrInvalidSelection)
		})
	}
}

func TestParseTerminatesHostInPlace(t *testing.T) {
	doc := singleGroupDoc(iface("192.0.2.10", "8883"))

	result, err := ParseAuto(doc)
	require.NoError(t, err)

	end := len(result.HostAddress)
	full := result.HostAddress[:end+1]
	assert.Equal(t, byte(0), full[end], "byte after host must be NUL")
	assert.Equal(t, "192.0.2.10", result.Host())
}

func TestParseCertificateIsValidPEM(t *testing.T) {
	pemText := generatePEM(t)
	doc := buildDoc(fixtureGroup{
		id:    "group-1",
		cores: []fixtureCore{{arn: "core-1", interfaces: []fixtureInterface{iface("10.0.0.1", "8883")}}},
		cas:   []string{escapeForJSON(pemText)},
	})

	result, err := ParseAuto(doc)
	require.NoError(t, err)

	assert.Equal(t, pemText, string(result.CertificatePEM()))

	block, rest := pem.Decode(result.CertificatePEM())
	require.NotNil(t, block)
	assert.Empty(t, rest)
	_, err = x509.ParseCertificate(block.Bytes)
	assert.NoError(t, err)
}

func TestParseBuffersAreIndependent(t *testing.T) {
	doc := singleGroupDoc(iface("127.0.0.1", "8883"), iface("10.0.0.7", "8883"))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := ParseAuto(bytes.Clone(doc))
			if err == nil && result.Host() != "10.0.0.7" {
				err = errors.New("unexpected host " + result.Host())
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingLogger) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.StateChange != nil {
			out = append(out, e.StateChange.NewState)
		}
	}
	return out
}

func TestParseEventTrace(t *testing.T) {
	t.Run("AutoSuccess", func(t *testing.T) {
		rec := &recordingLogger{}
		_, err := ParseAuto(singleGroupDoc(iface("10.0.0.1", "8883")), WithEventLogger(rec, "s-1"))
		require.NoError(t, err)

		assert.Equal(t, []string{"CERTIFICATE_FOUND", "CORE_FOUND", "AUTO_SELECT_LOOP", "DONE"}, rec.states())

		last := rec.events[len(rec.events)-1]
		require.NotNil(t, last.Discovery)
		assert.Equal(t, "s-1", last.SessionID)
		assert.Equal(t, "AUTO", last.Discovery.Mode)
		assert.Equal(t, "10.0.0.1", last.Discovery.Host)
		assert.Positive(t, last.Discovery.TokenCount)
	})

	t.Run("ManualFailure", func(t *testing.T) {
		rec := &recordingLogger{}
		_, err := Parse(singleGroupDoc(iface("10.0.0.1", "8883")), manualCore1(3), WithEventLogger(rec, "s-2"))
		require.Error(t, err)

		assert.Equal(t, []string{"CERTIFICATE_FOUND", "CORE_FOUND", "MANUAL_INTERFACE_SELECTED", "FAILED"}, rec.states())

		last := rec.events[len(rec.events)-1]
		require.NotNil(t, last.Error)
		assert.Equal(t, "MANUAL_INTERFACE_SELECTED", last.Error.Context)
	})
}
