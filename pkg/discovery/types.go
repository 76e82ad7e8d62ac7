package discovery

import (
	"errors"
	"fmt"

	"github.com/ggd-protocol/ggd-go/pkg/jsontok"
)

// Document keys used to locate the connection parameters.
const (
	KeyGroupID      = "GGGroupId"
	KeyThingArn     = "thingArn"
	KeyHostAddress  = "HostAddress"
	KeyPortNumber   = "PortNumber"
	KeyCertificates = "CAs"
)

// LoopbackAddress is never selected in auto mode.
const LoopbackAddress = "127.0.0.1"

// Discovery errors.
var (
	ErrTokenizationFailed       = errors.New("discovery document tokenization failed")
	ErrGroupOrCoreNotFound      = errors.New("group or core not found")
	ErrCertificateNotFound      = errors.New("certificate not found")
	ErrNoReachableInterface     = errors.New("no reachable connectivity interface")
	ErrInterfaceOrdinalNotFound = errors.New("connectivity interface ordinal not found")
	ErrMalformedDocument        = errors.New("unexpected discovery document structure")
	ErrInvalidSelection         = errors.New("invalid host selection")
)

// Token is a token of the discovery document.
type Token = jsontok.Token

// HostSelectionCriteria identifies a core and one of its interfaces.
type HostSelectionCriteria struct {
	// GroupName is the GGGroupId of the group.
	GroupName string

	// CoreIdentity is the thingArn of the core inside the group.
	CoreIdentity string

	// InterfaceOrdinal selects the connectivity interface, starting at 1.
	// Zero is treated as 1.
	InterfaceOrdinal uint8
}

// SelectionMode is the strategy used to pick a core interface.
type SelectionMode uint8

const (
	// ModeAuto picks the first validator-accepted interface.
	ModeAuto SelectionMode = iota + 1

	// ModeManual picks the interface named by HostSelectionCriteria.
	ModeManual
)

// String returns the mode name.
func (m SelectionMode) String() string {
	switch m {
	case ModeAuto:
		return "AUTO"
	case ModeManual:
		return "MANUAL"
	default:
		return "UNKNOWN"
	}
}

// Selection is either AutoSelect() or Manual(criteria).
// The zero value is invalid.
type Selection struct {
	mode     SelectionMode
	criteria HostSelectionCriteria
}

// AutoSelect returns the auto-select strategy.
func AutoSelect() Selection {
	return Selection{mode: ModeAuto}
}

// Manual returns the strategy that selects the given group, core and interface.
func Manual(criteria HostSelectionCriteria) Selection {
	if criteria.InterfaceOrdinal == 0 {
		criteria.InterfaceOrdinal = 1
	}
	return Selection{mode: ModeManual, criteria: criteria}
}

// Mode returns the selection strategy.
func (s Selection) Mode() SelectionMode {
	return s.mode
}

// Criteria returns the manual criteria. ok is false in auto mode.
func (s Selection) Criteria() (criteria HostSelectionCriteria, ok bool) {
	if s.mode != ModeManual {
		return HostSelectionCriteria{}, false
	}
	return s.criteria, true
}

// Validate checks that the selection can be used by Parse.
func (s Selection) Validate() error {
	switch s.mode {
	case ModeAuto:
		return nil
	case ModeManual:
		if s.criteria.GroupName == "" {
			return fmt.Errorf("%w: group name is required", ErrInvalidSelection)
		}
		if s.criteria.CoreIdentity == "" {
			return fmt.Errorf("%w: core identity is required", ErrInvalidSelection)
		}
		return nil
	default:
		return fmt.Errorf("%w: no selection mode", ErrInvalidSelection)
	}
}

// String describes the selection for logs.
func (s Selection) String() string {
	if c, ok := s.Criteria(); ok {
		return fmt.Sprintf("MANUAL(group=%s core=%s interface=%d)", c.GroupName, c.CoreIdentity, c.InterfaceOrdinal)
	}
	return s.mode.String()
}

// Result holds the connection parameters of the selected core.
//
// HostAddress and Certificate alias the parsed buffer.
type Result struct {
	// HostAddress is an IPv4 literal or a hostname. The buffer byte right
	// after it has been set to NUL.
	HostAddress []byte

	// Port is the broker port of the interface.
	Port uint16

	// Certificate is the group CA in PEM form, without the trailing NUL
	// written after it.
	Certificate []byte

	// CertificateLength is len(Certificate).
	CertificateLength int

	// Interface is the ordinal of the selected interface.
	Interface int
}

// Host returns a copy of the host address.
func (r *Result) Host() string {
	return string(r.HostAddress)
}

// CertificatePEM returns the PEM bytes of the certificate.
func (r *Result) CertificatePEM() []byte {
	return r.Certificate[:r.CertificateLength]
}

// Address returns host:port.
func (r *Result) Address() string {
	return fmt.Sprintf("%s:%d", r.HostAddress, r.Port)
}

// State is the parser state.
type State uint8

const (
	StateStart State = iota
	StateCertificateFound
	StateCoreFound
	StateManualInterfaceSelected
	StateAutoSelectLoop
	StateDone
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateCertificateFound:
		return "CERTIFICATE_FOUND"
	case StateCoreFound:
		return "CORE_FOUND"
	case StateManualInterfaceSelected:
		return "MANUAL_INTERFACE_SELECTED"
	case StateAutoSelectLoop:
		return "AUTO_SELECT_LOOP"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
