package log

import "time"

// Event represents one captured event at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies one client instance (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// ThingName is the device identity used for discovery.
	ThingName string `cbor:"5,keyasint,omitempty"`

	// Endpoint is the remote host:port (discovery endpoint or broker).
	Endpoint string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Discovery   *DiscoveryEvent   `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Message     *MessageEvent     `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Layer indicates which component captured the event.
type Layer uint8

const (
	// LayerFetch is the discovery document download.
	LayerFetch Layer = 0
	// LayerParse is the discovery document parser.
	LayerParse Layer = 1
	// LayerBroker is the message-broker connection.
	LayerBroker Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerFetch:
		return "FETCH"
	case LayerParse:
		return "PARSE"
	case LayerBroker:
		return "BROKER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryDiscovery indicates a discovery outcome.
	CategoryDiscovery Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryMessage indicates a published or received message.
	CategoryMessage Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryDiscovery:
		return "DISCOVERY"
	case CategoryState:
		return "STATE"
	case CategoryMessage:
		return "MESSAGE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates a received message.
	DirectionIn Direction = 0
	// DirectionOut indicates a published message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// DiscoveryEvent captures the outcome of a fetch or parse.
type DiscoveryEvent struct {
	// Mode is the selection strategy ("AUTO" or "MANUAL").
	Mode string `cbor:"1,keyasint,omitempty"`

	// DocumentSize is the discovery document size in bytes.
	DocumentSize int `cbor:"2,keyasint"`

	// TokenCount is the number of JSON tokens in the document.
	TokenCount int `cbor:"3,keyasint,omitempty"`

	// Host and Port of the selected connectivity interface.
	Host string `cbor:"4,keyasint,omitempty"`
	Port uint16 `cbor:"5,keyasint,omitempty"`

	// Interface is the 1-based ordinal of the selected interface.
	Interface int `cbor:"6,keyasint,omitempty"`

	// CertificateSize is the PEM length after unescaping.
	CertificateSize int `cbor:"7,keyasint,omitempty"`

	// Duration of the operation. Stored as nanoseconds.
	Duration time.Duration `cbor:"8,keyasint,omitempty"`
}

// StateChangeEvent captures parser and connection state transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityParser indicates a discovery parser state change.
	StateEntityParser StateEntity = 0
	// StateEntityConnection indicates a broker connection state change.
	StateEntityConnection StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityParser:
		return "PARSER"
	case StateEntityConnection:
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures a message published to or received from the broker.
type MessageEvent struct {
	Direction Direction `cbor:"1,keyasint"`

	Topic string `cbor:"2,keyasint"`

	// PayloadSize is the payload length in bytes. Payloads are not stored.
	PayloadSize int `cbor:"3,keyasint"`

	QoS uint8 `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
