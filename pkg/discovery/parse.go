package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ggd-protocol/ggd-go/pkg/jsontok"
	"github.com/ggd-protocol/ggd-go/pkg/log"
)

// Option configures Parse.
type Option func(*parser)

// WithMaxTokens sets the token budget. Documents that need more tokens fail
// with ErrTokenizationFailed. The default is jsontok.DefaultMaxTokens.
func WithMaxTokens(n int) Option {
	return func(p *parser) { p.maxTokens = n }
}

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEventLogger records parser state changes and the outcome as events.
func WithEventLogger(logger log.Logger, sessionID string) Option {
	return func(p *parser) {
		p.events = log.OrNoop(logger)
		p.sessionID = sessionID
	}
}

type parser struct {
	doc       []byte
	sel       Selection
	maxTokens int
	logger    *slog.Logger
	events    log.Logger
	sessionID string
	state     State
}

// ParseAuto parses doc with AutoSelect.
func ParseAuto(doc []byte, opts ...Option) (*Result, error) {
	return Parse(doc, AutoSelect(), opts...)
}

// Parse extracts the connection parameters selected by sel from doc.
//
// doc is modified in place; see the package documentation. On failure no
// Result is returned, and the buffer may already have been modified.
func Parse(doc []byte, sel Selection, opts ...Option) (*Result, error) {
	p := &parser{
		doc:    doc,
		sel:    sel,
		logger: slog.Default(),
		events: log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}

	started := time.Now()
	result, tokens, err := p.run()
	if err != nil {
		failedIn := p.state
		p.transition(StateFailed, err.Error())
		p.logger.Debug("discovery document rejected", "selection", sel.String(), "error", err)
		p.events.Log(log.Event{
			Timestamp: time.Now(),
			SessionID: p.sessionID,
			Layer:     log.LayerParse,
			Category:  log.CategoryError,
			Error: &log.ErrorEventData{
				Layer:   log.LayerParse,
				Message: err.Error(),
				Context: failedIn.String(),
			},
		})
		return nil, err
	}

	p.transition(StateDone, "")
	p.logger.Debug("discovery document parsed",
		"host", result.Host(),
		"port", result.Port,
		"interface", result.Interface,
		"certificate_size", result.CertificateLength,
	)
	p.events.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: p.sessionID,
		Layer:     log.LayerParse,
		Category:  log.CategoryDiscovery,
		Endpoint:  result.Address(),
		Discovery: &log.DiscoveryEvent{
			Mode:            sel.Mode().String(),
			DocumentSize:    len(doc),
			TokenCount:      tokens,
			Host:            result.Host(),
			Port:            result.Port,
			Interface:       result.Interface,
			CertificateSize: result.CertificateLength,
			Duration:        time.Since(started),
		},
	})
	return result, nil
}

func (p *parser) run() (*Result, int, error) {
	if err := p.sel.Validate(); err != nil {
		return nil, 0, err
	}

	tokens, err := jsontok.Tokenize(p.doc, p.maxTokens)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrTokenizationFailed, err)
	}

	cert, err := extractCertificate(p.doc, tokens, p.sel)
	if err != nil {
		return nil, len(tokens), err
	}
	p.transition(StateCertificateFound, "")

	start, limit, err := locateCore(p.doc, tokens, p.sel)
	if err != nil {
		return nil, len(tokens), err
	}
	p.transition(StateCoreFound, "")

	scanner := newInterfaceScanner(p.doc, tokens[:limit], start)
	result := &Result{Certificate: cert, CertificateLength: len(cert)}

	if criteria, ok := p.sel.Criteria(); ok {
		p.transition(StateManualInterfaceSelected, "")
		host, port, err := scanner.next(int(criteria.InterfaceOrdinal))
		if err != nil {
			return nil, len(tokens), err
		}
		result.HostAddress, result.Port = host, port
		result.Interface = int(criteria.InterfaceOrdinal)
		return result, len(tokens), nil
	}

	p.transition(StateAutoSelectLoop, "")
	for target := 1; ; target++ {
		host, port, err := scanner.next(target)
		if errors.Is(err, ErrInterfaceOrdinalNotFound) {
			return nil, len(tokens), fmt.Errorf("%w: %d interfaces rejected", ErrNoReachableInterface, target-1)
		}
		if err != nil {
			return nil, len(tokens), err
		}
		if IsValidAddress(string(host)) {
			result.HostAddress, result.Port = host, port
			result.Interface = target
			return result, len(tokens), nil
		}
		p.logger.Debug("skipping connectivity interface", "interface", target, "host", string(host), "port", port)
	}
}

func (p *parser) transition(next State, reason string) {
	prev := p.state
	p.state = next
	p.events.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: p.sessionID,
		Layer:     log.LayerParse,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityParser,
			OldState: prev.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
}
