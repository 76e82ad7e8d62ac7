package discovery

import (
	"fmt"
	"strconv"

	"github.com/ggd-protocol/ggd-go/pkg/jsontok"
)

// interfaceScanner walks connectivity interfaces in document order.
//
// A HostAddress and a PortNumber key, found in either order inside the same
// object, make one interface. A half pair is dropped once the scan leaves
// the object it was found in. The ordinal counter and the cursor persist across next calls so repeated
// calls resume after the previously returned interface.
type interfaceScanner struct {
	doc     []byte
	tokens  []Token
	cursor  int
	ordinal int
}

func newInterfaceScanner(doc []byte, tokens []Token, start int) *interfaceScanner {
	return &interfaceScanner{doc: doc, tokens: tokens, cursor: start}
}

// next scans forward until the interface counter reaches target.
//
// On success the byte after the host address is set to NUL. The cursor is
// always left one token past where the scan stopped.
func (s *interfaceScanner) next(target int) (host []byte, port uint16, err error) {
	hostValue, portValue := -1, -1
	pairLimit := len(s.tokens)
	defer func() { s.cursor++ }()

	for ; s.cursor < len(s.tokens); s.cursor++ {
		i := s.cursor
		if (hostValue >= 0 || portValue >= 0) && i >= pairLimit {
			hostValue, portValue = -1, -1
		}
		if matchKey(s.doc, s.tokens, i, KeyHostAddress) {
			if err := s.checkValue(i, KeyHostAddress, jsontok.KindString); err != nil {
				return nil, 0, err
			}
			if portValue < 0 {
				pairLimit = objectLimit(s.tokens, i)
			}
			hostValue = i + 1
		}
		if matchKey(s.doc, s.tokens, i, KeyPortNumber) {
			if err := s.checkValue(i, KeyPortNumber, jsontok.KindPrimitive, jsontok.KindString); err != nil {
				return nil, 0, err
			}
			if hostValue < 0 {
				pairLimit = objectLimit(s.tokens, i)
			}
			portValue = i + 1
		}
		if hostValue < 0 || portValue < 0 {
			continue
		}

		s.ordinal++
		if s.ordinal != target {
			hostValue, portValue = -1, -1
			continue
		}

		p, err := strconv.ParseUint(string(s.tokens[portValue].Text(s.doc)), 10, 16)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, KeyPortNumber, err)
		}
		h := s.tokens[hostValue]
		s.doc[h.End] = 0
		return s.doc[h.Start:h.End], uint16(p), nil
	}
	return nil, 0, ErrInterfaceOrdinalNotFound
}

// checkValue verifies that the token after key exists and has one of kinds.
func (s *interfaceScanner) checkValue(key int, name string, kinds ...jsontok.Kind) error {
	if key+1 >= len(s.tokens) {
		return fmt.Errorf("%w: %s has no value", ErrMalformedDocument, name)
	}
	got := s.tokens[key+1].Kind
	for _, k := range kinds {
		if got == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %s value is a %s", ErrMalformedDocument, name, got)
}
