package jsontok

import (
	"errors"
	"fmt"
)

// DefaultMaxTokens is the token budget used when the caller passes none.
const DefaultMaxTokens = 128

// Tokenizer errors.
var (
	ErrTokenize      = errors.New("tokenize failed")
	ErrTooManyTokens = fmt.Errorf("%w: token capacity exceeded", ErrTokenize)
	ErrMalformed     = fmt.Errorf("%w: malformed JSON", ErrTokenize)
)

// Kind is the type of a token.
type Kind uint8

const (
	// KindUndefined is the zero kind; no valid token has it.
	KindUndefined Kind = iota

	// KindObject is a {...} value.
	KindObject

	// KindArray is a [...] value.
	KindArray

	// KindString is a quoted string, either an object key or a value.
	KindString

	// KindPrimitive is a number, true, false or null.
	KindPrimitive
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "OBJECT"
	case KindArray:
		return "ARRAY"
	case KindString:
		return "STRING"
	case KindPrimitive:
		return "PRIMITIVE"
	default:
		return "UNDEFINED"
	}
}

// Token is a view over a byte range of the source document.
type Token struct {
	Kind Kind

	// Start and End delimit the token as [Start, End).
	Start int
	End   int

	// Size is the number of direct children: members of an object,
	// elements of an array, 1 for an object key that has its value.
	Size int
}

// Len returns the length of the token range in bytes.
func (t Token) Len() int {
	return t.End - t.Start
}

// Text returns the bytes of doc covered by the token. The slice aliases doc.
func (t Token) Text(doc []byte) []byte {
	return doc[t.Start:t.End]
}
