package jsontok

import (
	"bytes"
	"fmt"
	"io"

	"github.com/creachadair/jtree"
)

// expect is the grammar position inside an open container.
type expect uint8

const (
	expectKeyOrEnd   expect = iota // just after '{'
	expectKey                      // after ',' in an object
	expectColon                    // after an object key
	expectValue                    // after ':' or after ',' in an array
	expectValueOrEnd               // just after '['
	expectCommaOrEnd               // after a complete member or element
)

type frame struct {
	index int // token index of the container
	key   int // token index of the pending object key
	want  expect
}

type builder struct {
	doc      []byte
	capacity int
	tokens   []Token
	stack    []frame
	done     bool
}

// Tokenize scans doc and returns its tokens in document order.
//
// At most capacity tokens are produced; capacity <= 0 selects
// DefaultMaxTokens. Trailing NUL bytes are ignored so C-style terminated
// buffers can be passed as is. Token offsets always index into doc.
func Tokenize(doc []byte, capacity int) ([]Token, error) {
	if capacity <= 0 {
		capacity = DefaultMaxTokens
	}
	doc = bytes.TrimRight(doc, "\x00")

	b := &builder{
		doc:      doc,
		capacity: capacity,
		tokens:   make([]Token, 0, min(capacity, 64)),
	}

	s := jtree.NewScanner(bytes.NewReader(doc))
	for {
		err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		span := s.Span()
		if err := b.push(s.Token(), span.Pos, span.End); err != nil {
			return nil, err
		}
	}

	if !b.done || len(b.stack) != 0 {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrMalformed)
	}
	return b.tokens, nil
}

func (b *builder) push(tok jtree.Token, pos, end int) error {
	switch tok {
	case jtree.LBrace:
		return b.open(KindObject, pos, expectKeyOrEnd)
	case jtree.LSquare:
		return b.open(KindArray, pos, expectValueOrEnd)
	case jtree.RBrace:
		return b.close(KindObject, end)
	case jtree.RSquare:
		return b.close(KindArray, end)
	case jtree.Colon:
		top := b.top()
		if top == nil || top.want != expectColon {
			return b.unexpected(":", pos)
		}
		top.want = expectValue
		return nil
	case jtree.Comma:
		top := b.top()
		if top == nil || top.want != expectCommaOrEnd {
			return b.unexpected(",", pos)
		}
		if b.tokens[top.index].Kind == KindObject {
			top.want = expectKey
		} else {
			top.want = expectValue
		}
		return nil
	case jtree.String:
		start, stop := pos, end
		if start < stop && b.doc[start] == '"' {
			start++
			stop--
		}
		if top := b.top(); top != nil && (top.want == expectKeyOrEnd || top.want == expectKey) {
			idx, err := b.append(Token{Kind: KindString, Start: start, End: stop})
			if err != nil {
				return err
			}
			b.tokens[top.index].Size++
			top.key = idx
			top.want = expectColon
			return nil
		}
		return b.value(Token{Kind: KindString, Start: start, End: stop}, pos)
	case jtree.Integer, jtree.Number, jtree.True, jtree.False, jtree.Null:
		return b.value(Token{Kind: KindPrimitive, Start: pos, End: end}, pos)
	default:
		return b.unexpected(string(b.doc[pos:end]), pos)
	}
}

// open appends a container token in value position and pushes its frame.
func (b *builder) open(kind Kind, pos int, want expect) error {
	if err := b.placeValue(pos); err != nil {
		return err
	}
	idx, err := b.append(Token{Kind: kind, Start: pos, End: -1})
	if err != nil {
		return err
	}
	b.stack = append(b.stack, frame{index: idx, key: -1, want: want})
	return nil
}

func (b *builder) close(kind Kind, end int) error {
	top := b.top()
	if top == nil || b.tokens[top.index].Kind != kind {
		return b.unexpected("closing bracket", end-1)
	}
	switch top.want {
	case expectKeyOrEnd, expectValueOrEnd, expectCommaOrEnd:
	default:
		return b.unexpected("closing bracket", end-1)
	}
	b.tokens[top.index].End = end
	b.stack = b.stack[:len(b.stack)-1]
	b.completeValue()
	return nil
}

// value appends a scalar token in value position.
func (b *builder) value(tok Token, pos int) error {
	if err := b.placeValue(pos); err != nil {
		return err
	}
	if _, err := b.append(tok); err != nil {
		return err
	}
	b.completeValue()
	return nil
}

// placeValue checks that a value may start here and bumps the parent's
// child count.
func (b *builder) placeValue(pos int) error {
	top := b.top()
	if top == nil {
		if b.done {
			return b.unexpected("value after document end", pos)
		}
		return nil
	}
	switch top.want {
	case expectValue:
		if b.tokens[top.index].Kind == KindObject {
			b.tokens[top.key].Size++
		} else {
			b.tokens[top.index].Size++
		}
	case expectValueOrEnd:
		b.tokens[top.index].Size++
	default:
		return b.unexpected("value", pos)
	}
	return nil
}

// completeValue records that the value just appended or closed is finished.
func (b *builder) completeValue() {
	top := b.top()
	if top == nil {
		b.done = true
		return
	}
	top.key = -1
	top.want = expectCommaOrEnd
}

func (b *builder) append(tok Token) (int, error) {
	if len(b.tokens) >= b.capacity {
		return 0, fmt.Errorf("%w: more than %d tokens", ErrTooManyTokens, b.capacity)
	}
	b.tokens = append(b.tokens, tok)
	return len(b.tokens) - 1, nil
}

func (b *builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return &b.stack[len(b.stack)-1]
}

func (b *builder) unexpected(what string, pos int) error {
	return fmt.Errorf("%w: unexpected %s at offset %d", ErrMalformed, what, pos)
}
