package jsontok

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeLayout(t *testing.T) {
	doc := []byte(`{"k": ["v", 1]}`)

	tokens, err := Tokenize(doc, 0)
	require.NoError(t, err)
	require.Len(t, tokens, 5)

	want := []Token{
		{Kind: KindObject, Start: 0, End: 15, Size: 1},
		{Kind: KindString, Start: 2, End: 3, Size: 1},
		{Kind: KindArray, Start: 6, End: 14, Size: 2},
		{Kind: KindString, Start: 8, End: 9, Size: 0},
		{Kind: KindPrimitive, Start: 12, End: 13, Size: 0},
	}
	assert.Equal(t, want, tokens)

	assert.Equal(t, "k", string(tokens[1].Text(doc)))
	assert.Equal(t, "v", string(tokens[3].Text(doc)))
	assert.Equal(t, "1", string(tokens[4].Text(doc)))
	assert.Equal(t, byte('"'), doc[tokens[1].End], "string End is the closing quote")
}

func TestTokenizeNested(t *testing.T) {
	doc := []byte(`{"a":{"b":[{"c":true},null]},"d":"x"}`)

	tokens, err := Tokenize(doc, 0)
	require.NoError(t, err)

	kinds := make([]Kind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []Kind{
		KindObject,    // root
		KindString,    // "a"
		KindObject,    // {"b":...}
		KindString,    // "b"
		KindArray,     // [...]
		KindObject,    // {"c":true}
		KindString,    // "c"
		KindPrimitive, // true
		KindPrimitive, // null
		KindString,    // "d"
		KindString,    // "x"
	}, kinds)

	assert.Equal(t, 2, tokens[0].Size, "root has two members")
	assert.Equal(t, 2, tokens[4].Size, "array has two elements")
	assert.Equal(t, len(doc), tokens[0].End)
}

func TestTokenizeEscapedString(t *testing.T) {
	doc := []byte(`{"pem":"line1\nline2\"q\""}`)

	tokens, err := Tokenize(doc, 0)
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, `line1\nline2\"q\"`, string(tokens[2].Text(doc)))
}

func TestTokenizeIgnoresTrailingNUL(t *testing.T) {
	doc := []byte("{\"a\":1}\x00\x00")

	tokens, err := Tokenize(doc, 0)
	require.NoError(t, err)
	assert.Len(t, tokens, 3)
}

func TestTokenizeCapacity(t *testing.T) {
	doc := []byte(`[1,2,3,4,5]`)

	_, err := Tokenize(doc, 6)
	assert.NoError(t, err)

	_, err = Tokenize(doc, 5)
	assert.ErrorIs(t, err, ErrTooManyTokens)
	assert.ErrorIs(t, err, ErrTokenize)
}

func TestTokenizeDefaultCapacity(t *testing.T) {
	elems := make([]string, DefaultMaxTokens)
	for i := range elems {
		elems[i] = "0"
	}
	doc := []byte("[" + strings.Join(elems, ",") + "]")

	_, err := Tokenize(doc, 0)
	assert.ErrorIs(t, err, ErrTooManyTokens, "array token plus %d elements exceeds the default", DefaultMaxTokens)
}

func TestTokenizeMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Empty", ""},
		{"Whitespace", "   "},
		{"UnclosedObject", `{"a":1`},
		{"UnclosedArray", `[1,2`},
		{"MismatchedBrackets", `{"a":[1}`},
		{"MissingColon", `{"a" 1}`},
		{"NonStringKey", `{1:2}`},
		{"TrailingCommaObject", `{"a":1,}`},
		{"TrailingCommaArray", `[1,]`},
		{"LeadingComma", `[,1]`},
		{"MissingComma", `[1 2]`},
		{"TwoRoots", `{} {}`},
		{"StrayClose", `]`},
		{"BareWord", `{"a":nope}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize([]byte(tt.doc), 0)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Tokenize(%q) error = %v, want ErrMalformed", tt.doc, err)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "OBJECT", KindObject.String())
	assert.Equal(t, "ARRAY", KindArray.String())
	assert.Equal(t, "STRING", KindString.String())
	assert.Equal(t, "PRIMITIVE", KindPrimitive.String())
	assert.Equal(t, "UNDEFINED", Kind(42).String())
}
