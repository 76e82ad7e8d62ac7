package discovery

import (
	"bytes"

	"github.com/ggd-protocol/ggd-go/pkg/jsontok"
)

// Matches reports whether tokens[index] is a string token equal to key.
// An index outside tokens never matches.
func Matches(doc []byte, tokens []Token, index int, key string) bool {
	if index < 0 || index >= len(tokens) {
		return false
	}
	tok := tokens[index]
	if tok.Kind != jsontok.KindString || tok.Len() != len(key) {
		return false
	}
	return bytes.Equal(doc[tok.Start:tok.End], []byte(key))
}

// matchKey is Matches restricted to object keys. A string value spelled
// like a key has no child and never matches.
func matchKey(doc []byte, tokens []Token, index int, key string) bool {
	return Matches(doc, tokens, index, key) && tokens[index].Size == 1
}

// matchPair reports whether tokens[index] is the object key key and the
// token after it is the string value.
func matchPair(doc []byte, tokens []Token, index int, key, value string) bool {
	return matchKey(doc, tokens, index, key) && Matches(doc, tokens, index+1, value)
}

// findGroup returns the index of the "GGGroupId" key whose value is name,
// and the token index that ends the object holding it.
func findGroup(doc []byte, tokens []Token, name string) (key, limit int, ok bool) {
	for i := range tokens {
		if matchPair(doc, tokens, i, KeyGroupID, name) {
			return i, objectLimit(tokens, i), true
		}
	}
	return 0, 0, false
}

// objectLimit returns the index of the first token after the innermost
// object that contains tokens[index].
func objectLimit(tokens []Token, index int) int {
	inner := tokens[index]
	for j := index - 1; j >= 0; j-- {
		outer := tokens[j]
		if outer.Kind == jsontok.KindObject && outer.Start < inner.Start && outer.End > inner.End {
			return indexAfter(tokens, index, outer.End)
		}
	}
	return len(tokens)
}

// indexAfter returns the first index from start whose token begins at or
// after offset.
func indexAfter(tokens []Token, start, offset int) int {
	for k := start; k < len(tokens); k++ {
		if tokens[k].Start >= offset {
			return k
		}
	}
	return len(tokens)
}
