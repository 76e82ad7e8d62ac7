// Package jsontok turns a JSON document into a flat array of tokens.
//
// Tokens are laid out the way small embedded tokenizers (jsmn and friends)
// do it: one entry per object, array, string and primitive, in document
// order, parents before children. Each token carries its kind, a byte range
// into the source buffer and a child count. No tree is built and no value is
// decoded, so callers can walk the array by index and rewrite the source
// buffer in place.
//
// # Token Ranges
//
//	{"k": ["v", 1]}
//	^^^^^^^^^^^^^^^   object  [0, 15)  size 1
//	  ^               string  [2, 3)   size 1 (key, one value)
//	       ^^^^^^^^   array   [6, 14)  size 2
//	         ^        string  [8, 9)   size 0
//	             ^    primitive [12, 13) size 0
//
// String ranges exclude both quotes; End is the offset of the closing quote.
//
// Lexing is delegated to github.com/creachadair/jtree. This package adds the
// structural checks and the fixed token budget: a document that needs more
// tokens than the budget fails with ErrTooManyTokens instead of being cut short.
package jsontok
