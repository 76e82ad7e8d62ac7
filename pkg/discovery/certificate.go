package discovery

import (
	"fmt"

	"github.com/ggd-protocol/ggd-go/pkg/jsontok"
)

// extractCertificate finds the first CA of the selected group and rewrites
// it in place into PEM form.
//
// The value of "CAs" must be an array whose first element is a string. The
// string bytes plus its closing quote are compacted: each two-byte "\n"
// becomes one line feed, and the last written byte (the closing quote) is
// overwritten with NUL. The returned slice excludes the NUL.
func extractCertificate(doc []byte, tokens []Token, sel Selection) ([]byte, error) {
	start, limit := 0, len(tokens)
	if criteria, ok := sel.Criteria(); ok {
		group, end, found := findGroup(doc, tokens, criteria.GroupName)
		if !found {
			return nil, ErrGroupOrCoreNotFound
		}
		start, limit = group+2, end
	}

	for i := start; i < limit; i++ {
		if !matchKey(doc, tokens, i, KeyCertificates) {
			continue
		}
		if i+2 >= len(tokens) {
			return nil, fmt.Errorf("%w: %s has no value", ErrMalformedDocument, KeyCertificates)
		}
		list, first := tokens[i+1], tokens[i+2]
		if list.Kind != jsontok.KindArray || list.Size == 0 {
			return nil, fmt.Errorf("%w: %s is not a non-empty array", ErrMalformedDocument, KeyCertificates)
		}
		if first.Kind != jsontok.KindString {
			return nil, fmt.Errorf("%w: %s entry is a %s", ErrMalformedDocument, KeyCertificates, first.Kind)
		}
		return unescapeInPlace(doc[first.Start : first.End+1]), nil
	}
	return nil, ErrCertificateNotFound
}

// unescapeInPlace compacts buf, replacing each "\n" pair with a line feed.
// The write cursor never passes the read cursor. The last written byte is
// set to NUL and the bytes before it are returned.
func unescapeInPlace(buf []byte) []byte {
	w := 0
	for r := 0; r < len(buf); w++ {
		if buf[r] == '\\' && r+1 < len(buf) && buf[r+1] == 'n' {
			buf[w] = '\n'
			r += 2
			continue
		}
		buf[w] = buf[r]
		r++
	}
	if w == 0 {
		return buf[:0]
	}
	buf[w-1] = 0
	return buf[:w-1]
}
