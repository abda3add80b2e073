package httpwire

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeBody turns a response body into something printable.
// Valid UTF-8 comes back as-is; anything else is read as Latin-1, one rune per byte.
// It never fails.
func DecodeBody(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	if s, err := charmap.ISO8859_1.NewDecoder().Bytes(b); err == nil {
		return string(s)
	}
	// unreachable in practice: every byte is a valid ISO8859-1 code point.
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
