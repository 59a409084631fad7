// Package fieldname maps logical field names onto the identifier alphabet of
// the search engine schema and derives language-specific dynamic field names.
//
// Engine field names should consist of letters, digits and underscores only.
// Every other character is encoded as its hexadecimal UTF-8 byte sequence
// wrapped in "_X" and "_", for example "tm_entity:node/body" becomes
// "tm_entity_X3a_node_X2f_body". The sequence "_X" itself is encoded as well
// ("last_XMas" becomes "last_X5f58_Mas"), so decoding is unambiguous.
package fieldname

import (
	"encoding/hex"
	"regexp"
)

var (
	unsafeRe  = regexp.MustCompile(`[^0-9a-zA-Z_]|_X`)
	escapeRe  = regexp.MustCompile(`_X([0-9a-f]+?)_`)
	encodedRe = regexp.MustCompile(`^[0-9a-zA-Z_]+$`)
)

// Encode replaces every character outside [0-9a-zA-Z_] and every "_X" with
// its escape sequence.
func Encode(name string) string {
	return unsafeRe.ReplaceAllStringFunc(name, func(m string) string {
		return "_X" + hex.EncodeToString([]byte(m)) + "_"
	})
}

// Decode reverses Encode. Sequences that are not valid hex are left as is.
func Decode(name string) string {
	return escapeRe.ReplaceAllStringFunc(name, func(m string) string {
		b, err := hex.DecodeString(m[2 : len(m)-1])
		if err != nil {
			return m
		}
		return string(b)
	})
}

// IsEncoded reports whether name only uses the engine identifier alphabet.
func IsEncoded(name string) bool {
	return encodedRe.MatchString(name)
}
