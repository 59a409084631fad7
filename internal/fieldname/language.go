package fieldname

import (
	"regexp"
	"strings"
)

// LanguageSeparator splits the type prefix from the language tag of a
// language-specific dynamic field. Encoded it reads "_X3b_".
const LanguageSeparator = ";"

// SuggestField is the suggester catalog field, which is never language-specific.
const SuggestField = "twm_suggest"

var (
	typePrefixRe      = regexp.MustCompile(`^([a-z]+)_`)
	languagePrefixRe  = regexp.MustCompile(`^([a-z]+)` + LanguageSeparator + `([^_]+?)_`)
	multiValuedTypeRe = regexp.MustCompile(`^([a-z]+)m(_.*)`)
)

// LanguageSpecificName maps a dynamic field name to its language-specific
// equivalent, e.g. "tm_title" becomes "tm;en_title" ("tm_X3b_en_title" encoded).
//
// The engine prefers the longest matching dynamic field pattern, so a chain
// like tm;de-AT_* -> tm;de_* -> tm_* falls back without explicit priorities.
func LanguageSpecificName(name, language string) string {
	if name == SuggestField {
		return name
	}
	return modify(name, func(decoded string) string {
		m := typePrefixRe.FindStringSubmatchIndex(decoded)
		if m == nil {
			return decoded
		}
		return decoded[m[2]:m[3]] + LanguageSeparator + language + "_" + decoded[m[1]:]
	})
}

// GenericName maps a language-specific dynamic field name back to its
// language-unspecific equivalent, e.g. "tm;en_title" becomes "tm_title".
func GenericName(name string) string {
	return modify(name, func(decoded string) string {
		m := languagePrefixRe.FindStringSubmatchIndex(decoded)
		if m == nil {
			return decoded
		}
		return decoded[m[2]:m[3]] + "_" + decoded[m[1]:]
	})
}

// modify runs fn on the decoded name. The result is encoded again only if
// the input was encoded, so plain names never get escaped by accident.
func modify(name string, fn func(string) string) string {
	decoded := Decode(name)
	modified := fn(decoded)
	if decoded != name {
		modified = Encode(modified)
	}
	return modified
}

// LanguageTag extracts the language tag of a language-specific dynamic field.
func LanguageTag(name string) (string, bool) {
	m := languagePrefixRe.FindStringSubmatch(Decode(name))
	if m == nil {
		return "", false
	}
	return m[2], true
}

// LanguageSpecificPrefix returns the encoded dynamic field pattern of a
// language-specific field, e.g. "tm_X3b_en_*" for "tm;en_title".
func LanguageSpecificPrefix(name string) (string, bool) {
	m := languagePrefixRe.FindString(Decode(name))
	if m == "" {
		return "", false
	}
	return Encode(m) + "*", true
}

// LanguageSpecificDynamicPrefix builds the language-specific variant of a
// type prefix.
func LanguageSpecificDynamicPrefix(prefix, language string) string {
	return prefix + LanguageSeparator + language + "_"
}

// Cardinality returns the cardinality marker of a dynamic field name: "s" for
// single-valued, "m" for multi-valued.
func Cardinality(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	if prefix == "" {
		return ""
	}
	return prefix[len(prefix)-1:]
}

// SingleValuedName maps a multi-valued dynamic field to its single-valued
// shadow copy, e.g. "itm_count" becomes "its_count".
func SingleValuedName(name string) (string, bool) {
	m := multiValuedTypeRe.FindStringSubmatch(name)
	if m == nil {
		return name, false
	}
	return m[1] + "s" + m[2], true
}
