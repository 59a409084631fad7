package flatten

import "strings"

// Escaper makes a single search key safe for the query parser.
type Escaper func(string) string

var phraseEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
)

// EscapePhrase quotes a key as a phrase, escaping quotes and backslashes.
// Quoted keys keep multi-word input like `term2 as phrase` together.
func EscapePhrase(s string) string {
	return `"` + phraseEscaper.Replace(s) + `"`
}

var termEscaper = strings.NewReplacer(
	`\`, `\\`,
	`+`, `\+`,
	`-`, `\-`,
	`&`, `\&`,
	`|`, `\|`,
	`!`, `\!`,
	`(`, `\(`,
	`)`, `\)`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`^`, `\^`,
	`"`, `\"`,
	`~`, `\~`,
	`*`, `\*`,
	`?`, `\?`,
	`:`, `\:`,
	`/`, `\/`,
	` `, `\ `,
)

// EscapeTerm backslash-escapes every query parser special character of a
// single term.
func EscapeTerm(s string) string {
	return termEscaper.Replace(s)
}

// Verbatim returns the key unchanged.
func Verbatim(s string) string { return s }

// EscaperByName resolves a configured escaper name: phrase (default), term or none.
func EscaperByName(name string) (Escaper, bool) {
	switch name {
	case "", "phrase":
		return EscapePhrase, true
	case "term":
		return EscapeTerm, true
	case "none":
		return Verbatim, true
	default:
		return nil, false
	}
}
