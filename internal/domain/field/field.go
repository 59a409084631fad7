package field

import "strings"

// operators that may trail a field name: boost (^), fixed score (^=)
// and fuzzy/term proximity (~).
const operators = "^~"

// Spec is a query field with an optional trailing operator sequence.
type Spec struct {
	Name   string
	Suffix string
}

// Parse splits a field token on the first boost, fixed score or fuzzy operator.
// Everything from the operator on is kept verbatim as Suffix.
func Parse(s string) Spec {
	i := strings.IndexAny(s, operators)
	if i < 0 {
		return Spec{Name: s}
	}
	return Spec{Name: s[:i], Suffix: s[i:]}
}

// ParseAll parses a list of field tokens.
func ParseAll(ss []string) []Spec {
	specs := make([]Spec, len(ss))
	for i, s := range ss {
		specs[i] = Parse(s)
	}
	return specs
}

// String reassembles the original token.
func (s Spec) String() string { return s.Name + s.Suffix }

// HasSuffix reports whether the field carries an operator.
func (s Spec) HasSuffix() bool { return s.Suffix != "" }
