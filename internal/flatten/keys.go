// Package flatten compiles search key trees into Lucene query parser syntax.
//
// The default operator of the engine is OR, so every compiled level carries
// explicit "+" markers for AND groups. Flatten produces these shapes for the
// keys A and B:
//
//	conjunction | negation | fields | parse mode     | result
//	------------+----------+--------+----------------+------------------------------------------------------
//	AND         | false    | []     | terms / phrase | (+A +B)
//	OR          | true     | []     | terms / phrase | -(A B)
//	AND         | false    | [x]    | terms / phrase | x:(+A +B)
//	AND         | false    | [x,y]  | terms          | ((+(x:A y:A) +(x:B y:B)) x:(+A +B) y:(+A +B))
//	AND         | false    | [x,y]  | phrase         | (x:(+A +B) y:(+A +B))
//	AND         | false    | [x,y]  | edismax        | +({!edismax qf='x y'}+A +B)
//	OR          | false    | [x,y]  | edismax        | +({!edismax qf='x y'}A B)
//	OR          | true     | [x,y]  | edismax        | -({!edismax qf='x y'}A B)
//	AND         | false    | []     | keys           | +A +B
//	OR          | true     | []     | keys           | -(A B)
//
// Field boosts, fixed scores and fuzzy operators (x^2, x^=2, x~1) are kept
// verbatim after each field group.
package flatten

import (
	"strings"

	"github.com/kailas-cloud/solrkeys/internal/domain"
	"github.com/kailas-cloud/solrkeys/internal/domain/field"
	"github.com/kailas-cloud/solrkeys/internal/domain/keys"
	"github.com/kailas-cloud/solrkeys/internal/domain/parsemode"
)

// Flattener compiles key trees. It is safe for concurrent use.
type Flattener struct {
	escape Escaper
}

// New creates a Flattener that escapes keys as phrases.
func New() *Flattener {
	return &Flattener{escape: EscapePhrase}
}

// WithEscaper replaces the escaper applied to keys of unescaped nodes.
func (f *Flattener) WithEscaper(e Escaper) *Flattener {
	if e != nil {
		f.escape = e
	}
	return f
}

// Flatten compiles keys into a query string searching the given fields.
func (f *Flattener) Flatten(k keys.Child, fields []string, m parsemode.Mode) (string, error) {
	if err := validateFields(fields, m); err != nil {
		return "", err
	}
	return f.flatten(k, fields, field.ParseAll(fields), m)
}

func validateFields(fields []string, m parsemode.Mode) error {
	if !m.AllowsFields() && len(fields) > 0 {
		return domain.NewQueryError(domain.ErrModeFieldMismatch, "parse mode %s could not handle fields", m)
	}
	if m.RequiresFields() && len(fields) == 0 {
		return domain.NewQueryError(domain.ErrModeFieldMismatch, "parse mode %s requires fields", m)
	}
	return nil
}

func (f *Flattener) flatten(k keys.Child, fields []string, specs []field.Spec, m parsemode.Mode) (string, error) {
	if k.IsTerm() {
		if m != parsemode.Direct {
			return "", incompatible(m, "a query string")
		}
		return join("", directParts(k.Term(), specs)), nil
	}

	n := k.Node()
	if n == nil {
		return "", nil
	}

	pre := "+"
	if n.IsOr() {
		pre = ""
	}
	neg := ""
	if n.Negation {
		neg = "-"
	}

	var terms, parts []string
	for _, c := range n.Children {
		if c.IsEmpty() {
			continue
		}
		if !c.IsTerm() {
			if m == parsemode.Edismax {
				return "", incompatible(m, "nested keys")
			}
			sub, err := f.flatten(c, fields, specs, m)
			if err != nil {
				return "", err
			}
			if sub != "" {
				parts = append(parts, sub)
			}
			continue
		}
		t, err := f.term(c.Term(), n.Escaped, m, flattenModes)
		if err != nil {
			return "", err
		}
		terms = append(terms, t)
	}

	if len(terms) > 0 {
		parts = append(parts, assemble(terms, pre, n.Negation, fields, specs, m)...)
	}
	return join(neg, parts), nil
}

var flattenModes = []parsemode.Mode{parsemode.Terms, parsemode.Phrase, parsemode.Edismax, parsemode.Keys}

// term trims a key and escapes it unless the node is already escaped.
func (f *Flattener) term(t string, escaped bool, m parsemode.Mode, accepted []parsemode.Mode) (string, error) {
	t = strings.TrimSpace(t)
	if escaped {
		return t, nil
	}
	for _, a := range accepted {
		if m == a {
			return f.escape(t), nil
		}
	}
	return "", incompatible(m, "search keys")
}

func assemble(terms []string, pre string, negated bool, fields []string, specs []field.Spec, m parsemode.Mode) []string {
	seq := pre + strings.Join(terms, " "+pre)

	switch m {
	case parsemode.Edismax:
		// The embedded clause is always required unless negated, whatever the conjunction.
		clause := "({!edismax qf='" + strings.Join(fields, " ") + "'}" + seq + ")"
		if !negated {
			clause = "+" + clause
		}
		return []string{clause}
	case parsemode.Keys:
		if negated && len(terms) > 1 {
			return []string{"(" + seq + ")"}
		}
		return []string{seq}
	}

	var parts []string
	if m == parsemode.Terms && len(terms) > 1 && len(specs) > 1 {
		parts = append(parts, crossFieldGroup(terms, pre, specs))
	}
	if len(specs) == 0 {
		return append(parts, "("+seq+")")
	}
	for _, s := range specs {
		parts = append(parts, s.Name+":("+seq+")"+s.Suffix)
	}
	return parts
}

// crossFieldGroup requires every key to match in at least one of the fields.
func crossFieldGroup(terms []string, pre string, specs []field.Spec) string {
	groups := make([]string, len(terms))
	for i, t := range terms {
		fp := make([]string, len(specs))
		for j, s := range specs {
			fp[j] = s.Name + ":" + t + s.Suffix
		}
		groups[i] = pre + "(" + strings.Join(fp, " ") + ")"
	}
	return "(" + strings.Join(groups, " ") + ")"
}

func directParts(q string, specs []field.Spec) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.Name + ":(" + q + ")" + s.Suffix
	}
	return parts
}

func join(neg string, parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return neg + parts[0]
	default:
		return neg + "(" + strings.Join(parts, " ") + ")"
	}
}

func incompatible(m parsemode.Mode, what string) error {
	return domain.NewQueryError(domain.ErrIncompatibleParseMode, "parse mode %q cannot compile %s", m, what)
}
