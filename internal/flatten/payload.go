package flatten

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/solrkeys/internal/domain/keys"
	"github.com/kailas-cloud/solrkeys/internal/domain/parsemode"
)

const (
	// PayloadField is the field holding per-term boost payloads.
	PayloadField = "boost_term"

	// Payload terms outside this length range are dropped by the boost_term
	// length filter at index time, and querying them fails with a null span query.
	MinPayloadTermLength = 2
	MaxPayloadTermLength = 100
)

var payloadModes = []parsemode.Mode{parsemode.Terms, parsemode.Phrase, parsemode.Edismax}

// PayloadScore compiles keys into payload_score clauses boosting documents by
// the payload stored for each key. Fields and conjunctions are ignored.
func (f *Flattener) PayloadScore(k keys.Child, m parsemode.Mode) (string, error) {
	if k.IsTerm() {
		if m == parsemode.Direct {
			return "", nil
		}
		return "", incompatible(m, "a query string")
	}

	n := k.Node()
	if n == nil {
		return "", nil
	}

	var terms, nested []string
	for _, c := range n.Children {
		if c.IsEmpty() {
			continue
		}
		if !c.IsTerm() {
			sub, err := f.PayloadScore(c, m)
			if err != nil {
				return "", err
			}
			if sub != "" {
				nested = append(nested, sub)
			}
			continue
		}
		t, err := f.term(c.Term(), n.Escaped, m, payloadModes)
		if err != nil {
			return "", err
		}
		if usablePayloadTerm(t) {
			terms = append(terms, t)
		}
	}

	var b strings.Builder
	for _, t := range terms {
		b.WriteString(" {!payload_score f=" + PayloadField + " v=" + t + " func=max}")
	}
	for _, s := range nested {
		b.WriteString(s)
	}
	return b.String(), nil
}

func usablePayloadTerm(t string) bool {
	l := utf8.RuneCountInString(strings.Trim(t, `"`))
	return l >= MinPayloadTermLength && l <= MaxPayloadTermLength
}
