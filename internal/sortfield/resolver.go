// Package sortfield picks the engine field a logical field is sorted by.
package sortfield

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/kailas-cloud/solrkeys/internal/domain"
	"github.com/kailas-cloud/solrkeys/internal/fieldname"
)

// Reserved field names and prefixes.
const (
	// ReservedPrefix namespaces virtual fields like relevance and random.
	ReservedPrefix = "search_api_"
	RandomField    = "search_api_random"
	RelevanceField = "search_api_relevance"

	SpellcheckPrefix = "spellcheck"
	SuggestPrefix    = fieldname.SuggestField

	// SortPrefix names the dedicated per-language sort fields.
	SortPrefix = "sort"
)

// Query carries the query options sorting depends on.
type Query struct {
	Languages []string
	// RandomSeed fixes the order of a random sort. Empty means a fresh seed.
	RandomSeed string
}

// Resolver resolves sort fields. It is safe for concurrent use.
type Resolver struct {
	seed func() string
}

// New creates a Resolver seeding random sorts from math/rand/v2.
func New() *Resolver {
	return &Resolver{seed: func() string {
		return strconv.FormatInt(int64(rand.Int32()), 10)
	}}
}

// WithSeedSource replaces the random seed source.
func (r *Resolver) WithSeedSource(seed func() string) *Resolver {
	if seed != nil {
		r.seed = seed
	}
	return r
}

// Resolve returns the engine field to sort the logical field by.
// candidates maps logical fields to their engine field names; the first
// name is used.
func (r *Resolver) Resolve(
	name string, candidates map[string][]string, justDocumentDatasource bool, q Query,
) (string, error) {
	names := candidates[name]
	if len(names) == 0 {
		return "", domain.NewQueryError(domain.ErrSortUnsupported, "no engine field for %q", name)
	}
	first := names[0]

	// Raw engine documents have no dedicated sort fields to redirect to.
	if justDocumentDatasource {
		return first, nil
	}

	switch {
	case strings.HasPrefix(name, ReservedPrefix):
		// Checked first: search_api_* would otherwise look like a string field.
		if name == RandomField {
			// A unique name per seed keeps distinct random orders out of the request cache.
			seed := q.RandomSeed
			if seed == "" {
				seed = r.seed()
			}
			return first + "_" + seed, nil
		}
	case strings.HasPrefix(first, SpellcheckPrefix), strings.HasPrefix(first, SuggestPrefix):
		return "", domain.NewQueryError(domain.ErrSortUnsupported, "you can't sort by spellcheck or suggester catalogs")
	case strings.HasPrefix(first, "s"), strings.HasPrefix(first, "t"):
		// String and fulltext fields sort on a language-specific sort field.
		return fieldname.Encode(SortPrefix + fieldname.LanguageSeparator + firstLanguage(q.Languages) + "_" + name), nil
	default:
		// Multi-valued fields sort on the single-valued copy of their first value.
		if single, ok := fieldname.SingleValuedName(first); ok {
			return single, nil
		}
	}
	return first, nil
}

// firstLanguage returns the first query language. A query without languages
// sorts on the field with an empty language tag.
func firstLanguage(languages []string) string {
	if len(languages) == 0 {
		return ""
	}
	return languages[0]
}
