// Package datatype maps index data types to the dynamic field prefix they are stored under.
package datatype

import (
	"maps"
	"slices"

	"github.com/kailas-cloud/solrkeys/internal/domain"
	"github.com/kailas-cloud/solrkeys/internal/fieldname"
)

// Default prefixes of the built-in data types.
// Numeric types use trie fields for better sorting.
var defaults = map[string]string{
	"text":     "t",
	"string":   "s",
	"integer":  "it",
	"decimal":  "ft",
	"date":     "d",
	"duration": "it",
	"boolean":  "b",
	"uri":      "s",
}

// Prefixes of data types provided by optional modules. They are only
// registered when the type is explicitly enabled.
var extras = map[string]string{
	"location": "loc",
	"geohash":  "geo",
	"rpt":      "rpt",
}

// Registry is an immutable type -> prefix mapping. Build it once at startup
// and share it.
type Registry struct {
	prefixes map[string]string
}

// New builds a registry from the defaults, the enabled optional types and
// custom overrides. Overrides win.
func New(overrides map[string]string, enabled ...string) *Registry {
	prefixes := maps.Clone(defaults)
	for _, t := range enabled {
		if p, ok := extras[t]; ok {
			prefixes[t] = p
		}
	}
	for t, p := range overrides {
		prefixes[t] = p
	}
	return &Registry{prefixes: prefixes}
}

// Prefix returns the dynamic field prefix of a data type.
func (r *Registry) Prefix(dataType string) (string, bool) {
	p, ok := r.prefixes[dataType]
	return p, ok
}

// Types lists the registered data types in lexical order.
func (r *Registry) Types() []string {
	return slices.Sorted(maps.Keys(r.prefixes))
}

// FieldName builds the engine field name of a logical field of the given data type.
func (r *Registry) FieldName(dataType string, multiValued bool, name string) (string, error) {
	p, ok := r.Prefix(dataType)
	if !ok {
		return "", domain.NewQueryError(domain.ErrUnknownDataType, "%q", dataType)
	}
	return fieldname.DynamicName(p, multiValued, name), nil
}
