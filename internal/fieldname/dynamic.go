package fieldname

import "strings"

// Cardinality markers appended to a type prefix.
const (
	SingleValued = "s"
	MultiValued  = "m"
)

// DynamicName builds the engine field name of a logical field stored in the
// dynamic field family of the given type prefix, e.g. "sm_tags" for
// DynamicName("s", true, "tags").
func DynamicName(prefix string, multiValued bool, name string) string {
	cardinality := SingleValued
	if multiValued {
		cardinality = MultiValued
	}
	return prefix + cardinality + "_" + Encode(name)
}

// SuggesterContextFilterQuery builds the filter query for a suggester context
// requiring every tag.
func SuggesterContextFilterQuery(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, "+"+Encode(tag))
	}
	return strings.Join(parts, " ")
}
