// Package rows normalizes requested row counts for streaming queries.
//
// Streaming expressions need a row limit at least as large as the real number
// of documents. Rounding the limit up to a power of two keeps the set of
// distinct values small, which raises the engine's query result cache hit
// rate without fetching much more than needed.
package rows

// Max is the largest row count the engine accepts regardless of available memory.
const Max int64 = 2147483629

// Normalize returns the smallest power of two that is >= max(n, 2), capped at Max.
func Normalize(n int64) int64 {
	if n >= Max {
		return Max
	}
	i := int64(2)
	for i < n {
		i *= 2
	}
	return min(i, Max)
}
