// Package batch splits address lists so each subgraph filter stays within
// the `_in` clause cardinality limit.
package batch

// MaxFilterLength is the largest list accepted by an `_in` filter.
const MaxFilterLength = 500

// Split returns consecutive chunks of items, each non-empty and at most size
// long, preserving order. Empty input yields nil. A non-positive size puts
// everything in one chunk.
func Split[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size > len(items) {
		size = len(items)
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
