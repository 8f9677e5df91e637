package model

import (
	"maps"
	"slices"
)

// Scores maps a checksummed address to its voting power.
type Scores map[string]float64

// NonZero counts addresses with a positive score.
func (s Scores) NonZero() int {
	n := 0
	for _, v := range s {
		if v > 0 {
			n++
		}
	}
	return n
}

// Addresses returns the keys in sorted order.
func (s Scores) Addresses() []string {
	return slices.Sorted(maps.Keys(s))
}
