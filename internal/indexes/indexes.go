// Package indexes provides helpers for slices keyed by dense index
// types.
package indexes

import "golang.org/x/exp/constraints"

// GrowTo extends s with zero values until index i is valid and
// returns the extended slice.
func GrowTo[E any, I constraints.Integer](s []E, i I) []E {
	var zero E
	for int(i) >= len(s) {
		s = append(s, zero)
	}
	return s
}
