// Package bits provides helpers for single bits of unsigned values,
// bit 0 being the least significant.
package bits

import "golang.org/x/exp/constraints"

// Set returns b with bit i set.
func Set[T constraints.Unsigned](b T, i uint8) T {
	return b | 1<<i
}

// Test reports whether bit i of b is set.
func Test[T constraints.Unsigned](b T, i uint8) bool {
	return (b>>i)&1 != 0
}
