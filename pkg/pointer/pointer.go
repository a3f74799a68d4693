// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer helps with optional values such as counters the catalog may hide.

Key Functions:
  - To: Creates a pointer from a value literal.
  - Val: Dereferences a pointer, returning the zero value if nil.
  - Copy: Returns a pointer to a fresh copy of the value, or nil.
  - Equal: Compares two optional values.
*/
package pointer

// To returns a pointer to the provided value (e.g. pointer.To[int64](900)).
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, returning the zero value of T when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Copy returns a pointer that does not alias p.
func Copy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Equal reports whether a and b are both nil or point to equal values.
func Equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
