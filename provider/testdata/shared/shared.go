// Package shared holds the types every platform agrees on.
package shared

type Box struct {
	Value int
}

type Pair[A, B any] struct {
	First  A
	Second B
}

// Handle is the same on every platform.
type Handle = Box
