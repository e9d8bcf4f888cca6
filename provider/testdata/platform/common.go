// Package platform declares the same names differently per GOOS.
package platform

import "github.com/broady/commonizer/provider/testdata/shared"

// Label is identical everywhere.
type Label = string

// Coords is identical everywhere.
type Coords = shared.Pair[int, int]

// Same is a generic alias with one parameter used twice.
type Same[T any] = shared.Pair[T, T]

// Ref is a nullable reference.
type Ref = *shared.Box

// Callback has no declaration-level form.
type Callback = func()

// Options is a named type, loaded as a class.
type Options struct {
	Verbose bool
}

type local = shared.Box
