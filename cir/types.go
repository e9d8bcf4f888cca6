// Package cir defines the commonizer intermediate representation: the
// per-platform declarations that the commonizer merges and the shared
// declarations it synthesizes.
//
// Types and declarations are sealed tagged unions. Consumers switch on the
// concrete type; only this package can add variants.
package cir

import "strings"

// ClassifierID identifies a class or type alias by its qualified name.
// Two references denote the same classifier iff their IDs are equal.
type ClassifierID struct {
	// Package is the fully qualified package (or namespace) path.
	// Empty for builtin classifiers that live in no package.
	Package string

	// Name is the classifier name relative to Package.
	// Nested classes use dotted names, e.g. "Outer.Inner".
	Name string
}

// IsZero returns true if the identifier is empty.
func (id ClassifierID) IsZero() bool {
	return id.Name == "" && id.Package == ""
}

// String returns the qualified name, e.g. "shared/lib.Pair".
func (id ClassifierID) String() string {
	if id.Package == "" {
		return id.Name
	}
	return id.Package + "." + id.Name
}

// Compare orders IDs by package, then name.
func (id ClassifierID) Compare(other ClassifierID) int {
	if c := strings.Compare(id.Package, other.Package); c != 0 {
		return c
	}
	return strings.Compare(id.Name, other.Name)
}

// Visibility is the accessibility of a declaration.
// Values are ordered from narrowest to widest.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityInternal
	VisibilityProtected
	VisibilityPublic
)

// String returns the lowercase keyword for the visibility.
func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityInternal:
		return "internal"
	case VisibilityProtected:
		return "protected"
	case VisibilityPublic:
		return "public"
	default:
		return "unknown"
	}
}

// ParseVisibility parses a visibility keyword. The empty string means public.
func ParseVisibility(s string) (Visibility, bool) {
	switch s {
	case "", "public":
		return VisibilityPublic, true
	case "protected":
		return VisibilityProtected, true
	case "internal":
		return VisibilityInternal, true
	case "private":
		return VisibilityPrivate, true
	}
	return 0, false
}

// Variance is the declaration-site or use-site variance of a type parameter
// or type argument.
type Variance int

const (
	Invariant Variance = iota
	In
	Out
)

// String returns the keyword for the variance ("" for invariant).
func (v Variance) String() string {
	switch v {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return ""
	}
}

// ParseVariance parses a variance keyword. The empty string means invariant.
func ParseVariance(s string) (Variance, bool) {
	switch s {
	case "", "invariant":
		return Invariant, true
	case "in":
		return In, true
	case "out":
		return Out, true
	}
	return 0, false
}

// Modality is the inheritance modality of a class.
type Modality int

const (
	ModalityFinal Modality = iota
	ModalityOpen
	ModalityAbstract
	ModalitySealed
)

// String returns the lowercase keyword for the modality.
func (m Modality) String() string {
	switch m {
	case ModalityFinal:
		return "final"
	case ModalityOpen:
		return "open"
	case ModalityAbstract:
		return "abstract"
	case ModalitySealed:
		return "sealed"
	default:
		return "unknown"
	}
}

// ParseModality parses a modality keyword. The empty string means final.
func ParseModality(s string) (Modality, bool) {
	switch s {
	case "", "final":
		return ModalityFinal, true
	case "open":
		return ModalityOpen, true
	case "abstract":
		return ModalityAbstract, true
	case "sealed":
		return ModalitySealed, true
	}
	return 0, false
}

// ClassKind distinguishes the flavors of class declarations.
type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindObject
	ClassKindEnum
)

// String returns the lowercase keyword for the class kind.
func (k ClassKind) String() string {
	switch k {
	case ClassKindClass:
		return "class"
	case ClassKindInterface:
		return "interface"
	case ClassKindObject:
		return "object"
	case ClassKindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ParseClassKind parses a class kind keyword. The empty string means class.
func ParseClassKind(s string) (ClassKind, bool) {
	switch s {
	case "", "class":
		return ClassKindClass, true
	case "interface":
		return ClassKindInterface, true
	case "object":
		return ClassKindObject, true
	case "enum":
		return ClassKindEnum, true
	}
	return 0, false
}

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// Warning represents a non-fatal issue encountered while loading declarations.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// Declaration is the declaration that triggered the warning, if applicable.
	Declaration string
}
