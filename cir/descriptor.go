package cir

// TypeKind identifies the category of a type reference.
type TypeKind int

const (
	KindClass         TypeKind = iota // Reference to a class
	KindTypeAlias                     // Reference to a type alias
	KindTypeParameter                 // Reference to a declared type parameter
)

// String returns the string representation of the type kind.
func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "Class"
	case KindTypeAlias:
		return "TypeAlias"
	case KindTypeParameter:
		return "TypeParameter"
	default:
		return "Unknown"
	}
}

// Type is a type reference as it appears in a declaration.
// The concrete types are *ClassType, *TypeAliasType and *TypeParameterType.
type Type interface {
	// Kind returns the type kind for switching.
	Kind() TypeKind

	// IsNullable reports whether the reference admits null.
	IsNullable() bool

	// String renders the type, e.g. "shared.Pair<kotlin.Int, T>?".
	String() string

	// Ensure only types in this package can implement Type.
	sealed()
}

// ClassOrTypeAliasType is a Type that names a classifier:
// either *ClassType or *TypeAliasType.
type ClassOrTypeAliasType interface {
	Type

	// Classifier returns the referenced classifier.
	Classifier() ClassifierID

	// Args returns the type arguments of the reference.
	Args() []TypeProjection

	classifierRef()
}

// DeclarationKind identifies the category of a declaration.
type DeclarationKind int

const (
	DeclTypeAlias DeclarationKind = iota
	DeclClass
)

// String returns the string representation of the declaration kind.
func (k DeclarationKind) String() string {
	switch k {
	case DeclTypeAlias:
		return "typealias"
	case DeclClass:
		return "class"
	default:
		return "unknown"
	}
}

// ParseDeclarationKind parses the lowercase keyword of a declaration kind.
func ParseDeclarationKind(s string) (DeclarationKind, bool) {
	switch s {
	case "typealias":
		return DeclTypeAlias, true
	case "class":
		return DeclClass, true
	}
	return 0, false
}

// Declaration is a named top-level declaration.
// The concrete types are *TypeAlias and *Class.
type Declaration interface {
	// DeclKind returns the declaration kind for switching.
	DeclKind() DeclarationKind

	// DeclName returns the simple name of the declaration.
	DeclName() string

	// DeclVisibility returns the declared visibility.
	DeclVisibility() Visibility

	sealedDecl()
}
