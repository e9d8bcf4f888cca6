package cir

import (
	"strconv"
	"strings"
)

// TypeProjection is a type argument at a use site.
type TypeProjection struct {
	// Star marks a star projection ("*"). Variance and Type are ignored.
	Star bool

	// Variance is the use-site variance of the argument.
	Variance Variance

	// Type is the projected type. Nil only for star projections.
	Type Type
}

// String renders the projection, e.g. "out T" or "*".
func (p TypeProjection) String() string {
	if p.Star {
		return "*"
	}
	if p.Variance != Invariant {
		return p.Variance.String() + " " + p.Type.String()
	}
	return p.Type.String()
}

// Arg returns an invariant projection of t.
func Arg(t Type) TypeProjection {
	return TypeProjection{Type: t}
}

// Star returns a star projection.
func Star() TypeProjection {
	return TypeProjection{Star: true}
}

// ClassType is a reference to a class.
type ClassType struct {
	// ID is the referenced class.
	ID ClassifierID

	// Module is the module the class was loaded from. It is informational
	// and never participates in merging.
	Module string

	// Visibility is the declared visibility of the referenced class.
	Visibility Visibility

	// Outer is the outer class type for inner classes, nil otherwise.
	Outer *ClassType

	// Arguments are the type arguments of this reference.
	Arguments []TypeProjection

	// Nullable marks a nullable reference.
	Nullable bool
}

// Kind returns KindClass.
func (t *ClassType) Kind() TypeKind { return KindClass }

// IsNullable reports whether the reference admits null.
func (t *ClassType) IsNullable() bool { return t.Nullable }

// Classifier returns the referenced class.
func (t *ClassType) Classifier() ClassifierID { return t.ID }

// Args returns the type arguments.
func (t *ClassType) Args() []TypeProjection { return t.Arguments }

func (t *ClassType) String() string {
	return formatRef(t.ID, t.Arguments, t.Nullable)
}

func (*ClassType) sealed()        {}
func (*ClassType) classifierRef() {}

// ClassRef returns a public, non-null ClassType.
func ClassRef(pkg, name string, args ...TypeProjection) *ClassType {
	return &ClassType{
		ID:         ClassifierID{Package: pkg, Name: name},
		Visibility: VisibilityPublic,
		Arguments:  args,
	}
}

// TypeAliasType is a reference to a type alias.
type TypeAliasType struct {
	// ID is the referenced alias.
	ID ClassifierID

	// Module is the module the alias was loaded from. Informational only.
	Module string

	// Underlying is the alias's right-hand side with the arguments of this
	// reference substituted for the alias's type parameters.
	Underlying ClassOrTypeAliasType

	// Arguments are the type arguments of this reference.
	Arguments []TypeProjection

	// Nullable marks a nullable reference.
	Nullable bool
}

// Kind returns KindTypeAlias.
func (t *TypeAliasType) Kind() TypeKind { return KindTypeAlias }

// IsNullable reports whether the reference admits null.
func (t *TypeAliasType) IsNullable() bool { return t.Nullable }

// Classifier returns the referenced alias.
func (t *TypeAliasType) Classifier() ClassifierID { return t.ID }

// Args returns the type arguments.
func (t *TypeAliasType) Args() []TypeProjection { return t.Arguments }

func (t *TypeAliasType) String() string {
	return formatRef(t.ID, t.Arguments, t.Nullable)
}

func (*TypeAliasType) sealed()        {}
func (*TypeAliasType) classifierRef() {}

// AliasRef returns a non-null TypeAliasType pointing at underlying.
func AliasRef(pkg, name string, underlying ClassOrTypeAliasType, args ...TypeProjection) *TypeAliasType {
	return &TypeAliasType{
		ID:         ClassifierID{Package: pkg, Name: name},
		Underlying: underlying,
		Arguments:  args,
	}
}

// TypeParameterType is a use of a declared type parameter.
type TypeParameterType struct {
	// Index is the position of the parameter in the enclosing declaration.
	Index int

	// Name is the parameter name. Informational; Index identifies it.
	Name string

	// Nullable marks a nullable reference.
	Nullable bool
}

// Kind returns KindTypeParameter.
func (t *TypeParameterType) Kind() TypeKind { return KindTypeParameter }

// IsNullable reports whether the reference admits null.
func (t *TypeParameterType) IsNullable() bool { return t.Nullable }

func (t *TypeParameterType) String() string {
	name := t.Name
	if name == "" {
		name = "#" + strconv.Itoa(t.Index)
	}
	if t.Nullable {
		return name + "?"
	}
	return name
}

func (*TypeParameterType) sealed() {}

// TypeParam returns a non-null TypeParameterType.
func TypeParam(index int, name string) *TypeParameterType {
	return &TypeParameterType{Index: index, Name: name}
}

// WithNullability returns t with the given nullability, copying only when
// it changes.
func WithNullability(t Type, nullable bool) Type {
	if t.IsNullable() == nullable {
		return t
	}
	switch typ := t.(type) {
	case *ClassType:
		c := *typ
		c.Nullable = nullable
		return &c
	case *TypeAliasType:
		c := *typ
		c.Nullable = nullable
		return &c
	case *TypeParameterType:
		c := *typ
		c.Nullable = nullable
		return &c
	}
	return t
}

func formatRef(id ClassifierID, args []TypeProjection, nullable bool) string {
	var b strings.Builder
	b.WriteString(id.String())
	if len(args) > 0 {
		b.WriteByte('<')
		for i, a := range args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	if nullable {
		b.WriteByte('?')
	}
	return b.String()
}
