package cir

// TypeParameter is a type parameter declared by a class or type alias.
type TypeParameter struct {
	// Name is the parameter name (e.g., "T", "K", "V").
	Name string

	// Variance is the declaration-site variance.
	Variance Variance

	// Reified marks a parameter whose type is available at run time.
	Reified bool

	// UpperBounds are the declared bounds. Empty means unbounded.
	UpperBounds []Type
}

// TypeAlias is a type alias declaration: `typealias Name<T...> = Underlying`.
type TypeAlias struct {
	// Name is the simple alias name.
	Name string

	// TypeParameters contains the declared type parameters, in order.
	TypeParameters []TypeParameter

	// Visibility is the declared visibility of the alias.
	Visibility Visibility

	// Underlying is the right-hand side as written: a class reference or a
	// reference to another alias.
	Underlying ClassOrTypeAliasType

	// Expanded is the class the alias resolves to. Optional on loaded
	// variants (see ExpandedType); always set on synthesized aliases.
	Expanded *ClassType

	// Source location, if known.
	Source Source
}

// DeclKind returns DeclTypeAlias.
func (d *TypeAlias) DeclKind() DeclarationKind { return DeclTypeAlias }

// DeclName returns the alias name.
func (d *TypeAlias) DeclName() string { return d.Name }

// DeclVisibility returns the alias visibility.
func (d *TypeAlias) DeclVisibility() Visibility { return d.Visibility }

func (*TypeAlias) sealedDecl() {}

// ExpandedType returns Expanded when set, otherwise the result of expanding
// Underlying.
func (d *TypeAlias) ExpandedType() (*ClassType, error) {
	if d.Expanded != nil {
		return d.Expanded, nil
	}
	return Expand(d.Underlying)
}
