package cir

// Class is a class declaration. The commonizer produces classes as
// placeholders ("expect classes") when type aliases cannot be merged, and
// providers load them so that alias right-hand sides know the visibility of
// the classes they point at.
type Class struct {
	// Name is the simple class name.
	Name string

	// TypeParameters contains the declared type parameters, in order.
	TypeParameters []TypeParameter

	// Visibility is the declared visibility.
	Visibility Visibility

	// Modality is the inheritance modality.
	Modality Modality

	// ClassKind distinguishes classes, interfaces, objects and enums.
	ClassKind ClassKind

	// Source location, if known.
	Source Source
}

// DeclKind returns DeclClass.
func (d *Class) DeclKind() DeclarationKind { return DeclClass }

// DeclName returns the class name.
func (d *Class) DeclName() string { return d.Name }

// DeclVisibility returns the class visibility.
func (d *Class) DeclVisibility() Visibility { return d.Visibility }

func (*Class) sealedDecl() {}
