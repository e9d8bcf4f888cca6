package engine

import (
	"errors"
	"fmt"

	"github.com/broady/commonizer/cir"
)

var (
	// ErrEmptyGroup is returned for a group without variants.
	ErrEmptyGroup = errors.New("group has no variants")

	// ErrKindMismatch is returned when a variant's kind differs from the
	// group's kind.
	ErrKindMismatch = errors.New("variant kind does not match group kind")

	// ErrUnsupportedKind is returned when no commonizer is registered for
	// the group's kind.
	ErrUnsupportedKind = errors.New("no commonizer registered for declaration kind")
)

// Group is one declaration as seen by every platform: the variants are the
// per-platform declarations in canonical platform order.
type Group struct {
	// ID is the fully-qualified name shared by every variant.
	ID cir.ClassifierID

	// Kind is the declaration kind of every variant.
	Kind cir.DeclarationKind

	// Variants holds one declaration per platform.
	Variants []cir.Declaration

	// Platforms names the platform of each variant. Optional; when set it
	// has the same length as Variants.
	Platforms []string
}

// Validate checks the group's shape.
func (g *Group) Validate() error {
	if len(g.Variants) == 0 {
		return fmt.Errorf("%s: %w", g.ID, ErrEmptyGroup)
	}
	if len(g.Platforms) > 0 && len(g.Platforms) != len(g.Variants) {
		return fmt.Errorf("%s: %d platforms for %d variants", g.ID, len(g.Platforms), len(g.Variants))
	}
	for i, v := range g.Variants {
		if v == nil {
			return fmt.Errorf("%s: variant %d is nil: %w", g.ID, i, ErrKindMismatch)
		}
		if v.DeclKind() != g.Kind {
			return fmt.Errorf("%s: variant %d is a %s, group is a %s: %w", g.ID, i, v.DeclKind(), g.Kind, ErrKindMismatch)
		}
	}
	return nil
}

// references returns the classifiers the group's variants refer to.
func (g *Group) references() map[cir.ClassifierID]bool {
	refs := make(map[cir.ClassifierID]bool)
	visit := func(id cir.ClassifierID) bool {
		refs[id] = true
		return true
	}
	params := func(tps []cir.TypeParameter) {
		for _, tp := range tps {
			for _, b := range tp.UpperBounds {
				cir.Walk(b, visit)
			}
		}
	}
	for _, v := range g.Variants {
		switch d := v.(type) {
		case *cir.TypeAlias:
			params(d.TypeParameters)
			if d.Underlying != nil {
				cir.Walk(d.Underlying, visit)
			}
		case *cir.Class:
			params(d.TypeParameters)
		}
	}
	return refs
}

// Outcome is the result of commonizing one group.
type Outcome struct {
	// ID is the group's ID.
	ID cir.ClassifierID

	// Kind is the group's declaration kind.
	Kind cir.DeclarationKind

	// Declaration is the shared declaration, nil when none exists.
	Declaration cir.Declaration

	// Strategy names the strategy that produced Declaration.
	Strategy cir.Strategy

	// Commonized reports whether a shared declaration exists. When false,
	// every platform keeps its own declaration.
	Commonized bool

	// Platforms lists the platforms the group covered.
	Platforms []string

	// Err is set when the group violated the engine contract. Only Run
	// records errors here; Commonize returns them.
	Err error
}
