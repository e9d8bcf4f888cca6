package engine

import (
	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/classifiers"
	"github.com/broady/commonizer/core"
)

// DeclarationCommonizer merges the variants of one group. Variants are
// passed in canonical order and are guaranteed to be of the kind the
// commonizer was registered for.
type DeclarationCommonizer interface {
	CommonizeWith(next cir.Declaration) bool
	ResultWithStrategy() (cir.Declaration, cir.Strategy, bool)
}

// Factory returns a fresh commonizer for one group.
type Factory func(cache *classifiers.Cache) DeclarationCommonizer

// typeAliases adapts core.TypeAliasCommonizer to DeclarationCommonizer.
type typeAliases struct {
	*core.TypeAliasCommonizer
}

func newTypeAliases(cache *classifiers.Cache) DeclarationCommonizer {
	return typeAliases{core.NewTypeAliasCommonizer(cache)}
}

func (c typeAliases) CommonizeWith(next cir.Declaration) bool {
	alias, ok := next.(*cir.TypeAlias)
	if !ok {
		return false
	}
	return c.TypeAliasCommonizer.CommonizeWith(alias)
}

func defaultFactories() map[cir.DeclarationKind]Factory {
	return map[cir.DeclarationKind]Factory{
		cir.DeclTypeAlias: newTypeAliases,
	}
}
