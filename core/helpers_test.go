package core

import (
	"testing"

	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/classifiers"
)

func newCache(t *testing.T) *classifiers.Cache {
	t.Helper()
	cache, err := classifiers.New(classifiers.PrefixPredicate("shared"))
	if err != nil {
		t.Fatalf("classifiers.New: %v", err)
	}
	return cache
}

var (
	intType    = cir.ClassRef("", "Int")
	stringType = cir.ClassRef("", "String")
)

func alias(name string, vis cir.Visibility, underlying cir.ClassOrTypeAliasType, params ...cir.TypeParameter) *cir.TypeAlias {
	return &cir.TypeAlias{
		Name:           name,
		TypeParameters: params,
		Visibility:     vis,
		Underlying:     underlying,
	}
}

func classWithVisibility(pkg, name string, vis cir.Visibility) *cir.ClassType {
	c := cir.ClassRef(pkg, name)
	c.Visibility = vis
	return c
}
