package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/commonizer/cir"
)

func commonize(t *testing.T, c *TypeAliasCommonizer, variants ...*cir.TypeAlias) bool {
	t.Helper()
	ok := false
	for _, v := range variants {
		ok = c.CommonizeWith(v)
	}
	return ok
}

func TestTypeAliasCommonizer_Strategies(t *testing.T) {
	box := cir.ClassRef("shared", "Box")
	pair := func() *cir.ClassType {
		return cir.ClassRef("shared", "Pair", cir.Arg(intType), cir.Arg(intType))
	}
	listOf := func(t cir.Type) *cir.ClassType { return cir.ClassRef("shared", "List", cir.Arg(t)) }
	cyclic := func() *cir.TypeAliasType {
		a := &cir.TypeAliasType{ID: cir.ClassifierID{Package: "lib", Name: "A"}}
		a.Underlying = cir.AliasRef("lib", "B", a)
		return a
	}

	tests := []struct {
		name         string
		variants     []*cir.TypeAlias
		wantBranches [3]bool
		wantStrategy cir.Strategy
	}{
		{
			name: "identical aliases",
			variants: []*cir.TypeAlias{
				alias("X", cir.VisibilityPublic, pair()),
				alias("X", cir.VisibilityPublic, pair()),
			},
			wantBranches: [3]bool{true, true, false},
			wantStrategy: cir.StrategyShortCircuit,
		},
		{
			name: "platform aliases with shared expansion",
			variants: []*cir.TypeAlias{
				alias("X", cir.VisibilityPublic, cir.AliasRef("platform/a", "Impl", box)),
				alias("X", cir.VisibilityPublic, cir.AliasRef("platform/b", "Impl", box)),
			},
			wantBranches: [3]bool{true, false, false},
			wantStrategy: cir.StrategyShortCircuit,
		},
		{
			name: "platform classes",
			variants: []*cir.TypeAlias{
				alias("Y", cir.VisibilityPublic, cir.ClassRef("platform/a", "Impl")),
				alias("Y", cir.VisibilityPublic, cir.ClassRef("platform/b", "Impl")),
			},
			wantBranches: [3]bool{false, false, true},
			wantStrategy: cir.StrategyExpectClass,
		},
		{
			name: "platform classes with different visibility",
			variants: []*cir.TypeAlias{
				alias("Y", cir.VisibilityPublic, cir.ClassRef("platform/a", "Impl")),
				alias("Y", cir.VisibilityPublic, classWithVisibility("platform/b", "Impl", cir.VisibilityInternal)),
			},
			wantStrategy: cir.StrategyNone,
		},
		{
			name: "generic aliases",
			variants: []*cir.TypeAlias{
				alias("L", cir.VisibilityPublic, listOf(cir.TypeParam(0, "T")), cir.TypeParameter{Name: "T"}),
				alias("L", cir.VisibilityPublic, listOf(cir.TypeParam(0, "E")), cir.TypeParameter{Name: "E"}),
			},
			wantBranches: [3]bool{true, true, false},
			wantStrategy: cir.StrategyShortCircuit,
		},
		{
			name: "type parameter arity mismatch",
			variants: []*cir.TypeAlias{
				alias("L", cir.VisibilityPublic, listOf(cir.TypeParam(0, "T")), cir.TypeParameter{Name: "T"}),
				alias("L", cir.VisibilityPublic, listOf(cir.TypeParam(0, "T")), cir.TypeParameter{Name: "T"}, cir.TypeParameter{Name: "U"}),
			},
			wantStrategy: cir.StrategyNone,
		},
		{
			name: "expansions differ",
			variants: []*cir.TypeAlias{
				alias("X", cir.VisibilityPublic, listOf(intType)),
				alias("X", cir.VisibilityPublic, listOf(stringType)),
			},
			wantStrategy: cir.StrategyNone,
		},
		{
			name: "nullability differs",
			variants: []*cir.TypeAlias{
				alias("X", cir.VisibilityPublic, box),
				alias("X", cir.VisibilityPublic, cir.WithNullability(box, true).(*cir.ClassType)),
			},
			wantBranches: [3]bool{false, false, true},
			wantStrategy: cir.StrategyExpectClass,
		},
		{
			name: "cyclic chain",
			variants: []*cir.TypeAlias{
				alias("X", cir.VisibilityPublic, cyclic()),
				alias("X", cir.VisibilityPublic, cyclic()),
			},
			wantStrategy: cir.StrategyNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTypeAliasCommonizer(newCache(t))
			ok := commonize(t, c, tt.variants...)
			if want := tt.wantStrategy != cir.StrategyNone; ok != want {
				t.Fatalf("CommonizeWith = %v, want %v", ok, want)
			}

			var gotBranches [3]bool
			for i, b := range c.Branches() {
				gotBranches[i] = b.OK
			}
			if gotBranches != tt.wantBranches {
				t.Errorf("Branches() = %v, want %v", gotBranches, tt.wantBranches)
			}

			_, strategy, _ := c.ResultWithStrategy()
			if strategy != tt.wantStrategy {
				t.Errorf("strategy = %s, want %s", strategy, tt.wantStrategy)
			}
		})
	}
}

func TestTypeAliasCommonizer_SharedPair(t *testing.T) {
	pair := func() *cir.ClassType {
		return cir.ClassRef("shared", "Pair", cir.Arg(intType), cir.Arg(intType))
	}
	c := NewTypeAliasCommonizer(newCache(t))
	commonize(t, c,
		alias("X", cir.VisibilityPublic, pair()),
		alias("X", cir.VisibilityPublic, pair()),
	)

	got, ok := c.Result()
	if !ok {
		t.Fatal("expected a result")
	}
	want := &cir.TypeAlias{
		Name:       "X",
		Visibility: cir.VisibilityPublic,
		Underlying: pair(),
		Expanded:   pair(),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Result() mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeAliasCommonizer_PlaceholderClass(t *testing.T) {
	c := NewTypeAliasCommonizer(newCache(t))
	commonize(t, c,
		alias("Y", cir.VisibilityInternal, cir.ClassRef("platform/a", "Impl")),
		alias("Y", cir.VisibilityPublic, cir.ClassRef("platform/b", "Impl")),
	)

	got, strategy, ok := c.ResultWithStrategy()
	if !ok {
		t.Fatal("expected a result")
	}
	if strategy != cir.StrategyExpectClass {
		t.Errorf("strategy = %s, want expect-class", strategy)
	}
	want := &cir.Class{
		Name:       "Y",
		Visibility: cir.VisibilityPublic,
		Modality:   cir.ModalityFinal,
		ClassKind:  cir.ClassKindClass,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Result() mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeAliasCommonizer_Anchor(t *testing.T) {
	box := cir.ClassRef("shared", "Box")

	t.Run("standard alias on the chain", func(t *testing.T) {
		std := cir.AliasRef("shared", "Handle", box)
		c := NewTypeAliasCommonizer(newCache(t))
		commonize(t, c,
			alias("X", cir.VisibilityPublic, cir.AliasRef("platform/a", "Impl", std)),
			alias("X", cir.VisibilityPublic, cir.AliasRef("platform/b", "Impl", std)),
		)
		got, ok := c.Result()
		if !ok {
			t.Fatal("expected a result")
		}
		ta := got.(*cir.TypeAlias)
		if ta.Underlying.Classifier() != std.ID {
			t.Errorf("underlying = %s, want %s", ta.Underlying, std)
		}
		if ta.Expanded.ID != box.ID {
			t.Errorf("expanded = %s, want %s", ta.Expanded, box)
		}
	})

	t.Run("anchors disagree", func(t *testing.T) {
		c := NewTypeAliasCommonizer(newCache(t))
		commonize(t, c,
			alias("X", cir.VisibilityPublic, cir.AliasRef("shared", "First", box)),
			alias("X", cir.VisibilityPublic, cir.AliasRef("shared", "Second", box)),
		)
		got, strategy, ok := c.ResultWithStrategy()
		if !ok || strategy != cir.StrategyShortCircuit {
			t.Fatalf("ResultWithStrategy = %v, %s; want short-circuit", ok, strategy)
		}
		ta := got.(*cir.TypeAlias)
		if ta.Underlying.Classifier() != box.ID {
			t.Errorf("underlying = %s, want the expansion %s", ta.Underlying, box)
		}
	})
}

func TestTypeAliasCommonizer_LowersVisibility(t *testing.T) {
	box := cir.ClassRef("shared", "Box")
	c := NewTypeAliasCommonizer(newCache(t))
	commonize(t, c,
		alias("X", cir.VisibilityPublic, box),
		alias("X", cir.VisibilityInternal, box),
		alias("X", cir.VisibilityPublic, box),
	)
	got, ok := c.Result()
	if !ok {
		t.Fatal("expected a result")
	}
	if got.DeclVisibility() != cir.VisibilityInternal {
		t.Errorf("visibility = %s, want internal", got.DeclVisibility())
	}
}

func TestTypeAliasCommonizer_UncommonizedReference(t *testing.T) {
	cache := newCache(t)
	handle := cir.ClassRef("lib", "Handle")
	cache.MarkUncommonized(handle.ID)

	c := NewTypeAliasCommonizer(cache)
	commonize(t, c,
		alias("X", cir.VisibilityPublic, handle),
		alias("X", cir.VisibilityPublic, handle),
	)
	_, strategy, ok := c.ResultWithStrategy()
	if !ok {
		t.Fatal("expected a placeholder result")
	}
	if strategy != cir.StrategyExpectClass {
		t.Errorf("strategy = %s, want expect-class", strategy)
	}
}

func TestTypeAliasCommonizer_SingleVariant(t *testing.T) {
	under := cir.ClassRef("shared", "Map", cir.Arg(stringType), cir.Arg(cir.TypeParam(0, "V")))
	in := alias("M", cir.VisibilityProtected, under, cir.TypeParameter{Name: "V", Variance: cir.Out})

	c := NewTypeAliasCommonizer(newCache(t))
	if !c.CommonizeWith(in) {
		t.Fatal("single variant should commonize")
	}
	got, ok := c.Result()
	if !ok {
		t.Fatal("expected a result")
	}
	want := &cir.TypeAlias{
		Name:           "M",
		TypeParameters: []cir.TypeParameter{{Name: "V", Variance: cir.Out}},
		Visibility:     cir.VisibilityProtected,
		Underlying:     under,
		Expanded:       under,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Result() mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeAliasCommonizer_FailureIsTerminal(t *testing.T) {
	c := NewTypeAliasCommonizer(newCache(t))
	box := cir.ClassRef("shared", "Box")
	if !c.CommonizeWith(alias("X", cir.VisibilityPublic, box)) {
		t.Fatal("first variant should commonize")
	}
	if c.CommonizeWith(alias("X", cir.VisibilityPublic, nil)) {
		t.Fatal("nil underlying should fail")
	}
	if c.CommonizeWith(alias("X", cir.VisibilityPublic, box)) {
		t.Error("failure should be terminal")
	}
	if _, ok := c.Result(); ok {
		t.Error("failed commonizer should have no result")
	}
}

func TestTypeAliasCommonizer_Empty(t *testing.T) {
	c := NewTypeAliasCommonizer(newCache(t))
	if c.HasResult() {
		t.Error("empty commonizer should have no result")
	}
	if _, strategy, ok := c.ResultWithStrategy(); ok || strategy != cir.StrategyNone {
		t.Errorf("ResultWithStrategy = %s, %v; want none, false", strategy, ok)
	}
}
