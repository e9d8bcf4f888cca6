package core

import (
	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/classifiers"
)

// TypeCommonizer merges type references structurally. Two references merge
// when they name the same classifier with the same nullability and their
// arguments merge pairwise. Alias references also merge their underlying
// types, unless the cache already holds the alias's shared declaration; the
// reference is then rebuilt from that declaration. References to a
// classifier that the cache records as processed without a shared form are
// rejected, since shared code cannot name it.
type TypeCommonizer struct {
	lifecycle
	cache  *classifiers.Cache
	result cir.Type
}

var _ Commonizer[cir.Type, cir.Type] = (*TypeCommonizer)(nil)

// NewTypeCommonizer returns a TypeCommonizer backed by cache.
func NewTypeCommonizer(cache *classifiers.Cache) *TypeCommonizer {
	return &TypeCommonizer{cache: cache}
}

// CommonizeWith merges next.
func (c *TypeCommonizer) CommonizeWith(next cir.Type) bool {
	if next == nil {
		c.state = stateFailed
		return false
	}
	return c.feed(func() { c.result = next }, func() bool {
		merged, ok := mergeTypes(c.cache, c.result, next, make(map[cir.ClassifierID]bool))
		if ok {
			c.result = merged
		}
		return ok
	})
}

// Result returns the merged type.
func (c *TypeCommonizer) Result() (cir.Type, bool) {
	if !c.HasResult() {
		return nil, false
	}
	return c.result, true
}

// ResultKind reports whether the merged type is a class, alias or type
// parameter reference. Callers branch on it before narrowing the result.
func (c *TypeCommonizer) ResultKind() (cir.TypeKind, bool) {
	if !c.HasResult() {
		return 0, false
	}
	return c.result.Kind(), true
}

// mergeTypes returns the shared form of a and b. underlying holds the alias
// IDs whose right-hand sides are being merged on the current path; meeting
// one again means the chain is cyclic and the merge fails.
func mergeTypes(cache *classifiers.Cache, a, b cir.Type, underlying map[cir.ClassifierID]bool) (cir.Type, bool) {
	a, b = sharedForm(cache, a), sharedForm(cache, b)
	if a.IsNullable() != b.IsNullable() {
		return nil, false
	}
	switch at := a.(type) {
	case *cir.ClassType:
		bt, ok := b.(*cir.ClassType)
		if !ok {
			return nil, false
		}
		merged, ok := mergeClassTypes(cache, at, bt, underlying)
		if !ok {
			return nil, false
		}
		return merged, true

	case *cir.TypeAliasType:
		bt, ok := b.(*cir.TypeAliasType)
		if !ok || at.ID != bt.ID || !cache.Usable(at.ID) {
			return nil, false
		}
		args, ok := mergeArguments(cache, at.Arguments, bt.Arguments, underlying)
		if !ok {
			return nil, false
		}
		if at.Underlying == nil || bt.Underlying == nil || underlying[at.ID] {
			return nil, false
		}
		underlying[at.ID] = true
		rhs, ok := mergeTypes(cache, at.Underlying, bt.Underlying, underlying)
		delete(underlying, at.ID)
		if !ok {
			return nil, false
		}
		rhsRef, ok := rhs.(cir.ClassOrTypeAliasType)
		if !ok {
			return nil, false
		}
		return &cir.TypeAliasType{
			ID:         at.ID,
			Module:     commonModule(at.Module, bt.Module),
			Underlying: rhsRef,
			Arguments:  args,
			Nullable:   at.Nullable,
		}, true

	case *cir.TypeParameterType:
		bt, ok := b.(*cir.TypeParameterType)
		if !ok || at.Index != bt.Index {
			return nil, false
		}
		merged := *at
		return &merged, true
	}
	return nil, false
}

// sharedForm rewrites a reference to an alias that already has a shared
// declaration. An alias replaced by a placeholder class becomes a reference
// to that class; a shared alias keeps its ID and takes the shared right-hand
// side, so the platform right-hand sides are never merged. Other types are
// returned unchanged.
func sharedForm(cache *classifiers.Cache, t cir.Type) cir.Type {
	ref, ok := t.(*cir.TypeAliasType)
	if !ok {
		return t
	}
	entry, ok := cache.Lookup(ref.ID)
	if !ok {
		return t
	}
	switch d := entry.Declaration.(type) {
	case *cir.Class:
		return &cir.ClassType{
			ID:         ref.ID,
			Module:     ref.Module,
			Visibility: d.Visibility,
			Arguments:  ref.Arguments,
			Nullable:   ref.Nullable,
		}
	case *cir.TypeAlias:
		if d.Underlying == nil {
			return t
		}
		rhs, ok := cir.Substitute(d.Underlying, ref.Arguments).(cir.ClassOrTypeAliasType)
		if !ok {
			return t
		}
		return &cir.TypeAliasType{
			ID:         ref.ID,
			Module:     ref.Module,
			Underlying: rhs,
			Arguments:  ref.Arguments,
			Nullable:   ref.Nullable,
		}
	}
	return t
}

func mergeClassTypes(cache *classifiers.Cache, a, b *cir.ClassType, underlying map[cir.ClassifierID]bool) (*cir.ClassType, bool) {
	if a.ID != b.ID || a.Nullable != b.Nullable || !cache.Usable(a.ID) {
		return nil, false
	}
	var outer *cir.ClassType
	switch {
	case a.Outer == nil && b.Outer == nil:
	case a.Outer == nil || b.Outer == nil:
		return nil, false
	default:
		var ok bool
		if outer, ok = mergeClassTypes(cache, a.Outer, b.Outer, underlying); !ok {
			return nil, false
		}
	}
	args, ok := mergeArguments(cache, a.Arguments, b.Arguments, underlying)
	if !ok {
		return nil, false
	}
	return &cir.ClassType{
		ID:         a.ID,
		Module:     commonModule(a.Module, b.Module),
		Visibility: min(a.Visibility, b.Visibility),
		Outer:      outer,
		Arguments:  args,
		Nullable:   a.Nullable,
	}, true
}

func mergeArguments(cache *classifiers.Cache, a, b []cir.TypeProjection, underlying map[cir.ClassifierID]bool) ([]cir.TypeProjection, bool) {
	if len(a) != len(b) {
		return nil, false
	}
	if a == nil {
		return nil, true
	}
	out := make([]cir.TypeProjection, len(a))
	for i := range a {
		if a[i].Star != b[i].Star {
			return nil, false
		}
		if a[i].Star {
			out[i] = a[i]
			continue
		}
		if a[i].Variance != b[i].Variance || a[i].Type == nil || b[i].Type == nil {
			return nil, false
		}
		t, ok := mergeTypes(cache, a[i].Type, b[i].Type, underlying)
		if !ok {
			return nil, false
		}
		out[i] = cir.TypeProjection{Variance: a[i].Variance, Type: t}
	}
	return out, true
}

func commonModule(a, b string) string {
	if a == b {
		return a
	}
	return ""
}
