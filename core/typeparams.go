package core

import (
	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/classifiers"
)

// TypeParameterListCommonizer merges ordered type parameter lists.
// Lists of different lengths never merge. Parameters are matched by
// position: variance and reification must agree and the upper bounds must
// merge pairwise. The merged list keeps the names of the first variant.
type TypeParameterListCommonizer struct {
	lifecycle
	cache  *classifiers.Cache
	params []*typeParameterCommonizer
}

var _ Commonizer[[]cir.TypeParameter, []cir.TypeParameter] = (*TypeParameterListCommonizer)(nil)

// NewTypeParameterListCommonizer returns a commonizer backed by cache.
func NewTypeParameterListCommonizer(cache *classifiers.Cache) *TypeParameterListCommonizer {
	return &TypeParameterListCommonizer{cache: cache}
}

// CommonizeWith merges next.
func (c *TypeParameterListCommonizer) CommonizeWith(next []cir.TypeParameter) bool {
	return c.feed(func() {
		c.params = make([]*typeParameterCommonizer, len(next))
		for i := range next {
			c.params[i] = &typeParameterCommonizer{cache: c.cache}
		}
	}, func() bool {
		if len(next) != len(c.params) {
			return false
		}
		for i, p := range next {
			if !c.params[i].CommonizeWith(p) {
				return false
			}
		}
		return true
	})
}

// Result returns the merged list. An empty list is returned as nil.
func (c *TypeParameterListCommonizer) Result() ([]cir.TypeParameter, bool) {
	if !c.HasResult() {
		return nil, false
	}
	if len(c.params) == 0 {
		return nil, true
	}
	out := make([]cir.TypeParameter, len(c.params))
	for i, p := range c.params {
		merged, ok := p.Result()
		if !ok {
			return nil, false
		}
		out[i] = merged
	}
	return out, true
}

type typeParameterCommonizer struct {
	lifecycle
	cache    *classifiers.Cache
	name     string
	variance cir.Variance
	reified  bool
	bounds   []*TypeCommonizer
}

func (c *typeParameterCommonizer) CommonizeWith(next cir.TypeParameter) bool {
	return c.feed(func() {
		c.name = next.Name
		c.variance = next.Variance
		c.reified = next.Reified
		c.bounds = make([]*TypeCommonizer, len(next.UpperBounds))
		for i := range next.UpperBounds {
			c.bounds[i] = NewTypeCommonizer(c.cache)
		}
	}, func() bool {
		if next.Variance != c.variance || next.Reified != c.reified {
			return false
		}
		if len(next.UpperBounds) != len(c.bounds) {
			return false
		}
		for i, b := range next.UpperBounds {
			if !c.bounds[i].CommonizeWith(b) {
				return false
			}
		}
		return true
	})
}

func (c *typeParameterCommonizer) Result() (cir.TypeParameter, bool) {
	if !c.HasResult() {
		return cir.TypeParameter{}, false
	}
	p := cir.TypeParameter{
		Name:     c.name,
		Variance: c.variance,
		Reified:  c.reified,
	}
	if len(c.bounds) > 0 {
		p.UpperBounds = make([]cir.Type, len(c.bounds))
		for i, b := range c.bounds {
			t, ok := b.Result()
			if !ok {
				return cir.TypeParameter{}, false
			}
			p.UpperBounds[i] = t
		}
	}
	return p, true
}
