package core

import (
	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/classifiers"
)

// TypeAliasCommonizer merges the platform variants of one type alias.
//
// It runs three strategies side by side, from most to least optimistic:
//
//   - short-circuit: all aliases expand to the same class, so the shared
//     alias can point at the closest standard anchor directly;
//   - lift-up: all aliases are written identically and can be lifted into
//     the shared fragment as they are;
//   - expect-class: all aliases point at argument-free classes of equal
//     visibility, so the shared fragment gets a placeholder class and each
//     platform keeps its alias as the implementation.
//
// Every variant is fed to every strategy. The result is taken from the
// first strategy, in that order, that accepted all variants.
type TypeAliasCommonizer struct {
	lifecycle
	shortCircuit *shortCircuitCommonizer
	liftUp       *liftUpCommonizer
	expectClass  *expectClassCommonizer
}

var _ Commonizer[*cir.TypeAlias, cir.Declaration] = (*TypeAliasCommonizer)(nil)

// NewTypeAliasCommonizer returns a commonizer backed by cache.
func NewTypeAliasCommonizer(cache *classifiers.Cache) *TypeAliasCommonizer {
	return &TypeAliasCommonizer{
		shortCircuit: newShortCircuitCommonizer(cache),
		liftUp:       newLiftUpCommonizer(cache),
		expectClass:  &expectClassCommonizer{visibility: EqualizingVisibility()},
	}
}

// CommonizeWith feeds next to all three strategies and reports whether at
// least one of them still accepts every variant.
func (c *TypeAliasCommonizer) CommonizeWith(next *cir.TypeAlias) bool {
	return c.feed(noop, func() bool {
		// Evaluate all three; || would starve the lower-priority strategies.
		primary := c.shortCircuit.CommonizeWith(next)
		secondary := c.liftUp.CommonizeWith(next)
		tertiary := c.expectClass.CommonizeWith(next)
		return primary || secondary || tertiary
	})
}

// BranchResult is the outcome of one strategy.
type BranchResult struct {
	Strategy    cir.Strategy
	Declaration cir.Declaration
	OK          bool
}

// Branches returns the outcome of every strategy in priority order.
func (c *TypeAliasCommonizer) Branches() [3]BranchResult {
	var out [3]BranchResult
	out[0].Strategy = cir.StrategyShortCircuit
	if d, ok := c.shortCircuit.Result(); ok {
		out[0].Declaration, out[0].OK = d, true
	}
	out[1].Strategy = cir.StrategyLiftUp
	if d, ok := c.liftUp.Result(); ok {
		out[1].Declaration, out[1].OK = d, true
	}
	out[2].Strategy = cir.StrategyExpectClass
	if d, ok := c.expectClass.Result(); ok {
		out[2].Declaration, out[2].OK = d, true
	}
	return out
}

// Result returns the declaration of the highest-priority strategy that
// accepted every variant.
func (c *TypeAliasCommonizer) Result() (cir.Declaration, bool) {
	d, _, ok := c.ResultWithStrategy()
	return d, ok
}

// ResultWithStrategy is Result plus the strategy that produced it.
func (c *TypeAliasCommonizer) ResultWithStrategy() (cir.Declaration, cir.Strategy, bool) {
	if !c.HasResult() {
		return nil, cir.StrategyNone, false
	}
	for _, b := range c.Branches() {
		if b.OK {
			return b.Declaration, b.Strategy, true
		}
	}
	return nil, cir.StrategyNone, false
}

// shortCircuitCommonizer requires equal expansions. The shared alias points
// at the closest standard anchor of the chain.
type shortCircuitCommonizer struct {
	lifecycle
	cache          *classifiers.Cache
	name           string
	typeParameters *TypeParameterListCommonizer
	expanded       *TypeCommonizer
	anchor         *TypeCommonizer
	visibility     *VisibilityCommonizer
}

func newShortCircuitCommonizer(cache *classifiers.Cache) *shortCircuitCommonizer {
	return &shortCircuitCommonizer{
		cache:          cache,
		typeParameters: NewTypeParameterListCommonizer(cache),
		expanded:       NewTypeCommonizer(cache),
		anchor:         NewTypeCommonizer(cache),
		visibility:     LoweringVisibility(),
	}
}

func (c *shortCircuitCommonizer) CommonizeWith(next *cir.TypeAlias) bool {
	if next == nil {
		c.state = stateFailed
		return false
	}
	return c.feed(func() { c.name = next.Name }, func() bool {
		expanded, err := next.ExpandedType()
		if err != nil {
			return false
		}
		anchor, err := cir.ShortCircuit(next.Underlying, c.cache.IsStandard)
		if err != nil {
			return false
		}
		// Disagreeing anchors only cost the shortcut; the expansion decides.
		c.anchor.CommonizeWith(anchor)

		return c.typeParameters.CommonizeWith(next.TypeParameters) &&
			c.expanded.CommonizeWith(expanded) &&
			c.visibility.CommonizeWith(next.Visibility)
	})
}

func (c *shortCircuitCommonizer) Result() (*cir.TypeAlias, bool) {
	if !c.HasResult() {
		return nil, false
	}
	typeParameters, ok := c.typeParameters.Result()
	if !ok {
		return nil, false
	}
	merged, ok := c.expanded.Result()
	if !ok {
		return nil, false
	}
	expanded, ok := merged.(*cir.ClassType)
	if !ok {
		return nil, false
	}
	visibility, _ := c.visibility.Result()

	var underlying cir.ClassOrTypeAliasType = expanded
	if anchor, ok := c.anchor.Result(); ok {
		if ref, ok := anchor.(cir.ClassOrTypeAliasType); ok {
			underlying = ref
		}
	}

	return &cir.TypeAlias{
		Name:           c.name,
		TypeParameters: typeParameters,
		Visibility:     visibility,
		Underlying:     underlying,
		Expanded:       expanded,
	}, true
}

// liftUpCommonizer requires the right-hand sides to merge as written.
type liftUpCommonizer struct {
	lifecycle
	name           string
	typeParameters *TypeParameterListCommonizer
	underlying     *TypeCommonizer
	visibility     *VisibilityCommonizer
}

func newLiftUpCommonizer(cache *classifiers.Cache) *liftUpCommonizer {
	return &liftUpCommonizer{
		typeParameters: NewTypeParameterListCommonizer(cache),
		underlying:     NewTypeCommonizer(cache),
		visibility:     LoweringVisibility(),
	}
}

func (c *liftUpCommonizer) CommonizeWith(next *cir.TypeAlias) bool {
	if next == nil || next.Underlying == nil {
		c.state = stateFailed
		return false
	}
	return c.feed(func() { c.name = next.Name }, func() bool {
		if _, err := cir.Expand(next.Underlying); err != nil {
			return false
		}
		return c.typeParameters.CommonizeWith(next.TypeParameters) &&
			c.underlying.CommonizeWith(next.Underlying) &&
			c.visibility.CommonizeWith(next.Visibility)
	})
}

func (c *liftUpCommonizer) Result() (*cir.TypeAlias, bool) {
	if !c.HasResult() {
		return nil, false
	}
	typeParameters, ok := c.typeParameters.Result()
	if !ok {
		return nil, false
	}
	merged, _ := c.underlying.Result()
	underlying, ok := merged.(cir.ClassOrTypeAliasType)
	if !ok {
		return nil, false
	}
	expanded, err := cir.Expand(underlying)
	if err != nil {
		return nil, false
	}
	visibility, _ := c.visibility.Result()

	return &cir.TypeAlias{
		Name:           c.name,
		TypeParameters: typeParameters,
		Visibility:     visibility,
		Underlying:     underlying,
		Expanded:       expanded,
	}, true
}

// expectClassCommonizer accepts aliases without type parameters whose
// right-hand side is a class with no type arguments, and requires those
// classes to have the same visibility.
type expectClassCommonizer struct {
	lifecycle
	name       string
	visibility *VisibilityCommonizer
}

func (c *expectClassCommonizer) CommonizeWith(next *cir.TypeAlias) bool {
	if next == nil {
		c.state = stateFailed
		return false
	}
	return c.feed(func() { c.name = next.Name }, func() bool {
		if len(next.TypeParameters) > 0 {
			return false
		}
		class, ok := next.Underlying.(*cir.ClassType)
		if !ok {
			return false
		}
		return hasNoArguments(class) && c.visibility.CommonizeWith(class.Visibility)
	})
}

func (c *expectClassCommonizer) Result() (*cir.Class, bool) {
	if !c.HasResult() {
		return nil, false
	}
	visibility, _ := c.visibility.Result()
	return &cir.Class{
		Name:       c.name,
		Visibility: visibility,
		Modality:   cir.ModalityFinal,
		ClassKind:  cir.ClassKindClass,
	}, true
}

func hasNoArguments(t *cir.ClassType) bool {
	for ; t != nil; t = t.Outer {
		if len(t.Arguments) > 0 {
			return false
		}
	}
	return true
}
