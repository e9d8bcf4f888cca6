package core

import "github.com/broady/commonizer/cir"

// VisibilityCommonizer merges declaration visibilities under one of two
// policies, see LoweringVisibility and EqualizingVisibility.
type VisibilityCommonizer struct {
	lifecycle
	lowering bool
	current  cir.Visibility
}

var _ Commonizer[cir.Visibility, cir.Visibility] = (*VisibilityCommonizer)(nil)

// LoweringVisibility returns a commonizer that never fails and yields the
// narrowest visibility seen.
func LoweringVisibility() *VisibilityCommonizer {
	return &VisibilityCommonizer{lowering: true}
}

// EqualizingVisibility returns a commonizer that fails as soon as a
// visibility differs from the first one.
func EqualizingVisibility() *VisibilityCommonizer {
	return &VisibilityCommonizer{}
}

// CommonizeWith merges next.
func (c *VisibilityCommonizer) CommonizeWith(next cir.Visibility) bool {
	return c.feed(func() { c.current = next }, func() bool {
		if c.lowering {
			c.current = min(c.current, next)
			return true
		}
		return next == c.current
	})
}

// Result returns the merged visibility.
func (c *VisibilityCommonizer) Result() (cir.Visibility, bool) {
	return c.current, c.HasResult()
}
