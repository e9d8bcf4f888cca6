//go:build commonizer_extra

package platform

// Extra exists only with the commonizer_extra tag.
type Extra = []Label
