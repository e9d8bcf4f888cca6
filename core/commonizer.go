// Package core implements the commonizers: small accumulators that are fed
// the per-platform variants of one declaration (or of one of its parts) in
// a fixed order and report whether a shared form exists.
//
// Every commonizer follows the same lifecycle. The first CommonizeWith call
// seeds the state from the first variant and merges that variant into it;
// later calls merge further variants. The first failed merge is terminal:
// the commonizer never recovers and never retries with a subset of variants.
package core

// Commonizer merges variants of type T into a shared result of type R.
type Commonizer[T, R any] interface {
	// CommonizeWith merges next into the accumulated state and reports
	// whether every variant fed so far is still compatible.
	CommonizeWith(next T) bool

	// HasResult reports whether at least one variant was merged and no
	// merge has failed.
	HasResult() bool

	// Result returns the shared form, or false when HasResult is false.
	Result() (R, bool)
}

type state int

const (
	stateEmpty state = iota
	stateActive
	stateFailed
)

// lifecycle tracks the state shared by every commonizer.
type lifecycle struct {
	state state
}

// feed runs initialize on the first call, then merge, and records the
// outcome. Once a merge fails, feed returns false without calling anything.
func (l *lifecycle) feed(initialize func(), merge func() bool) bool {
	switch l.state {
	case stateFailed:
		return false
	case stateEmpty:
		initialize()
	}
	if merge() {
		l.state = stateActive
		return true
	}
	l.state = stateFailed
	return false
}

// HasResult reports whether the commonizer holds a result.
func (l *lifecycle) HasResult() bool {
	return l.state == stateActive
}

func noop() {}
