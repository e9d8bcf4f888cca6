package cir

// Strategy identifies how a shared declaration was synthesized.
type Strategy int

const (
	// StrategyNone means no shared declaration was produced.
	StrategyNone Strategy = iota

	// StrategyShortCircuit points the shared alias straight at the closest
	// standard anchor, skipping platform-only aliases.
	StrategyShortCircuit

	// StrategyLiftUp lifts identical aliases into the shared fragment as written.
	StrategyLiftUp

	// StrategyExpectClass replaces the alias with a placeholder class whose
	// implementations stay per platform.
	StrategyExpectClass
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyShortCircuit:
		return "short-circuit"
	case StrategyLiftUp:
		return "lift-up"
	case StrategyExpectClass:
		return "expect-class"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler for Strategy.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
