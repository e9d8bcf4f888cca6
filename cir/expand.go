package cir

import (
	"errors"
	"fmt"
)

var (
	// ErrAliasCycle is returned when an alias chain refers back to itself.
	ErrAliasCycle = errors.New("type alias chain is cyclic")

	// ErrUnresolvedAlias is returned when an alias reference has no
	// underlying type.
	ErrUnresolvedAlias = errors.New("type alias reference has no underlying type")
)

// Expand follows t through alias references until it reaches a class and
// returns that class. A nullable alias anywhere on the chain makes the
// result nullable.
func Expand(t ClassOrTypeAliasType) (*ClassType, error) {
	var nullable bool
	seen := make(map[ClassifierID]bool)
	for {
		switch typ := t.(type) {
		case *ClassType:
			if nullable && !typ.Nullable {
				return WithNullability(typ, true).(*ClassType), nil
			}
			return typ, nil
		case *TypeAliasType:
			next, err := step(typ, seen)
			if err != nil {
				return nil, err
			}
			nullable = nullable || typ.Nullable
			t = next
		default:
			return nil, fmt.Errorf("%w: nil type", ErrUnresolvedAlias)
		}
	}
}

// ShortCircuit follows t through alias references and stops at the first
// reference that is either a class or an alias whose classifier satisfies
// isStandard. It is the closest anchor on the chain that every platform can
// be expected to share.
func ShortCircuit(t ClassOrTypeAliasType, isStandard func(ClassifierID) bool) (ClassOrTypeAliasType, error) {
	var nullable bool
	seen := make(map[ClassifierID]bool)
	for {
		switch typ := t.(type) {
		case *ClassType:
			return withNullable(typ, nullable), nil
		case *TypeAliasType:
			if isStandard(typ.ID) {
				return withNullable(typ, nullable), nil
			}
			next, err := step(typ, seen)
			if err != nil {
				return nil, err
			}
			nullable = nullable || typ.Nullable
			t = next
		default:
			return nil, fmt.Errorf("%w: nil type", ErrUnresolvedAlias)
		}
	}
}

func step(typ *TypeAliasType, seen map[ClassifierID]bool) (ClassOrTypeAliasType, error) {
	if seen[typ.ID] {
		return nil, fmt.Errorf("%w: %s", ErrAliasCycle, typ.ID)
	}
	seen[typ.ID] = true
	if typ.Underlying == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedAlias, typ.ID)
	}
	return typ.Underlying, nil
}

func withNullable(t ClassOrTypeAliasType, nullable bool) ClassOrTypeAliasType {
	if !nullable || t.IsNullable() {
		return t
	}
	return WithNullability(t, true).(ClassOrTypeAliasType)
}

// Substitute replaces uses of type parameters in t with the matching
// projections from args. Parameters without a matching argument are kept.
// A star argument substituted at the top level leaves the parameter in place.
func Substitute(t Type, args []TypeProjection) Type {
	if len(args) == 0 || t == nil {
		return t
	}
	switch typ := t.(type) {
	case *TypeParameterType:
		if typ.Index < 0 || typ.Index >= len(args) || args[typ.Index].Star {
			return typ
		}
		arg := args[typ.Index].Type
		if typ.Nullable {
			return WithNullability(arg, true)
		}
		return arg
	case *ClassType:
		c := *typ
		c.Arguments = substituteArgs(typ.Arguments, args)
		if typ.Outer != nil {
			c.Outer = Substitute(typ.Outer, args).(*ClassType)
		}
		return &c
	case *TypeAliasType:
		c := *typ
		c.Arguments = substituteArgs(typ.Arguments, args)
		if typ.Underlying != nil {
			c.Underlying = Substitute(typ.Underlying, args).(ClassOrTypeAliasType)
		}
		return &c
	}
	return t
}

func substituteArgs(projections, args []TypeProjection) []TypeProjection {
	if projections == nil {
		return nil
	}
	out := make([]TypeProjection, len(projections))
	for i, p := range projections {
		if p.Star {
			out[i] = p
			continue
		}
		if tp, ok := p.Type.(*TypeParameterType); ok && tp.Index >= 0 && tp.Index < len(args) {
			arg := args[tp.Index]
			if arg.Star {
				out[i] = arg
				continue
			}
			variance := p.Variance
			if variance == Invariant {
				variance = arg.Variance
			}
			out[i] = TypeProjection{Variance: variance, Type: Substitute(tp, args)}
			continue
		}
		out[i] = TypeProjection{Variance: p.Variance, Type: Substitute(p.Type, args)}
	}
	return out
}

// Walk calls fn for every classifier referenced by t, including outer
// types, type arguments and the underlying chain of alias references.
// Walking stops early when fn returns false.
func Walk(t Type, fn func(ClassifierID) bool) {
	walk(t, fn, make(map[ClassifierID]bool))
}

func walk(t Type, fn func(ClassifierID) bool, aliases map[ClassifierID]bool) bool {
	switch typ := t.(type) {
	case *ClassType:
		if !fn(typ.ID) {
			return false
		}
		if typ.Outer != nil && !walk(typ.Outer, fn, aliases) {
			return false
		}
		return walkArgs(typ.Arguments, fn, aliases)
	case *TypeAliasType:
		if !fn(typ.ID) {
			return false
		}
		if !walkArgs(typ.Arguments, fn, aliases) {
			return false
		}
		if aliases[typ.ID] || typ.Underlying == nil {
			return true
		}
		aliases[typ.ID] = true
		return walk(typ.Underlying, fn, aliases)
	}
	return true
}

func walkArgs(args []TypeProjection, fn func(ClassifierID) bool, aliases map[ClassifierID]bool) bool {
	for _, a := range args {
		if a.Star {
			continue
		}
		if !walk(a.Type, fn, aliases) {
			return false
		}
	}
	return true
}
