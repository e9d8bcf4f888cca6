package cir

import (
	"errors"
	"slices"
	"strings"
)

// Member is a declaration together with the package that declares it.
type Member struct {
	// Package is the declaring package path.
	Package string

	// Declaration is the declared type alias or class.
	Declaration Declaration
}

// ID returns the classifier identity of the member.
func (m Member) ID() ClassifierID {
	return ClassifierID{Package: m.Package, Name: m.Declaration.DeclName()}
}

// Module is one platform's view of the library surface: every declaration
// loaded for that platform.
type Module struct {
	// Platform is the target name (e.g., "linux_amd64", "ios_arm64").
	Platform string

	// Name is the module name the declarations were loaded from.
	Name string

	// Members contains the loaded declarations in load order.
	Members []Member

	// Warnings contains non-fatal issues encountered while loading.
	Warnings []Warning
}

// Add appends a declaration to the module.
func (m *Module) Add(pkg string, d Declaration) {
	m.Members = append(m.Members, Member{Package: pkg, Declaration: d})
}

// AddWarning adds a warning to the module.
func (m *Module) AddWarning(w Warning) {
	m.Warnings = append(m.Warnings, w)
}

// Find looks up a declaration by identity. Returns nil if not found.
func (m *Module) Find(id ClassifierID) Declaration {
	for _, mem := range m.Members {
		if mem.ID() == id {
			return mem.Declaration
		}
	}
	return nil
}

// Validate checks the module for structural issues: duplicate declarations,
// aliases without a right-hand side, type parameter references out of range
// and cyclic alias chains. It returns all errors found, not just the first.
func (m *Module) Validate() []error {
	var errs []*ValidationError

	ids := make(map[ClassifierID]bool)
	aliases := make(map[ClassifierID]*TypeAlias)
	for _, mem := range m.Members {
		id := mem.ID()
		if ids[id] {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_declaration",
				Message: "duplicate declaration: " + id.String(),
			})
		}
		ids[id] = true

		ta, ok := mem.Declaration.(*TypeAlias)
		if !ok {
			continue
		}
		aliases[id] = ta
		if ta.Underlying == nil {
			errs = append(errs, &ValidationError{
				Code:    "missing_underlying_type",
				Message: "type alias " + id.String() + " has no underlying type",
			})
			continue
		}
		if !typeParamsInRange(ta.Underlying, len(ta.TypeParameters)) {
			errs = append(errs, &ValidationError{
				Code:    "type_parameter_out_of_range",
				Message: "type alias " + id.String() + " refers to an undeclared type parameter",
			})
		}
		if _, err := Expand(ta.Underlying); errors.Is(err, ErrAliasCycle) {
			errs = append(errs, &ValidationError{
				Code:    "circular_alias",
				Message: "type alias " + id.String() + ": " + err.Error(),
			})
		}
	}

	errs = append(errs, detectCircularAliases(aliases)...)

	var result []error
	for _, e := range errs {
		result = append(result, e)
	}
	return result
}

// ValidationError represents a module validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func typeParamsInRange(t Type, n int) bool {
	switch typ := t.(type) {
	case *TypeParameterType:
		return typ.Index >= 0 && typ.Index < n
	case *ClassType:
		if typ.Outer != nil && !typeParamsInRange(typ.Outer, n) {
			return false
		}
		return argsInRange(typ.Arguments, n)
	case *TypeAliasType:
		// The underlying chain belongs to other declarations; only the
		// arguments written at this use site are checked.
		return argsInRange(typ.Arguments, n)
	}
	return true
}

func argsInRange(args []TypeProjection, n int) bool {
	for _, a := range args {
		if !a.Star && !typeParamsInRange(a.Type, n) {
			return false
		}
	}
	return true
}

// detectCircularAliases checks for cycles between alias declarations of the
// module, following the head of each right-hand side by identity.
func detectCircularAliases(aliases map[ClassifierID]*TypeAlias) []*ValidationError {
	var errs []*ValidationError

	visited := make(map[ClassifierID]bool)
	inStack := make(map[ClassifierID]bool)

	var detectCycle func(id ClassifierID, path []string)
	detectCycle = func(id ClassifierID, path []string) {
		if inStack[id] {
			cyclePath := append(path, id.String())
			errs = append(errs, &ValidationError{
				Code:    "circular_alias",
				Message: "circular type alias detected: " + strings.Join(cyclePath, " -> "),
			})
			return
		}
		if visited[id] {
			return
		}

		visited[id] = true
		inStack[id] = true

		if ta, ok := aliases[id]; ok {
			if ref, ok := ta.Underlying.(*TypeAliasType); ok {
				if _, declared := aliases[ref.ID]; declared {
					detectCycle(ref.ID, append(path, id.String()))
				}
			}
		}

		inStack[id] = false
	}

	for _, id := range sortedIDs(aliases) {
		detectCycle(id, nil)
	}

	return errs
}

func sortedIDs(aliases map[ClassifierID]*TypeAlias) []ClassifierID {
	ids := make([]ClassifierID, 0, len(aliases))
	for id := range aliases {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, ClassifierID.Compare)
	return ids
}
