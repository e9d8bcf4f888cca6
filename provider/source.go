package provider

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"os"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/commonizer/cir"
)

// errUnsupportedType marks Go types that have no CIR form.
var errUnsupportedType = errors.New("unsupported type")

// SourceProvider extracts type aliases and named types by analyzing Go
// source code, once per platform.
//
// Go types map onto CIR as follows: basic types and composite type
// constructors (slices, maps, arrays, channels, the empty interface) are
// builtin classes in the empty package; named types are classes; aliases are
// alias references whose underlying type is the alias's right-hand side;
// pointers are nullable references; type parameters keep their index.
// Function types, anonymous structs and non-empty anonymous interfaces have
// no CIR form; declarations using them are skipped with a warning.
type SourceProvider struct {
	// Packages are the Go package paths to analyze.
	Packages []string

	// Dir is the directory packages are resolved from. Empty means the
	// current directory.
	Dir string
}

// Load analyzes the packages for platform and returns its module.
func (p *SourceProvider) Load(ctx context.Context, platform Platform) (*cir.Module, error) {
	if len(p.Packages) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     p.Dir,
		Env:     platformEnv(platform),
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	if len(platform.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(platform.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, p.Packages...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages for %s: %w", platform.Name, err)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors on %s: %v", pkg.PkgPath, platform.Name, pkg.Errors)
		}
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}

	module := &cir.Module{
		Platform: platform.Name,
		Name:     p.Packages[0],
	}

	// packages.Load returns packages in dependency order, not input order.
	byPath := make(map[string]*packages.Package, len(pkgs))
	for _, pkg := range pkgs {
		byPath[pkg.PkgPath] = pkg
	}
	for _, path := range p.Packages {
		pkg, ok := byPath[path]
		if !ok {
			continue
		}
		b := &moduleBuilder{pkg: pkg, module: module}
		b.extractAll()
	}
	return module, nil
}

func platformEnv(platform Platform) []string {
	env := append(os.Environ(), "CGO_ENABLED=0")
	if platform.GOOS != "" {
		env = append(env, "GOOS="+platform.GOOS)
	}
	if platform.GOARCH != "" {
		env = append(env, "GOARCH="+platform.GOARCH)
	}
	return env
}

// moduleBuilder converts the declarations of one package.
type moduleBuilder struct {
	pkg    *packages.Package
	module *cir.Module
}

// extractAll converts every type declared at package scope. Scope names are
// sorted, so the output is deterministic.
func (b *moduleBuilder) extractAll() {
	scope := b.pkg.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		decl, err := b.extractTypeName(tn)
		if err != nil {
			src := b.extractSource(tn)
			b.module.AddWarning(cir.Warning{
				Code:        "unsupported_declaration",
				Message:     fmt.Sprintf("%s skipped: %v", tn.Name(), err),
				Source:      &src,
				Declaration: tn.Name(),
			})
			continue
		}
		b.module.Add(b.pkg.PkgPath, decl)
	}
}

func (b *moduleBuilder) extractTypeName(tn *types.TypeName) (cir.Declaration, error) {
	visibility := visibilityOf(tn)
	src := b.extractSource(tn)

	if alias, ok := tn.Type().(*types.Alias); ok {
		params, err := b.convertTypeParams(alias.TypeParams())
		if err != nil {
			return nil, err
		}
		rhs, err := convertType(alias.Rhs())
		if err != nil {
			return nil, err
		}
		underlying, ok := rhs.(cir.ClassOrTypeAliasType)
		if !ok {
			return nil, fmt.Errorf("%w: alias of type parameter %s", errUnsupportedType, rhs)
		}
		return &cir.TypeAlias{
			Name:           tn.Name(),
			TypeParameters: params,
			Visibility:     visibility,
			Underlying:     underlying,
			Source:         src,
		}, nil
	}

	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnsupportedType, tn.Type())
	}
	params, err := b.convertTypeParams(named.TypeParams())
	if err != nil {
		return nil, err
	}
	class := &cir.Class{
		Name:           tn.Name(),
		TypeParameters: params,
		Visibility:     visibility,
		Modality:       cir.ModalityFinal,
		ClassKind:      cir.ClassKindClass,
		Source:         src,
	}
	if _, ok := named.Underlying().(*types.Interface); ok {
		class.Modality = cir.ModalityAbstract
		class.ClassKind = cir.ClassKindInterface
	}
	return class, nil
}

func (b *moduleBuilder) convertTypeParams(list *types.TypeParamList) ([]cir.TypeParameter, error) {
	if list.Len() == 0 {
		return nil, nil
	}
	params := make([]cir.TypeParameter, list.Len())
	for i := range list.Len() {
		tp := list.At(i)
		params[i] = cir.TypeParameter{Name: tp.Obj().Name()}
		bound, err := convertConstraint(tp.Constraint())
		if err != nil {
			return nil, err
		}
		if bound != nil {
			params[i].UpperBounds = []cir.Type{bound}
		}
	}
	return params, nil
}

// convertConstraint returns the bound of a type parameter, or nil when it is
// unbounded. any and comparable are builtins; other interface constraints
// are kept only when they are named.
func convertConstraint(constraint types.Type) (cir.Type, error) {
	switch c := constraint.(type) {
	case nil:
		return nil, nil
	case *types.Alias:
		if c.Obj().Pkg() == nil && c.Obj().Name() == "any" {
			return nil, nil
		}
		return convertType(c)
	case *types.Named:
		if c.Obj().Pkg() == nil && c.Obj().Name() == "comparable" {
			return cir.ClassRef("", "comparable"), nil
		}
		return convertType(c)
	case *types.Interface:
		if c.Empty() {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: inline constraint %s", errUnsupportedType, c)
	}
	return convertType(constraint)
}

// extractSource extracts source location information.
func (b *moduleBuilder) extractSource(obj types.Object) cir.Source {
	pos := obj.Pos()
	if !pos.IsValid() || b.pkg.Fset == nil {
		return cir.Source{}
	}
	position := b.pkg.Fset.Position(pos)
	return cir.Source{
		File:   position.Filename,
		Line:   position.Line,
		Column: position.Column,
	}
}

func visibilityOf(obj types.Object) cir.Visibility {
	if obj.Exported() {
		return cir.VisibilityPublic
	}
	return cir.VisibilityInternal
}

// convertType converts a Go type to a CIR type reference.
func convertType(t types.Type) (cir.Type, error) {
	switch typ := t.(type) {
	case *types.Basic:
		if typ.Kind() == types.UnsafePointer {
			return cir.ClassRef("unsafe", "Pointer"), nil
		}
		return cir.ClassRef("", typ.Name()), nil

	case *types.Named:
		obj := typ.Obj()
		pkgPath := ""
		if obj.Pkg() != nil {
			pkgPath = obj.Pkg().Path()
		}
		args, err := convertTypeArgs(typ.TypeArgs())
		if err != nil {
			return nil, err
		}
		class := cir.ClassRef(pkgPath, obj.Name(), args...)
		class.Visibility = visibilityOf(obj)
		return class, nil

	case *types.Alias:
		obj := typ.Obj()
		if obj.Pkg() == nil {
			// Universe aliases (any, byte, rune) stand for their targets.
			return convertType(typ.Rhs())
		}
		rhs, err := convertType(typ.Rhs())
		if err != nil {
			return nil, err
		}
		underlying, ok := rhs.(cir.ClassOrTypeAliasType)
		if !ok {
			return nil, fmt.Errorf("%w: alias of type parameter %s", errUnsupportedType, rhs)
		}
		args, err := convertTypeArgs(typ.TypeArgs())
		if err != nil {
			return nil, err
		}
		return cir.AliasRef(obj.Pkg().Path(), obj.Name(), underlying, args...), nil

	case *types.Pointer:
		elem, err := convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return cir.WithNullability(elem, true), nil

	case *types.Slice:
		return builtin("slice", typ.Elem())

	case *types.Array:
		return builtin("array["+strconv.FormatInt(typ.Len(), 10)+"]", typ.Elem())

	case *types.Map:
		return builtin("map", typ.Key(), typ.Elem())

	case *types.Chan:
		name := "chan"
		switch typ.Dir() {
		case types.SendOnly:
			name = "chan<-"
		case types.RecvOnly:
			name = "<-chan"
		}
		return builtin(name, typ.Elem())

	case *types.Interface:
		if typ.Empty() {
			return cir.ClassRef("", "any"), nil
		}
		return nil, fmt.Errorf("%w: %s", errUnsupportedType, typ)

	case *types.TypeParam:
		return cir.TypeParam(typ.Index(), typ.Obj().Name()), nil

	case *types.Struct, *types.Signature, *types.Tuple, *types.Union:
		return nil, fmt.Errorf("%w: %s", errUnsupportedType, t)

	default:
		return nil, fmt.Errorf("%w: %T", errUnsupportedType, t)
	}
}

func builtin(name string, elems ...types.Type) (cir.Type, error) {
	args, err := projections(elems...)
	if err != nil {
		return nil, err
	}
	return cir.ClassRef("", name, args...), nil
}

func convertTypeArgs(list *types.TypeList) ([]cir.TypeProjection, error) {
	ts := make([]types.Type, list.Len())
	for i := range ts {
		ts[i] = list.At(i)
	}
	return projections(ts...)
}

func projections(ts ...types.Type) ([]cir.TypeProjection, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	out := make([]cir.TypeProjection, len(ts))
	for i, t := range ts {
		c, err := convertType(t)
		if err != nil {
			return nil, err
		}
		out[i] = cir.Arg(c)
	}
	return out, nil
}
