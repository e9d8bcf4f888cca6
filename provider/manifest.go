package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/broady/commonizer/cir"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ManifestProvider loads declarations from per-platform YAML manifests, for
// libraries whose declarations are not Go source. The manifest path comes
// from Platform.Manifest.
//
//	module: acme/io
//	packages:
//	  - path: acme/io
//	    declarations:
//	      - kind: typealias
//	        name: Handle
//	        underlying: acme/io/linux.FileHandle
//	      - kind: class
//	        name: FileHandle
//	        visibility: internal
//
// Type expressions are written as `pkg.Name<Arg, out Arg, *>?`. A bare name
// refers to a type parameter of the enclosing declaration when one has that
// name, otherwise to a builtin. A reference to a type alias declared anywhere
// in the same manifest resolves to an alias reference; every other name is a
// class reference.
type ManifestProvider struct{}

// Load reads and converts the manifest of platform.
func (p *ManifestProvider) Load(ctx context.Context, platform Platform) (*cir.Module, error) {
	if platform.Manifest == "" {
		return nil, fmt.Errorf("platform %s has no manifest", platform.Name)
	}
	data, err := os.ReadFile(platform.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data, platform.Name, platform.Manifest)
}

type manifestFile struct {
	Platform string            `yaml:"platform"`
	Module   string            `yaml:"module"`
	Packages []manifestPackage `yaml:"packages" validate:"dive"`
}

type manifestPackage struct {
	Path         string                `yaml:"path" validate:"required"`
	Declarations []manifestDeclaration `yaml:"declarations" validate:"dive"`
}

type manifestDeclaration struct {
	Kind           string                  `yaml:"kind" validate:"required,oneof=typealias class"`
	Name           string                  `yaml:"name" validate:"required"`
	Visibility     string                  `yaml:"visibility" validate:"omitempty,oneof=public protected internal private"`
	TypeParameters []manifestTypeParameter `yaml:"type_parameters" validate:"dive"`
	Underlying     string                  `yaml:"underlying" validate:"required_if=Kind typealias"`
	Modality       string                  `yaml:"modality" validate:"omitempty,oneof=final open abstract sealed"`
	ClassKind      string                  `yaml:"class_kind" validate:"omitempty,oneof=class interface object enum"`

	line, column int
}

// UnmarshalYAML records where the declaration starts.
func (d *manifestDeclaration) UnmarshalYAML(node *yaml.Node) error {
	type plain manifestDeclaration
	if err := node.Decode((*plain)(d)); err != nil {
		return err
	}
	d.line, d.column = node.Line, node.Column
	return nil
}

type manifestTypeParameter struct {
	Name     string   `yaml:"name" validate:"required"`
	Variance string   `yaml:"variance" validate:"omitempty,oneof=in out invariant"`
	Reified  bool     `yaml:"reified"`
	Bounds   []string `yaml:"bounds"`
}

// ParseManifest converts manifest data into a module for platform. When
// platform is empty the manifest's own platform field is used. file is only
// used for source locations and messages.
//
// Declarations whose types cannot be resolved are skipped with a warning;
// malformed YAML and schema violations are errors.
func ParseManifest(data []byte, platform, file string) (*cir.Module, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest %s is empty", file)
		}
		return nil, fmt.Errorf("failed to parse manifest %s: %w", file, err)
	}
	if err := validate.Struct(&raw); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", file, err)
	}

	if platform == "" {
		platform = raw.Platform
	}
	module := &cir.Module{Platform: platform, Name: raw.Module}
	r := newResolver(&raw, file)
	for _, pkg := range raw.Packages {
		for i := range pkg.Declarations {
			md := &pkg.Declarations[i]
			id := cir.ClassifierID{Package: pkg.Path, Name: md.Name}
			decl, err := r.declaration(id, md)
			if err != nil {
				src := r.source(md)
				module.AddWarning(cir.Warning{
					Code:        "unresolved_declaration",
					Message:     fmt.Sprintf("%s skipped: %v", id, err),
					Source:      &src,
					Declaration: md.Name,
				})
				continue
			}
			module.Add(pkg.Path, decl)
		}
	}
	return module, nil
}

// resolver turns manifest declarations into CIR, resolving alias
// references across the whole manifest.
type resolver struct {
	file    string
	decls   map[cir.ClassifierID]*manifestDeclaration
	aliases map[cir.ClassifierID]*aliasState
}

type aliasState struct {
	resolving bool
	alias     *cir.TypeAlias
	err       error
}

func newResolver(m *manifestFile, file string) *resolver {
	r := &resolver{
		file:    file,
		decls:   make(map[cir.ClassifierID]*manifestDeclaration),
		aliases: make(map[cir.ClassifierID]*aliasState),
	}
	for _, pkg := range m.Packages {
		for i := range pkg.Declarations {
			md := &pkg.Declarations[i]
			id := cir.ClassifierID{Package: pkg.Path, Name: md.Name}
			if _, dup := r.decls[id]; !dup {
				r.decls[id] = md
			}
		}
	}
	return r
}

func (r *resolver) source(md *manifestDeclaration) cir.Source {
	return cir.Source{File: r.file, Line: md.line, Column: md.column}
}

func (r *resolver) declaration(id cir.ClassifierID, md *manifestDeclaration) (cir.Declaration, error) {
	visibility, _ := cir.ParseVisibility(md.Visibility)
	names := paramNames(md.TypeParameters)

	switch md.Kind {
	case cir.DeclTypeAlias.String():
		if r.decls[id] != md {
			// A duplicate keeps its own right-hand side.
			return r.buildAlias(id, md)
		}
		return r.alias(id)

	default:
		params, err := r.typeParameters(md.TypeParameters, names)
		if err != nil {
			return nil, err
		}
		modality, _ := cir.ParseModality(md.Modality)
		kind, _ := cir.ParseClassKind(md.ClassKind)
		return &cir.Class{
			Name:           md.Name,
			TypeParameters: params,
			Visibility:     visibility,
			Modality:       modality,
			ClassKind:      kind,
			Source:         r.source(md),
		}, nil
	}
}

// alias returns the resolved declaration of the alias id. Resolution is
// memoized and cycles are reported as cir.ErrAliasCycle.
func (r *resolver) alias(id cir.ClassifierID) (*cir.TypeAlias, error) {
	if st, ok := r.aliases[id]; ok {
		if st.resolving {
			return nil, fmt.Errorf("%s: %w", id, cir.ErrAliasCycle)
		}
		return st.alias, st.err
	}
	st := &aliasState{resolving: true}
	r.aliases[id] = st
	st.alias, st.err = r.buildAlias(id, r.decls[id])
	st.resolving = false
	return st.alias, st.err
}

func (r *resolver) buildAlias(id cir.ClassifierID, md *manifestDeclaration) (*cir.TypeAlias, error) {
	names := paramNames(md.TypeParameters)
	params, err := r.typeParameters(md.TypeParameters, names)
	if err != nil {
		return nil, err
	}
	expr, err := parseTypeExpr(md.Underlying)
	if err != nil {
		return nil, err
	}
	t, err := r.resolve(expr, names)
	if err != nil {
		return nil, err
	}
	underlying, ok := t.(cir.ClassOrTypeAliasType)
	if !ok {
		return nil, fmt.Errorf("alias %s cannot stand for type parameter %s", id, t)
	}
	visibility, _ := cir.ParseVisibility(md.Visibility)
	return &cir.TypeAlias{
		Name:           md.Name,
		TypeParameters: params,
		Visibility:     visibility,
		Underlying:     underlying,
		Source:         r.source(md),
	}, nil
}

func (r *resolver) typeParameters(mps []manifestTypeParameter, names []string) ([]cir.TypeParameter, error) {
	if len(mps) == 0 {
		return nil, nil
	}
	params := make([]cir.TypeParameter, len(mps))
	for i, mp := range mps {
		variance, _ := cir.ParseVariance(mp.Variance)
		params[i] = cir.TypeParameter{Name: mp.Name, Variance: variance, Reified: mp.Reified}
		for _, b := range mp.Bounds {
			expr, err := parseTypeExpr(b)
			if err != nil {
				return nil, err
			}
			t, err := r.resolve(expr, names)
			if err != nil {
				return nil, err
			}
			params[i].UpperBounds = append(params[i].UpperBounds, t)
		}
	}
	return params, nil
}

// resolve converts a parsed expression. names are the type parameters in
// scope.
func (r *resolver) resolve(e *typeExpr, names []string) (cir.Type, error) {
	if !strings.Contains(e.name, ".") {
		for i, n := range names {
			if n == e.name {
				if len(e.args) > 0 {
					return nil, fmt.Errorf("type parameter %s cannot take arguments", n)
				}
				tp := cir.TypeParam(i, n)
				tp.Nullable = e.nullable
				return tp, nil
			}
		}
	}

	id := splitName(e.name)
	args := make([]cir.TypeProjection, len(e.args))
	for i, a := range e.args {
		if a.star {
			args[i] = cir.Star()
			continue
		}
		t, err := r.resolve(a.typ, names)
		if err != nil {
			return nil, err
		}
		variance, _ := cir.ParseVariance(a.variance)
		args[i] = cir.TypeProjection{Variance: variance, Type: t}
	}
	if len(args) == 0 {
		args = nil
	}

	md, declared := r.decls[id]
	if declared && md.Kind == cir.DeclTypeAlias.String() {
		target, err := r.alias(id)
		if err != nil {
			return nil, err
		}
		if len(args) != len(target.TypeParameters) {
			return nil, fmt.Errorf("%s takes %d type arguments, got %d", id, len(target.TypeParameters), len(args))
		}
		underlying, ok := cir.Substitute(target.Underlying, args).(cir.ClassOrTypeAliasType)
		if !ok {
			return nil, fmt.Errorf("alias %s does not expand to a class", id)
		}
		return &cir.TypeAliasType{
			ID:         id,
			Underlying: underlying,
			Arguments:  args,
			Nullable:   e.nullable,
		}, nil
	}

	class := cir.ClassRef(id.Package, id.Name, args...)
	class.Nullable = e.nullable
	if declared {
		class.Visibility, _ = cir.ParseVisibility(md.Visibility)
	}
	return class, nil
}

func splitName(name string) cir.ClassifierID {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return cir.ClassifierID{Name: name}
	}
	return cir.ClassifierID{Package: name[:i], Name: name[i+1:]}
}

func paramNames(mps []manifestTypeParameter) []string {
	names := make([]string, len(mps))
	for i, mp := range mps {
		names[i] = mp.Name
	}
	return names
}
