// Package commonizer finds the declarations that several platform builds of
// a library share and synthesizes the shared form of each.
//
// A run loads one module per platform, lines up the declarations that every
// platform has, commonizes each group and writes a report:
//
//	cfg, err := config.Load("commonizer.toml", os.Environ(), nil)
//	if err != nil {
//		return err
//	}
//	res, err := commonizer.Run(ctx, cfg, commonizer.WithLogger(logger))
//
// Type aliases are commonized by short-circuiting to a standard anchor,
// lifting up the identical right-hand side, or replacing the alias with a
// placeholder class, in that order of preference. Other declaration kinds
// are reported as retained per platform.
package commonizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/classifiers"
	"github.com/broady/commonizer/config"
	"github.com/broady/commonizer/engine"
	"github.com/broady/commonizer/middleware"
	"github.com/broady/commonizer/provider"
	"github.com/broady/commonizer/report"
	"github.com/broady/commonizer/sink"
)

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger   *slog.Logger
	provider provider.Provider
	sink     sink.Sink
	dir      string
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = logger
	}
}

// WithProvider overrides the provider chosen from the configuration.
func WithProvider(p provider.Provider) Option {
	return func(o *runOptions) {
		o.provider = p
	}
}

// WithSink overrides the output destination. The default writes to
// cfg.OutDir.
func WithSink(s sink.Sink) Option {
	return func(o *runOptions) {
		o.sink = s
	}
}

// WithDir sets the directory Go packages are resolved from.
func WithDir(dir string) Option {
	return func(o *runOptions) {
		o.dir = dir
	}
}

// Result is the outcome of a run.
type Result struct {
	// Modules are the loaded platform modules, in platform order.
	Modules []*cir.Module

	// Outcomes holds one entry per group of a supported kind, commonized
	// or not, in group ID order.
	Outcomes []engine.Outcome

	// Unmatched are the declarations retained per platform without being
	// commonized.
	Unmatched []provider.Unmatched

	// Cache holds the classifier facts of the run.
	Cache *classifiers.Cache

	// Files are the rendered report files, as written to the sink.
	Files []sink.File
}

// Commonized returns the number of groups with a shared declaration.
func (r *Result) Commonized() int {
	n := 0
	for _, out := range r.Outcomes {
		if out.Commonized {
			n++
		}
	}
	return n
}

// Run loads every platform in cfg, commonizes the declarations they share
// and writes the report.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) (*Result, error) {
	o := runOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.provider == nil {
		o.provider = providerFor(cfg, o.dir)
	}
	if o.sink == nil {
		o.sink = sink.NewFilesystemSink(cfg.OutDir)
	}

	modules, err := provider.LoadAll(ctx, o.provider, cfg.ProviderPlatforms())
	if err != nil {
		return nil, fmt.Errorf("failed to load platforms: %w", err)
	}
	for _, m := range modules {
		for _, verr := range m.Validate() {
			o.logger.WarnContext(ctx, "module validation",
				slog.String("platform", m.Platform),
				slog.Any("error", verr),
			)
		}
		for _, w := range m.Warnings {
			o.logger.DebugContext(ctx, "declaration skipped",
				slog.String("platform", m.Platform),
				slog.String("code", w.Code),
				slog.String("declaration", w.Declaration),
				slog.String("message", w.Message),
			)
		}
	}

	cache, err := classifiers.New(
		classifiers.PrefixPredicate(cfg.StandardNamespaces...),
		classifiers.WithMemoSize(cfg.NamespaceMemoSize),
	)
	if err != nil {
		return nil, err
	}
	e := engine.New(cache,
		engine.WithLogger(o.logger),
		engine.WithConcurrency(cfg.Concurrency),
		engine.WithInterceptors(middleware.Logging(o.logger)),
	)

	groups, unmatched := provider.GroupDeclarations(modules)
	supported := groups[:0:0]
	for _, g := range groups {
		if !e.Supports(g.Kind) {
			unmatched = append(unmatched, provider.Unmatched{
				ID:        g.ID,
				Platforms: g.Platforms,
				Reason:    fmt.Sprintf("no commonizer for %s declarations", g.Kind),
			})
			continue
		}
		supported = append(supported, g)
	}
	o.logger.InfoContext(ctx, "commonization started",
		slog.Int("platforms", len(modules)),
		slog.Int("groups", len(supported)),
		slog.Int("unmatched", len(unmatched)),
	)

	outcomes, err := e.Run(ctx, supported)
	if err != nil {
		return nil, err
	}

	files, err := report.Render(report.Input{
		Platforms: cfg.PlatformNames(),
		Outcomes:  outcomes,
		Unmatched: unmatched,
		Modules:   modules,
	})
	if err != nil {
		return nil, err
	}
	if err := sink.WriteFiles(ctx, o.sink, files); err != nil {
		return nil, err
	}

	res := &Result{
		Modules:   modules,
		Outcomes:  outcomes,
		Unmatched: unmatched,
		Cache:     cache,
		Files:     files,
	}
	o.logger.InfoContext(ctx, "commonization finished",
		slog.Int("commonized", res.Commonized()),
		slog.Int("groups", len(outcomes)),
	)
	return res, nil
}

func providerFor(cfg *config.Config, dir string) provider.Provider {
	if cfg.UsesManifests() {
		return &provider.ManifestProvider{}
	}
	return &provider.SourceProvider{Packages: cfg.Packages, Dir: dir}
}
