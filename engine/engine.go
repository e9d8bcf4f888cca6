// Package engine drives commonization over groups of per-platform
// declarations. It picks the commonizer for each group's kind, feeds it the
// variants in canonical order and records every result in the classifier
// cache, so later groups can tell which classifiers shared code may name.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/classifiers"
)

// DefaultConcurrency bounds the groups commonized in parallel by Run.
const DefaultConcurrency = 8

// Engine commonizes groups against a shared classifier cache.
type Engine struct {
	cache        *classifiers.Cache
	logger       *slog.Logger
	concurrency  int
	interceptors []Interceptor

	mu        sync.RWMutex
	factories map[cir.DeclarationKind]Factory
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConcurrency bounds the groups commonized in parallel within a wave.
// Values below 1 leave the default in place.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithInterceptors appends interceptors. The first one is the outer-most.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(e *Engine) {
		e.interceptors = append(e.interceptors, interceptors...)
	}
}

// New returns an Engine that records results in cache. Type aliases are
// supported out of the box; see Register for other kinds.
func New(cache *classifiers.Cache, opts ...Option) *Engine {
	e := &Engine{
		cache:       cache,
		logger:      slog.Default(),
		concurrency: DefaultConcurrency,
		factories:   defaultFactories(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache returns the engine's classifier cache.
func (e *Engine) Cache() *classifiers.Cache {
	return e.cache
}

// Register installs the commonizer factory for kind, replacing any
// previous one.
func (e *Engine) Register(kind cir.DeclarationKind, factory Factory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.factories[kind] = factory
}

// Supports reports whether a commonizer is registered for kind.
func (e *Engine) Supports(kind cir.DeclarationKind) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.factories[kind]
	return ok
}

// Commonize merges the variants of group and records the outcome in the
// cache. Errors are returned only for malformed groups and cancellation;
// an absent shared form is a normal outcome with Commonized set to false.
func (e *Engine) Commonize(ctx context.Context, group *Group) (Outcome, error) {
	out, err := e.commonize(ctx, group)
	if err != nil {
		return out, err
	}
	e.record(out)
	return out, nil
}

// Run commonizes groups in dependency waves: a group runs after the groups
// it references, so their cache entries are in place when its references
// are checked. Groups within a wave run in parallel and their results are
// recorded once the whole wave is done, in group ID order.
//
// A malformed group does not stop the run; its error is stored in
// Outcome.Err. Run returns an error only when ctx is cancelled. Outcomes are
// returned in input order.
func (e *Engine) Run(ctx context.Context, groups []*Group) ([]Outcome, error) {
	outcomes := make([]Outcome, len(groups))
	waves := schedule(groups)

	for n, wave := range waves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.logger.DebugContext(ctx, "wave scheduled",
			slog.Int("wave", n),
			slog.Int("groups", len(wave)),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for _, i := range wave {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out, err := e.commonize(gctx, groups[i])
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					e.logger.WarnContext(gctx, "group rejected", slog.Any("error", err))
					out = Outcome{Err: err}
					if g := groups[i]; g != nil {
						out.ID, out.Kind, out.Platforms = g.ID, g.Kind, g.Platforms
					}
				}
				outcomes[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, i := range wave {
			e.record(outcomes[i])
		}
	}
	return outcomes, nil
}

func (e *Engine) commonize(ctx context.Context, group *Group) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if group == nil {
		return Outcome{}, fmt.Errorf("nil group: %w", ErrEmptyGroup)
	}
	if chain := chainInterceptors(e.interceptors); chain != nil {
		return chain(ctx, group, e.handle)
	}
	return e.handle(ctx, group)
}

// handle is the final handler of the interceptor chain.
func (e *Engine) handle(ctx context.Context, group *Group) (Outcome, error) {
	if err := group.Validate(); err != nil {
		return Outcome{}, err
	}

	e.mu.RLock()
	factory, ok := e.factories[group.Kind]
	e.mu.RUnlock()
	if !ok {
		return Outcome{}, fmt.Errorf("%s: %s: %w", group.ID, group.Kind, ErrUnsupportedKind)
	}

	c := factory(e.cache)
	for _, v := range group.Variants {
		if !c.CommonizeWith(v) {
			break
		}
	}

	decl, strategy, ok := c.ResultWithStrategy()
	return Outcome{
		ID:          group.ID,
		Kind:        group.Kind,
		Declaration: decl,
		Strategy:    strategy,
		Commonized:  ok,
		Platforms:   group.Platforms,
	}, nil
}

// record stores the outcome in the cache. Outcomes without a shared form,
// including malformed groups, are marked so later references to them fail.
// Groups of an unsupported kind are left unknown.
func (e *Engine) record(out Outcome) {
	if out.ID.IsZero() || errors.Is(out.Err, ErrUnsupportedKind) {
		return
	}
	if out.Commonized && out.Declaration != nil {
		e.cache.Register(out.ID, out.Declaration, out.Strategy)
		return
	}
	e.cache.MarkUncommonized(out.ID)
}
