package engine

import "context"

// Handler commonizes one group. It is passed to [Interceptor] functions to
// invoke the next interceptor or the final commonization.
type Handler func(ctx context.Context, group *Group) (Outcome, error)

// Interceptor wraps the commonization of each group.
//
//	func timing(ctx context.Context, g *engine.Group, next engine.Handler) (engine.Outcome, error) {
//	    start := time.Now()
//	    out, err := next(ctx, g)
//	    log.Printf("%s took %v", g.ID, time.Since(start))
//	    return out, err
//	}
//
// Interceptors can inspect the group before calling next, inspect or replace
// the outcome after it, or return an error without calling next. The outcome
// an interceptor returns is what the engine registers in the cache.
type Interceptor func(ctx context.Context, group *Group, next Handler) (Outcome, error)

// chainInterceptors combines multiple interceptors into a single one.
// The first interceptor in the slice is the outer-most one (runs first).
func chainInterceptors(interceptors []Interceptor) Interceptor {
	if len(interceptors) == 0 {
		return nil
	}
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	return func(ctx context.Context, group *Group, handler Handler) (Outcome, error) {
		// Chain: i[0] -> i[1] -> ... -> handler
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			current := interceptors[i]
			next := chain
			chain = func(ctx context.Context, group *Group) (Outcome, error) {
				return current(ctx, group, next)
			}
		}
		return chain(ctx, group)
	}
}
