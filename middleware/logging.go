// Package middleware provides interceptors for the commonization engine.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/broady/commonizer/engine"
)

// Logging creates an interceptor that logs each group's commonization using
// slog. It logs the start and end of each group, including the strategy,
// duration and error status.
func Logging(logger *slog.Logger) engine.Interceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, group *engine.Group, next engine.Handler) (engine.Outcome, error) {
		start := time.Now()
		id := group.ID.String()

		logger.DebugContext(ctx, "group started",
			slog.String("group", id),
			slog.Int("variants", len(group.Variants)),
		)

		out, err := next(ctx, group)
		duration := time.Since(start)

		switch {
		case err != nil:
			logger.ErrorContext(ctx, "group failed",
				slog.String("group", id),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		case out.Commonized:
			logger.InfoContext(ctx, "group commonized",
				slog.String("group", id),
				slog.String("strategy", out.Strategy.String()),
				slog.Int("variants", len(group.Variants)),
				slog.Duration("duration", duration),
			)
		default:
			logger.InfoContext(ctx, "group not commonized",
				slog.String("group", id),
				slog.Int("variants", len(group.Variants)),
				slog.Duration("duration", duration),
			)
		}

		return out, err
	}
}
