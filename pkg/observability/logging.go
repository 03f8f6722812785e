package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/canopy/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_start",
				"run", e.RunID,
				"node", e.Node,
				"kind", e.Kind,
			)
		},
		OnNodeTerminate: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_terminate",
				"run", e.RunID,
				"node", e.Node,
				"kind", e.Kind,
				"status", e.Status,
			)
		},
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			logger.DebugContext(ctx, "tick",
				"run", e.RunID,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
	}
}
