package pipeline

import (
	"context"
	"log/slog"

	"grapevine.app/firehose/internal/domain"
)

// Router fans a drained batch out to every registered consumer. It
// performs no I/O: its only effect is mutating retention buffers, plus
// an update notification so read surfaces know to re-render.
type Router struct {
	registry *Registry
	notifier *Notifier
	logger   *slog.Logger
}

func NewRouter(registry *Registry, notifier *Notifier, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{registry: registry, notifier: notifier, logger: logger}
}

// Dispatch evaluates every event in the batch, in order, against the
// consumer set registered at call time. Consumers added afterwards are
// not retroactively fed this batch.
func (rt *Router) Dispatch(ctx context.Context, batch []domain.Event) {
	if len(batch) == 0 {
		return
	}

	delivered := rt.registry.fanOut(batch)
	if len(delivered) == 0 {
		return
	}

	rt.notifier.Publish(delivered)
	rt.logger.DebugContext(ctx, "dispatched batch",
		"events", len(batch),
		"consumers", len(delivered))
}
