package pipeline

import (
	"context"
	"log/slog"

	"grapevine.app/firehose/internal/domain"
)

// Source is the feed the pipeline consumes. Run pushes each decoded
// event through emit and returns when the stream ends or ctx is
// cancelled; emit returning false means no receiver remains and the
// source must stop pulling.
type Source interface {
	Run(ctx context.Context, emit func(domain.Event) bool) error
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, emit func(domain.Event) bool) error

func (f SourceFunc) Run(ctx context.Context, emit func(domain.Event) bool) error {
	return f(ctx, emit)
}

// Bridge runs the source on its own goroutine and forwards every event
// into the arrival buffer. The buffer admits unboundedly, so the
// source is never blocked by a slow dispatch side. This is the only
// crossing between the feed's execution context and the pipeline.
type Bridge struct {
	source Source
	buffer *ArrivalBuffer
	logger *slog.Logger
}

func NewBridge(source Source, buffer *ArrivalBuffer, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{source: source, buffer: buffer, logger: logger}
}

// Run pulls from the source until it terminates or the buffer closes.
// A closed buffer means the pipeline shut down; that is a clean exit,
// not an error. A terminal source failure degrades to "no further
// events" rather than propagating as a pipeline fault.
func (b *Bridge) Run(ctx context.Context) {
	err := b.source.Run(ctx, b.buffer.Put)
	if err != nil && ctx.Err() == nil {
		b.logger.WarnContext(ctx, "feed terminated, no further events", "error", err)
		return
	}
	b.logger.InfoContext(ctx, "ingestion stopped")
}
