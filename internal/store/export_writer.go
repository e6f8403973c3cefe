package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/metrics"
)

// RunExportWriter reads export events from the channel and persists them.
// On context cancellation it drains remaining events before returning.
func RunExportWriter(ctx context.Context, ch <-chan ExportEvent, es *ExportStore, logger *zap.Logger) {
	// Writes outlive ctx: select may pick a queued event after cancellation.
	writeCtx := context.WithoutCancel(ctx)
	record := func(e ExportEvent) {
		if _, err := es.Record(writeCtx, e); err != nil {
			metrics.ExportsRecordErrorsTotal.Inc()
			logger.Error("export write failed", zap.String("session", e.SessionKey), zap.Error(err))
			return
		}
		metrics.ExportsRecordedTotal.Inc()
	}

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			record(e)
		case <-ctx.Done():
			// Drain remaining events.
			for {
				select {
				case e, ok := <-ch:
					if !ok {
						return
					}
					record(e)
				default:
					return
				}
			}
		}
	}
}

// Enqueue hands e to the writer without blocking. It reports false and
// counts a drop when the queue is full or ch is nil.
func Enqueue(ch chan<- ExportEvent, e ExportEvent) bool {
	if ch == nil {
		return false
	}
	select {
	case ch <- e:
		return true
	default:
		metrics.ExportsDroppedTotal.Inc()
		return false
	}
}
