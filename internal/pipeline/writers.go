package pipeline

import (
	"context"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	"github.com/Temutjin2k/sitetrack/pkg/retry"
)

// batchWriter collects items and flushes them when the batch is full or the
// flush interval elapses.
type batchWriter[T any] struct {
	name  string
	ch    <-chan T
	cfg   Config
	log   logger.Logger
	write func(ctx context.Context, batch []T) error
}

func (w *batchWriter[T]) run(ctx context.Context) error {
	batch := make([]T, 0, w.cfg.BatchSize)
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case v := <-w.ch:
			batch = append(batch, v)
			if len(batch) >= w.cfg.BatchSize {
				w.flush(ctx, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(ctx, batch)
				batch = batch[:0]
			}

		case <-ctx.Done():
			for {
				select {
				case v := <-w.ch:
					batch = append(batch, v)
					if len(batch) >= w.cfg.BatchSize {
						w.flush(ctx, batch)
						batch = batch[:0]
					}
				default:
					if len(batch) > 0 {
						w.flush(ctx, batch)
					}
					return nil
				}
			}
		}
	}
}

func (w *batchWriter[T]) flush(ctx context.Context, batch []T) {
	ctx, cancel := writeContext(ctx, w.cfg)
	defer cancel()
	ctx = wrap.WithAction(ctx, types.ActionPipelineFlush)
	metrics.PipelineBatchSize.WithLabelValues(w.name).Observe(float64(len(batch)))

	err := retry.Do(ctx, w.cfg.Retry, func(ctx context.Context) error {
		return w.write(ctx, batch)
	})
	if err != nil {
		metrics.PipelineDroppedTotal.WithLabelValues(w.name).Add(float64(len(batch)))
		w.log.Error(wrap.WithAction(ctx, types.ActionPersistenceRetryExhausted), "batch write failed", err,
			"writer", w.name, "batch", len(batch))
		return
	}
	w.log.Debug(ctx, "batch written", "writer", w.name, "batch", len(batch))
}

// alertWriter forwards alert events to the publishers. Persistence goes
// through alertStoreWriter.
type alertWriter struct {
	publishers []AlertPublisher
	log        logger.Logger
}

func (w *alertWriter) handle(ctx context.Context, ev models.AlertEvent) {
	ctx = wrap.WithDriverID(ctx, ev.Alert.DriverID)
	for _, p := range w.publishers {
		if err := p.PublishAlert(ctx, ev); err != nil {
			w.log.Warn(wrap.WithAction(ctx, types.ActionPublishFailed), "failed to publish alert event",
				"alert_id", ev.Alert.ID, "kind", ev.Kind, "error", err.Error())
		}
	}
}

type deliveryWriter struct {
	publishers []DeliveryPublisher
	log        logger.Logger
}

func (w *deliveryWriter) handle(ctx context.Context, ev models.DeliveryStatusEvent) {
	ctx = wrap.WithDeliveryID(ctx, ev.DeliveryID)
	for _, p := range w.publishers {
		if err := p.PublishDeliveryStatus(ctx, ev); err != nil {
			w.log.Warn(wrap.WithAction(ctx, types.ActionPublishFailed), "failed to publish delivery status",
				"to", ev.To, "error", err.Error())
		}
	}
}

type feedWriter struct {
	feed    Broadcaster
	project func(models.LivePosition) any
}

func (w *feedWriter) handle(ctx context.Context, msg FeedMessage) {
	if pos, ok := msg.Data.(models.LivePosition); ok && w.project != nil {
		msg.Data = w.project(pos)
	}
	w.feed.Broadcast(ctx, msg)
}
