package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	"github.com/Temutjin2k/sitetrack/pkg/retry"
)

// alertQueue keeps the latest state of every alert awaiting a store write.
// Bursts coalesce per alert id instead of being dropped, so the final state
// of an alert always reaches the store.
type alertQueue struct {
	mu      sync.Mutex
	pending map[string]models.Alert
	order   []string
	ready   chan struct{}
}

func newAlertQueue() *alertQueue {
	return &alertQueue{
		pending: make(map[string]models.Alert),
		ready:   make(chan struct{}, 1),
	}
}

// put records a as the state to write. A resolved state is never replaced by
// an unresolved one.
func (q *alertQueue) put(a models.Alert) {
	q.mu.Lock()
	prev, ok := q.pending[a.ID]
	switch {
	case !ok:
		q.order = append(q.order, a.ID)
		q.pending[a.ID] = a
	case prev.IsResolved && !a.IsResolved:
	default:
		q.pending[a.ID] = a
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// restore requeues a failed write unless a newer state arrived meanwhile.
func (q *alertQueue) restore(a models.Alert) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[a.ID]; ok {
		return
	}
	q.order = append(q.order, a.ID)
	q.pending[a.ID] = a
}

// take removes and returns every pending alert in first-queued order.
func (q *alertQueue) take() []models.Alert {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return nil
	}
	out := make([]models.Alert, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.pending[id])
	}
	q.order = q.order[:0]
	clear(q.pending)
	return out
}

func (q *alertQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// alertStoreWriter upserts queued alert states. Failed writes stay queued and
// are retried on the next flush; only the final drain at shutdown gives up.
type alertStoreWriter struct {
	queue *alertQueue
	store AlertStore
	cfg   Config
	log   logger.Logger
}

func (w *alertStoreWriter) run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.queue.ready:
			w.flush(ctx, true)
		case <-ticker.C:
			w.flush(ctx, true)
		case <-ctx.Done():
			w.flush(ctx, false)
			return nil
		}
	}
}

func (w *alertStoreWriter) flush(ctx context.Context, requeue bool) {
	for _, a := range w.queue.take() {
		if err := w.write(ctx, a); err != nil {
			actx := wrap.WithAction(wrap.WithDriverID(ctx, a.DriverID), types.ActionPersistenceRetryExhausted)
			if requeue {
				w.queue.restore(a)
				w.log.Warn(actx, "alert write deferred", "alert_id", a.ID, "error", err.Error())
				continue
			}
			metrics.PipelineDroppedTotal.WithLabelValues("alerts").Inc()
			w.log.Error(actx, "failed to persist alert", err, "alert_id", a.ID)
		}
	}
}

func (w *alertStoreWriter) write(ctx context.Context, a models.Alert) error {
	ctx, cancel := writeContext(ctx, w.cfg)
	defer cancel()
	return retry.Do(ctx, w.cfg.Retry, func(ctx context.Context) error {
		return w.store.UpsertAlert(ctx, a)
	})
}
