package pipeline

import (
	"context"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	"github.com/Temutjin2k/sitetrack/pkg/retry"
	"golang.org/x/sync/errgroup"
)

type HistoryStore interface {
	InsertHistory(ctx context.Context, points []models.HistoryPoint) error
}

type StateStore interface {
	SavePositions(ctx context.Context, positions []models.LivePosition) error
}

type AlertStore interface {
	UpsertAlert(ctx context.Context, a models.Alert) error
}

type AlertPublisher interface {
	PublishAlert(ctx context.Context, ev models.AlertEvent) error
}

type DeliveryPublisher interface {
	PublishDeliveryStatus(ctx context.Context, ev models.DeliveryStatusEvent) error
}

type Broadcaster interface {
	Broadcast(ctx context.Context, msg any) int
}

// Sinks are the outputs of the pipeline. Nil or empty outputs are skipped.
type Sinks struct {
	History            HistoryStore
	State              StateStore
	Alerts             AlertStore
	AlertPublishers    []AlertPublisher
	DeliveryPublishers []DeliveryPublisher
	Feed               Broadcaster

	// Project rewrites live positions before they reach the feed.
	Project func(models.LivePosition) any
}

type Config struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	// Workers is the number of concurrent history writers.
	Workers int
	Retry   retry.Config
	// WriteTimeout bounds every write. Writes are detached from the run
	// context so that events buffered at shutdown still reach their sinks.
	WriteTimeout time.Duration
}

// Pipeline owns the dispatcher channels and the workers draining them.
type Pipeline struct {
	*Dispatcher

	cfg   Config
	sinks Sinks
	log   logger.Logger
}

func New(cfg Config, sinks Sinks, log logger.Logger) *Pipeline {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	d := &Dispatcher{}
	if sinks.History != nil {
		d.history = make(chan models.HistoryPoint, cfg.BufferSize)
	}
	if sinks.State != nil {
		d.state = make(chan models.LivePosition, cfg.BufferSize)
	}
	if sinks.Alerts != nil {
		d.alertStore = newAlertQueue()
	}
	if len(sinks.AlertPublishers) > 0 {
		d.alerts = make(chan models.AlertEvent, cfg.BufferSize)
	}
	if len(sinks.DeliveryPublishers) > 0 {
		d.deliveries = make(chan models.DeliveryStatusEvent, cfg.BufferSize)
	}
	if sinks.Feed != nil {
		d.feed = make(chan FeedMessage, cfg.BufferSize)
	}

	return &Pipeline{
		Dispatcher: d,
		cfg:        cfg,
		sinks:      sinks,
		log:        log,
	}
}

// Run starts one worker per configured output and blocks until ctx is done
// and every worker has drained its channel.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if p.history != nil {
		for range p.cfg.Workers {
			w := &batchWriter[models.HistoryPoint]{
				name: "history", ch: p.history, cfg: p.cfg, log: p.log,
				write: p.sinks.History.InsertHistory,
			}
			g.Go(func() error { return w.run(ctx) })
		}
	}
	if p.state != nil {
		w := &batchWriter[models.LivePosition]{
			name: "state", ch: p.state, cfg: p.cfg, log: p.log,
			write: p.sinks.State.SavePositions,
		}
		g.Go(func() error { return w.run(ctx) })
	}
	if p.alertStore != nil {
		w := &alertStoreWriter{queue: p.alertStore, store: p.sinks.Alerts, cfg: p.cfg, log: p.log}
		g.Go(func() error { return w.run(ctx) })
	}
	if p.alerts != nil {
		w := &alertWriter{publishers: p.sinks.AlertPublishers, log: p.log}
		g.Go(func() error { return drain(ctx, p.cfg, p.alerts, w.handle) })
	}
	if p.deliveries != nil {
		w := &deliveryWriter{publishers: p.sinks.DeliveryPublishers, log: p.log}
		g.Go(func() error { return drain(ctx, p.cfg, p.deliveries, w.handle) })
	}
	if p.feed != nil {
		w := &feedWriter{feed: p.sinks.Feed, project: p.sinks.Project}
		g.Go(func() error { return drain(ctx, p.cfg, p.feed, w.handle) })
	}

	return g.Wait()
}

// drain hands every event to handle until ctx is done, then empties what is
// still buffered.
func drain[T any](ctx context.Context, cfg Config, ch <-chan T, handle func(context.Context, T)) error {
	call := func(v T) {
		wctx, cancel := writeContext(ctx, cfg)
		defer cancel()
		handle(wctx, v)
	}

	for {
		select {
		case v := <-ch:
			call(v)
		case <-ctx.Done():
			for {
				select {
				case v := <-ch:
					call(v)
				default:
					return nil
				}
			}
		}
	}
}

func writeContext(ctx context.Context, cfg Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cfg.WriteTimeout)
}
