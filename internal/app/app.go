package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Temutjin2k/sitetrack/config"
	"github.com/Temutjin2k/sitetrack/internal/adapter/http/server"
	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/internal/pipeline"
	"github.com/Temutjin2k/sitetrack/internal/service/alert"
	"github.com/Temutjin2k/sitetrack/internal/service/auth"
	"github.com/Temutjin2k/sitetrack/internal/service/dashboard"
	"github.com/Temutjin2k/sitetrack/internal/service/delivery"
	"github.com/Temutjin2k/sitetrack/internal/service/geofence"
	"github.com/Temutjin2k/sitetrack/internal/service/route"
	"github.com/Temutjin2k/sitetrack/internal/service/tracking"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	"github.com/Temutjin2k/sitetrack/pkg/retry"
	ws "github.com/Temutjin2k/sitetrack/pkg/wsHub"
)

type App struct {
	infra    *infra
	pipeline *pipeline.Pipeline
	tracker  *tracking.Service
	api      *server.API

	adminHub  *ws.ConnectionHub
	driverHub *ws.ConnectionHub

	cfg config.Config
	log logger.Logger
}

// NewApplication connects the enabled backends, restores persisted state and
// wires the engine behind the HTTP server.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	ctx = wrap.WithAction(ctx, "app_init")

	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	app, err := build(ctx, cfg, in, log)
	if err != nil {
		in.close(ctx, log)
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, cfg config.Config, in *infra, log logger.Logger) (*App, error) {
	adminHub := ws.NewConnHub("admins", log)
	driverHub := ws.NewConnHub("drivers", log)
	for _, h := range []*ws.ConnectionHub{adminHub, driverHub} {
		gauge := metrics.WebSocketConnectionsGauge.WithLabelValues(h.Name())
		h.OnChange(func(n int) { gauge.Set(float64(n)) })
	}

	rc := retry.Config{
		Attempts: cfg.Persistence.RetryAttempts,
		Initial:  cfg.Persistence.RetryInitial,
		Max:      cfg.Persistence.RetryMax,
	}

	// The feed projects positions through the dashboard, which is built
	// after the pipeline it depends on.
	var dash *dashboard.Aggregator
	sinks := pipeline.Sinks{
		Feed:    adminHub,
		Project: func(p models.LivePosition) any { return dash.ActiveDriver(p) },
	}
	if in.history != nil {
		sinks.History = in.history
	}
	if in.alerts != nil {
		sinks.Alerts = in.alerts
	}
	if in.liveState != nil {
		sinks.State = in.liveState
		sinks.AlertPublishers = append(sinks.AlertPublishers, in.liveState)
	}
	if in.producer != nil {
		sinks.AlertPublishers = append(sinks.AlertPublishers, in.producer)
		sinks.DeliveryPublishers = append(sinks.DeliveryPublishers, in.producer)
	}
	pipe := pipeline.New(pipeline.Config{
		BufferSize:    cfg.Pipeline.BufferSize,
		BatchSize:     cfg.Pipeline.BatchSize,
		FlushInterval: cfg.Pipeline.FlushInterval,
		Workers:       cfg.Pipeline.Workers,
		Retry:         rc,
		WriteTimeout:  cfg.Persistence.Timeout,
	}, sinks, log)

	var routeRepo route.Repository
	if in.routes != nil {
		routeRepo = in.routes
	}
	routes, err := route.Load(ctx, routeRepo, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}

	deliveryOpts := []delivery.Option{delivery.WithPublisher(pipe)}
	if in.deliveries != nil {
		deliveryOpts = append(deliveryOpts,
			delivery.WithRepository(in.deliveries, rc),
			delivery.WithTimeout(cfg.Persistence.Timeout),
		)
	}
	deliveries := delivery.New(routes, log, deliveryOpts...)
	n, err := deliveries.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore deliveries: %w", err)
	}
	if n > 0 {
		log.Info(ctx, "deliveries restored", "count", n)
	}

	alerts := alert.NewManager(alert.Config{
		Cooldown: cfg.Alerts.Cooldown,
		Stripes:  cfg.Alerts.Stripes,
	}, log, alert.WithSink(pipe))
	if in.alerts != nil {
		open, err := in.alerts.ListUnresolved(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to restore alerts: %w", err)
		}
		log.Info(ctx, "alerts restored", "count", alerts.Restore(open))
	}

	eval := geofence.New(geofence.Config{
		DeviationThreshold: cfg.Geofence.DeviationThreshold,
		SpeedLimit:         cfg.Geofence.SpeedLimit,
		HighSpeedFactor:    cfg.Geofence.HighSpeedFactor,
		SpeedSource:        types.SpeedSource(cfg.Geofence.SpeedSource),
	})

	tracker := tracking.New(tracking.Config{
		StaleTimeout:    cfg.Tracking.StaleTimeout,
		SweepInterval:   cfg.Tracking.SweepInterval,
		ActiveDriverTTL: cfg.Tracking.ActiveDriverTTL,
	}, tracking.NewLiveStore(cfg.Tracking.Shards, cfg.Tracking.HistoryWindow),
		deliveries, routes, alerts, eval, log, tracking.WithSink(pipe))

	dash = dashboard.New(tracker, deliveries, alerts, routes)

	svc := server.Services{
		Tracker:    tracker,
		Dashboard:  dash,
		Alerts:     alerts,
		Deliveries: deliveries,
		Routes:     routes,
		AdminHub:   adminHub,
		DriverHub:  driverHub,

		HealthChecks: in.healthChecks(),
	}
	if in.history != nil {
		svc.History = in.history
	}
	if cfg.Auth.Enabled {
		svc.Auth = auth.NewVerifier(cfg.Auth.JWTSecret)
	}

	api, err := server.New(cfg, svc, log)
	if err != nil {
		return nil, fmt.Errorf("failed to setup http server: %w", err)
	}

	return &App{
		infra:     in,
		pipeline:  pipe,
		tracker:   tracker,
		api:       api,
		adminHub:  adminHub,
		driverHub: driverHub,
		cfg:       cfg,
		log:       log,
	}, nil
}

// Run serves until ctx is cancelled, a signal arrives or a component fails,
// then shuts down: HTTP first, then the engine workers, then the pipeline
// drain, then the backends.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = wrap.WithAction(ctx, "app_run")

	errCh := make(chan error, 1)
	a.api.Run(ctx, errCh)

	flushCtx, stopPipeline := context.WithCancel(context.WithoutCancel(ctx))
	defer stopPipeline()
	var flush errgroup.Group
	flush.Go(func() error { return a.pipeline.Run(flushCtx) })

	engineCtx, stopEngine := context.WithCancel(context.WithoutCancel(ctx))
	defer stopEngine()
	engine, engineCtx := errgroup.WithContext(engineCtx)
	engine.Go(func() error { return a.tracker.RunSweeper(engineCtx) })
	if a.infra.consumer != nil {
		engine.Go(func() error { return a.infra.consumer.Run(engineCtx, a.ingest) })
	}

	a.log.Info(ctx, "sitetrack started",
		"database", a.infra.db != nil,
		"redis", a.infra.redis != nil,
		"rabbitmq", a.infra.mq != nil,
		"auth", a.cfg.Auth.Enabled,
	)

	var runErr error
	select {
	case runErr = <-errCh:
	case <-engineCtx.Done():
	case <-ctx.Done():
		a.log.Info(ctx, "shutting down application")
	}

	if err := a.api.Stop(ctx); err != nil {
		a.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
	}
	a.adminHub.Close()
	a.driverHub.Close()

	stopEngine()
	if err := engine.Wait(); err != nil && runErr == nil {
		runErr = fmt.Errorf("engine worker failed: %w", err)
	}

	stopPipeline()
	if err := flush.Wait(); err != nil {
		a.log.Warn(ctx, "pipeline drain failed", "error", err.Error())
	}

	a.infra.close(context.WithoutCancel(ctx), a.log)
	a.log.Info(ctx, "sitetrack stopped")
	return runErr
}

// ingest adapts the tracker to the location consumer. Rejected pings are
// acknowledged: redelivery cannot make them valid.
func (a *App) ingest(ctx context.Context, ping models.LocationPing) error {
	res := a.tracker.Ingest(ctx, ping)
	if !res.Accepted {
		a.log.Debug(ctx, "queued location dropped", "reason", string(res.Reason))
	}
	return nil
}
