package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Temutjin2k/sitetrack/config"
	"github.com/Temutjin2k/sitetrack/internal/adapter/http/handler"
	"github.com/Temutjin2k/sitetrack/internal/adapter/http/middleware"
	wshandler "github.com/Temutjin2k/sitetrack/internal/adapter/http/ws"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/sitetrack/pkg/wsHub"
)

const serverIPAddress = "%s:%s"

type (
	// Tracker is the ingestion side of the tracking service.
	Tracker interface {
		handler.LocationService
		handler.EmergencyReporter
	}

	// Dashboard serves both the stats snapshot and the active driver list.
	Dashboard interface {
		handler.DashboardService
		handler.ActiveDriverLister
	}

	// Services are the collaborators the HTTP surface is built on.
	// History and Auth may be nil.
	Services struct {
		Tracker    Tracker
		Dashboard  Dashboard
		Alerts     handler.AlertService
		Deliveries handler.DeliveryService
		Routes     handler.RouteService
		History    handler.HistoryReader
		Auth       middleware.Authenticator

		AdminHub  *ws.ConnectionHub
		DriverHub *ws.ConnectionHub

		HealthChecks []handler.HealthCheck
	}
)

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.HTTPConfig
	name string
	log  logger.Logger
}

type handlers struct {
	health    *handler.Health
	location  *handler.Location
	alert     *handler.Alert
	delivery  *handler.Delivery
	route     *handler.Route
	dashboard *handler.Dashboard

	adminFeed    *wshandler.AdminFeed
	driverSocket *wshandler.DriverSocket
}

func New(cfg config.Config, svc Services, log logger.Logger) (*API, error) {
	switch {
	case svc.Tracker == nil, svc.Dashboard == nil, svc.Alerts == nil, svc.Deliveries == nil, svc.Routes == nil:
		return nil, errors.New("tracker, dashboard, alerts, deliveries and routes are required")
	case svc.AdminHub == nil, svc.DriverHub == nil:
		return nil, errors.New("websocket hubs are required")
	}

	routes := &handlers{
		health:    handler.NewHealth(cfg.ServiceName, log, svc.HealthChecks...),
		location:  handler.NewLocation(svc.Tracker, svc.Dashboard, svc.History, log),
		alert:     handler.NewAlert(svc.Alerts, svc.Tracker, log),
		delivery:  handler.NewDelivery(svc.Deliveries, svc.Routes, log),
		route:     handler.NewRoute(svc.Routes, log),
		dashboard: handler.NewDashboard(svc.Dashboard, log),

		adminFeed:    wshandler.NewAdminFeed(svc.AdminHub, svc.DriverHub, svc.Dashboard, log),
		driverSocket: wshandler.NewDriverSocket(svc.DriverHub, svc.AdminHub, svc.Tracker, log),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      middleware.NewMiddleware(svc.Auth, log),
		addr:   fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.HTTP.Port),
		cfg:    cfg.HTTP,
		name:   cfg.ServiceName,
		log:    log,
	}

	setupRoutes(api.mux, api.routes, api.m)

	api.server = &http.Server{
		Addr:         api.addr,
		Handler:      api.withMiddleware(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return api, nil
}

// Handler returns the fully wrapped handler, for tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// Run starts serving in the background. Listen errors are sent to errCh.
func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux. Metrics wraps the mux
// directly so it sees the matched route pattern.
func (a *API) withMiddleware() http.Handler {
	cors := a.m.CORS(a.cfg.AllowedOrigins)
	return a.m.Recover(cors(a.m.RequestID(a.m.Logging(a.m.Auth(a.m.Metrics(a.name)(a.mux))))))
}
