package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Temutjin2k/sitetrack/docs"
	"github.com/Temutjin2k/sitetrack/internal/adapter/http/middleware"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
)

const defaultShutdownTimeout = 5 * time.Second

var (
	anyone = []types.UserRole{types.DriverRole, types.AdminRole}
	admins = []types.UserRole{types.AdminRole}
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)

	setupSwaggerRoutes(mux)
	setupMetricsRoute(mux)

	setupLocationRoutes(mux, routes, m)
	setupAlertRoutes(mux, routes, m)
	setupDeliveryRoutes(mux, routes, m)
	setupRouteRoutes(mux, routes, m)
	setupWebSocketRoutes(mux, routes, m)
}

func setupLocationRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /api/location/update", m.RequireRoles(routes.location.Update, anyone...))                // Driver location ping
	mux.Handle("GET /api/location/active", m.RequireRoles(routes.location.Active, admins...))                 // Live positions
	mux.Handle("GET /api/location/history/{delivery_id}", m.RequireRoles(routes.location.History, admins...)) // Archived pings of a delivery
	mux.Handle("GET /api/stats/dashboard", m.RequireRoles(routes.dashboard.Stats, admins...))                 // Dashboard counters
}

func setupAlertRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("GET /api/alerts", m.RequireRoles(routes.alert.List, admins...))                 // List alerts
	mux.Handle("PUT /api/alerts/{id}/resolve", m.RequireRoles(routes.alert.Resolve, admins...)) // Resolve an alert
	mux.Handle("POST /api/alerts/emergency", m.RequireRoles(routes.alert.Emergency, anyone...)) // Driver emergency
}

func setupDeliveryRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /api/deliveries", m.RequireRoles(routes.delivery.Create, admins...))                  // Create a delivery
	mux.Handle("GET /api/deliveries", m.RequireRoles(routes.delivery.List, anyone...))                     // List deliveries
	mux.Handle("GET /api/deliveries/{id}", m.RequireRoles(routes.delivery.Get, anyone...))                 // Get a delivery
	mux.Handle("PUT /api/deliveries/{id}/status", m.RequireRoles(routes.delivery.UpdateStatus, anyone...)) // Lifecycle transition
	mux.Handle("POST /api/deliveries/{id}/assign", m.RequireRoles(routes.delivery.Assign, admins...))      // Bind a driver
	mux.Handle("POST /api/qr/scan", m.RequireRoles(routes.delivery.ScanQR, anyone...))                     // Driver binds self by QR code
}

func setupRouteRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("GET /api/routes", m.RequireRoles(routes.route.List, anyone...))
	mux.Handle("GET /api/routes/{id}", m.RequireRoles(routes.route.Get, anyone...))
}

func setupWebSocketRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("GET /ws/admin", m.RequireRoles(routes.adminFeed.Serve, admins...))                  // Admin live feed
	mux.Handle("GET /ws/drivers/{driver_id}", m.RequireRoles(routes.driverSocket.Serve, anyone...)) // Driver ping socket
}

// setupSwaggerRoutes configures the Swagger UI endpoint
func setupSwaggerRoutes(mux *http.ServeMux) {
	swaggerURL := httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName())
	mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
