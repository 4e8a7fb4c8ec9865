package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one backend. A nil error means it is reachable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Health struct {
	serviceName string
	started     time.Time
	checks      []HealthCheck
	log         logger.Logger
}

func NewHealth(serviceName string, log logger.Logger, checks ...HealthCheck) *Health {
	return &Health{
		serviceName: serviceName,
		started:     time.Now(),
		checks:      checks,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the service status and the state of every enabled backend
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	status, code := "available", http.StatusOK
	components := make(map[string]string, len(a.checks))
	for _, c := range a.checks {
		if err := a.probe(ctx, c); err != nil {
			a.log.Warn(ctx, "health check failed", "component", c.Name, "error", err.Error())
			components[c.Name] = "unavailable"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		components[c.Name] = "ok"
	}

	response := envelope{
		"status":     status,
		"components": components,
		"system_info": map[string]string{
			"service-name": a.serviceName,
			"uptime":       time.Since(a.started).Truncate(time.Second).String(),
		},
	}

	if err := writeJSON(w, code, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}

func (a *Health) probe(ctx context.Context, c HealthCheck) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return c.Check(ctx)
}
