package handler

import (
	"net/http"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
)

type (
	DashboardService interface {
		Snapshot() models.DashboardStats
	}

	Dashboard struct {
		service DashboardService
		l       logger.Logger
	}
)

func NewDashboard(service DashboardService, l logger.Logger) *Dashboard {
	return &Dashboard{service: service, l: l}
}

// Stats godoc
// @Summary      Dashboard statistics
// @Tags         stats
// @Produce      json
// @Success      200 {object} models.DashboardStats
// @Security     BearerAuth
// @Router       /api/stats/dashboard [get]
func (h *Dashboard) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "dashboard_stats")

	if err := writeJSON(w, http.StatusOK, h.service.Snapshot(), nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
