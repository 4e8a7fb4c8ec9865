package handler

import (
	"net/http"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
)

type (
	RouteService interface {
		Get(id string) (models.Route, error)
		List() []models.Route
	}

	Route struct {
		routes RouteService
		l      logger.Logger
	}
)

func NewRoute(routes RouteService, l logger.Logger) *Route {
	return &Route{routes: routes, l: l}
}

// List godoc
// @Summary      List routes
// @Tags         routes
// @Produce      json
// @Success      200 {array} models.Route
// @Security     BearerAuth
// @Router       /api/routes [get]
func (h *Route) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_routes")

	routes := h.routes.List()
	if routes == nil {
		routes = []models.Route{}
	}

	if err := writeJSON(w, http.StatusOK, routes, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Get godoc
// @Summary      Get a route
// @Description  Waypoints, destination and danger zones for map rendering
// @Tags         routes
// @Produce      json
// @Param        id path string true "Route ID"
// @Success      200 {object} models.Route
// @Failure      404 {object} map[string]interface{} "Route not found"
// @Security     BearerAuth
// @Router       /api/routes/{id} [get]
func (h *Route) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_route")

	route, err := h.routes.Get(r.PathValue("id"))
	if err != nil {
		logServiceError(ctx, h.l, "failed to get route", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, route, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
