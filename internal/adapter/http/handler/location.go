package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/sitetrack/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/internal/service/tracking"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/validator"
)

type (
	LocationService interface {
		Ingest(ctx context.Context, p models.LocationPing) tracking.IngestResult
	}

	ActiveDriverLister interface {
		ListActiveDrivers() []models.ActiveDriver
	}

	HistoryReader interface {
		ListByDelivery(ctx context.Context, deliveryID string, limit int) ([]models.HistoryPoint, error)
	}

	Location struct {
		service LocationService
		drivers ActiveDriverLister
		history HistoryReader // nil without a database
		l       logger.Logger
	}
)

const maxHistoryPoints = 1000

func NewLocation(service LocationService, drivers ActiveDriverLister, history HistoryReader, l logger.Logger) *Location {
	return &Location{
		service: service,
		drivers: drivers,
		history: history,
		l:       l,
	}
}

// Update godoc
// @Summary      Report driver location
// @Description  Ingests a location ping. Stale or out-of-range pings are dropped and still answered with 200.
// @Tags         location
// @Accept       json
// @Produce      json
// @Param        request body dto.LocationUpdateReq true "Location ping"
// @Success      200 {object} dto.LocationUpdateResp
// @Failure      400 {object} map[string]interface{} "Bad request"
// @Failure      403 {object} map[string]interface{} "Posting for another driver"
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Security     BearerAuth
// @Router       /api/location/update [post]
func (h *Location) Update(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "location_update")

	var req dto.LocationUpdateReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Debug(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	if req.Validate(v); !v.Valid() {
		h.l.Debug(ctx, "invalid request data", "errors", v.Errors)
		failedValidationResponse(w, v.Errors)
		return
	}

	actor := models.ActorFromContext(ctx)
	if !actor.IsAdmin() && actor.ID != req.DriverID {
		h.l.Warn(ctx, "driver posted a ping for another driver", "driver_id", req.DriverID)
		serviceErrorResponse(w, types.ErrNotAssignedDriver)
		return
	}

	res := h.service.Ingest(ctx, req.ToModel())

	resp := dto.LocationUpdateResp{
		Success:  true,
		Accepted: res.Accepted,
		Reason:   string(res.Reason),
		Alerts:   res.Alerts,
	}
	if resp.Alerts == nil {
		resp.Alerts = []models.Alert{}
	}

	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Active godoc
// @Summary      List active drivers
// @Description  Live positions received within the active window, joined with delivery and route names
// @Tags         location
// @Produce      json
// @Success      200 {array} models.ActiveDriver
// @Security     BearerAuth
// @Router       /api/location/active [get]
func (h *Location) Active(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_active_drivers")

	drivers := h.drivers.ListActiveDrivers()
	if drivers == nil {
		drivers = []models.ActiveDriver{}
	}

	if err := writeJSON(w, http.StatusOK, drivers, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// History godoc
// @Summary      Location history of a delivery
// @Description  Archived pings of a delivery in timestamp order. Requires a database.
// @Tags         location
// @Produce      json
// @Param        delivery_id path string true "Delivery ID"
// @Param        limit query int false "Maximum number of points (default 1000)"
// @Success      200 {array} models.HistoryPoint
// @Failure      503 {object} map[string]interface{} "History storage not configured"
// @Security     BearerAuth
// @Router       /api/location/history/{delivery_id} [get]
func (h *Location) History(w http.ResponseWriter, r *http.Request) {
	deliveryID := r.PathValue("delivery_id")
	ctx := wrap.WithAction(wrap.WithDeliveryID(r.Context(), deliveryID), "location_history")

	if h.history == nil {
		errorResponse(w, http.StatusServiceUnavailable, "location history requires a database")
		return
	}

	v := validator.New()
	limit := readInt(r.URL.Query(), "limit", maxHistoryPoints, v)
	v.Check(limit > 0 && limit <= maxHistoryPoints, "limit", "must be between 1 and 1000")
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	points, err := h.history.ListByDelivery(ctx, deliveryID, limit)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read location history", err)
		internalErrorResponse(w, "failed to read location history")
		return
	}
	if points == nil {
		points = []models.HistoryPoint{}
	}

	if err := writeJSON(w, http.StatusOK, points, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
