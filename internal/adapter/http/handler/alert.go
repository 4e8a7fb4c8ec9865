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
	AlertService interface {
		List(f models.AlertFilter) []models.Alert
		Resolve(ctx context.Context, id string, actor models.Actor) (models.Alert, error)
	}

	EmergencyReporter interface {
		ReportEmergency(ctx context.Context, in tracking.EmergencyInput) models.Alert
	}

	Alert struct {
		alerts    AlertService
		emergency EmergencyReporter
		l         logger.Logger
	}
)

func NewAlert(alerts AlertService, emergency EmergencyReporter, l logger.Logger) *Alert {
	return &Alert{
		alerts:    alerts,
		emergency: emergency,
		l:         l,
	}
}

// List godoc
// @Summary      List alerts
// @Description  Alerts ordered by severity then recency
// @Tags         alerts
// @Produce      json
// @Param        resolved query bool false "Filter by resolution state"
// @Param        driver_id query string false "Filter by driver"
// @Param        type query string false "deviation | speed | emergency | stopped"
// @Success      200 {array} models.Alert
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Security     BearerAuth
// @Router       /api/alerts [get]
func (h *Alert) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_alerts")

	qs := r.URL.Query()
	v := validator.New()

	f := models.AlertFilter{
		Resolved: readBool(qs, "resolved", v),
		DriverID: readString(qs, "driver_id", ""),
		Type:     types.AlertType(readString(qs, "type", "")),
	}
	v.Check(f.Type == "" || f.Type.Valid(), "type", "must be one of deviation, speed, emergency, stopped")
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	alerts := h.alerts.List(f)
	if alerts == nil {
		alerts = []models.Alert{}
	}

	if err := writeJSON(w, http.StatusOK, alerts, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Resolve godoc
// @Summary      Resolve an alert
// @Tags         alerts
// @Produce      json
// @Param        id path string true "Alert ID"
// @Success      200 {object} map[string]interface{} "Resolved alert"
// @Failure      404 {object} map[string]interface{} "Alert not found"
// @Failure      409 {object} map[string]interface{} "Already resolved"
// @Security     BearerAuth
// @Router       /api/alerts/{id}/resolve [put]
func (h *Alert) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "resolve_alert")
	id := r.PathValue("id")

	a, err := h.alerts.Resolve(ctx, id, models.ActorFromContext(ctx))
	if err != nil {
		logServiceError(ctx, h.l, "failed to resolve alert", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"success": true, "alert": a}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Emergency godoc
// @Summary      Report an emergency
// @Description  Raises a critical emergency alert regardless of geofence state
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        request body dto.EmergencyReq true "Emergency report"
// @Success      201 {object} map[string]interface{} "Alert ID"
// @Failure      400 {object} map[string]interface{} "Bad request"
// @Failure      403 {object} map[string]interface{} "Reporting for another driver"
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Security     BearerAuth
// @Router       /api/alerts/emergency [post]
func (h *Alert) Emergency(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "report_emergency")

	var req dto.EmergencyReq
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
		h.l.Warn(ctx, "driver reported an emergency for another driver", "driver_id", req.DriverID)
		serviceErrorResponse(w, types.ErrNotAssignedDriver)
		return
	}

	a := h.emergency.ReportEmergency(ctx, req.ToInput())

	if err := writeJSON(w, http.StatusCreated, envelope{"success": true, "alert_id": a.ID, "alert": a}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
