package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/sitetrack/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/internal/service/delivery"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/validator"
)

type (
	DeliveryService interface {
		Create(ctx context.Context, in delivery.CreateInput, actor models.Actor) (models.Delivery, error)
		Get(id string) (models.Delivery, error)
		List(f models.DeliveryFilter) []models.Delivery
		Transition(ctx context.Context, id string, action types.DeliveryAction, actor models.Actor) (models.Delivery, error)
		Bind(ctx context.Context, id string, driver models.DriverInfo, actor models.Actor) (models.Delivery, error)
		ScanQR(ctx context.Context, deliveryID, routeID string, driver models.DriverInfo, actor models.Actor) (models.Delivery, error)
	}

	Delivery struct {
		service DeliveryService
		routes  RouteService
		l       logger.Logger
	}
)

func NewDelivery(service DeliveryService, routes RouteService, l logger.Logger) *Delivery {
	return &Delivery{
		service: service,
		routes:  routes,
		l:       l,
	}
}

// Create godoc
// @Summary      Create a delivery
// @Description  Creates a pending delivery on an existing route, optionally bound to a driver
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateDeliveryReq true "Delivery details"
// @Success      201 {object} models.Delivery
// @Failure      400 {object} map[string]interface{} "Bad request"
// @Failure      403 {object} map[string]interface{} "Admin only"
// @Failure      404 {object} map[string]interface{} "Route not found"
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Security     BearerAuth
// @Router       /api/deliveries [post]
func (h *Delivery) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_delivery")

	var req dto.CreateDeliveryReq
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

	d, err := h.service.Create(ctx, req.ToInput(), models.ActorFromContext(ctx))
	if err != nil {
		logServiceError(ctx, h.l, "failed to create delivery", err)
		serviceErrorResponse(w, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/api/deliveries/"+d.ID)

	if err := writeJSON(w, http.StatusCreated, d, headers); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// List godoc
// @Summary      List deliveries
// @Description  Deliveries ordered by creation time, newest first
// @Tags         deliveries
// @Produce      json
// @Param        status query string false "pending | in_progress | completed | cancelled"
// @Param        driver_id query string false "Filter by bound driver"
// @Success      200 {array} models.Delivery
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Security     BearerAuth
// @Router       /api/deliveries [get]
func (h *Delivery) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_deliveries")

	qs := r.URL.Query()
	f := models.DeliveryFilter{
		Status:   types.DeliveryStatus(readString(qs, "status", "")),
		DriverID: readString(qs, "driver_id", ""),
	}

	v := validator.New()
	v.Check(f.Status == "" || f.Status.Valid(), "status", "must be one of pending, in_progress, completed, cancelled")
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	list := h.service.List(f)
	if list == nil {
		list = []models.Delivery{}
	}

	if err := writeJSON(w, http.StatusOK, list, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Get godoc
// @Summary      Get a delivery
// @Tags         deliveries
// @Produce      json
// @Param        id path string true "Delivery ID"
// @Success      200 {object} models.Delivery
// @Failure      404 {object} map[string]interface{} "Delivery not found"
// @Security     BearerAuth
// @Router       /api/deliveries/{id} [get]
func (h *Delivery) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := wrap.WithAction(wrap.WithDeliveryID(r.Context(), id), "get_delivery")

	d, err := h.service.Get(id)
	if err != nil {
		logServiceError(ctx, h.l, "failed to get delivery", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, d, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// UpdateStatus godoc
// @Summary      Change delivery status
// @Description  Applies a lifecycle transition. Either status (in_progress, completed, cancelled) or action (start, arrive, complete, cancel) is required.
// @Tags         deliveries
// @Produce      json
// @Param        id path string true "Delivery ID"
// @Param        status query string false "Target status"
// @Param        action query string false "Transition action"
// @Success      200 {object} map[string]interface{} "New status"
// @Failure      403 {object} map[string]interface{} "Not allowed for this actor"
// @Failure      404 {object} map[string]interface{} "Delivery not found"
// @Failure      409 {object} map[string]interface{} "Transition rejected"
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Failure      503 {object} map[string]interface{} "Persistence unavailable"
// @Security     BearerAuth
// @Router       /api/deliveries/{id}/status [put]
func (h *Delivery) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := wrap.WithAction(wrap.WithDeliveryID(r.Context(), id), "update_delivery_status")

	qs := r.URL.Query()
	status := types.DeliveryStatus(readString(qs, "status", ""))
	action := types.DeliveryAction(readString(qs, "action", ""))

	v := validator.New()
	if action == "" {
		v.Check(status != "", "status", "must be provided")
		v.Check(status == "" || status.Valid(), "status", "must be one of pending, in_progress, completed, cancelled")
		action = types.ActionForStatus(status)
	} else {
		v.Check(validator.PermittedValue(action, types.ActionStart, types.ActionArrive, types.ActionComplete, types.ActionCancel),
			"action", "must be one of start, arrive, complete, cancel")
	}
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	d, err := h.service.Transition(ctx, id, action, models.ActorFromContext(ctx))
	if err != nil {
		logServiceError(ctx, h.l, "delivery transition rejected", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"success": true, "status": d.Status, "delivery": d}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Assign godoc
// @Summary      Assign a driver
// @Description  Binds a pending delivery to a driver, copying driver name, vehicle type and plate
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Param        id path string true "Delivery ID"
// @Param        request body dto.DriverReq true "Driver"
// @Success      200 {object} models.Delivery
// @Failure      404 {object} map[string]interface{} "Delivery not found"
// @Failure      409 {object} map[string]interface{} "Already bound or not pending"
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Security     BearerAuth
// @Router       /api/deliveries/{id}/assign [post]
func (h *Delivery) Assign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := wrap.WithAction(wrap.WithDeliveryID(r.Context(), id), "assign_delivery")

	var req dto.DriverReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Debug(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	if req.Validate(v); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	d, err := h.service.Bind(ctx, id, req.ToModel(), models.ActorFromContext(ctx))
	if err != nil {
		logServiceError(ctx, h.l, "failed to assign delivery", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, d, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// ScanQR godoc
// @Summary      Scan a delivery QR code
// @Description  Binds the scanning driver to the delivery encoded in the code and returns the delivery with its route
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Param        request body dto.ScanQRReq true "Scanned payload"
// @Success      200 {object} map[string]interface{} "Delivery and route"
// @Failure      400 {object} map[string]interface{} "Unreadable code"
// @Failure      404 {object} map[string]interface{} "Delivery not found"
// @Failure      409 {object} map[string]interface{} "Already bound or not pending"
// @Failure      422 {object} map[string]interface{} "Route mismatch"
// @Security     BearerAuth
// @Router       /api/qr/scan [post]
func (h *Delivery) ScanQR(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "scan_qr")

	var req dto.ScanQRReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Debug(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	payload, err := req.Payload()
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	if req.Validate(v, payload); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	ctx = wrap.WithDeliveryID(ctx, payload.DeliveryID)
	actor := models.ActorFromContext(ctx)

	d, err := h.service.ScanQR(ctx, payload.DeliveryID, payload.RouteID, req.Driver(actor), actor)
	if err != nil {
		logServiceError(ctx, h.l, "failed to bind delivery from qr code", err)
		serviceErrorResponse(w, err)
		return
	}

	route, err := h.routes.Get(d.RouteID)
	if err != nil {
		logServiceError(ctx, h.l, "delivery route missing from catalog", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"success": true, "delivery": d, "route": route}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
