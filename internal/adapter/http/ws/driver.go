package wshandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Temutjin2k/sitetrack/internal/adapter/http/ws/dto"
	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/internal/pipeline"
	"github.com/Temutjin2k/sitetrack/internal/service/tracking"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/validator"
	ws "github.com/Temutjin2k/sitetrack/pkg/wsHub"
)

type LocationService interface {
	Ingest(ctx context.Context, p models.LocationPing) tracking.IngestResult
}

// DriverSocket accepts location frames from a driver device and feeds them
// to the ingestor with the same semantics as the HTTP endpoint.
type DriverSocket struct {
	drivers *ws.ConnectionHub
	admins  *ws.ConnectionHub
	service LocationService
	l       logger.Logger
}

func NewDriverSocket(drivers, admins *ws.ConnectionHub, service LocationService, l logger.Logger) *DriverSocket {
	return &DriverSocket{
		drivers: drivers,
		admins:  admins,
		service: service,
		l:       l,
	}
}

// Serve godoc
// @Summary      Driver location socket
// @Description  WebSocket. Accepts {"type":"location", latitude, longitude, speed, heading, delivery_id} frames and answers each with location_ack.
// @Tags         websocket
// @Param        driver_id path string true "Driver ID"
// @Success      101
// @Failure      403 {object} map[string]interface{} "Socket of another driver"
// @Security     BearerAuth
// @Router       /ws/drivers/{driver_id} [get]
func (h *DriverSocket) Serve(w http.ResponseWriter, r *http.Request) {
	driverID := r.PathValue("driver_id")
	ctx := wrap.WithAction(wrap.WithDriverID(r.Context(), driverID), "ws_driver")

	actor := models.ActorFromContext(ctx)
	if !actor.IsAdmin() && actor.ID != driverID {
		http.Error(w, types.ErrNotAssignedDriver.Error(), http.StatusForbidden)
		return
	}

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Warn(ctx, "websocket upgrade failed", "error", err.Error())
		return
	}

	conn := ws.NewConn(ctx, driverID, c)
	if err := h.drivers.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register driver connection", err)
		_ = conn.Close()
		return
	}
	defer h.disconnect(ctx, conn)

	h.l.Info(ctx, "driver connected")

	err = conn.Listen(func(msg map[string]any) error {
		return h.handle(ctx, conn, msg)
	})
	if err != nil && !errors.Is(err, ws.ErrConnClosed) {
		h.l.Debug(ctx, "driver disconnected", "reason", err.Error())
	}
}

func (h *DriverSocket) handle(ctx context.Context, conn *ws.Conn, msg map[string]any) error {
	switch messageType(msg) {
	case "ping":
		return conn.Send(map[string]any{"type": "pong"})

	case "location":
		var m dto.LocationMessage
		if err := decode(msg, &m); err != nil {
			return errorResponse(conn, "malformed location frame")
		}
		v := validator.New()
		if m.Validate(v); !v.Valid() {
			return failedValidationResponse(conn, v.Errors)
		}

		res := h.service.Ingest(ctx, m.ToModel(conn.ID()))
		return conn.Send(dto.LocationAck{
			Type:     "location_ack",
			Accepted: res.Accepted,
			Reason:   string(res.Reason),
			Alerts:   res.Alerts,
		})

	default:
		return errorResponse(conn, "unknown message type")
	}
}

// disconnect unregisters conn and tells admins, unless a newer socket of
// the same driver already replaced it.
func (h *DriverSocket) disconnect(ctx context.Context, conn *ws.Conn) {
	current, err := h.drivers.GetConn(conn.ID())
	h.drivers.Remove(conn)
	if err != nil || current != conn {
		return
	}

	h.l.Info(ctx, "driver disconnected")
	h.admins.Broadcast(ctx, pipeline.FeedMessage{
		Type: types.FeedDriverDisconnected,
		Data: map[string]string{"driver_id": conn.ID()},
	})
}
