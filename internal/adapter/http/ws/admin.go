package wshandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Temutjin2k/sitetrack/internal/adapter/http/ws/dto"
	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/internal/pipeline"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/validator"
	ws "github.com/Temutjin2k/sitetrack/pkg/wsHub"
)

type ActiveDriverLister interface {
	ListActiveDrivers() []models.ActiveDriver
}

// AdminFeed serves the admin live feed. Events are pushed by broadcasting
// on the admins hub; this handler only sends the initial snapshot and relays
// admin commands.
type AdminFeed struct {
	admins  *ws.ConnectionHub
	drivers *ws.ConnectionHub
	active  ActiveDriverLister
	l       logger.Logger
}

func NewAdminFeed(admins, drivers *ws.ConnectionHub, active ActiveDriverLister, l logger.Logger) *AdminFeed {
	return &AdminFeed{
		admins:  admins,
		drivers: drivers,
		active:  active,
		l:       l,
	}
}

// Serve godoc
// @Summary      Admin live feed
// @Description  WebSocket. Sends active_drivers on connect, then location_update, alert, emergency, alert_resolved, delivery_status and driver_disconnected events. Accepts message_driver commands.
// @Tags         websocket
// @Success      101
// @Security     BearerAuth
// @Router       /ws/admin [get]
func (h *AdminFeed) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_admin")

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Warn(ctx, "websocket upgrade failed", "error", err.Error())
		return
	}

	conn := ws.NewConn(ctx, uuid.NewString(), c)
	if err := h.admins.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register admin connection", err)
		_ = conn.Close()
		return
	}
	defer h.admins.Remove(conn)

	h.l.Info(ctx, "admin connected", "conn_id", conn.ID())

	snapshot := pipeline.FeedMessage{Type: types.FeedActiveDrivers, Data: h.active.ListActiveDrivers()}
	if err := conn.Send(snapshot); err != nil {
		h.l.Warn(ctx, "failed to send active drivers", "error", err.Error())
		return
	}

	err = conn.Listen(func(msg map[string]any) error {
		return h.handle(ctx, conn, msg)
	})
	if err != nil && !errors.Is(err, ws.ErrConnClosed) {
		h.l.Debug(ctx, "admin disconnected", "conn_id", conn.ID(), "reason", err.Error())
	}
}

func (h *AdminFeed) handle(ctx context.Context, conn *ws.Conn, msg map[string]any) error {
	switch messageType(msg) {
	case "ping":
		return conn.Send(map[string]any{"type": "pong"})

	case "message_driver":
		var m dto.DriverMessage
		if err := decode(msg, &m); err != nil {
			return errorResponse(conn, "malformed message_driver frame")
		}
		v := validator.New()
		if m.Validate(v); !v.Valid() {
			return failedValidationResponse(conn, v.Errors)
		}

		err := h.drivers.SendTo(m.DriverID, pipeline.FeedMessage{
			Type: types.FeedAdminMessage,
			Data: map[string]string{"message": m.Message},
		})
		if err != nil {
			h.l.Debug(wrap.WithDriverID(ctx, m.DriverID), "driver message not delivered", "error", err.Error())
			return errorResponse(conn, "driver is not connected")
		}
		return conn.Send(map[string]any{"type": "message_sent", "driver_id": m.DriverID})

	default:
		return errorResponse(conn, "unknown message type")
	}
}
