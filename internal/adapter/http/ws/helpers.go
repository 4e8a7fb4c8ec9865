package wshandler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	ws "github.com/Temutjin2k/sitetrack/pkg/wsHub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are restricted by the CORS middleware for browser clients
	CheckOrigin: func(r *http.Request) bool { return true },
}

func errorResponse(conn *ws.Conn, message any) error {
	return conn.Send(
		map[string]any{
			"type":  "error",
			"error": message,
		})
}

func failedValidationResponse(conn *ws.Conn, errors map[string]string) error {
	return errorResponse(conn, errors)
}

// decode converts a generic frame into dst.
func decode(msg map[string]any, dst any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func messageType(msg map[string]any) string {
	t, _ := msg["type"].(string)
	return t
}
