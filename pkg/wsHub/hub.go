package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub keeps the active websocket connections of one endpoint.
type ConnectionHub struct {
	name    string
	clients map[string]*Conn
	l       logger.Logger
	mu      sync.Mutex
	wg      sync.WaitGroup

	onChange func(n int)
}

func NewConnHub(name string, l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		name:    name,
		clients: make(map[string]*Conn),
		l:       l,
	}
}

// OnChange registers a callback invoked with the client count after every add or delete.
func (h *ConnectionHub) OnChange(fn func(n int)) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

func (h *ConnectionHub) Name() string {
	return h.name
}

// Add registers a connection. An existing connection with the same entity id is closed and replaced.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")

	if existing, ok := h.clients[newConn.entityID]; ok {
		h.l.Warn(ctx, "replacing existing connection", "hub", h.name, "entity_id", existing.entityID)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx, "failed to close existing conn", "entity_id", existing.entityID, "err", err.Error())
		}
	} else {
		h.wg.Add(1)
	}

	h.clients[newConn.entityID] = newConn
	h.changed()
	return nil
}

// Delete removes and closes the connection with entityID.
func (h *ConnectionHub) Delete(entityID string) error {
	h.mu.Lock()
	conn, ok := h.clients[entityID]
	if ok {
		delete(h.clients, entityID)
		h.changed()
	}
	h.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Debug(wrap.WithAction(context.Background(), "ws_connection_delete"),
			"failed to close conn", "hub", h.name, "entity_id", entityID, "err", err.Error())
	}
	h.wg.Done()
	return nil
}

// Remove deletes conn only if it is still the registered connection for its entity id.
func (h *ConnectionHub) Remove(conn *Conn) {
	h.mu.Lock()
	current, ok := h.clients[conn.entityID]
	h.mu.Unlock()

	if ok && current == conn {
		_ = h.Delete(conn.entityID)
		return
	}
	_ = conn.Close()
}

// SendTo sends msg to one client. Returns ErrConnIsNotFound when it is not connected.
func (h *ConnectionHub) SendTo(id string, msg any) error {
	conn, err := h.GetConn(id)
	if err != nil {
		return err
	}
	return conn.Send(msg)
}

// Broadcast sends msg to every client. Clients that fail to receive it are dropped.
func (h *ConnectionHub) Broadcast(ctx context.Context, msg any) int {
	sent := 0
	for id, conn := range h.Clients() {
		if err := conn.Send(msg); err != nil {
			h.l.Debug(ctx, "dropping websocket client", "hub", h.name, "entity_id", id, "err", err.Error())
			h.Remove(conn)
			continue
		}
		sent++
	}
	return sent
}

// Close closes every connection and waits until all of them are released.
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	for id := range h.Clients() {
		_ = h.Delete(id)
	}
	h.wg.Wait()

	h.l.Info(ctx, "all websocket connections closed gracefully", "hub", h.name)
}

// Clients returns a copy of the client set.
func (h *ConnectionHub) Clients() map[string]*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	copyMap := make(map[string]*Conn, len(h.clients))
	for id, conn := range h.clients {
		copyMap[id] = conn
	}
	return copyMap
}

func (h *ConnectionHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// GetConn returns the connection registered for id.
func (h *ConnectionHub) GetConn(id string) (*Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[id]
	if !ok {
		return nil, ErrConnIsNotFound
	}
	return conn, nil
}

func (h *ConnectionHub) changed() {
	if h.onChange != nil {
		h.onChange(len(h.clients))
	}
}
