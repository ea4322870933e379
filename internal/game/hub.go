package game

import (
	"log/slog"
	"sync"
)

// Hub tracks live connections and delivers room events to them.
type Hub struct {
	mu    sync.Mutex
	conns map[string]*ClientConn
	log   *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		conns: make(map[string]*ClientConn),
		log:   log,
	}
}

func (h *Hub) add(c *ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

// Len is the number of open connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Notify implements room.Notifier. A connection whose queue is full is closed.
func (h *Hub) Notify(connIDs []string, event string, payload any) {
	msg, err := encode(event, nil, payload)
	if err != nil {
		h.log.Error("encode event", "event", event, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range connIDs {
		c, ok := h.conns[id]
		if !ok {
			continue
		}
		if !c.enqueue(msg) {
			h.log.Warn("dropping slow connection", "conn", id, "event", event)
			delete(h.conns, id)
			go c.Close()
		}
	}
}

// CloseAll disconnects every client. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*ClientConn, 0, len(h.conns))
	for id, c := range h.conns {
		conns = append(conns, c)
		delete(h.conns, id)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
