package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/abhisek/trivia/internal/game"
)

// Hub tracks connected clients per room and fans room events out to them.
// It is the game.Notifier for the websocket transport.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger, rooms: make(map[string]map[*client]struct{})}
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[c.room]
	if !ok {
		members = make(map[*client]struct{})
		h.rooms[c.room] = members
	}
	members[c] = struct{}{}
}

// leave removes c and closes its send queue. Broadcasts hold the read lock,
// so nothing can enqueue on a closed queue.
func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[c.room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	close(c.send)
}

// Members returns how many clients are connected to room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast sends an event to every client in room. Slow clients whose
// queue is full miss the event.
func (h *Hub) Broadcast(room, eventType string, payload any) {
	b, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("encode event failed", "type", eventType, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if !c.enqueue(b) {
			h.logger.Warn("client queue full, event dropped", "room", room, "user", c.userID, "type", eventType)
		}
	}
}

// Announce implements game.Notifier.
func (h *Hub) Announce(room string, msg game.Message) {
	h.Broadcast(room, string(msg.Kind), noticePayload{Text: msg.Text, Answers: msg.Answers})
}

var _ game.Notifier = (*Hub)(nil)
