// Package ws exposes trivia rooms over websockets.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/abhisek/trivia/internal/game"
)

var (
	errRateLimited = errors.New("rate limited")
	errBadMessage  = errors.New("bad message")
)

const (
	sendQueueSize = 32
	writeWait     = 10 * time.Second
)

// Options tunes a Handler.
type Options struct {
	// AllowedOrigins restricts upgrades by Origin host. Empty allows all.
	AllowedOrigins []string

	// MessageInterval and MessageBurst rate limit inbound messages per
	// connection.
	MessageInterval time.Duration
	MessageBurst    int
}

// DefaultOptions returns permissive origin checks and a small per-client
// message budget.
func DefaultOptions() Options {
	return Options{MessageInterval: 250 * time.Millisecond, MessageBurst: 10}
}

// Handler serves one websocket per player. Every connection belongs to a
// single room given in the query string.
type Handler struct {
	manager  *game.Manager
	hub      *Hub
	logger   *slog.Logger
	options  Options
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler. hub must be the notifier the manager was
// built with so timeouts reach the room.
func NewHandler(manager *game.Manager, hub *Hub, logger *slog.Logger, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{manager: manager, hub: hub, logger: logger, options: opts}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.options.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return lo.Contains(h.options.AllowedOrigins, u.Host)
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	room    string
	userID  string
	name    string
	limiter *rate.Limiter
}

func (c *client) enqueue(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *client) writePump(logger *slog.Logger) {
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			logger.Debug("ws write failed", "user", c.userID, "err", err)
			// Drain so leave never blocks a broadcaster.
			for range c.send {
			}
			return
		}
	}
}

// ServeWS upgrades /ws?room=..&userId=..&name=.. and runs the read loop.
func (h *Handler) ServeWS(c *gin.Context) {
	room := c.Query("room")
	userID := c.Query("userId")
	name := c.DefaultQuery("name", userID)
	if room == "" || userID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing room or userId"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	limit := rate.Inf
	if h.options.MessageInterval > 0 {
		limit = rate.Every(h.options.MessageInterval)
	}
	cl := &client{
		conn:    conn,
		send:    make(chan []byte, sendQueueSize),
		room:    room,
		userID:  userID,
		name:    name,
		limiter: rate.NewLimiter(limit, max(h.options.MessageBurst, 1)),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		cl.writePump(h.logger)
	}()

	h.hub.join(cl)
	_, active := h.manager.Active(room)
	h.reply(cl, evtJoined, joinedPayload{Room: room, UserID: userID, Active: active})
	h.logger.Info("client joined", "room", room, "user", userID)

	ctx := c.Request.Context()
	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if !cl.limiter.Allow() {
			h.reply(cl, evtError, newErrorPayload(errRateLimited))
			continue
		}
		h.dispatch(ctx, cl, msg)
	}

	h.hub.leave(cl)
	<-writerDone
	h.logger.Info("client left", "room", room, "user", userID)
}

func (h *Handler) dispatch(ctx context.Context, cl *client, msg inbound) {
	switch msg.Type {
	case msgStart:
		var p startPayload
		if !h.decode(cl, msg.Payload, &p) {
			return
		}
		a, err := h.manager.Start(ctx, cl.room, p.Difficulty)
		if err != nil {
			h.fail(cl, err)
			return
		}
		h.hub.Broadcast(cl.room, evtRoundStarted, newRoundPayload(a))

	case msgAnswer:
		var p answerPayload
		if !h.decode(cl, msg.Payload, &p) {
			return
		}
		out, err := h.manager.Submit(ctx, cl.room, cl.userID, cl.name, p.Text)
		if err != nil {
			h.fail(cl, err)
			return
		}
		if out.Kind == game.OutcomeNoSession {
			h.fail(cl, game.ErrNoActiveSession)
			return
		}
		h.hub.Broadcast(cl.room, evtAnswerResult, newResultPayload(out))

	case msgHint:
		hint, err := h.manager.Hint(cl.room)
		if err != nil {
			h.fail(cl, err)
			return
		}
		h.hub.Broadcast(cl.room, evtHint, hintPayload{Number: hint.Number, Total: hint.Total, Text: hint.Text})

	case msgEnd:
		r, err := h.manager.End(ctx, cl.room, cl.name)
		if err != nil {
			h.fail(cl, err)
			return
		}
		h.hub.Broadcast(cl.room, evtRoundEnded, revealPayload{
			Reason:      string(r.Reason),
			RequestedBy: r.RequestedBy,
			Answers:     r.Answers,
			Text:        r.Text(),
		})

	case msgLeaderboard:
		var p leaderboardRequest
		if !h.decode(cl, msg.Payload, &p) {
			return
		}
		h.reply(cl, evtLeaderboard, newRankPayloads(h.manager.Leaderboard(p.Top)))

	default:
		h.fail(cl, errBadMessage)
	}
}

// decode unmarshals an optional payload; an absent payload leaves v zero.
func (h *Handler) decode(cl *client, raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		h.fail(cl, errBadMessage)
		return false
	}
	return true
}

func (h *Handler) fail(cl *client, err error) {
	h.reply(cl, evtError, newErrorPayload(err))
}

func (h *Handler) reply(cl *client, eventType string, payload any) {
	b, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("encode reply failed", "type", eventType, "err", err)
		return
	}
	if !cl.enqueue(b) {
		h.logger.Warn("client queue full, reply dropped", "user", cl.userID, "type", eventType)
	}
}
