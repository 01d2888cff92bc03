package ws

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abhisek/trivia/internal/game"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// NewRouter mounts the websocket endpoint and the read-only HTTP API.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/ws", h.ServeWS)

	api := router.Group("/api")
	api.GET("/leaderboard", h.leaderboard)
	api.GET("/rooms", h.rooms)
	api.GET("/rooms/:room", h.room)
	return router
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.Request.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), requestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

func (h *Handler) leaderboard(c *gin.Context) {
	top, err := strconv.Atoi(c.DefaultQuery("top", "0"))
	if err != nil || top < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "top must be a non-negative integer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": newRankPayloads(h.manager.Leaderboard(top))})
}

type roomPayload struct {
	Room         string    `json:"room"`
	SessionID    string    `json:"sessionId"`
	Topic        string    `json:"topic"`
	Difficulty   string    `json:"difficulty"`
	Description  string    `json:"description"`
	HintsGiven   int       `json:"hintsGiven"`
	WrongGuesses int       `json:"wrongGuesses"`
	Participants int       `json:"participants"`
	Members      int       `json:"members"`
	Deadline     time.Time `json:"deadline"`
}

func (h *Handler) roomPayload(s game.Snapshot) roomPayload {
	return roomPayload{
		Room:         s.Room,
		SessionID:    s.ID,
		Topic:        s.Question.Topic,
		Difficulty:   string(s.Question.Difficulty),
		Description:  s.Question.Description,
		HintsGiven:   s.HintsGiven,
		WrongGuesses: s.WrongGuesses,
		Participants: s.Participants,
		Members:      h.hub.Members(s.Room),
		Deadline:     s.Deadline,
	}
}

func (h *Handler) rooms(c *gin.Context) {
	rooms := h.manager.Rooms()
	slices.Sort(rooms)
	out := make([]roomPayload, 0, len(rooms))
	for _, room := range rooms {
		if s, ok := h.manager.Active(room); ok {
			out = append(out, h.roomPayload(s))
		}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (h *Handler) room(c *gin.Context) {
	s, ok := h.manager.Active(c.Param("room"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": game.UserMessage(game.ErrNoActiveSession)})
		return
	}
	c.JSON(http.StatusOK, h.roomPayload(s))
}
