package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/trivia/internal/economy"
	"github.com/abhisek/trivia/internal/game"
	"github.com/abhisek/trivia/internal/ledger"
	"github.com/abhisek/trivia/internal/matcher"
	"github.com/abhisek/trivia/internal/questiongen"
	"github.com/abhisek/trivia/internal/reward"
	"github.com/abhisek/trivia/internal/stats"
	"github.com/abhisek/trivia/internal/store"
)

type staticGenerator struct{}

func (staticGenerator) Generate(_ context.Context, in questiongen.GenerateInput) (*questiongen.Question, error) {
	d := in.Difficulty
	if d == "" {
		d = questiongen.Easy
	}
	return &questiongen.Question{
		Description:     "What is the capital of France?",
		AcceptedAnswers: []string{"Paris"},
		Difficulty:      d,
		Hints:           []string{"It has a famous iron tower."},
		Topic:           "Geography",
	}, nil
}

type server struct {
	*httptest.Server
	manager *game.Manager
}

func newServer(t *testing.T, timeout time.Duration) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	ds := store.NewMemoryDocuments()

	st, err := stats.Load(ctx, ds)
	require.NoError(t, err)
	l, err := ledger.Load(ctx, ds)
	require.NoError(t, err)
	w, err := economy.LoadDocumentWallet(ctx, ds)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	hub := NewHub(logger)
	cfg := game.DefaultConfig()
	cfg.RoundTimeout = timeout
	mgr := game.New(cfg, staticGenerator{},
		matcher.New(matcher.DefaultConfig(), nil, logger),
		reward.New(reward.DefaultConfig(), l, w, logger),
		st,
		game.WithNotifier(hub),
		game.WithLogger(logger),
	)
	t.Cleanup(func() { mgr.Shutdown() })

	srv := httptest.NewServer(NewRouter(NewHandler(mgr, hub, logger, DefaultOptions())))
	t.Cleanup(srv.Close)
	return &server{Server: srv, manager: mgr}
}

func (s *server) dial(t *testing.T, room, userID, name string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?room=" + room + "&userId=" + userID + "&name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	typ, _ := readNext(t, conn)
	require.Equal(t, evtJoined, typ)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func readNext(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	return msg.Type, msg.Payload
}

func expect[T any](t *testing.T, conn *websocket.Conn, typ string) T {
	t.Helper()
	got, raw := readNext(t, conn)
	require.Equal(t, typ, got, string(raw))
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestRoundFlow(t *testing.T) {
	s := newServer(t, time.Hour)
	alice := s.dial(t, "lobby", "u1", "Alice")
	bob := s.dial(t, "lobby", "u2", "Bob")

	send(t, alice, msgStart, startPayload{Difficulty: "hard"})
	for _, c := range []*websocket.Conn{alice, bob} {
		r := expect[roundPayload](t, c, evtRoundStarted)
		assert.Equal(t, "Geography", r.Topic)
		assert.Equal(t, "hard", r.Difficulty)
		assert.Equal(t, 1, r.Hints)
	}

	send(t, bob, msgAnswer, answerPayload{Text: "Lyon"})
	for _, c := range []*websocket.Conn{alice, bob} {
		r := expect[resultPayload](t, c, evtAnswerResult)
		assert.False(t, r.Correct)
		assert.Equal(t, "u2", r.UserID)
	}

	send(t, alice, msgHint, nil)
	for _, c := range []*websocket.Conn{alice, bob} {
		h := expect[hintPayload](t, c, evtHint)
		assert.Equal(t, 1, h.Number)
		assert.Equal(t, 1, h.Total)
	}

	send(t, alice, msgAnswer, answerPayload{Text: "paris"})
	for _, c := range []*websocket.Conn{alice, bob} {
		r := expect[resultPayload](t, c, evtAnswerResult)
		assert.True(t, r.Correct)
		assert.Equal(t, "Paris", r.MatchedAnswer)
		// floor(50 * 2.0 * 0.9 * 0.5)
		assert.Equal(t, 45, r.Payout)
	}

	send(t, bob, msgAnswer, answerPayload{Text: "paris"})
	e := expect[errorPayload](t, bob, evtError)
	assert.Equal(t, "no_active_session", e.Code)

	send(t, bob, msgLeaderboard, leaderboardRequest{Top: 5})
	board := expect[[]rankPayload](t, bob, evtLeaderboard)
	require.Len(t, board, 2)
	assert.Equal(t, "Alice", board[0].DisplayName)
	assert.Equal(t, 1, board[0].Correct)
}

func TestStartErrors(t *testing.T) {
	s := newServer(t, time.Hour)
	alice := s.dial(t, "lobby", "u1", "Alice")

	send(t, alice, msgStart, startPayload{Difficulty: "impossible"})
	e := expect[errorPayload](t, alice, evtError)
	assert.Equal(t, "invalid_difficulty", e.Code)
	assert.Equal(t, game.UserMessage(game.ErrInvalidDifficulty), e.Message)

	send(t, alice, msgStart, nil)
	expect[roundPayload](t, alice, evtRoundStarted)
	send(t, alice, msgStart, nil)
	e = expect[errorPayload](t, alice, evtError)
	assert.Equal(t, "already_active", e.Code)

	send(t, alice, "dance", nil)
	e = expect[errorPayload](t, alice, evtError)
	assert.Equal(t, "bad_message", e.Code)
}

func TestEndBroadcastsReveal(t *testing.T) {
	s := newServer(t, time.Hour)
	alice := s.dial(t, "lobby", "u1", "Alice")
	bob := s.dial(t, "lobby", "u2", "Bob")

	send(t, alice, msgStart, nil)
	expect[roundPayload](t, alice, evtRoundStarted)
	expect[roundPayload](t, bob, evtRoundStarted)

	send(t, bob, msgEnd, nil)
	r := expect[revealPayload](t, alice, evtRoundEnded)
	assert.Equal(t, []string{"Paris"}, r.Answers)
	assert.Equal(t, "Bob", r.RequestedBy)
}

func TestTimeoutReachesRoom(t *testing.T) {
	s := newServer(t, 50*time.Millisecond)
	alice := s.dial(t, "lobby", "u1", "Alice")

	send(t, alice, msgStart, nil)
	expect[roundPayload](t, alice, evtRoundStarted)

	n := expect[noticePayload](t, alice, string(game.KindTimeout))
	assert.Equal(t, []string{"Paris"}, n.Answers)
}

func TestRoomsAreIsolated(t *testing.T) {
	s := newServer(t, time.Hour)
	alice := s.dial(t, "a", "u1", "Alice")
	bob := s.dial(t, "b", "u2", "Bob")

	send(t, alice, msgStart, nil)
	expect[roundPayload](t, alice, evtRoundStarted)

	send(t, bob, msgHint, nil)
	e := expect[errorPayload](t, bob, evtError)
	assert.Equal(t, "no_active_session", e.Code)
}

func TestServeWS_RequiresRoomAndUser(t *testing.T) {
	s := newServer(t, time.Hour)
	resp, err := http.Get(s.URL + "/ws?room=lobby")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	h := NewHandler(nil, NewHub(nil), nil, Options{AllowedOrigins: []string{"trivia.example"}})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://trivia.example", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, h.checkOrigin(r), tt.origin)
	}
}
