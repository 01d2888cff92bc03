package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, s *server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Config.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newServer(t, time.Hour)
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newServer(t, time.Hour)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-1")
	s.Config.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))
}

func TestLeaderboardEndpoint(t *testing.T) {
	s := newServer(t, time.Hour)
	ctx := context.Background()
	_, err := s.manager.Start(ctx, "lobby", "")
	require.NoError(t, err)
	_, err = s.manager.Submit(ctx, "lobby", "u1", "Alice", "Paris")
	require.NoError(t, err)

	rec := get(t, s, "/api/leaderboard?top=3")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Leaderboard []rankPayload `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Leaderboard, 1)
	assert.Equal(t, "Alice", body.Leaderboard[0].DisplayName)
	assert.Equal(t, 1.0, body.Leaderboard[0].Accuracy)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/leaderboard?top=x").Code)
}

func TestRoomsEndpoint(t *testing.T) {
	s := newServer(t, time.Hour)
	_, err := s.manager.Start(context.Background(), "lobby", "normal")
	require.NoError(t, err)

	rec := get(t, s, "/api/rooms")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rooms []roomPayload `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "lobby", body.Rooms[0].Room)
	assert.Equal(t, "normal", body.Rooms[0].Difficulty)

	assert.Equal(t, http.StatusOK, get(t, s, "/api/rooms/lobby").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/rooms/other").Code)
}
