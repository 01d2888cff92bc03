package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/abhisek/trivia/internal/game"
	"github.com/abhisek/trivia/internal/questiongen"
	"github.com/abhisek/trivia/internal/stats"
)

// Inbound message types.
const (
	msgStart       = "start"
	msgAnswer      = "answer"
	msgHint        = "hint"
	msgEnd         = "end"
	msgLeaderboard = "leaderboard"
)

// Outbound event types. Timeout and duplicate notices use the
// game.MessageKind values.
const (
	evtJoined       = "joined"
	evtRoundStarted = "round_started"
	evtAnswerResult = "answer_result"
	evtHint         = "hint"
	evtRoundEnded   = "round_ended"
	evtLeaderboard  = "leaderboard"
	evtError        = "error"
)

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type startPayload struct {
	Difficulty string `json:"difficulty"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type leaderboardRequest struct {
	Top int `json:"top"`
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type joinedPayload struct {
	Room   string `json:"room"`
	UserID string `json:"userId"`
	Active bool   `json:"active"`
}

type roundPayload struct {
	SessionID      string `json:"sessionId"`
	Topic          string `json:"topic"`
	Difficulty     string `json:"difficulty"`
	Description    string `json:"description"`
	Hints          int    `json:"hints"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	Text           string `json:"text"`
}

func newRoundPayload(a *game.Announcement) roundPayload {
	return roundPayload{
		SessionID:      a.SessionID,
		Topic:          a.Topic,
		Difficulty:     string(a.Difficulty),
		Description:    a.Description,
		Hints:          a.HintCount,
		TimeoutSeconds: int(a.Timeout / time.Second),
		Text:           a.Text(),
	}
}

type resultPayload struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	Correct       bool   `json:"correct"`
	MatchedAnswer string `json:"matchedAnswer,omitempty"`
	Reward        int    `json:"reward,omitempty"`
	Payout        int    `json:"payout,omitempty"`
	Capped        bool   `json:"capped,omitempty"`
	Text          string `json:"text"`
}

func newResultPayload(o game.Outcome) resultPayload {
	return resultPayload{
		UserID:        o.UserID,
		DisplayName:   o.DisplayName,
		Correct:       o.Kind == game.OutcomeCorrect,
		MatchedAnswer: o.MatchedAnswer,
		Reward:        o.Reward.Reward,
		Payout:        o.Reward.Payout,
		Capped:        o.Reward.Capped,
		Text:          o.Text(),
	}
}

type hintPayload struct {
	Number int    `json:"number"`
	Total  int    `json:"total"`
	Text   string `json:"text"`
}

type revealPayload struct {
	Reason      string   `json:"reason"`
	RequestedBy string   `json:"requestedBy,omitempty"`
	Answers     []string `json:"answers"`
	Text        string   `json:"text"`
}

type noticePayload struct {
	Text    string   `json:"text"`
	Answers []string `json:"answers,omitempty"`
}

type rankPayload struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"userId"`
	DisplayName string  `json:"displayName"`
	Correct     int     `json:"correct"`
	Attempts    int     `json:"attempts"`
	Accuracy    float64 `json:"accuracy"`
}

func newRankPayloads(ranked []stats.Ranked) []rankPayload {
	out := make([]rankPayload, len(ranked))
	for i, r := range ranked {
		out[i] = rankPayload{
			Rank:        r.Rank,
			UserID:      r.UserID,
			DisplayName: r.DisplayName,
			Correct:     r.Correct,
			Attempts:    r.Attempts,
			Accuracy:    r.Accuracy(),
		}
	}
	return out
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newErrorPayload(err error) errorPayload {
	msg := game.UserMessage(err)
	switch {
	case errors.Is(err, errRateLimited):
		msg = "Slow down a little."
	case errors.Is(err, errBadMessage):
		msg = "Unrecognized message."
	}
	return errorPayload{Code: errorCode(err), Message: msg}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrAlreadyActive):
		return "already_active"
	case errors.Is(err, game.ErrGenerationInProgress):
		return "generation_in_progress"
	case errors.Is(err, game.ErrInvalidDifficulty):
		return "invalid_difficulty"
	case errors.Is(err, game.ErrNoActiveSession):
		return "no_active_session"
	case errors.Is(err, game.ErrNoMoreHints):
		return "no_more_hints"
	case errors.Is(err, game.ErrEmptyAnswer):
		return "empty_answer"
	case errors.Is(err, questiongen.ErrNoTopics):
		return "no_topics"
	case errors.Is(err, questiongen.ErrGenerationTimeout):
		return "generation_timeout"
	case errors.Is(err, questiongen.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, questiongen.ErrGenerationFailed):
		return "generation_failed"
	case errors.Is(err, errRateLimited):
		return "rate_limited"
	case errors.Is(err, errBadMessage):
		return "bad_message"
	default:
		return "internal"
	}
}
