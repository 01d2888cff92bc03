package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/trivia/internal/matcher"
	"github.com/abhisek/trivia/internal/questiongen"
	"github.com/abhisek/trivia/internal/reward"
	"github.com/abhisek/trivia/internal/stats"
)

const duplicateText = "This one has been asked before, picking another..."

// Announcement is returned when a round starts.
type Announcement struct {
	SessionID   string
	Room        string
	Topic       string
	Difficulty  questiongen.Difficulty
	Description string
	HintCount   int
	Timeout     time.Duration
}

func (a *Announcement) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trivia time! (topic: %s | difficulty: %s)\n", a.Topic, a.Difficulty.DisplayName())
	b.WriteString("--------------------\n")
	b.WriteString(a.Description)
	b.WriteString("\n--------------------\n")
	fmt.Fprintf(&b, "You have %d seconds. Just say your answer in the chat.\n", int(a.Timeout.Seconds()))
	if a.HintCount > 0 {
		fmt.Fprintf(&b, "%d hints available.", a.HintCount)
	} else {
		b.WriteString("No hints for this one.")
	}
	return b.String()
}

// RevealReason says why the answers were revealed.
type RevealReason string

const (
	RevealEnded   RevealReason = "ended"
	RevealTimeout RevealReason = "timeout"
)

// Reveal lists the accepted answers of a retired round.
type Reveal struct {
	Room        string
	Reason      RevealReason
	RequestedBy string
	Answers     []string
}

func (r *Reveal) Text() string {
	answers := strings.Join(r.Answers, ", ")
	if r.Reason == RevealTimeout {
		return fmt.Sprintf("Time's up! Nobody got it.\nThe answer was: %s", answers)
	}
	return fmt.Sprintf("Round ended at %s's request.\nThe answer was: %s", r.RequestedBy, answers)
}

// Hint is one revealed hint.
type Hint struct {
	Text   string
	Number int
	Total  int
}

func (h Hint) String() string {
	return fmt.Sprintf("Hint %d/%d: %s", h.Number, h.Total, h.Text)
}

// OutcomeKind classifies a submission.
type OutcomeKind int

const (
	OutcomeNoSession OutcomeKind = iota
	OutcomeWrong
	OutcomeCorrect
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeWrong:
		return "wrong"
	case OutcomeCorrect:
		return "correct"
	default:
		return "no_session"
	}
}

// Outcome is the result of Submit.
type Outcome struct {
	Kind        OutcomeKind
	UserID      string
	DisplayName string
	Submitted   string

	// Stage is the matching step that decided a correct answer.
	Stage matcher.Stage

	// MatchedAnswer is the accepted answer closest to the submission.
	MatchedAnswer string

	Reward reward.Result
}

// Text renders the outcome for the room. OutcomeNoSession renders empty.
func (o Outcome) Text() string {
	switch o.Kind {
	case OutcomeWrong:
		return fmt.Sprintf("%q doesn't look right, keep thinking!", o.Submitted)
	case OutcomeCorrect:
		var b strings.Builder
		fmt.Fprintf(&b, "Congratulations @%s, that's correct!\n", o.DisplayName)
		fmt.Fprintf(&b, "The answer was: %s\n", o.MatchedAnswer)
		switch {
		case o.Reward.Granted:
			fmt.Fprintf(&b, "You earned %d coins!", o.Reward.Payout)
		case o.Reward.Payout > 0:
			fmt.Fprintf(&b, "Your %d coin reward could not be credited.", o.Reward.Payout)
		case o.Reward.Capped:
			b.WriteString("You've hit today's reward limit.")
		default:
			b.WriteString("No coins this time.")
		}
		return b.String()
	default:
		return ""
	}
}

// LeaderboardText renders ranked users with their accuracy.
func LeaderboardText(ranked []stats.Ranked) string {
	if len(ranked) == 0 {
		return "No players yet, start a round!"
	}
	lines := []string{"Trivia leaderboard", "--------------------"}
	for _, r := range ranked {
		lines = append(lines, fmt.Sprintf("#%d %s\n    correct: %d | attempts: %d (accuracy: %.1f%%)",
			r.Rank, r.DisplayName, r.Correct, r.Attempts, r.Accuracy()*100))
	}
	return strings.Join(lines, "\n")
}
