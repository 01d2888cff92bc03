package cmd

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/trivia/internal/game"
)

const consoleRoom = "console"

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play trivia in the terminal",
	Long: `Play a single trivia room in the terminal.

Type an answer to guess. Commands:
  /start [easy|normal|hard]  start a round
  /hint                      reveal the next hint
  /end                       give up and reveal the answer
  /top                       show the leaderboard
  /quit                      leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = os.Getenv("USER")
		}
		if name == "" {
			name = "player"
		}

		ctx := cmd.Context()
		out := &console{w: cmd.OutOrStdout()}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

		eng, err := buildEngine(ctx, cmd, cfg, out, logger)
		if err != nil {
			return err
		}
		defer eng.Close()
		defer eng.manager.Shutdown()

		out.println(titleStyle.Render("Trivia") + hintStyle.Render("  type /start to begin, /quit to leave"))

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !strings.HasPrefix(line, "/") {
				o, err := eng.manager.Submit(ctx, consoleRoom, name, name, line)
				switch {
				case err != nil:
					out.println(wrongStyle.Render(game.UserMessage(err)))
				case o.Kind == game.OutcomeCorrect:
					out.println(correctStyle.Render(o.Text()))
				case o.Kind == game.OutcomeWrong:
					out.println(wrongStyle.Render(o.Text()))
				default:
					out.println(hintStyle.Render(game.UserMessage(game.ErrNoActiveSession)))
				}
				continue
			}

			fields := strings.Fields(line)
			switch fields[0] {
			case "/start":
				difficulty := ""
				if len(fields) > 1 {
					difficulty = fields[1]
				}
				out.println(hintStyle.Render("Thinking of a question..."))
				a, err := eng.manager.Start(ctx, consoleRoom, difficulty)
				if err != nil {
					out.println(wrongStyle.Render(game.UserMessage(err)))
					continue
				}
				out.println(questionStyle.Render(a.Text()))
			case "/hint":
				h, err := eng.manager.Hint(consoleRoom)
				if err != nil {
					out.println(wrongStyle.Render(game.UserMessage(err)))
					continue
				}
				out.println(hintStyle.Render(h.String()))
			case "/end":
				r, err := eng.manager.End(ctx, consoleRoom, name)
				if err != nil {
					out.println(wrongStyle.Render(game.UserMessage(err)))
					continue
				}
				out.println(noticeStyle.Render(r.Text()))
			case "/top":
				out.println(game.LeaderboardText(eng.manager.Leaderboard(0)))
			case "/quit", "/exit":
				return nil
			default:
				out.println(hintStyle.Render("Unknown command " + fields[0]))
			}
		}
		return scanner.Err()
	},
}

func init() {
	playCmd.Flags().String("name", "", "Display name (default $USER)")
}

// console serializes output from the prompt loop and timer callbacks.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lipgloss.Fprintln(c.w, s)
}

// Announce implements game.Notifier.
func (c *console) Announce(_ string, msg game.Message) {
	c.println(noticeStyle.Render(msg.Text))
}

var _ game.Notifier = (*console)(nil)
