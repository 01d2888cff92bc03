package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/trivia/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the trivia leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		top, _ := cmd.Flags().GetInt("top")
		if top <= 0 {
			top = cfg.Game.LeaderboardSize
		}

		ctx := cmd.Context()
		b, err := openBackend(ctx, cmd, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		st, err := stats.Load(ctx, b.docs)
		if err != nil {
			return err
		}

		ranked := st.Top(top)
		if len(ranked) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No players yet.")
			return nil
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Trivia leaderboard"))
		lipgloss.Fprintln(cmd.OutOrStdout(), leaderboardTable(ranked))
		return nil
	},
}

func leaderboardTable(ranked []stats.Ranked) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers("#", "Player", "Correct", "Attempts", "Accuracy").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return s.Bold(true).Foreground(primary)
			case row == 0:
				return s.Foreground(accent)
			}
			return s
		})
	for _, r := range ranked {
		t.Row(
			strconv.Itoa(r.Rank),
			r.DisplayName,
			strconv.Itoa(r.Correct),
			strconv.Itoa(r.Attempts),
			fmt.Sprintf("%.1f%%", r.Accuracy()*100),
		)
	}
	return t.Render()
}

func init() {
	statsCmd.Flags().IntP("top", "n", 0, "Number of players to show (default from config)")
}
