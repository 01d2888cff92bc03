package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/trivia/internal/history"
	"github.com/abhisek/trivia/internal/ledger"
	"github.com/abhisek/trivia/internal/stats"
	"github.com/abhisek/trivia/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear answer history, user stats or the daily reward ledger",
	Long: `Clear stored trivia data. Without selection flags every document is
cleared: the answer history used for duplicate detection, user stats and
the daily reward ledger. Coin balances are not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		targets := resetTargets(cmd)
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(cmd, "Clear "+strings.Join(targets, ", ")+"?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		ctx := cmd.Context()
		b, err := openBackend(ctx, cmd, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		for _, t := range targets {
			if err := resetDocument(ctx, b.docs, t); err != nil {
				return fmt.Errorf("reset %s: %w", t, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s.\n", t)
		}
		return nil
	},
}

func resetTargets(cmd *cobra.Command) []string {
	var targets []string
	for _, name := range []string{"history", "stats", "ledger"} {
		if on, _ := cmd.Flags().GetBool(name); on {
			targets = append(targets, name)
		}
	}
	if len(targets) == 0 {
		targets = []string{"history", "stats", "ledger"}
	}
	return targets
}

func resetDocument(ctx context.Context, ds store.DocumentStore, target string) error {
	switch target {
	case "history":
		h, err := history.Load(ctx, ds)
		if err != nil {
			return err
		}
		return h.Reset(ctx)
	case "stats":
		s, err := stats.Load(ctx, ds)
		if err != nil {
			return err
		}
		return s.Reset(ctx)
	case "ledger":
		l, err := ledger.Load(ctx, ds)
		if err != nil {
			return err
		}
		return l.Reset(ctx)
	}
	return fmt.Errorf("unknown target %q", target)
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	resetCmd.Flags().Bool("history", false, "Clear the answer history")
	resetCmd.Flags().Bool("stats", false, "Clear user stats")
	resetCmd.Flags().Bool("ledger", false, "Clear the daily reward ledger")
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
