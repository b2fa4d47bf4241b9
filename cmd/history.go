package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/config"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/history"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/store"
)

var flagPruneOlderThan string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or maintain the device history and click log",
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show state database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.StatePath()
		db, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening state db: %w", err)
		}
		defer db.Close()

		histCount, clickCount, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("State: %s\n", dbPath)
		fmt.Printf("History entries: %d\n", histCount)
		fmt.Printf("Clicks: %d\n", clickCount)
		fmt.Printf("Size: %s\n", formatBytes(size))
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired entries from the history",
	Long: `Apply the retention window to the stored history immediately.

Uses the retention value from config (default: 7d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		db, err := store.Open(config.StatePath())
		if err != nil {
			return fmt.Errorf("opening state db: %w", err)
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseDays(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		entries := db.LoadHistory()
		pruned := history.Prune(entries, time.Now(), retention)
		if err := db.SaveHistory(pruned); err != nil {
			return fmt.Errorf("saving history: %w", err)
		}

		removed := len(entries) - len(pruned)
		if removed == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d entr%s older than %s.\n", removed, plural(removed, "y", "ies"), formatDuration(retention))
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire seen-story history",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(config.StatePath())
		if err != nil {
			return fmt.Errorf("opening state db: %w", err)
		}
		defer db.Close()

		n, err := db.ClearHistory()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d entr%s.\n", n, plural(int(n), "y", "ies"))
		return nil
	},
}

var historyResetClicksCmd = &cobra.Command{
	Use:   "reset-clicks",
	Short: "Forget which stories were clicked on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(config.StatePath())
		if err != nil {
			return fmt.Errorf("opening state db: %w", err)
		}
		defer db.Close()

		n, err := db.ResetClicks()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d click record(s).\n", n)
		return nil
	},
}

func init() {
	historyPruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention window (e.g., 3d, 72h)")
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyPruneCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyResetClicksCmd)
}

// parseDays parses durations with an extra "Nd" day syntax.
func parseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
