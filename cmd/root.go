package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/config"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/feed"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/refresh"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/store"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "sideeye",
	Short: "Terminal front page for The Daily Side-Eye",
	Long: `sideeye renders The Daily Side-Eye front page in your terminal,
layering device-local algorithmic sections (Nothing Burger of the Day,
A Line Most People Missed, Week in Review, Same Story Different Outlet)
on top of the editor-curated ones.`,
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(generateCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sideeye %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open(config.StatePath())
	if err != nil {
		return fmt.Errorf("opening state db: %w", err)
	}
	defer db.Close()

	ctrl := newController(cfg, db)

	// Startup runs one forced refresh; a failure still launches the TUI
	// with the error on screen, and the next tick retries.
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	initial, initialErr := ctrl.Refresh(ctx, true)
	cancel()

	return tui.Run(tui.RunOpts{
		Cfg:        cfg,
		Controller: ctrl,
		Store:      db,
		Initial:    initial,
		InitialErr: initialErr,
		Version:    version,
	})
}

func newController(cfg *config.Config, db *store.Store) *refresh.Controller {
	return refresh.New(refresh.Options{
		Fetcher:   feed.NewClient(cfg.FeedURL),
		Store:     db,
		Clicks:    db,
		Picks:     cfg.PicksPolicy(),
		Layout:    cfg.LayoutPolicy(),
		Retention: cfg.RetentionDuration(),
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
