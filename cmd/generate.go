package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/config"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/generate"
)

var flagGenerateOutput string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Rebuild headlines.json from the configured RSS sources",
	Long: `Fetch the configured RSS feeds and write a fresh headlines.json.

Breaking is rebuilt on every run; other sections are reused between full
refreshes (default: every 3 hours) so the page stays stable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.Generate == nil || len(cfg.Generate.Sections) == 0 {
			return fmt.Errorf("no generate sections configured")
		}

		gen := *cfg.Generate
		if flagGenerateOutput != "" {
			gen.Output = flagGenerateOutput
		}

		warnings, err := generate.New(gen).Run(cmd.Context())
		for _, w := range warnings {
			fmt.Printf("  [warn] %v\n", w)
		}
		if err != nil {
			return err
		}

		out := gen.Output
		if out == "" {
			out = "headlines.json"
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&flagGenerateOutput, "output", "", "output path (default from config)")
}
