package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/config"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/layout"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch the page once and print it",
	Long:  "Run one forced refresh and print the composed page to stdout. History and clicks update exactly as in the TUI.",
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

		ctrl := newController(cfg, db)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		res, err := ctrl.Refresh(ctx, true)
		if err != nil {
			return err
		}

		printPage(res.Page)
		return nil
	},
}

func printPage(page *layout.Page) {
	title := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Faint(true)

	fmt.Println(title.Render(page.SiteName))
	if page.Tagline != "" {
		fmt.Println(dim.Render(page.Tagline))
	}
	if page.Generated != "" {
		fmt.Println(dim.Render("generated " + page.Generated))
	}

	for _, col := range page.Columns {
		for _, sec := range col.Sections {
			fmt.Println()
			name := sec.Name
			if sec.Breaking {
				name = strings.ToUpper(name)
			}
			fmt.Println(title.Render("== " + name + " =="))
			for _, st := range sec.Stories {
				line := "  - " + st.Title
				if st.Badge != "" {
					line = "  - [" + st.Badge + "] " + st.Title
				}
				if st.Source != "" {
					line += " • " + st.Source
				}
				fmt.Println(line)
				if st.Snark != "" {
					fmt.Println(dim.Render("      " + st.Snark))
				}
				fmt.Println(dim.Render("      " + st.URL))
			}
			if sec.Note != "" {
				fmt.Println(dim.Render("  (" + sec.Note + ")"))
			}
		}
	}
}
