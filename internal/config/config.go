package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/layout"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/picks"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type Config struct {
	FeedURL      string          `yaml:"feed_url"`
	PollInterval string          `yaml:"poll_interval"`
	Retention    string          `yaml:"retention"`
	Layout       *LayoutConfig   `yaml:"layout,omitempty"`
	Picks        *PicksConfig    `yaml:"picks,omitempty"`
	Generate     *GenerateConfig `yaml:"generate,omitempty"`
}

// LayoutConfig is the declarative section-to-column assignment. Sections
// are reserved display names or "*" for editor pass-through.
type LayoutConfig struct {
	Columns int          `yaml:"columns"`
	Rules   []LayoutRule `yaml:"rules"`
}

type LayoutRule struct {
	Section string `yaml:"section"`
	Column  int    `yaml:"column"`
}

// PicksConfig overrides the pick engine's vocabulary. Empty lists keep the
// built-in defaults.
type PicksConfig struct {
	LowStakesKeywords []string `yaml:"low_stakes_keywords,omitempty"`
	TragedyTerms      []string `yaml:"tragedy_terms,omitempty"`
	StopWords         []string `yaml:"stop_words,omitempty"`
}

// GenerateConfig configures the generate command, which rebuilds
// headlines.json from RSS sources.
type GenerateConfig struct {
	Output           string            `yaml:"output"`
	SiteName         string            `yaml:"site_name"`
	Tagline          string            `yaml:"tagline"`
	FullRefreshHours int               `yaml:"full_refresh_hours"`
	MaxAgeHours      int               `yaml:"max_age_hours"`
	Sections         []GenerateSection `yaml:"sections"`
}

type GenerateSection struct {
	Name     string       `yaml:"name"`
	MaxItems int          `yaml:"max_items"`
	Feeds    []FeedSource `yaml:"feeds"`
}

type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// PollDuration returns the refresh interval, defaulting to 5 minutes.
func (c *Config) PollDuration() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// RetentionDuration returns the history window, defaulting to 7 days.
// Supports "Nd" day syntax alongside normal duration strings.
func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 7 * 24 * time.Hour
	}
	if len(c.Retention) > 1 && c.Retention[len(c.Retention)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(c.Retention, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(c.Retention)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

// LayoutPolicy converts the configured rules to a layout.Policy, falling
// back to the default three-column page when none are configured.
func (c *Config) LayoutPolicy() layout.Policy {
	if c.Layout == nil || len(c.Layout.Rules) == 0 {
		return layout.DefaultPolicy()
	}
	p := layout.Policy{Columns: c.Layout.Columns}
	if p.Columns <= 0 {
		p.Columns = 3
	}
	for _, r := range c.Layout.Rules {
		p.Rules = append(p.Rules, layout.Rule{Section: r.Section, Column: r.Column})
	}
	return p
}

// PicksPolicy applies any configured vocabulary overrides on top of the
// defaults.
func (c *Config) PicksPolicy() picks.Policy {
	p := picks.DefaultPolicy()
	if c.Picks == nil {
		return p
	}
	if len(c.Picks.LowStakesKeywords) > 0 {
		p.LowStakes = lowered(c.Picks.LowStakesKeywords)
	}
	if len(c.Picks.TragedyTerms) > 0 {
		p.Tragedy = picks.CompileTragedy(c.Picks.TragedyTerms)
	}
	if len(c.Picks.StopWords) > 0 {
		stop := make(map[string]bool, len(c.Picks.StopWords))
		for _, w := range lowered(c.Picks.StopWords) {
			stop[w] = true
		}
		p.StopWords = stop
	}
	return p
}

func lowered(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "sideeye", "config.yaml")
}

// StatePath is the per-device database holding history and clicks.
func StatePath() string {
	return filepath.Join(xdg.DataHome, "sideeye", "sideeye.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: write defaults out so they are editable.
			if err := writeDefaults(path); err != nil {
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.FeedURL == "" {
		cfg.FeedURL = defaults.FeedURL
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.FeedURL)
	if err != nil {
		return fmt.Errorf("invalid feed_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed_url scheme must be http or https, got %q", u.Scheme)
	}

	if cfg.Layout != nil {
		known := make(map[string]struct{})
		for _, n := range layout.ReservedNames() {
			known[strings.ToLower(n)] = struct{}{}
		}
		cols := cfg.Layout.Columns
		if cols <= 0 {
			cols = 3
		}
		for i, r := range cfg.Layout.Rules {
			if r.Section != layout.Wildcard {
				if _, ok := known[strings.ToLower(r.Section)]; !ok {
					return fmt.Errorf("layout rule %d: unknown section %q", i, r.Section)
				}
			}
			if r.Column < 0 || r.Column >= cols {
				return fmt.Errorf("layout rule %d: column %d out of range (0-%d)", i, r.Column, cols-1)
			}
		}
	}

	if cfg.Generate != nil {
		for _, sec := range cfg.Generate.Sections {
			if sec.Name == "" {
				return fmt.Errorf("generate section: name is required")
			}
			for _, f := range sec.Feeds {
				if f.URL == "" {
					return fmt.Errorf("generate section %q: feed %q has no url", sec.Name, f.Name)
				}
			}
		}
	}

	return nil
}
