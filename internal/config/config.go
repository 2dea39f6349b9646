package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources      []Source                   `yaml:"sources"`
	Keywords     map[string]KeywordCategory `yaml:"keywords"`
	SourceTiers  []SourceTier               `yaml:"source_tiers"`
	TitleSignals []string                   `yaml:"title_signals"`
	Collection   Collection                 `yaml:"collection"`
	Curation     Curation                   `yaml:"curation"`
	LLM          LLM                        `yaml:"llm"`
	Fallback     map[string][]FallbackItem  `yaml:"fallback"`
	Output       Output                     `yaml:"output"`
	Server       Server                     `yaml:"server"`
}

// Source describes one configured feed. Sources are loaded once per run and
// never mutated by the pipeline.
type Source struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"` // feed, page, or api
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Priority string `yaml:"priority"`
	Group    string `yaml:"group"`
}

// KeywordCategory is one weighted keyword list used by the impact scorer.
type KeywordCategory struct {
	Weight   float64  `yaml:"weight"`
	Keywords []string `yaml:"keywords"`
}

// SourceTier maps a set of source names to a score multiplier. Tiers are
// checked in list order; the first tier containing a source wins.
type SourceTier struct {
	Name       string   `yaml:"name"`
	Multiplier float64  `yaml:"multiplier"`
	Sources    []string `yaml:"sources"`
}

type Collection struct {
	Workers         int `yaml:"workers"`
	FetchTimeoutSec int `yaml:"fetch_timeout_seconds"`
	MaxPerSource    int `yaml:"max_per_source"`
	StalenessDays   int `yaml:"staleness_days"`
	MinPerGroup     int `yaml:"min_per_group"`
}

type Curation struct {
	MinItems  int `yaml:"min_items"`
	MaxItems  int `yaml:"max_items"`
	EnrichTop int `yaml:"enrich_top"`
}

type LLM struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// FallbackItem is a templated placeholder used to top up short groups.
// "{date}" in the summary is replaced with the run date at supply time.
type FallbackItem struct {
	Title    string `yaml:"title"`
	Summary  string `yaml:"summary"`
	Source   string `yaml:"source"`
	Priority string `yaml:"priority"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

// ConfigDir returns the XDG config directory for aidigest.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "aidigest")
}

// DataDir returns the XDG data directory for aidigest.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "aidigest")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/aidigest/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'aidigest init' to create a default config",
		xdgConfig,
	)
}

// Load reads, parses, and validates a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML bytes into a Config, applying defaults and validating.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{
		Collection: Collection{
			Workers:         10,
			FetchTimeoutSec: 15,
			MaxPerSource:    30,
			StalenessDays:   3,
			MinPerGroup:     10,
		},
		Curation: Curation{
			MinItems:  5,
			MaxItems:  20,
			EnrichTop: 8,
		},
		LLM: LLM{
			Enabled:   true,
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Server: Server{Port: 8000},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		if s.Kind == "" {
			s.Kind = "feed"
		}
		if s.Priority == "" {
			s.Priority = "medium"
		}
		if s.Group == "" {
			s.Group = "international"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks for systemic misconfiguration. A broken weight table aborts
// the run; individual source problems never do.
func (c *Config) Validate() error {
	if len(c.Keywords) == 0 {
		return fmt.Errorf("config: no keyword categories defined")
	}
	for name, cat := range c.Keywords {
		if cat.Weight <= 0 {
			return fmt.Errorf("config: keyword category %q has non-positive weight %v", name, cat.Weight)
		}
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("config: keyword category %q has no keywords", name)
		}
	}
	for _, tier := range c.SourceTiers {
		if tier.Multiplier <= 0 {
			return fmt.Errorf("config: source tier %q has non-positive multiplier %v", tier.Name, tier.Multiplier)
		}
	}
	if c.Curation.MinItems > c.Curation.MaxItems {
		return fmt.Errorf("config: curation min_items %d exceeds max_items %d", c.Curation.MinItems, c.Curation.MaxItems)
	}
	return nil
}

// Vocabulary returns the lowercased union of all category keywords, used by
// the topical relevance filter.
func (c *Config) Vocabulary() []string {
	var vocab []string
	for _, cat := range c.Keywords {
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				vocab = append(vocab, kw)
			}
		}
	}
	return vocab
}

// Groups returns the distinct group names referenced by sources, in first-seen
// order, followed by any fallback-only groups.
func (c *Config) Groups() []string {
	seen := make(map[string]struct{})
	var groups []string
	for _, s := range c.Sources {
		if _, ok := seen[s.Group]; !ok {
			seen[s.Group] = struct{}{}
			groups = append(groups, s.Group)
		}
	}
	var extra []string
	for g := range c.Fallback {
		if _, ok := seen[g]; !ok {
			seen[g] = struct{}{}
			extra = append(extra, g)
		}
	}
	sort.Strings(extra)
	return append(groups, extra...)
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
