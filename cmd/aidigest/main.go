package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tshell/aidigest/internal/collect"
	"github.com/tshell/aidigest/internal/config"
	"github.com/tshell/aidigest/internal/database"
	"github.com/tshell/aidigest/internal/dedup"
	"github.com/tshell/aidigest/internal/filter"
	"github.com/tshell/aidigest/internal/news"
	"github.com/tshell/aidigest/internal/normalize"
	"github.com/tshell/aidigest/internal/pipeline"
	"github.com/tshell/aidigest/internal/report"
	"github.com/tshell/aidigest/internal/score"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "aidigest",
	Short:   "Daily AI news digests",
	Long:    "aidigest collects AI news from configured feeds, scores each item's impact, and curates a ranked daily digest per coverage group.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// .env is optional; real env vars win either way
		godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("aidigest", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/aidigest/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, keywords, and the LLM refiner.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Today: %s\n\n", database.Today())
		fmt.Println("Runs:")
		fmt.Printf("  Total: %d\n", stats.TotalRuns)
		if stats.LastRunDate != "" {
			fmt.Printf("  Last run: %s\n", stats.LastRunDate)
		}
		fmt.Println("\nItems:")
		fmt.Printf("  Total stored: %d\n", stats.TotalItems)
		fmt.Printf("  Curated: %d\n", stats.CuratedItems)
		fmt.Printf("  High impact: %d\n", stats.HighTierItems)
		fmt.Println("\nOutput:")
		fmt.Printf("  Digests: %d\n", stats.Digests)
		return nil
	},
}

// --- collect command ---

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch all configured sources and report per-source outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Collecting from %d sources...\n", len(cfg.Sources))

		coordinator := collect.NewCoordinator(cfg.Collection)
		result := coordinator.Collect(context.Background(), cfg.Sources, time.Now())

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Sources succeeded: %d/%d\n", result.Stats.Succeeded, result.Stats.TotalSources)
		fmt.Printf("  Items collected: %d\n", result.Stats.RawItems)

		outcomes := append([]news.Outcome(nil), result.Outcomes...)
		sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Items > outcomes[j].Items })
		fmt.Println("\nItems by source:")
		for _, o := range outcomes {
			if o.OK {
				fmt.Printf("  %s: %d\n", o.Source, o.Items)
			} else {
				fmt.Printf("  %s: failed (%s)\n", o.Source, o.Err)
			}
		}
		return nil
	},
}

// --- score command ---

var scoreTop int

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Collect, filter, and score items without persisting or curating",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		coordinator := collect.NewCoordinator(cfg.Collection)
		result := coordinator.Collect(context.Background(), cfg.Sources, now)

		flt := filter.New(cfg.Vocabulary(), now)
		scorer := score.New(cfg)

		for _, group := range cfg.Groups() {
			items := dedup.Reduce(flt.Apply(normalize.Apply(result.Groups[group])))
			scored := scorer.ScoreAll(items)
			score.Rank(scored)

			fmt.Printf("\n[%s] %d candidates\n", group, len(scored))
			for i, it := range scored {
				if i >= scoreTop {
					break
				}
				fmt.Printf("  %5.1f %-6s %s\n", it.Score, it.Tier, it.Title)
			}
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().IntVar(&scoreTop, "top", 10, "Number of top items to show per group")
}

// --- run command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: collect -> filter -> dedup -> score -> curate -> compose",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg)
		result := pipe.Run(context.Background())

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if err := persistRun(db, result); err != nil {
			return fmt.Errorf("persisting run: %w", err)
		}
		if err := writeDigestFile(result); err != nil {
			log.Printf("Writing digest file: %v", err)
		}

		fmt.Println("\nPipeline complete! Run 'aidigest serve' to view the digest.")
		return nil
	},
}

// persistRun stores the run's items, outcomes, digest, and stats. A re-run
// for the same date replaces what the earlier run stored.
func persistRun(db *database.DB, result *pipeline.Result) error {
	if err := db.ClearRun(result.RunDate); err != nil {
		return err
	}

	var curatedTotal int
	for _, g := range result.Groups {
		if err := db.InsertItems(result.RunDate, g.Name, g.Scored, false); err != nil {
			return err
		}
		if err := db.InsertItems(result.RunDate, g.Name, g.Curated, true); err != nil {
			return err
		}
		curatedTotal += len(g.Curated)
	}

	if err := db.InsertOutcomes(result.RunDate, result.Outcomes); err != nil {
		return err
	}
	if err := db.InsertDigest(result.RunDate, result.Digest.Summary, result.Digest.Body); err != nil {
		return err
	}

	return db.UpsertRun(database.Run{
		RunDate:          result.RunDate,
		TotalSources:     result.Stats.TotalSources,
		SucceededSources: result.Stats.Succeeded,
		FailedSources:    result.Stats.Failed,
		RawItems:         result.Stats.RawItems,
		CuratedItems:     curatedTotal,
	})
}

func writeDigestFile(result *pipeline.Result) error {
	dir := filepath.Join(cfg.GetDataDir(), "digests")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, result.RunDate+".md")
	if err := os.WriteFile(path, []byte(result.Digest.Body), 0o644); err != nil {
		return err
	}
	fmt.Printf("\nDigest written to %s\n", path)
	return nil
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return report.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (defaults to config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "aidigest.db")
	return database.Open(dbPath)
}
