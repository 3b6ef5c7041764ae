package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/insight"
	"github.com/teampulse/teampulse/internal/pipeline"
	"github.com/teampulse/teampulse/internal/store"
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
	Use:     "teampulse",
	Short:   "Engineering insights for teams",
	Long:    "Teampulse turns engineering activity metrics into short, prioritized findings: trends, anomalies, benchmark standing, and milestones.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

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
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(narrateCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(benchmarksCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("teampulse", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/teampulse/",
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
		fmt.Println("Edit it to configure the LLM backend and rule windows.")
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

		fmt.Printf("Today: %s\n\n", store.GetToday())
		fmt.Println("Insights:")
		fmt.Printf("  Total: %d\n", stats.TotalInsights)
		fmt.Printf("  Dismissed: %d\n", stats.DismissedInsights)
		fmt.Printf("  Teams: %d\n", stats.Teams)
		fmt.Println("\nSource data:")
		fmt.Printf("  Metric samples: %d\n", stats.MetricSamples)
		fmt.Printf("  Reviewer pairs: %d\n", stats.ReviewerPairs)
		fmt.Printf("  Benchmark anchors: %d\n", stats.BenchmarkAnchors)
		return nil
	},
}

// --- generate command ---

var (
	generateTeam string
	generateDate string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the rule sweep for a team and date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateTeam == "" {
			return fmt.Errorf("--team is required")
		}
		date := generateDate
		if date == "" {
			date = store.GetToday()
		}
		if !store.ValidDate(date) {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		p := pipeline.New(cfg, db)
		result, err := p.RunRules(generateTeam, date)
		if err != nil {
			return err
		}

		fmt.Printf("Sweep for %s on %s:\n", generateTeam, date)
		fmt.Printf("  Candidates: %d\n", result.Candidates)
		fmt.Printf("  Written: %d\n", result.Written)
		fmt.Printf("  Suppressed by dismissal: %d\n", result.Suppressed)

		if len(result.Insights) > 0 {
			written := make([]insight.Candidate, len(result.Insights))
			copy(written, result.Insights)
			sort.SliceStable(written, func(i, j int) bool {
				return written[i].Priority.Rank() < written[j].Priority.Rank()
			})
			fmt.Println()
			for _, in := range written {
				fmt.Printf("  [%-6s] %-10s %s\n", in.Priority, in.Category, in.Title)
			}
		}
		return nil
	},
}

// --- narrate command ---

var (
	narrateTeam string
	narrateDate string
	narrateDays int
)

var narrateCmd = &cobra.Command{
	Use:   "narrate",
	Short: "Generate the narrative insight for a team and date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if narrateTeam == "" {
			return fmt.Errorf("--team is required")
		}
		date := narrateDate
		if date == "" {
			date = store.GetToday()
		}
		if !store.ValidDate(date) {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		p := pipeline.New(cfg, db)
		resp, err := p.RunNarrative(context.Background(), narrateTeam, date, narrateDays)
		if err != nil {
			return err
		}

		fmt.Println(resp.Headline)
		fmt.Println()
		fmt.Println(resp.Detail)
		fmt.Println()
		fmt.Println(resp.Recommendation)
		fmt.Println("\nCards:")
		for _, c := range resp.MetricCards {
			fmt.Printf("  %-12s %-12s %-10s [%s]\n", c.Title, c.Value, c.Change, c.Trend)
		}
		if resp.IsFallback {
			fmt.Println("\n(deterministic fallback, no model was available)")
		}
		return nil
	},
}

// --- insights commands ---

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "List, dismiss, or clear stored insights",
}

var (
	listTeam  string
	listLimit int
)

var insightsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List non-dismissed insights for a team",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listTeam == "" {
			return fmt.Errorf("--team is required")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		insights, err := db.ListNonDismissed(listTeam, listLimit)
		if err != nil {
			return err
		}
		if len(insights) == 0 {
			fmt.Printf("No insights for team %s\n", listTeam)
			return nil
		}

		for _, in := range insights {
			fmt.Printf("[%d] %s %-10s %-8s %s\n", in.ID, in.Date, in.Category, in.Priority, in.Title)
		}
		return nil
	},
}

var insightsDismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Dismiss an insight by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid insight ID %q", args[0])
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ok, err := db.Dismiss(id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no insight with ID %d", id)
		}
		fmt.Printf("Dismissed insight %d\n", id)
		return nil
	},
}

var (
	clearTeam string
	clearDate string
)

var insightsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Physically remove all insights for a team and date, dismissed included",
	RunE: func(cmd *cobra.Command, args []string) error {
		if clearTeam == "" || clearDate == "" {
			return fmt.Errorf("--team and --date are required")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearInsights(clearTeam, clearDate)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d insights for %s on %s\n", n, clearTeam, clearDate)
		return nil
	},
}

// --- benchmarks command ---

var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "Manage benchmark anchors",
}

// anchorFile is the YAML shape `benchmarks load` reads.
type anchorFile struct {
	Anchors []struct {
		Metric         string  `yaml:"metric"`
		TeamSizeBucket string  `yaml:"team_size_bucket"`
		P25            float64 `yaml:"p25"`
		P50            float64 `yaml:"p50"`
		P75            float64 `yaml:"p75"`
		P90            float64 `yaml:"p90"`
	} `yaml:"anchors"`
}

var benchmarksLoadCmd = &cobra.Command{
	Use:   "load <file.yaml>",
	Short: "Replace benchmark anchors from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading anchor file: %w", err)
		}

		var file anchorFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parsing anchor file: %w", err)
		}
		if len(file.Anchors) == 0 {
			return fmt.Errorf("no anchors in %s", args[0])
		}

		anchors := make([]store.BenchmarkAnchor, 0, len(file.Anchors))
		for _, a := range file.Anchors {
			anchors = append(anchors, store.BenchmarkAnchor{
				Metric:         a.Metric,
				TeamSizeBucket: a.TeamSizeBucket,
				P25:            a.P25,
				P50:            a.P50,
				P75:            a.P75,
				P90:            a.P90,
			})
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.ReplaceBenchmarkAnchors(anchors); err != nil {
			return err
		}
		fmt.Printf("Loaded %d benchmark anchors\n", len(anchors))
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateTeam, "team", "", "Team identifier")
	generateCmd.Flags().StringVar(&generateDate, "date", "", "Target date (YYYY-MM-DD, default today)")

	narrateCmd.Flags().StringVar(&narrateTeam, "team", "", "Team identifier")
	narrateCmd.Flags().StringVar(&narrateDate, "date", "", "Target date (YYYY-MM-DD, default today)")
	narrateCmd.Flags().IntVar(&narrateDays, "days", 30, "Trailing window in days")

	insightsListCmd.Flags().StringVar(&listTeam, "team", "", "Team identifier")
	insightsListCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum rows (0 = all)")

	insightsClearCmd.Flags().StringVar(&clearTeam, "team", "", "Team identifier")
	insightsClearCmd.Flags().StringVar(&clearDate, "date", "", "Target date (YYYY-MM-DD)")

	insightsCmd.AddCommand(insightsListCmd)
	insightsCmd.AddCommand(insightsDismissCmd)
	insightsCmd.AddCommand(insightsClearCmd)

	benchmarksCmd.AddCommand(benchmarksLoadCmd)
}

func openDB() (*store.DB, error) {
	dbPath := filepath.Join(cfg.GetDataDir(), "teampulse.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
