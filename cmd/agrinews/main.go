package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/krishisewa/agrinews/internal/config"
	"github.com/krishisewa/agrinews/internal/database"
	"github.com/krishisewa/agrinews/internal/pipeline"
	"github.com/krishisewa/agrinews/internal/schedule"
	"github.com/krishisewa/agrinews/internal/server"
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
	Use:     "agrinews",
	Short:   "Nepali agricultural news collector",
	Long:    "Agrinews scrapes Nepali agricultural news sites, categorizes articles, and serves them through a JSON API.",
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
	// Bare invocation runs the pipeline once.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("agrinews", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/agrinews/",
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
		fmt.Println("Edit it to configure sources, the classifier token, and the schedule.")
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one collection pass: scrape, categorize, persist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce()
	},
}

func runOnce() error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := pipeline.New(cfg, db).Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("\nRun complete:")
	fmt.Printf("  New articles:     %d\n", stats.New)
	fmt.Printf("  Updated articles: %d\n", stats.Updated)
	fmt.Printf("  Errors:           %d\n", stats.Errors)
	fmt.Printf("  Deactivated:      %d\n", stats.Deactivated)
	fmt.Printf("  Duration:         %s\n", stats.Duration.Round(0))
	return nil
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the collection pass daily at the configured time",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db)
		runner, err := schedule.New(cfg.Schedule, func(ctx context.Context) error {
			_, err := pipe.Run(ctx)
			return err
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Scheduler started (%s %s). Press Ctrl+C to stop.\n", cfg.Schedule.Time, cfg.Schedule.Timezone)
		if err := runner.Run(ctx); err != context.Canceled {
			return err
		}
		return nil
	},
}

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
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

		fmt.Printf("Starting API at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run the API on (default from config)")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(time.Now())
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", cfg.DatabasePath())
		fmt.Println("Articles:")
		fmt.Printf("  Active: %d\n", stats.TotalActive)
		fmt.Printf("  Today:  %d\n", stats.TodayCount)
		if len(stats.Categories) > 0 {
			fmt.Println("\nBy category:")
			for _, c := range stats.Categories {
				fmt.Printf("  %-22s %d\n", c.Category, c.Count)
			}
		}
		return nil
	},
}

func openDB() (*database.DB, error) {
	return database.Open(cfg.DatabasePath())
}
