// Package main provides the perspectr CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/perspectr/perspectr/internal/config"
	"github.com/perspectr/perspectr/internal/embedding"
	"github.com/perspectr/perspectr/internal/logging"
	"github.com/perspectr/perspectr/internal/metrics"
	"github.com/perspectr/perspectr/internal/network"
	"github.com/perspectr/perspectr/internal/profile"
	"github.com/perspectr/perspectr/internal/storage"
	"github.com/perspectr/perspectr/internal/view"
)

// Version is set at build time via ldflags
var Version = "dev"

// Global flags
var (
	humanOutput bool
	logLevel    string
	viewerFlag  string
	emailFlag   string
	apiURLFlag  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "perspectr",
	Short: "Explore your place in the Perspectr network",
	Long: `perspectr shows where you sit among other members in a 2D map of
shared perspectives, built from everyone's questionnaire answers.

Core features:
  - Interactive terminal plot with pan, zoom and click-to-inspect
  - Standalone HTML export of the same plot
  - Local history of fetched networks
  - Read and update your own questionnaire

All commands output JSON by default; pass --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&viewerFlag, "viewer", "", "Viewer user id (overrides config)")
	rootCmd.PersistentFlags().StringVar(&emailFlag, "email", "", "Viewer email, used to mark your own point (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend base URL (overrides config)")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, applies global flags and validates.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if viewerFlag != "" {
		cfg.ViewerID = viewerFlag
	}
	if emailFlag != "" {
		cfg.ViewerEmail = emailFlag
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// mustRequireViewer exits with a hint when no viewer id is configured.
func mustRequireViewer(cfg *config.Config) {
	if err := cfg.RequireViewer(); err != nil {
		if errors.Is(err, config.ErrViewerNotConfigured) {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		}
		os.Exit(ExitConfigError)
	}
}

// mustNewLogger builds the process logger.
func mustNewLogger(cfg *config.Config) *zap.Logger {
	logger, err := logging.New(cfg.LogLevel, humanOutput)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return logger
}

// mustOpenSnapshots opens the snapshot database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenSnapshots(cfg *config.Config) *storage.DB {
	db, err := storage.OpenDB(cfg.SnapshotDB)
	if err != nil {
		exitWithError(ExitError, "opening snapshot database: %v", err)
	}
	return db
}

func newProfileClient(cfg *config.Config, logger *zap.Logger) *profile.Client {
	return profile.NewClient(
		profile.WithBaseURL(cfg.APIURL),
		profile.WithTimeout(cfg.RequestTimeout),
		profile.WithRateLimit(cfg.LookupRate, cfg.LookupBurst),
		profile.WithLogger(logger),
	)
}

func newAggregator(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *network.Aggregator {
	fetcher := embedding.NewHTTPFetcher(
		embedding.WithBaseURL(cfg.APIURL),
		embedding.WithTimeout(cfg.RequestTimeout),
	)
	return network.NewAggregator(fetcher, newProfileClient(cfg, logger),
		network.WithConcurrency(cfg.MaxConcurrentLookups),
		network.WithLogger(logger),
		network.WithMetrics(collector),
	)
}

func viewerFromConfig(cfg *config.Config) view.Viewer {
	return view.Viewer{ID: cfg.ViewerID, Email: cfg.ViewerEmail, Name: cfg.ViewerName}
}

// newSession wires a session from config. store may be nil.
func newSession(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector, store view.SnapshotStore) *view.Session {
	opts := []view.SessionOption{
		view.WithDefaultSpan(cfg.DefaultSpan),
		view.WithLogger(logger),
	}
	if store != nil {
		opts = append(opts, view.WithSnapshotStore(store))
	}
	return view.NewSession(newAggregator(cfg, logger, collector), viewerFromConfig(cfg), opts...)
}
