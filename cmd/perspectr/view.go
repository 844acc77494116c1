package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/perspectr/perspectr/internal/config"
	"github.com/perspectr/perspectr/internal/logging"
	"github.com/perspectr/perspectr/internal/metrics"
	"github.com/perspectr/perspectr/internal/tui"
	"github.com/perspectr/perspectr/internal/view"
)

var (
	viewMetricsAddr string
	viewSave        bool
	viewLogFile     string
)

func init() {
	viewCmd.Flags().StringVar(&viewMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	viewCmd.Flags().BoolVar(&viewSave, "save", false, "Store every refresh in the snapshot database")
	viewCmd.Flags().StringVar(&viewLogFile, "log-file", "", "Write logs to this file while the plot is open (default: discard)")
	rootCmd.AddCommand(viewCmd)
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the interactive network plot",
	Long: `Open an interactive plot of your network in the terminal.

Your own point is shown as @, everyone else as *. Click a point to see
who it is.

Keys:
  arrows / hjkl   pan
  + / -           zoom (mouse wheel works too)
  r               refresh
  esc             clear selection
  q               quit`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	mustRequireViewer(cfg)
	logger := zap.NewNop()
	if viewLogFile != "" {
		var err error
		logger, err = logging.NewFile(cfg.LogLevel, config.ExpandPath(viewLogFile))
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
	}
	defer logger.Sync()

	collector := metrics.NewCollector()

	var store view.SnapshotStore
	if viewSave {
		db := mustOpenSnapshots(cfg)
		defer db.Close()
		store = db
	}

	ctx := commandContext(cmd)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if viewMetricsAddr != "" {
		srv := serveMetrics(viewMetricsAddr, collector, logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	session := newSession(cfg, logger, collector, store)
	return tui.Run(ctx, session)
}

// serveMetrics exposes the collector at /metrics in the background.
func serveMetrics(addr string, collector *metrics.Collector, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
