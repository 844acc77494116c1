package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perspectr/perspectr/internal/config"
	"github.com/perspectr/perspectr/internal/metrics"
	"github.com/perspectr/perspectr/internal/network"
	"github.com/perspectr/perspectr/internal/storage"
	"github.com/perspectr/perspectr/internal/viewport"
	"github.com/perspectr/perspectr/internal/viz"
)

var (
	vizOutput    string
	vizSnapshot  bool
	vizPlotlyURL string
	vizNodes     string
)

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().BoolVar(&vizSnapshot, "snapshot", false, "Render the latest stored snapshot instead of fetching")
	vizCmd.Flags().StringVar(&vizNodes, "nodes", "", "Render nodes from a JSONL file (see 'snapshots export')")
	vizCmd.Flags().StringVar(&vizPlotlyURL, "plotly-url", viz.DefaultPlotlyURL, "URL of the Plotly script")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Generate an HTML plot of your network",
	Long: `Generate a standalone HTML page plotting your network.

The page supports drag to pan, scroll to zoom and click to see a member's
contact details. Your own point is marked with 👽, everyone else with 🌟.

Examples:
  # Generate HTML to stdout
  perspectr viz > network.html

  # Generate to file
  perspectr viz --output network.html

  # Render the last saved fetch without contacting the backend
  perspectr viz --snapshot -o network.html

  # Render an exported node list
  perspectr viz --nodes network.jsonl -o network.html`,
	Args: cobra.NoArgs,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if vizNodes == "" {
		mustRequireViewer(cfg)
	}
	logger := mustNewLogger(cfg)
	defer logger.Sync()

	var data *viz.PlotData
	switch {
	case vizNodes != "":
		nodes, err := storage.ReadNodes(vizNodes)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		data = plotFromNodes(cfg, nodes)

	case vizSnapshot:
		db := mustOpenSnapshots(cfg)
		defer db.Close()

		snap, err := db.LatestSnapshot(cfg.ViewerID)
		if err != nil {
			exitWithError(ExitError, "reading snapshot: %v", err)
		}
		if snap == nil {
			exitWithError(ExitDataError, "no snapshot stored for %s\n\nRun 'perspectr fetch --save' first.", cfg.ViewerID)
		}

		data = plotFromNodes(cfg, snap.Nodes)

	default:
		session := newSession(cfg, logger, metrics.NewCollector(), nil)
		ctx := commandContext(cmd)
		if err := session.Load(ctx); err != nil {
			exitWithError(ExitDataError, "fetching network: %v", err)
		}
		data = viz.BuildPlotData(session.State())
	}

	opts := viz.DefaultOptions()
	opts.PlotlyURL = vizPlotlyURL
	html, err := viz.GenerateHTML(data, opts)
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if vizOutput == "" {
		fmt.Print(html)
		return nil
	}

	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if !humanOutput {
		return outputJSON(map[string]string{"output": vizOutput})
	}
	fmt.Printf("Visualization written to %s\n", vizOutput)
	return nil
}

// plotFromNodes frames stored nodes the way a first load would.
func plotFromNodes(cfg *config.Config, nodes []network.Node) *viz.PlotData {
	ctrl := viewport.NewController(cfg.DefaultSpan)
	ctrl.InitFromNodes(nodes)
	return viz.NewPlotData(nodes, cfg.ViewerEmail, ctrl.Rect())
}
