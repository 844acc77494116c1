package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perspectr/perspectr/internal/metrics"
)

var fetchSave bool

func init() {
	fetchCmd.Flags().BoolVar(&fetchSave, "save", false, "Store the result in the snapshot database")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch your network once and print it",
	Long: `Fetch the 2D layout for the viewer, look up every member's profile and
print the merged node list in layout order.

Members whose profile could not be loaded still appear, with a placeholder
name and no contact details.

Examples:
  perspectr fetch
  perspectr fetch --human
  perspectr fetch --save --viewer u1`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	mustRequireViewer(cfg)
	logger := mustNewLogger(cfg)
	defer logger.Sync()

	agg := newAggregator(cfg, logger, metrics.NewCollector())

	ctx := commandContext(cmd)
	nodes, err := agg.Refresh(ctx, cfg.ViewerID)
	if err != nil {
		exitWithError(ExitDataError, "fetching network: %v", err)
	}

	resp := NetworkResponse{
		ViewerID: cfg.ViewerID,
		Nodes:    buildNodeResults(nodes, cfg.ViewerEmail),
	}
	for _, f := range agg.Failures() {
		resp.Failures = append(resp.Failures, FailureEntry{Index: f.Index, ID: f.ID, Error: f.Err.Error()})
	}
	resp.Degraded = len(resp.Failures)

	if fetchSave {
		db := mustOpenSnapshots(cfg)
		defer db.Close()
		id, err := db.SaveSnapshot(cfg.ViewerID, 1, nodes)
		if err != nil {
			exitWithError(ExitError, "saving snapshot: %v", err)
		}
		resp.SnapshotID = id
	}

	if !humanOutput {
		return outputJSON(resp)
	}

	fmt.Printf("%s %s\n\n", brand.Sprint("Your Perspectr Network"), subtle.Sprintf("(%d members)", len(resp.Nodes)))
	for i, n := range resp.Nodes {
		fmt.Println(formatNodeHuman(i, n))
	}
	if resp.Degraded > 0 {
		fmt.Println()
		warn.Printf("%d profile(s) could not be loaded\n", resp.Degraded)
	}
	if resp.SnapshotID != 0 {
		subtle.Printf("Saved as snapshot %d\n", resp.SnapshotID)
	}
	return nil
}
