package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/perspectr/perspectr/internal/storage"
)

var (
	snapshotsLimit  int
	snapshotsOutput string
)

func init() {
	snapshotsCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "Maximum number of snapshots to list (0 for all)")
	snapshotsExportCmd.Flags().StringVarP(&snapshotsOutput, "output", "o", "", "Write JSONL to this file instead of stdout")
	snapshotsCmd.AddCommand(snapshotsExportCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored network snapshots",
	Long: `List snapshots saved by 'fetch --save' or 'view --save', newest first.

Examples:
  perspectr snapshots
  perspectr snapshots --limit 5 --human`,
	Args: cobra.NoArgs,
	RunE: runSnapshots,
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	mustRequireViewer(cfg)

	db := mustOpenSnapshots(cfg)
	defer db.Close()

	snaps, err := db.ListSnapshots(cfg.ViewerID, snapshotsLimit)
	if err != nil {
		exitWithError(ExitDataError, "listing snapshots: %v", err)
	}

	if !humanOutput {
		return outputJSON(snaps)
	}

	if len(snaps) == 0 {
		fmt.Println(subtle.Sprint("No snapshots stored"))
		return nil
	}
	for _, s := range snaps {
		fmt.Printf("%s  %s  epoch %d  %d nodes\n",
			brand.Sprintf("#%d", s.ID),
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.Epoch, s.NodeCount)
	}
	return nil
}

var snapshotsExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a snapshot's nodes as JSONL",
	Long: `Export the nodes of a stored snapshot, one JSON object per line, in
layout order. Without an id the newest snapshot is exported.

The output can be rendered later with 'perspectr viz --nodes FILE'.

Examples:
  perspectr snapshots export > network.jsonl
  perspectr snapshots export 12 -o network.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotsExport,
}

func runSnapshotsExport(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	db := mustOpenSnapshots(cfg)
	defer db.Close()

	var snap *storage.Snapshot
	var err error
	if len(args) == 1 {
		id, perr := strconv.ParseInt(args[0], 10, 64)
		if perr != nil {
			exitWithError(ExitError, "invalid snapshot id %q", args[0])
		}
		snap, err = db.GetSnapshot(id)
	} else {
		mustRequireViewer(cfg)
		snap, err = db.LatestSnapshot(cfg.ViewerID)
	}
	if err != nil {
		exitWithError(ExitDataError, "loading snapshot: %v", err)
	}
	if snap == nil {
		exitWithError(ExitDataError, "no matching snapshot\n\nRun 'perspectr fetch --save' to store one.")
	}

	if snapshotsOutput == "" {
		return storage.EncodeNodes(os.Stdout, snap.Nodes)
	}
	if err := storage.WriteNodes(snapshotsOutput, snap.Nodes); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if humanOutput {
		fmt.Fprintf(os.Stderr, "Wrote %d nodes from snapshot #%d to %s\n", len(snap.Nodes), snap.ID, snapshotsOutput)
	}
	return nil
}
