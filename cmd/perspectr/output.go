package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/perspectr/perspectr/internal/network"
	"github.com/perspectr/perspectr/internal/profile"
	"github.com/perspectr/perspectr/internal/selection"
)

// Human output colors
var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	info   = color.New(color.FgCyan)
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// NetworkResponse is the JSON output of fetch.
type NetworkResponse struct {
	ViewerID   string         `json:"viewer_id"`
	Nodes      []NodeResult   `json:"nodes"`
	Degraded   int            `json:"degraded"`
	SnapshotID int64          `json:"snapshot_id,omitempty"`
	Failures   []FailureEntry `json:"failures,omitempty"`
}

// NodeResult is one node with its self flag.
type NodeResult struct {
	network.Node
	Self bool `json:"self"`
}

// FailureEntry describes one degraded lookup.
type FailureEntry struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

// buildNodeResults pairs nodes with their self flag.
func buildNodeResults(nodes []network.Node, viewerEmail string) []NodeResult {
	markers := selection.Markers(nodes, viewerEmail)
	out := make([]NodeResult, len(nodes))
	for i, n := range nodes {
		out[i] = NodeResult{Node: n, Self: markers[i].Self}
	}
	return out
}

// formatNodeHuman formats one node as a single line.
func formatNodeHuman(i int, n NodeResult) string {
	glyph := selection.OtherGlyph
	name := n.Name
	if n.Self {
		glyph = selection.SelfGlyph
		name = brand.Sprint(n.Name + " (you)")
	} else if n.Degraded {
		name = warn.Sprint(n.Name)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%3d. %s %s %s", i, glyph, name, subtle.Sprintf("(%.3f, %.3f)", n.X, n.Y)))
	if n.Email != "" {
		sb.WriteString("  " + info.Sprint(n.Email))
	}
	if n.Instagram != "" {
		sb.WriteString("  ig:@" + profile.InstagramUsername(n.Instagram))
	}
	if n.Discord != "" {
		sb.WriteString("  discord:" + n.Discord)
	}
	return sb.String()
}
