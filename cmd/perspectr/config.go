package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/perspectr/perspectr/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  perspectr config                          # Show all config
  perspectr config viewer-id                # Get specific value
  perspectr config viewer-id u1             # Set value
  perspectr config default-span 8           # Initial viewport half-width

Keys:
  api-url                 Base URL of the profile and layout service
  viewer-id               Your user id
  viewer-email            Your email, used to mark your own node
  viewer-name             Your display name
  default-span            Viewport half-width around your network's center
  request-timeout         Per-request timeout (e.g. 15s)
  max-concurrent-lookups  Parallel profile lookups per refresh
  lookup-rate             Profile lookups per second
  lookup-burst            Profile lookup burst size
  log-level               debug, info, warn or error
  snapshot-db             Path to the snapshot database

Environment variables (PERSPECTR_API_URL, PERSPECTR_VIEWER_ID, ...) override
the file when reading but are never written back.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	// No args: show all config
	if len(args) == 0 {
		cfg := mustLoadConfig()
		values := make(map[string]string, len(config.Keys()))
		for _, k := range config.Keys() {
			v, _ := cfg.Get(k)
			values[k] = v
		}
		if !humanOutput {
			return outputJSON(values)
		}
		for _, k := range config.Keys() {
			fmt.Printf("%-23s %s\n", k+":", values[k])
		}
		return nil
	}

	key := config.NormalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		cfg := mustLoadConfig()
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): v})
		}
		return nil
	}

	// Two args: set value. Read the file alone so env overrides are not persisted.
	path := config.Path()
	cfg, err := config.LoadFrom(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Set(key, args[1]); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}
	config.ResetCache()

	value, _ := cfg.Get(key)
	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
