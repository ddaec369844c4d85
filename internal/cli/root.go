package cli

import (
	"errors"
	"io/fs"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sfh/internal/config"
	"github.com/Dicklesworthstone/sfh/internal/output"
)

var (
	cfgFile string

	// Global JSON output flag - inherited by all subcommands
	jsonOutput bool

	// Build information - set by goreleaser via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sfh",
	Short: "Watch many game accounts and their server crawls from one dashboard",
	Long: `sfh keeps an overview of every configured account: whether it is logging
in, idle or busy, when its next free arena fight is due, and how far the
Hall of Fame crawl of each server has come.

Quick Start:
  sfh config init              # Write a default config
  sfh dashboard                # Open the live dashboard
  sfh dashboard --simulate     # Try it without a game client
  sfh status --json | jq .     # One-shot report for scripts`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/sfh/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (machine-readable)")

	rootCmd.AddCommand(
		newDashboardCmd(),
		newStatusCmd(),
		newEventsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

// configPath returns the config file in use.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// loadConfig reads the config. A missing default file falls back to the
// defaults; a missing file named with --config is an error.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		cfg, err := config.LoadOrDefault("")
		if err != nil {
			return nil, output.ConfigInvalidError(configPath(), err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(cfgFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, output.ConfigNotFoundError(cfgFile)
	}
	if err != nil {
		return nil, output.ConfigInvalidError(cfgFile, err)
	}
	return cfg, nil
}

// reportFormatter follows --json, SFH_OUTPUT_FORMAT and pipe detection.
// JSON is indented on a terminal and compact when piped.
func reportFormatter(cmd *cobra.Command) *output.Formatter {
	return output.New(
		output.WithFormat(output.DetectFormat(IsJSONOutput())),
		output.WithWriter(cmd.OutOrStdout()),
		output.WithPretty(output.IsTerminal()),
	)
}

// plainFormatter prints JSON only when --json is given.
func plainFormatter(cmd *cobra.Command) *output.Formatter {
	return output.New(
		output.WithJSON(IsJSONOutput()),
		output.WithWriter(cmd.OutOrStdout()),
	)
}

func goVersion() string {
	return runtime.Version()
}

func goPlatform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
