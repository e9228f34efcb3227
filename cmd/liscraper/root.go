package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"liscraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "liscraper",
	Short: "A simulated LinkedIn profile collector",
	Long: `liscraper walks a list of LinkedIn profile identifiers and produces
synthetic profile records for each of them. No network requests are made:
every record is generated locally and marked as simulated.

Features:
  - Randomized browser headers and human-like request pacing
  - Optional hourly request budget and per-identifier retries
  - CSV, JSON and SQLite exports
  - Run statistics rendered as tables
  - Append-only run log`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.DetectColor(os.Stdout)
		if noColor {
			ui.SetColorEnabled(false)
		}

		if quiet {
			ui.SetQuietMode(true)
		}

		if cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./liscraper.yaml or $HOME/.config/liscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except warnings and errors")

	rootCmd.SetVersionTemplate(`liscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
