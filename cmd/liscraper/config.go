package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"liscraper/pkg/config"
	"liscraper/pkg/ui"
)

const defaultConfigName = "liscraper.yaml"

// exampleConfig is written by "config init"
const exampleConfig = `# liscraper configuration file
#
# Every option can also be set through environment variables prefixed with
# LISCRAPER_, for example LISCRAPER_MIN_DELAY or LISCRAPER_CSV_PATH.
# Command line flags take precedence over both.

# Request pacing
scraper:
  # Random delay before each simulated request, in seconds
  # min_delay must not exceed max_delay
  min_delay: 2.0
  max_delay: 5.0

  # Random seed; 0 picks a time-based seed
  # Set a fixed value to make runs reproducible
  seed: 0

  # Hourly request budget; 0 disables it
  requests_per_hour: 0

# Retry policy applied to each identifier
retry:
  # Attempts per identifier; 1 disables retries
  # Range: 1-10
  max_attempts: 1

  # Backoff between attempts
  initial_backoff: 1s
  max_backoff: 30s
  multiplier: 2.0

# Export destinations; leave a path empty to skip that format
output:
  csv_path: "profiles.csv"
  json_path: "profiles.json"
  sqlite_path: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Append-only run log; leave empty to disable
  file: "scraper.log"

  # Also log to stderr
  console: false
`

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage liscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (LISCRAPER_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'liscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging environment
variables, the configuration file and default values.

With --save the effective configuration is also written to a file.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Delay bounds
  - Retry and budget ranges
  - Output and log directories`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)

	showCmd.Flags().StringVar(&saveConfigPath, "save", "", "write the effective configuration to this file")
}

var saveConfigPath string

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigName
	}

	if err := writeExampleConfig(configPath); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		if os.IsExist(err) {
			fmt.Fprintln(ui.Output(), "\nTo overwrite, first remove the existing file:")
			fmt.Fprintf(ui.Output(), "  rm %s\n", configPath)
		}
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Output(), "\nNext steps:")
	fmt.Fprintln(ui.Output(), "1. Edit the delays and export paths")
	fmt.Fprintln(ui.Output(), "2. Run 'liscraper config validate' to check the configuration")
	fmt.Fprintln(ui.Output(), "3. Start a run with 'liscraper scrape <identifier...>'")
}

// writeExampleConfig creates path with the example configuration. It never
// overwrites an existing file.
func writeExampleConfig(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(exampleConfig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	out := ui.Output()
	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintf(out, "2. Environment variables (%s*)\n", config.EnvPrefix)
	fmt.Fprintln(out, "3. .env files")
	if configFile != "" {
		fmt.Fprintf(out, "4. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(out, "4. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(out, "5. Default values")

	if saveConfigPath != "" {
		if err := cfg.Save(saveConfigPath); err != nil {
			ui.PrintError("Failed to save configuration", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Configuration saved: " + saveConfigPath)
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
		if path == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	problems, warnings := checkConfig(cfg)

	out := ui.Output()
	if len(problems) > 0 {
		ui.PrintError("Configuration has errors")
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings")
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
		fmt.Fprintln(out)
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Delay: %.1fs - %.1fs\n", cfg.Scraper.MinDelay, cfg.Scraper.MaxDelay)
	fmt.Fprintf(out, "  Requests per hour: %d\n", cfg.Scraper.RequestsPerHour)
	fmt.Fprintf(out, "  Max attempts: %d\n", cfg.Retry.MaxAttempts)
	for _, target := range exportTargets(cfg.Output) {
		fmt.Fprintf(out, "  %s export: %s\n", target.format, target.path)
	}
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
}

// checkConfig runs checks beyond config.Validate. Problems are fatal;
// warnings are not.
func checkConfig(cfg *config.Config) (problems, warnings []string) {
	dirs := map[string]string{}
	for _, target := range exportTargets(cfg.Output) {
		dirs[filepath.Dir(target.path)] = target.format + " export"
	}
	if cfg.Logging.File != "" {
		dirs[filepath.Dir(cfg.Logging.File)] = "log file"
	}
	for dir, owner := range dirs {
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			problems = append(problems, fmt.Sprintf("%s directory %s is not a directory", owner, dir))
		}
	}

	if cfg.Scraper.MaxDelay == 0 {
		warnings = append(warnings, "delays are disabled; requests are not paced")
	}
	if cfg.Scraper.Seed != 0 {
		warnings = append(warnings, fmt.Sprintf("fixed seed %d; every run produces the same records", cfg.Scraper.Seed))
	}
	if cfg.Output.CSVPath == "" {
		warnings = append(warnings, "CSV export is disabled")
	}

	return problems, warnings
}
