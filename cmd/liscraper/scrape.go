package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"liscraper/pkg/config"
	errs "liscraper/pkg/errors"
	"liscraper/pkg/export"
	"liscraper/pkg/generator"
	"liscraper/pkg/headers"
	"liscraper/pkg/logger"
	"liscraper/pkg/models"
	"liscraper/pkg/ratelimit"
	"liscraper/pkg/retry"
	"liscraper/pkg/scraper"
	"liscraper/pkg/ui"
)

// sampleProfileCount is the number of placeholder identifiers used when none are given
const sampleProfileCount = 20

var (
	// Scrape command flags
	inputFile       string
	minDelay        float64
	maxDelay        float64
	seed            int64
	csvPath         string
	jsonPath        string
	sqlitePath      string
	maxAttempts     int
	requestsPerHour int
	logFile         string
	notify          bool
	showProfiles    int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [identifier...]",
	Short: "Collect simulated profile records",
	Long: `Collect simulated profile records for the given identifiers.

Identifiers are profile URLs or slugs, for example:
  linkedin.com/in/john-doe
  https://www.linkedin.com/in/jane-smith/

Identifiers can also be read from a file with --input, one per line.
Blank lines and lines starting with # are ignored. When no identifiers are
given, 20 sample identifiers are used.

Every record is synthetic. No network requests are made.`,
	Example: `  liscraper scrape linkedin.com/in/john-doe linkedin.com/in/jane-smith
  liscraper scrape --input profiles.txt --min-delay 0 --max-delay 0 --seed 42
  liscraper scrape --sqlite runs.db --json ""`,
	Run: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "file with one identifier per line")
	scrapeCmd.Flags().Float64Var(&minDelay, "min-delay", 2.0, "minimum delay before each request, in seconds")
	scrapeCmd.Flags().Float64Var(&maxDelay, "max-delay", 5.0, "maximum delay before each request, in seconds")
	scrapeCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks a time-based seed)")
	scrapeCmd.Flags().StringVar(&csvPath, "csv", "profiles.csv", "CSV export path (empty to skip)")
	scrapeCmd.Flags().StringVar(&jsonPath, "json", "profiles.json", "JSON export path (empty to skip)")
	scrapeCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite export path (empty to skip)")
	scrapeCmd.Flags().IntVar(&maxAttempts, "max-attempts", 1, "attempts per identifier, including the first (1 disables retries)")
	scrapeCmd.Flags().IntVar(&requestsPerHour, "requests-per-hour", 0, "hourly request budget (0 disables it)")
	scrapeCmd.Flags().StringVar(&logFile, "log-file", "scraper.log", "append-only run log (empty to disable)")
	scrapeCmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
	scrapeCmd.Flags().IntVar(&showProfiles, "show", 0, "print the first N collected profiles")
}

func runScrape(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, scrapeFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	identifiers, err := gatherIdentifiers(args, inputFile)
	if err != nil {
		ui.PrintError("Failed to read identifiers", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Identifiers", fmt.Sprintf("%d", len(identifiers)))
	ui.PrintInfo("Delay", fmt.Sprintf("%.1fs - %.1fs", cfg.Scraper.MinDelay, cfg.Scraper.MaxDelay))
	ui.PrintHighlight("[STARTING SIMULATED COLLECTION]")

	summary, err := collect(cfg, identifiers, ui.NewProgressDisplay(strings.EqualFold(cfg.Logging.Level, "debug")))
	if err != nil {
		ui.PrintError("Collection failed", err.Error())
		os.Exit(1)
	}

	printSummary(ui.Output(), summary)

	if notify {
		ui.NewNotifier().NotifyRunComplete(len(summary.Records), len(summary.Skipped))
	}
}

// scrapeFlags returns the flags the user set explicitly, keyed the way
// config.MergeCommandLineFlags expects
func scrapeFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("min-delay") {
		flags["min-delay"] = minDelay
	}
	if changed("max-delay") {
		flags["max-delay"] = maxDelay
	}
	if changed("seed") {
		flags["seed"] = seed
	}
	if changed("csv") {
		flags["csv"] = csvPath
	}
	if changed("json") {
		flags["json"] = jsonPath
	}
	if changed("sqlite") {
		flags["sqlite"] = sqlitePath
	}
	if changed("max-attempts") {
		flags["max-attempts"] = maxAttempts
	}
	if changed("requests-per-hour") {
		flags["requests-per-hour"] = requestsPerHour
	}
	if changed("log-file") {
		flags["log-file"] = logFile
	}
	if changed("log-level") {
		flags["log-level"] = logLevel
	}

	return flags
}

// gatherIdentifiers combines positional identifiers with those read from
// path. With neither, it returns the sample identifiers.
func gatherIdentifiers(args []string, path string) ([]string, error) {
	var identifiers []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			identifiers = append(identifiers, a)
		}
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errs.NewIOError("open input", path, err)
		}
		defer f.Close()

		fromFile, err := readIdentifiers(f)
		if err != nil {
			return nil, errs.NewIOError("read input", path, err)
		}
		identifiers = append(identifiers, fromFile...)
	}

	if len(identifiers) == 0 {
		return sampleIdentifiers(sampleProfileCount), nil
	}
	return identifiers, nil
}

func readIdentifiers(r io.Reader) ([]string, error) {
	var identifiers []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		identifiers = append(identifiers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return identifiers, nil
}

func sampleIdentifiers(n int) []string {
	identifiers := make([]string, n)
	for i := range identifiers {
		identifiers[i] = fmt.Sprintf("linkedin.com/in/sample-profile-%d", i+1)
	}
	return identifiers
}

// runSummary is the outcome of one collect call
type runSummary struct {
	RunID    string
	Records  []models.ProfileRecord
	Skipped  []scraper.SkippedIdentifier
	Stats    models.RunStatistics
	Exported []string
	Elapsed  time.Duration
}

// collect wires the collection pipeline from cfg, runs it over identifiers
// and writes every configured export. Only configuration and I/O failures
// are returned; per-identifier failures are reported in the summary.
func collect(cfg *config.Config, identifiers []string, progress scraper.Progress) (*runSummary, error) {
	rngs := newRands(cfg.Scraper.Seed)

	delay, err := ratelimit.NewDelayPolicy(cfg.Scraper.MinDelay, cfg.Scraper.MaxDelay, rngs.delay)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeIO, Message: "failed to initialize logger", Err: err}
	}
	defer log.Close()

	opts := []scraper.Option{
		scraper.WithRetry(retry.FromSettings(cfg.Retry, log)),
	}
	if budget := ratelimit.NewHourlyBudget(cfg.Scraper.RequestsPerHour); budget != nil {
		opts = append(opts, scraper.WithBudget(budget))
	}
	if progress != nil {
		opts = append(opts, scraper.WithProgress(progress))
	}

	collector := scraper.New(
		headers.NewProvider(rngs.headers),
		delay,
		generator.New(rngs.generator),
		log,
		opts...,
	)

	start := time.Now()
	records := collector.Collect(identifiers)

	summary := &runSummary{
		RunID:   collector.RunID(),
		Records: records,
		Skipped: collector.Skipped(),
		Stats:   collector.Statistics(),
		Elapsed: time.Since(start),
	}

	if len(records) == 0 {
		log.WithField("run_id", summary.RunID).Warn("No profiles collected")
	}

	for _, target := range exportTargets(cfg.Output) {
		exporter, err := export.ForFormat(target.format)
		if err != nil {
			return nil, err
		}
		written, err := exporter.Export(records, target.path)
		if err != nil {
			log.WithError(err).WithField("path", target.path).Error("Export failed")
			return nil, err
		}
		log.InfoWithFields("Export written", map[string]interface{}{
			"run_id":  summary.RunID,
			"format":  target.format,
			"path":    written,
			"records": len(records),
		})
		summary.Exported = append(summary.Exported, written)
	}

	return summary, nil
}

type exportTarget struct {
	format string
	path   string
}

func exportTargets(out config.OutputConfig) []exportTarget {
	var targets []exportTarget
	if out.CSVPath != "" {
		targets = append(targets, exportTarget{export.FormatCSV, out.CSVPath})
	}
	if out.JSONPath != "" {
		targets = append(targets, exportTarget{export.FormatJSON, out.JSONPath})
	}
	if out.SQLitePath != "" {
		targets = append(targets, exportTarget{export.FormatSQLite, out.SQLitePath})
	}
	return targets
}

// runRands holds one random source per component. Each source is owned by
// a single component, so its lock covers every use of it.
type runRands struct {
	headers   *rand.Rand
	delay     *rand.Rand
	generator *rand.Rand
}

// newRands derives the per-component sources from seed; seed 0 picks a
// time-based seed
func newRands(seed int64) runRands {
	s := uint64(seed)
	if seed == 0 {
		s = uint64(time.Now().UnixNano())
	}
	return runRands{
		headers:   rand.New(rand.NewPCG(s, 1)),
		delay:     rand.New(rand.NewPCG(s, 2)),
		generator: rand.New(rand.NewPCG(s, 3)),
	}
}

func printSummary(w io.Writer, summary *runSummary) {
	if len(summary.Records) == 0 {
		ui.PrintWarning("No profiles were collected")
	}

	if !ui.IsQuietMode() {
		ui.RenderStatistics(w, "Run "+summary.RunID, summary.Stats)
		if showProfiles > 0 && len(summary.Records) > 0 {
			ui.RenderProfiles(w, summary.Records, showProfiles)
		}
	}

	for _, s := range summary.Skipped {
		ui.PrintWarning("Skipped "+s.Identifier, s.Err)
	}
	for _, path := range summary.Exported {
		ui.PrintInfo("Exported", path)
	}

	ui.PrintSuccess(fmt.Sprintf("[COLLECTED %d PROFILES, SKIPPED %d]", len(summary.Records), len(summary.Skipped)))
	ui.PrintInfo("Note", "all data is simulated and does not describe real people")
}
