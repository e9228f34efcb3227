package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liscraper/pkg/config"
	errs "liscraper/pkg/errors"
	"liscraper/pkg/export"
	"liscraper/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Scraper.MinDelay = 0
	cfg.Scraper.MaxDelay = 0
	cfg.Scraper.Seed = 42
	cfg.Output = config.OutputConfig{
		CSVPath:    filepath.Join(dir, "out", "profiles.csv"),
		JSONPath:   filepath.Join(dir, "out", "profiles.json"),
		SQLitePath: filepath.Join(dir, "out", "profiles.db"),
	}
	cfg.Logging.File = filepath.Join(dir, "scraper.log")
	return cfg
}

func TestReadIdentifiers(t *testing.T) {
	input := `# team
linkedin.com/in/john-doe

  https://www.linkedin.com/in/jane-smith/
# trailing comment
`
	got, err := readIdentifiers(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"linkedin.com/in/john-doe",
		"https://www.linkedin.com/in/jane-smith/",
	}, got)
}

func TestGatherIdentifiers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("linkedin.com/in/from-file\n"), 0644))

	got, err := gatherIdentifiers([]string{"linkedin.com/in/from-args", "  "}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"linkedin.com/in/from-args", "linkedin.com/in/from-file"}, got)
}

func TestGatherIdentifiersDefaultsToSamples(t *testing.T) {
	got, err := gatherIdentifiers(nil, "")
	require.NoError(t, err)
	require.Len(t, got, sampleProfileCount)
	assert.Equal(t, "linkedin.com/in/sample-profile-1", got[0])
	assert.Equal(t, "linkedin.com/in/sample-profile-20", got[19])
}

func TestGatherIdentifiersMissingFile(t *testing.T) {
	_, err := gatherIdentifiers(nil, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errs.IsIO(err))
}

func TestExportTargets(t *testing.T) {
	targets := exportTargets(config.OutputConfig{CSVPath: "a.csv", SQLitePath: "a.db"})
	assert.Equal(t, []exportTarget{
		{export.FormatCSV, "a.csv"},
		{export.FormatSQLite, "a.db"},
	}, targets)

	assert.Empty(t, exportTargets(config.OutputConfig{}))
}

func TestScrapeFlagsOnlyIncludesChangedFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Float64Var(&minDelay, "min-delay", 2.0, "")
	cmd.Flags().Float64Var(&maxDelay, "max-delay", 5.0, "")
	cmd.Flags().Int64Var(&seed, "seed", 0, "")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 1, "")

	require.NoError(t, cmd.Flags().Set("min-delay", "0.5"))
	require.NoError(t, cmd.Flags().Set("seed", "7"))
	require.NoError(t, cmd.Flags().Set("max-attempts", "3"))

	flags := scrapeFlags(cmd)
	assert.Equal(t, map[string]interface{}{
		"min-delay":    0.5,
		"seed":         int64(7),
		"max-attempts": 3,
	}, flags)

	cfg := config.DefaultConfig()
	cfg.MergeCommandLineFlags(flags)
	assert.Equal(t, 0.5, cfg.Scraper.MinDelay)
	assert.Equal(t, 5.0, cfg.Scraper.MaxDelay)
	assert.Equal(t, int64(7), cfg.Scraper.Seed)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestNewRandsGivesEachComponentItsOwnSource(t *testing.T) {
	a := newRands(42)
	b := newRands(42)

	assert.NotSame(t, a.headers, a.delay)
	assert.NotSame(t, a.delay, a.generator)
	assert.NotSame(t, a.headers, a.generator)

	// drawing from one source leaves the others untouched
	for i := 0; i < 10; i++ {
		a.headers.Uint64()
	}
	assert.Equal(t, b.delay.Uint64(), a.delay.Uint64())
	assert.Equal(t, b.generator.Uint64(), a.generator.Uint64())
}

func TestCollectWritesEveryExport(t *testing.T) {
	cfg := testConfig(t)

	summary, err := collect(cfg, []string{"linkedin.com/in/john-doe", "linkedin.com/in/jane-smith"}, nil)
	require.NoError(t, err)

	require.Len(t, summary.Records, 2)
	assert.Empty(t, summary.Skipped)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.Stats.TotalProfiles)
	assert.Len(t, summary.Exported, 3)
	assert.Equal(t, "John Doe", summary.Records[0].Name)
	assert.Equal(t, "jane-smith", summary.Records[1].Username)

	for _, path := range []string{cfg.Output.CSVPath, cfg.Output.JSONPath, cfg.Output.SQLitePath} {
		records, err := export.ReadFile(path)
		require.NoError(t, err, path)
		if diff := cmp.Diff(summary.Records, records, cmpopts.IgnoreFields(models.ProfileRecord{}, "ScrapedAt")); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", path, diff)
		}
	}

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Collection complete")
	assert.Contains(t, string(data), summary.RunID)
}

func TestCollectIsReproducibleWithSeed(t *testing.T) {
	ids := []string{"linkedin.com/in/a", "linkedin.com/in/b", "linkedin.com/in/c"}

	first, err := collect(testConfig(t), ids, nil)
	require.NoError(t, err)
	second, err := collect(testConfig(t), ids, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Records, second.Records, cmpopts.IgnoreFields(models.ProfileRecord{}, "ScrapedAt")); diff != "" {
		t.Errorf("same seed produced different records (-first +second):\n%s", diff)
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestCollectRejectsInvalidDelays(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scraper.MinDelay = 3
	cfg.Scraper.MaxDelay = 1

	_, err := collect(cfg, []string{"linkedin.com/in/a"}, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestCollectReportsExportFailure(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.Output = config.OutputConfig{CSVPath: filepath.Join(blocker, "profiles.csv")}

	_, err := collect(cfg, []string{"linkedin.com/in/a"}, nil)
	require.Error(t, err)
	assert.True(t, errs.IsIO(err))
}

func TestCollectWithNoIdentifiersWritesEmptyExports(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.SQLitePath = ""

	summary, err := collect(cfg, []string{}, nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Records)
	assert.Len(t, summary.Exported, 2)

	data, err := os.ReadFile(cfg.Output.CSVPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestFileStatistics(t *testing.T) {
	cfg := testConfig(t)
	summary, err := collect(cfg, []string{"linkedin.com/in/a", "linkedin.com/in/b"}, nil)
	require.NoError(t, err)

	stats, records, err := fileStatistics(cfg.Output.JSONPath)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, summary.Stats.TotalProfiles, stats.TotalProfiles)
	assert.InDelta(t, summary.Stats.AverageConnections, stats.AverageConnections, 1e-9)

	_, _, err = fileStatistics(filepath.Join(t.TempDir(), "profiles.txt"))
	assert.True(t, errs.IsConfig(err))
}
