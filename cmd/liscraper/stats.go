package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"liscraper/pkg/export"
	"liscraper/pkg/models"
	"liscraper/pkg/ui"
)

var statsLimit int

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Show statistics for an exported file",
	Long: `Read a CSV, JSON or SQLite export and print its statistics.

The format is chosen from the file extension (.csv, .json, .db, .sqlite,
.sqlite3). For SQLite files the most recent export is used.`,
	Example: `  liscraper stats profiles.csv
  liscraper stats runs.db --show 5`,
	Args: cobra.ExactArgs(1),
	Run:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsLimit, "show", 0, "also print the first N profiles")
}

func runStats(cmd *cobra.Command, args []string) {
	path := args[0]

	stats, records, err := fileStatistics(path)
	if err != nil {
		ui.PrintError("Failed to read export", err.Error())
		os.Exit(1)
	}

	out := ui.Output()
	ui.RenderStatistics(out, filepath.Base(path), stats)
	if statsLimit > 0 && len(records) > 0 {
		ui.RenderProfiles(out, records, statsLimit)
	}
}

func fileStatistics(path string) (models.RunStatistics, []models.ProfileRecord, error) {
	records, err := export.ReadFile(path)
	if err != nil {
		return models.RunStatistics{}, nil, err
	}
	return models.ComputeStatistics(records), records, nil
}
