package export

import (
	"path/filepath"
	"strings"
	"time"

	errs "liscraper/pkg/errors"
	"liscraper/pkg/models"
)

// Columns is the fixed column order of tabular exports
var Columns = []string{
	"profile_url",
	"username",
	"name",
	"title",
	"company",
	"location",
	"about",
	"skills",
	"connections",
	"endorsements",
	"scraped_at",
	"data_type",
}

// SkillsDelimiter joins the skills list into a single tabular field
const SkillsDelimiter = "; "

// TimeFormat is used for scraped_at in tabular exports
const TimeFormat = time.RFC3339Nano

const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Exporter serializes a record list to a destination path.
// Implementations never modify records.
type Exporter interface {
	Format() string
	Export(records []models.ProfileRecord, path string) (string, error)
}

// Option configures exporters that embed an export timestamp
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the function used for the export timestamp
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ForFormat returns the exporter for csv, json or sqlite
func ForFormat(name string, opts ...Option) (Exporter, error) {
	switch strings.ToLower(name) {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatJSON:
		return NewJSONExporter(opts...), nil
	case FormatSQLite:
		return NewSQLiteExporter(opts...), nil
	default:
		return nil, errs.NewConfigError("unknown export format %q", name)
	}
}

// FormatForPath guesses the export format from a file extension
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", errs.NewConfigError("cannot determine export format of %s", path)
	}
}

// ReadFile parses any supported export back into records
func ReadFile(path string) ([]models.ProfileRecord, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return ReadCSV(path)
	case FormatJSON:
		doc, err := ReadJSON(path)
		if err != nil {
			return nil, err
		}
		return doc.Profiles, nil
	default:
		return ReadSQLite(path)
	}
}

func joinSkills(skills []string) string {
	return strings.Join(skills, SkillsDelimiter)
}

func splitSkills(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, SkillsDelimiter)
}
