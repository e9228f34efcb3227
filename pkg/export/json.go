package export

import (
	"encoding/json"
	"io"
	"os"
	"time"

	errs "liscraper/pkg/errors"
	"liscraper/pkg/models"
	"liscraper/pkg/storage"
)

// Document is the top-level JSON export
type Document struct {
	ExportedAt    time.Time              `json:"exported_at"`
	TotalProfiles int                    `json:"total_profiles"`
	Profiles      []models.ProfileRecord `json:"profiles"`
}

// JSONExporter writes an indented Document
type JSONExporter struct {
	now func() time.Time
}

// NewJSONExporter creates a JSON exporter
func NewJSONExporter(opts ...Option) *JSONExporter {
	o := buildOptions(opts)
	return &JSONExporter{now: o.now}
}

func (e *JSONExporter) Format() string { return FormatJSON }

// Export writes records to path and returns the path
func (e *JSONExporter) Export(records []models.ProfileRecord, path string) (string, error) {
	doc := newDocument(records, e.now())

	err := storage.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	})
	if err != nil {
		return "", errs.NewIOError("write json", path, err)
	}
	return path, nil
}

// newDocument copies records so that nil skills encode as [] and the
// caller's slice is never touched
func newDocument(records []models.ProfileRecord, exportedAt time.Time) Document {
	profiles := make([]models.ProfileRecord, len(records))
	for i, r := range records {
		profiles[i] = r.Clone()
		if profiles[i].Skills == nil {
			profiles[i].Skills = []string{}
		}
	}

	return Document{
		ExportedAt:    exportedAt,
		TotalProfiles: len(profiles),
		Profiles:      profiles,
	}
}

// ReadJSON parses a JSON export
func ReadJSON(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewIOError("read json", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.NewIOError("read json", path, err)
	}
	return &doc, nil
}
