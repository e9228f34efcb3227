package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	errs "liscraper/pkg/errors"
	"liscraper/pkg/models"
	"liscraper/pkg/storage"
)

// CSVExporter writes one header row and one row per record
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Format() string { return FormatCSV }

// Export writes records to path and returns the path
func (e *CSVExporter) Export(records []models.ProfileRecord, path string) (string, error) {
	err := storage.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteCSV(w, records)
	})
	if err != nil {
		return "", errs.NewIOError("write csv", path, err)
	}
	return path, nil
}

// WriteCSV encodes records as CSV into w
func WriteCSV(w io.Writer, records []models.ProfileRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(r models.ProfileRecord) []string {
	return []string{
		r.ProfileURL,
		r.Username,
		r.Name,
		r.Title,
		r.Company,
		r.Location,
		r.About,
		joinSkills(r.Skills),
		strconv.Itoa(r.Connections),
		strconv.Itoa(r.Endorsements),
		r.ScrapedAt.Format(TimeFormat),
		r.DataType,
	}
}

// ReadCSV parses a CSV export back into records. The skills field is split
// on SkillsDelimiter.
func ReadCSV(path string) ([]models.ProfileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIOError("read csv", path, err)
	}
	defer f.Close()

	records, err := parseCSV(f)
	if err != nil {
		return nil, errs.NewIOError("read csv", path, err)
	}
	return records, nil
}

func parseCSV(r io.Reader) ([]models.ProfileRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i+1, header[i], col)
		}
	}

	var records []models.ProfileRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		record, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(row []string) (models.ProfileRecord, error) {
	connections, err := strconv.Atoi(row[8])
	if err != nil {
		return models.ProfileRecord{}, fmt.Errorf("invalid connections: %w", err)
	}
	endorsements, err := strconv.Atoi(row[9])
	if err != nil {
		return models.ProfileRecord{}, fmt.Errorf("invalid endorsements: %w", err)
	}
	scrapedAt, err := time.Parse(TimeFormat, row[10])
	if err != nil {
		return models.ProfileRecord{}, fmt.Errorf("invalid scraped_at: %w", err)
	}

	return models.ProfileRecord{
		ProfileURL:   row[0],
		Username:     row[1],
		Name:         row[2],
		Title:        row[3],
		Company:      row[4],
		Location:     row[5],
		About:        row[6],
		Skills:       splitSkills(row[7]),
		Connections:  connections,
		Endorsements: endorsements,
		ScrapedAt:    scrapedAt,
		DataType:     row[11],
	}, nil
}
