package export

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "liscraper/pkg/errors"
	"liscraper/pkg/models"
)

var scrapedAt = time.Date(2024, 3, 1, 12, 30, 15, 123456789, time.UTC)

func sampleRecords() []models.ProfileRecord {
	return []models.ProfileRecord{
		{
			ProfileURL:   "linkedin.com/in/john-doe",
			Username:     "john-doe",
			Name:         "John Doe",
			Title:        "Software Engineer",
			Company:      "Acme, Inc.",
			Location:     "Berlin, Germany",
			About:        "Says \"hello\",\nthen leaves.",
			Skills:       []string{"Go", "SQL", "Data Analysis"},
			Connections:  812,
			Endorsements: 40,
			ScrapedAt:    scrapedAt,
			DataType:     models.DataTypeSimulated,
		},
		{
			ProfileURL:   "linkedin.com/in/jane-smith",
			Username:     "jane-smith",
			Name:         "Jane Smith",
			Title:        "Product Manager",
			Company:      "Globex",
			Location:     "Toronto, Canada",
			About:        "Product Manager at Globex.",
			Skills:       []string{"Leadership"},
			Connections:  4999,
			Endorsements: 0,
			ScrapedAt:    scrapedAt.Add(time.Second),
			DataType:     models.DataTypeSimulated,
		},
	}
}

func fixedClock(ts time.Time) Option {
	return WithClock(func() time.Time { return ts })
}

func TestCSVExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "profiles.csv")
	records := sampleRecords()

	got, err := NewCSVExporter().Export(records, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(Columns, ",")+"\n"))
	assert.Contains(t, string(data), "Go; SQL; Data Analysis")
	assert.Contains(t, string(data), `"Acme, Inc."`)
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.csv")
	records := sampleRecords()

	_, err := NewCSVExporter().Export(records, path)
	require.NoError(t, err)

	parsed, err := ReadCSV(path)
	require.NoError(t, err)

	if diff := cmp.Diff(records, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVExportEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	_, err := NewCSVExporter().Export(nil, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Columns, ",")+"\n", string(data))

	parsed, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestReadCSVRejectsUnknownHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c,d,e,f,g,h,i,j,k,l\n"), 0644))

	_, err := ReadCSV(path)
	require.Error(t, err)
	assert.True(t, errs.IsIO(err))
}

func TestExportDoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	records[1].Skills = nil
	before := make([]models.ProfileRecord, len(records))
	for i, r := range records {
		before[i] = r.Clone()
	}

	dir := t.TempDir()
	for _, e := range []Exporter{NewCSVExporter(), NewJSONExporter(), NewSQLiteExporter()} {
		_, err := e.Export(records, filepath.Join(dir, "out."+e.Format()))
		require.NoError(t, err)
	}

	if diff := cmp.Diff(before, records); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestJSONExport(t *testing.T) {
	exportedAt := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "profiles.json")

	_, err := NewJSONExporter(fixedClock(exportedAt)).Export(sampleRecords(), path)
	require.NoError(t, err)

	doc, err := ReadJSON(path)
	require.NoError(t, err)
	assert.True(t, exportedAt.Equal(doc.ExportedAt))
	assert.Equal(t, 2, doc.TotalProfiles)
	if diff := cmp.Diff(sampleRecords(), doc.Profiles); diff != "" {
		t.Errorf("profiles mismatch (-want +got):\n%s", diff)
	}

	var raw map[string]json.RawMessage
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "exported_at")
	assert.Contains(t, raw, "total_profiles")
	assert.Contains(t, raw, "profiles")
}

func TestJSONExportIdempotentExceptTimestamp(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.json")
	records := sampleRecords()

	_, err := NewJSONExporter(fixedClock(scrapedAt)).Export(records, first)
	require.NoError(t, err)
	_, err = NewJSONExporter(fixedClock(scrapedAt.Add(time.Hour))).Export(records, second)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	stripTimestamp := func(data []byte) map[string]interface{} {
		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &doc))
		delete(doc, "exported_at")
		return doc
	}
	if diff := cmp.Diff(stripTimestamp(a), stripTimestamp(b)); diff != "" {
		t.Errorf("exports differ beyond exported_at:\n%s", diff)
	}

	// same clock gives byte-identical output
	_, err = NewJSONExporter(fixedClock(scrapedAt)).Export(records, second)
	require.NoError(t, err)
	b, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestJSONExportEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	_, err := NewJSONExporter().Export(nil, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"profiles": []`)
	assert.Contains(t, string(data), `"total_profiles": 0`)
}

func TestJSONExportNilSkillsAsEmptyArray(t *testing.T) {
	records := sampleRecords()[:1]
	records[0].Skills = nil
	path := filepath.Join(t.TempDir(), "p.json")

	_, err := NewJSONExporter().Export(records, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"skills": []`)
}

func TestSQLiteExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.db")
	records := sampleRecords()
	exporter := NewSQLiteExporter(fixedClock(scrapedAt))

	got, err := exporter.Export(records, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	// second export appends a new batch
	_, err = exporter.Export(records[:1], path)
	require.NoError(t, err)

	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer conn.Close()

	var exports, profiles int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM exports`).Scan(&exports))
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&profiles))
	assert.Equal(t, 2, exports)
	assert.Equal(t, 3, profiles)

	latest, err := ReadSQLite(path)
	require.NoError(t, err)
	if diff := cmp.Diff(records[:1], latest); diff != "" {
		t.Errorf("latest export mismatch (-want +got):\n%s", diff)
	}
}

func TestUnwritablePathReturnsIOError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	for _, e := range []Exporter{NewCSVExporter(), NewJSONExporter(), NewSQLiteExporter()} {
		t.Run(e.Format(), func(t *testing.T) {
			got, err := e.Export(sampleRecords(), filepath.Join(blocker, "out."+e.Format()))
			require.Error(t, err)
			assert.True(t, errs.IsIO(err))
			assert.Empty(t, got)
		})
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"csv", "JSON", "sqlite"} {
		e, err := ForFormat(name)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(name), e.Format())
	}

	_, err := ForFormat("xml")
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestReadFileByExtension(t *testing.T) {
	dir := t.TempDir()
	records := sampleRecords()

	for _, name := range []string{"p.csv", "p.json", "p.sqlite"} {
		path := filepath.Join(dir, name)
		format, err := FormatForPath(path)
		require.NoError(t, err)
		e, err := ForFormat(format)
		require.NoError(t, err)
		_, err = e.Export(records, path)
		require.NoError(t, err)

		parsed, err := ReadFile(path)
		require.NoError(t, err)
		if diff := cmp.Diff(records, parsed); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	_, err := ReadFile(filepath.Join(dir, "p.txt"))
	assert.True(t, errs.IsConfig(err))

	_, err = ReadFile(filepath.Join(dir, "missing.csv"))
	assert.True(t, errs.IsIO(err))
}
