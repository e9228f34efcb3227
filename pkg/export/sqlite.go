package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	errs "liscraper/pkg/errors"
	"liscraper/pkg/models"
)

// SQLiteExporter appends each export to a SQLite database: one row in
// exports and one row per record in profiles
type SQLiteExporter struct {
	now func() time.Time
}

// NewSQLiteExporter creates a SQLite exporter
func NewSQLiteExporter(opts ...Option) *SQLiteExporter {
	o := buildOptions(opts)
	return &SQLiteExporter{now: o.now}
}

func (e *SQLiteExporter) Format() string { return FormatSQLite }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exported_at TEXT NOT NULL,
		total_profiles INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		export_id INTEGER NOT NULL REFERENCES exports(id),
		position INTEGER NOT NULL,
		profile_url TEXT NOT NULL,
		username TEXT,
		name TEXT,
		title TEXT,
		company TEXT,
		location TEXT,
		about TEXT,
		skills TEXT,
		connections INTEGER,
		endorsements INTEGER,
		scraped_at TEXT,
		data_type TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_export_id ON profiles(export_id)`,
}

func openDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

// Export writes records to the database at path and returns the path
func (e *SQLiteExporter) Export(records []models.ProfileRecord, path string) (string, error) {
	if err := e.export(records, path); err != nil {
		return "", errs.NewIOError("write sqlite", path, err)
	}
	return path, nil
}

func (e *SQLiteExporter) export(records []models.ProfileRecord, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	conn, err := openDB(path)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, query := range schema {
		if _, err := conn.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO exports (exported_at, total_profiles) VALUES (?, ?)`,
		e.now().Format(TimeFormat), len(records))
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}
	exportID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO profiles (
		export_id, position, profile_url, username, name, title, company,
		location, about, skills, connections, endorsements, scraped_at, data_type
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.Exec(exportID, i, r.ProfileURL, r.Username, r.Name, r.Title,
			r.Company, r.Location, r.About, joinSkills(r.Skills), r.Connections,
			r.Endorsements, r.ScrapedAt.Format(TimeFormat), r.DataType)
		if err != nil {
			return fmt.Errorf("failed to insert profile %s: %w", r.ProfileURL, err)
		}
	}

	return tx.Commit()
}

// ReadSQLite returns the records of the most recent export in the database
func ReadSQLite(path string) ([]models.ProfileRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errs.NewIOError("read sqlite", path, err)
	}

	records, err := readLatestExport(path)
	if err != nil {
		return nil, errs.NewIOError("read sqlite", path, err)
	}
	return records, nil
}

func readLatestExport(path string) ([]models.ProfileRecord, error) {
	conn, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.Query(`SELECT profile_url, username, name, title, company,
		location, about, skills, connections, endorsements, scraped_at, data_type
		FROM profiles
		WHERE export_id = (SELECT MAX(id) FROM exports)
		ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ProfileRecord
	for rows.Next() {
		var (
			r         models.ProfileRecord
			skills    string
			scrapedAt string
		)
		if err := rows.Scan(&r.ProfileURL, &r.Username, &r.Name, &r.Title, &r.Company,
			&r.Location, &r.About, &skills, &r.Connections, &r.Endorsements,
			&scrapedAt, &r.DataType); err != nil {
			return nil, err
		}

		r.Skills = splitSkills(skills)
		if r.ScrapedAt, err = time.Parse(TimeFormat, scrapedAt); err != nil {
			return nil, fmt.Errorf("invalid scraped_at for %s: %w", r.ProfileURL, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
