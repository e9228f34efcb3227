// Package export serializes collected profile records.
//
// Three exporters implement the Exporter interface:
//
//   - CSV: header row in the order of Columns, one row per record, skills
//     joined with SkillsDelimiter, scraped_at in RFC 3339 with nanoseconds.
//   - JSON: an indented Document with exported_at, total_profiles and the
//     profiles array.
//   - SQLite: each export appends an exports row and its profiles rows.
//
// File exports are written atomically. Exporting the same records twice
// yields identical output apart from the export timestamp. Write failures
// are returned as io errors.
//
// ReadCSV, ReadJSON, ReadSQLite and ReadFile parse exports back into records.
package export
