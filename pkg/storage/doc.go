// Package storage writes export files safely.
//
// WriteFileAtomic streams content into a temporary file next to the target
// and renames it into place once the write succeeded. A failed write leaves
// any previous file untouched and removes the temporary file.
//
// Usage:
//
//	err := storage.WriteFileAtomic("out/profiles.csv", func(w io.Writer) error {
//	    return writeRows(w, records)
//	})
package storage
