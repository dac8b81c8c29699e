package library

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SaveJSON writes the collection to path wrapped in the snapshot envelope.
// The file is written to a temporary sibling first and atomically renamed
// into place, so a crash mid-write never leaves a half-written snapshot.
func (s *Store) SaveJSON(path string) error {
	snap := Snapshot{
		Version:    SnapshotVersion,
		SavedAt:    nowISO(),
		TotalBooks: len(s.books),
		Books:      s.Books(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	s.log.Info("saved to file", "path", path, "total_books", snap.TotalBooks)
	return nil
}

// LoadJSON replaces the collection with the contents of path. It accepts the
// snapshot envelope as well as a bare array of records, and fills defaults
// for fields older snapshots lack. A missing or corrupt file degrades to an
// empty collection with a logged warning — fail open, never raise.
func (s *Store) LoadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("snapshot not readable, starting empty", "path", path, "error", err)
		s.books = []*Record{}
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err == nil && snap.Books != nil {
		s.books = migrateRecords(snap.Books)
		s.log.Info("loaded from file", "path", path, "total_books", len(s.books))
		return nil
	}

	var bare []*Record
	if err := json.Unmarshal(data, &bare); err != nil {
		s.log.Warn("snapshot is corrupt, starting empty", "path", path, "error", err)
		s.books = []*Record{}
		return nil
	}
	s.books = migrateRecords(bare)
	s.log.Info("loaded from file", "path", path, "total_books", len(s.books))
	return nil
}

// migrateRecords fills defaults for fields that predate the current schema.
// This is the only schema-evolution mechanism; there is no version-gated
// migration chain.
func migrateRecords(books []*Record) []*Record {
	out := books[:0:0]
	for _, b := range books {
		if b == nil {
			continue
		}
		if b.CreatedAt == "" {
			b.CreatedAt = nowISO()
		}
		if b.Waitlist == nil {
			b.Waitlist = []string{}
		}
		// available defaults to true for records without borrowing state
		if !b.Available && b.Borrower == "" && b.DueDate == "" {
			b.Available = true
			b.BorrowedAt = ""
		}
		out = append(out, b)
	}
	return out
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
