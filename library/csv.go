package library

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// csvHeader is the CSV interchange field order. Waitlists do not round-trip
// through CSV; they are a JSON-only field.
var csvHeader = []string{"id", "title", "author", "available", "borrower", "borrowed_at", "due_date"}

// ExportCSV writes one row per record in the interchange field order.
func (s *Store) ExportCSV(path string) error {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, b := range s.books {
		row := []string{
			strconv.Itoa(b.ID),
			b.Title,
			b.Author,
			strconv.FormatBool(b.Available),
			b.Borrower,
			b.BorrowedAt,
			b.DueDate,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := writeFileAtomic(path, []byte(buf.String())); err != nil {
		return err
	}
	s.log.Info("exported csv", "path", path, "rows", len(s.books))
	return nil
}

// ImportCSV adds the rows of a CSV file through the normal add path and
// reports how many were added. Rows need only title and author; any borrow
// state present on a row is restored onto the created record. Duplicates are
// skipped silently when duplicate checking is on.
func (s *Store) ImportCSV(path string, disallowDuplicates bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read csv: %w", err)
	}

	col := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	added := 0
	for i, row := range rows {
		if i == 0 && strings.EqualFold(col(row, 0), "id") {
			continue // header row
		}
		title, author := col(row, 1), col(row, 2)
		if title == "" || author == "" {
			continue
		}
		rec, err := s.Add(title, author, disallowDuplicates)
		if err != nil {
			if errors.Is(err, ErrDuplicateBook) {
				continue
			}
			return added, err
		}
		if col(row, 3) == "false" && col(row, 4) != "" {
			rec.Available = false
			rec.Borrower = col(row, 4)
			rec.BorrowedAt = col(row, 5)
			rec.DueDate = col(row, 6)
		}
		added++
	}
	s.log.Info("imported csv", "path", path, "added", added)
	return added, nil
}
