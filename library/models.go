package library

import "time"

// Date layouts used across the collection. Dates are stored as strings so the
// persisted form stays exactly what the tracker has always written.
const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05"
)

// Record is one book entry with its borrowing state.
//
// Empty Borrower/BorrowedAt/DueDate mean "absent": Available==true implies
// all three are empty, Available==false implies Borrower and DueDate are set.
// The Store enforces these invariants at every mutation.
type Record struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Available  bool     `json:"available"`
	Borrower   string   `json:"borrower,omitempty"`
	BorrowedAt string   `json:"borrowed_at,omitempty"`
	DueDate    string   `json:"due_date,omitempty"`
	CreatedAt  string   `json:"created_at"`
	Waitlist   []string `json:"waitlist"`
}

// Snapshot is the persisted JSON envelope around the collection.
type Snapshot struct {
	Version    string    `json:"version"`
	SavedAt    string    `json:"saved_at"`
	TotalBooks int       `json:"total_books"`
	Books      []*Record `json:"books"`
}

// SnapshotVersion tags snapshots written by this build.
const SnapshotVersion = "pro-1"

func todayStr() string {
	return time.Now().Format(dateLayout)
}

func inDaysStr(days int) string {
	return time.Now().AddDate(0, 0, days).Format(dateLayout)
}

func nowISO() string {
	return time.Now().Format(timestampLayout)
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	return t, err == nil
}

// IsNew reports whether the record was created within the last 24 hours.
func (r *Record) IsNew() bool {
	if r.CreatedAt == "" {
		return false
	}
	ca := r.CreatedAt
	if len(ca) > len(timestampLayout) {
		ca = ca[:len(timestampLayout)]
	}
	t, err := time.Parse(timestampLayout, ca)
	if err != nil {
		return false
	}
	return time.Since(t) <= 24*time.Hour
}

// Overdue reports whether the record's due date is strictly before today.
// Available records are never overdue; unparseable due dates are skipped.
func (r *Record) Overdue(today time.Time) bool {
	if r.Available || r.DueDate == "" {
		return false
	}
	due, ok := parseDate(r.DueDate)
	if !ok {
		return false
	}
	return due.Before(today)
}
