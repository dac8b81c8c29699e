package library

import (
	"log/slog"
	"math"
	"strings"
	"time"
)

// DefaultLoanDays is the base loan length. The renewal cap is checked against
// this fixed base rather than the loan's actual original length; that is the
// documented policy even though it surprises for shorter loans.
const DefaultLoanDays = 14

// Store owns the in-memory collection of records. All mutation goes through
// its methods; callers hold the store, not raw records. Single-threaded by
// design — no locking is provided.
type Store struct {
	books []*Record
	log   *slog.Logger
}

// NewStore returns an empty store. A nil logger falls back to slog.Default.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{log: log}
}

// Len reports the number of records in the collection.
func (s *Store) Len() int { return len(s.books) }

// Books exposes the collection as shared references, for rendering and
// persistence. The slice itself is a copy; the records are not.
func (s *Store) Books() []*Record {
	out := make([]*Record, len(s.books))
	copy(out, s.books)
	return out
}

// Replace swaps in a freshly loaded collection.
func (s *Store) Replace(books []*Record) {
	s.books = books
}

func (s *Store) find(id int) *Record {
	for _, b := range s.books {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// nextID is max(existing ids)+1, or 1 for an empty collection. IDs are never
// reused or renumbered.
func (s *Store) nextID() int {
	maxID := 0
	for _, b := range s.books {
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	return maxID + 1
}

// Add validates, title-cases and appends a new record, returning the shared
// reference. With disallowDuplicates set, an existing record with the same
// normalized (title, author) pair fails with ErrDuplicateBook.
func (s *Store) Add(title, author string, disallowDuplicates bool) (*Record, error) {
	t := strings.TrimSpace(title)
	a := strings.TrimSpace(author)
	if t == "" || a == "" {
		return nil, validationErr("title/author cannot be empty")
	}

	t = TitleCase(t)
	a = TitleCase(a)

	if disallowDuplicates {
		tKey, aKey := NormalizeKey(t), NormalizeKey(a)
		for _, b := range s.books {
			if NormalizeKey(b.Title) == tKey && NormalizeKey(b.Author) == aKey {
				return nil, duplicateErr(t, a)
			}
		}
	}

	rec := &Record{
		ID:        s.nextID(),
		Title:     t,
		Author:    a,
		Available: true,
		CreatedAt: nowISO(),
		Waitlist:  []string{},
	}
	s.books = append(s.books, rec)
	s.log.Info("book added", "title", t, "author", a, "id", rec.ID)
	return rec, nil
}

// Borrow lends the record out for the given number of days. It returns false
// without error when the record is already borrowed; the caller is expected
// to offer a waitlist join instead.
func (s *Store) Borrow(id int, username string, days int) (bool, error) {
	if days <= 0 {
		return false, validationErr("days must be a positive integer")
	}
	user := strings.TrimSpace(username)
	if user == "" {
		return false, validationErr("username cannot be empty")
	}

	b := s.find(id)
	if b == nil {
		s.log.Error("book not found", "id", id)
		return false, notFoundErr(id)
	}
	if !b.Available {
		s.log.Warn("book already borrowed", "id", id, "borrower", b.Borrower)
		return false, nil
	}

	b.Available = false
	b.Borrower = user
	b.BorrowedAt = todayStr()
	b.DueDate = inDaysStr(days)
	s.log.Info("book borrowed", "id", id, "borrower", user, "due", b.DueDate)
	return true, nil
}

// JoinWaitlist appends the user to the record's waitlist. It returns false
// without effect when the record is available or the user is already queued
// under normalized comparison.
func (s *Store) JoinWaitlist(id int, username string) (bool, error) {
	b := s.find(id)
	if b == nil {
		return false, notFoundErr(id)
	}
	if b.Available {
		return false, nil
	}
	key := NormalizeKey(username)
	for _, w := range b.Waitlist {
		if NormalizeKey(w) == key {
			return false, nil
		}
	}
	b.Waitlist = append(b.Waitlist, strings.TrimSpace(username))
	s.log.Info("joined waitlist", "id", id, "user", strings.TrimSpace(username), "position", len(b.Waitlist))
	return true, nil
}

// Return clears the borrow state and reports the delay in whole days. When
// the waitlist is non-empty its head is immediately re-lent the same record
// at the default loan length, within the same call.
func (s *Store) Return(id int) (int, error) {
	b := s.find(id)
	if b == nil {
		s.log.Error("return: book not found", "id", id)
		return 0, notFoundErr(id)
	}

	delay := 0
	if due, ok := parseDate(b.DueDate); ok {
		today, _ := parseDate(todayStr())
		if d := int(today.Sub(due).Hours() / 24); d > 0 {
			delay = d
		}
	}

	b.Available = true
	b.Borrower = ""
	b.BorrowedAt = ""
	b.DueDate = ""

	if delay > 0 {
		s.log.Warn("late return", "id", id, "delay_days", delay)
	} else {
		s.log.Info("returned on time", "id", id)
	}

	if len(b.Waitlist) > 0 {
		next := b.Waitlist[0]
		b.Waitlist = b.Waitlist[1:]
		b.Available = false
		b.Borrower = next
		b.BorrowedAt = todayStr()
		b.DueDate = inDaysStr(DefaultLoanDays)
		s.log.Info("assigned to waitlist head", "id", id, "borrower", next, "due", b.DueDate)
	}

	return delay, nil
}

// ReturnWithFee returns the record and computes the late fee with the
// weekend-free policy.
func (s *Store) ReturnWithFee(id int, feePerDay float64) (int, float64, error) {
	delay, err := s.Return(id)
	if err != nil {
		return 0, 0.0, err
	}
	fee := CalcFee(delay, feePerDay, true)
	s.log.Info("return fee", "id", id, "delay_days", delay, "fee", fee)
	return delay, fee, nil
}

// Renew extends the due date by extraDays. It returns false without effect
// when the record is available, has no parseable due date, is already
// overdue, or when 14+extraDays would exceed maxTotalDays. The cap uses the
// fixed 14-day base regardless of the loan's original length.
func (s *Store) Renew(id int, extraDays, maxTotalDays int) (bool, error) {
	if extraDays <= 0 {
		return false, validationErr("extraDays must be a positive integer")
	}
	b := s.find(id)
	if b == nil {
		return false, notFoundErr(id)
	}
	if b.Available || b.DueDate == "" {
		return false, nil
	}
	due, ok := parseDate(b.DueDate)
	if !ok {
		return false, nil
	}
	today, _ := parseDate(todayStr())
	if due.Before(today) {
		s.log.Warn("renewal refused for overdue loan", "id", id, "due", b.DueDate)
		return false, nil
	}
	if DefaultLoanDays+extraDays > maxTotalDays {
		s.log.Warn("renewal exceeds cap", "id", id, "extra_days", extraDays, "max_total_days", maxTotalDays)
		return false, nil
	}
	b.DueDate = due.AddDate(0, 0, extraDays).Format(dateLayout)
	s.log.Info("loan renewed", "id", id, "due", b.DueDate)
	return true, nil
}

// ListOverdue reports the records strictly past due as of the given date
// (YYYY-MM-DD; empty or unparseable falls back to now), the count, and the
// estimated total fee under the weekend-free policy.
func (s *Store) ListOverdue(today string, feePerDay float64) ([]*Record, int, float64) {
	ref, ok := parseDate(today)
	if !ok {
		ref = time.Now()
	}

	var out []*Record
	total := 0.0
	for _, b := range s.books {
		if b.Available || b.DueDate == "" {
			continue
		}
		due, ok := parseDate(b.DueDate)
		if !ok {
			continue
		}
		if due.Before(ref) {
			out = append(out, b)
			delay := int(ref.Sub(due).Hours() / 24)
			total += calcFeeAt(delay, feePerDay, true, ref)
		}
	}
	total = round2(total)
	s.log.Info("overdue scan", "count", len(out), "estimated_fee", total)
	return out, len(out), total
}

// CalcFee computes the late fee for a delay of whole days. With weekendFree
// set, only weekdays among the delay days immediately preceding today are
// charged; otherwise the fee is flat delay*base. Rounded to 2 decimals.
func CalcFee(delayDays int, base float64, weekendFree bool) float64 {
	return calcFeeAt(delayDays, base, weekendFree, time.Now())
}

func calcFeeAt(delayDays int, base float64, weekendFree bool, ref time.Time) float64 {
	if delayDays <= 0 {
		return 0.0
	}
	if !weekendFree {
		return round2(float64(delayDays) * base)
	}
	feeDays := 0
	for i := 1; i <= delayDays; i++ {
		wd := ref.AddDate(0, 0, -i).Weekday()
		if wd >= time.Monday && wd <= time.Friday {
			feeDays++
		}
	}
	return round2(float64(feeDays) * base)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SeedDemo fills an empty store with the demo inventory; 1984 is set up as
// an already-late loan so the overdue report has something to show.
func (s *Store) SeedDemo() error {
	for _, b := range [][2]string{
		{"Dune", "Frank Herbert"},
		{"Kürk Mantolu Madonna", "Sabahattin Ali"},
		{"1984", "George Orwell"},
	} {
		if _, err := s.Add(b[0], b[1], true); err != nil {
			return err
		}
	}
	for _, b := range s.books {
		if b.Title == "1984" {
			b.Available = false
			b.Borrower = "Zey"
			b.BorrowedAt = inDaysStr(-16)
			b.DueDate = inDaysStr(-2)
			break
		}
	}
	return nil
}
