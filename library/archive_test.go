package library

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func tempArchive(t *testing.T) (*Archive, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := NewArchive(path)
	if err != nil {
		t.Fatalf("new archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, path
}

func TestArchiveSaveLoadRoundTrip(t *testing.T) {
	a, _ := tempArchive(t)

	s := seededStore(t)
	if ok, err := s.JoinWaitlist(3, "ayşe"); err != nil || !ok {
		t.Fatalf("join waitlist: ok=%v err=%v", ok, err)
	}
	if ok, err := s.JoinWaitlist(3, "mehmet"); err != nil || !ok {
		t.Fatalf("join waitlist: ok=%v err=%v", ok, err)
	}

	if err := a.Save(s.Books()); err != nil {
		t.Fatalf("save: %v", err)
	}
	books, err := a.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("want 3 books, got %d", len(books))
	}

	var b1984 *Record
	for _, b := range books {
		if b.Title == "1984" {
			b1984 = b
		}
	}
	if b1984 == nil {
		t.Fatalf("1984 missing from archive")
	}
	if b1984.Available || b1984.Borrower != "Zey" {
		t.Fatalf("borrow state lost: available=%v borrower=%q", b1984.Available, b1984.Borrower)
	}
	if len(b1984.Waitlist) != 2 || b1984.Waitlist[0] != "ayşe" || b1984.Waitlist[1] != "mehmet" {
		t.Fatalf("waitlist order wrong: %v", b1984.Waitlist)
	}
}

func TestArchiveSaveReplacesPreviousSnapshot(t *testing.T) {
	a, _ := tempArchive(t)
	s := seededStore(t)

	if err := a.Save(s.Books()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	if _, err := s.Return(3); err != nil {
		t.Fatalf("return: %v", err)
	}
	if err := a.Save(s.Books()); err != nil {
		t.Fatalf("second save: %v", err)
	}

	books, err := a.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("want 3 books after overwrite, got %d", len(books))
	}
	for _, b := range books {
		if !b.Available {
			t.Fatalf("book %d should be available after overwrite", b.ID)
		}
	}
}

func TestArchiveReopenIsIdempotent(t *testing.T) {
	a, path := tempArchive(t)
	s := seededStore(t)
	if err := a.Save(s.Books()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening runs migrations again without touching the data.
	a2, err := NewArchive(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer a2.Close()

	books, err := a2.Load()
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("want 3 books after reopen, got %d", len(books))
	}
}

func TestStoreArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	s := seededStore(t)
	if err := s.SaveArchive(path); err != nil {
		t.Fatalf("save archive: %v", err)
	}

	loaded := NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := loaded.LoadArchive(path); err != nil {
		t.Fatalf("load archive: %v", err)
	}
	if loaded.Len() != s.Len() {
		t.Fatalf("want %d books, got %d", s.Len(), loaded.Len())
	}
	b := loaded.find(3)
	if b == nil || b.Borrower != "Zey" {
		t.Fatalf("borrow state lost on round trip")
	}
}

func TestLoadArchiveFailsOpen(t *testing.T) {
	dir := t.TempDir()
	s := seededStore(t)

	// A fresh path creates an empty archive; the store starts empty.
	if err := s.LoadArchive(filepath.Join(dir, "fresh.db")); err != nil {
		t.Fatalf("load fresh: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("want empty collection, got %d", s.Len())
	}
}
