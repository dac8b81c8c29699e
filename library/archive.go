package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Archive is a durable SQLite snapshot of the whole collection, for setups
// that prefer a queryable file over the JSON snapshot. Save replaces the
// snapshot transactionally; Load rebuilds the in-memory collection.
type Archive struct {
	db *sql.DB

	insertBookStmt *sql.Stmt
	insertWaitStmt *sql.Stmt
}

// NewArchive opens (or creates) the SQLite archive at dbPath and applies
// schema migrations.
func NewArchive(dbPath string) (*Archive, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	a := &Archive{db: db}
	if err := a.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close releases prepared statements and closes the DB.
func (a *Archive) Close() error {
	if a.insertBookStmt != nil {
		a.insertBookStmt.Close()
	}
	if a.insertWaitStmt != nil {
		a.insertWaitStmt.Close()
	}
	return a.db.Close()
}

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	// WAL keeps the snapshot readable while a save is in flight.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 1,
            borrower TEXT NOT NULL DEFAULT '',
            borrowed_at TEXT NOT NULL DEFAULT '',
            due_date TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS waitlist (
            book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            username TEXT NOT NULL,
            PRIMARY KEY (book_id, position)
        );`,
		`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, schemaVersion); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	return tx.Commit()
}

func (a *Archive) prepareStatements() error {
	var err error
	if a.insertBookStmt, err = a.db.Prepare(
		`INSERT INTO books(id,title,author,available,borrower,borrowed_at,due_date,created_at) VALUES(?,?,?,?,?,?,?,?)`); err != nil {
		return err
	}
	if a.insertWaitStmt, err = a.db.Prepare(
		`INSERT INTO waitlist(book_id,position,username) VALUES(?,?,?)`); err != nil {
		return err
	}
	return nil
}

// Save replaces the archived snapshot with the given collection in one
// transaction, so readers never observe a partial save.
func (a *Archive) Save(books []*Record) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM waitlist`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM books`); err != nil {
		return err
	}

	for _, b := range books {
		if _, err := tx.Stmt(a.insertBookStmt).Exec(
			b.ID, b.Title, b.Author, b.Available, b.Borrower, b.BorrowedAt, b.DueDate, b.CreatedAt); err != nil {
			return fmt.Errorf("archive book %d: %w", b.ID, err)
		}
		for pos, user := range b.Waitlist {
			if _, err := tx.Stmt(a.insertWaitStmt).Exec(b.ID, pos, user); err != nil {
				return fmt.Errorf("archive waitlist for book %d: %w", b.ID, err)
			}
		}
	}

	return tx.Commit()
}

// Load rebuilds the collection from the archive, waitlists in queue order.
func (a *Archive) Load() ([]*Record, error) {
	rows, err := a.db.Query(
		`SELECT id,title,author,available,borrower,borrowed_at,due_date,created_at FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Record
	byID := make(map[int]*Record)
	for rows.Next() {
		var b Record
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Available, &b.Borrower, &b.BorrowedAt, &b.DueDate, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Waitlist = []string{}
		books = append(books, &b)
		byID[b.ID] = &b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	wrows, err := a.db.Query(`SELECT book_id, username FROM waitlist ORDER BY book_id, position`)
	if err != nil {
		return nil, err
	}
	defer wrows.Close()

	for wrows.Next() {
		var bookID int
		var user string
		if err := wrows.Scan(&bookID, &user); err != nil {
			return nil, err
		}
		if b, ok := byID[bookID]; ok {
			b.Waitlist = append(b.Waitlist, user)
		}
	}
	return books, wrows.Err()
}

// SaveArchive snapshots the store's collection into a SQLite archive.
func (s *Store) SaveArchive(path string) error {
	a, err := NewArchive(path)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Save(s.books); err != nil {
		return err
	}
	s.log.Info("saved to archive", "path", path, "total_books", len(s.books))
	return nil
}

// LoadArchive replaces the collection from a SQLite archive. Like LoadJSON,
// a missing or unreadable archive degrades to an empty collection.
func (s *Store) LoadArchive(path string) error {
	a, err := NewArchive(path)
	if err != nil {
		s.log.Warn("archive not readable, starting empty", "path", path, "error", err)
		s.books = []*Record{}
		return nil
	}
	defer a.Close()

	books, err := a.Load()
	if err != nil {
		s.log.Warn("archive load failed, starting empty", "path", path, "error", err)
		s.books = []*Record{}
		return nil
	}
	s.books = migrateRecords(books)
	s.log.Info("loaded from archive", "path", path, "total_books", len(s.books))
	return nil
}
