// Package storage persists the normalized catalog as a SQLite snapshot so
// later lookups can run without re-reading and re-normalizing the source.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c360studio/bookgraph/catalog"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY,
	ord INTEGER NOT NULL,
	title TEXT NOT NULL,
	authors TEXT NOT NULL,
	average_rating REAL NOT NULL,
	isbn13 TEXT NOT NULL,
	language_code TEXT NOT NULL,
	num_pages INTEGER NOT NULL,
	publication_date TEXT NOT NULL,
	publisher TEXT NOT NULL,
	series TEXT NOT NULL,
	book_number TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_books_ord ON books(ord);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	books INTEGER NOT NULL,
	saved_at TEXT NOT NULL
);
`

// timeLayout has a fixed width so saved_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const bookColumns = `id, title, authors, average_rating, isbn13, language_code,
	num_pages, publication_date, publisher, series, book_number`

// Run describes the pipeline run that produced the stored snapshot.
type Run struct {
	ID      string    `json:"id"`
	Books   int       `json:"books"`
	SavedAt time.Time `json:"saved_at"`
}

// Store is a SQLite-backed catalog snapshot.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps writes serialized on the one file.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with books and records the run that
// produced it. Input order is preserved by Load.
func (s *Store) Save(ctx context.Context, runID string, books []catalog.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("clear books: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO books (`+bookColumns+`, ord)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range books {
		if _, err := stmt.ExecContext(ctx,
			b.ID, b.Title, b.Authors, b.AverageRating, b.ISBN13, b.LanguageCode,
			b.Pages, b.PublicationDate, b.Publisher, b.Series, b.BookNumber, i,
		); err != nil {
			return fmt.Errorf("insert book %s: %w", b.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs (id, books, saved_at) VALUES (?, ?, ?)`,
		runID, len(books), time.Now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns every stored book in the order it was saved.
func (s *Store) Load(ctx context.Context) ([]catalog.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

// Get returns the book with the given id.
func (s *Store) Get(ctx context.Context, id string) (catalog.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Book{}, fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	return b, err
}

// LastRun returns the most recently saved run.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	var (
		run     Run
		savedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, books, saved_at FROM runs ORDER BY saved_at DESC, rowid DESC LIMIT 1`,
	).Scan(&run.ID, &run.Books, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("last run: %w", ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("query runs: %w", err)
	}
	run.SavedAt, err = time.Parse(timeLayout, savedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse saved_at: %w", err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(sc scanner) (catalog.Book, error) {
	var b catalog.Book
	err := sc.Scan(&b.ID, &b.Title, &b.Authors, &b.AverageRating, &b.ISBN13, &b.LanguageCode,
		&b.Pages, &b.PublicationDate, &b.Publisher, &b.Series, &b.BookNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return b, err
	}
	if err != nil {
		return b, fmt.Errorf("scan book: %w", err)
	}
	return b, nil
}
