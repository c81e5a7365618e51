package storage

import (
	"context"
	"time"

	"github.com/poiesic/pagesearch/core"
)

// WriteOutcome describes the result of an upsert.
type WriteOutcome struct {
	ID        core.ID   // Natural key ID of the written record
	Created   bool      // True when no record existed under the key
	UpdatedAt time.Time // Timestamp stamped on the record
}

// PageQuery is a conjunction of constraints on pages:
// Subject equality, BookTitle set membership and a whole-word text match.
type PageQuery struct {
	Subject    string
	BookTitles []string
	Text       *core.PhraseMatcher
}

// BookRepository provides operations for managing books.
// Implementations must be thread-safe and support concurrent access.
type BookRepository interface {
	// UpsertBook inserts the book or overwrites the record sharing its
	// (Subject, BookTitle) key. Sets UpdatedAt, and ImportedAt if zero.
	// Atomic per key under concurrent calls.
	UpsertBook(ctx context.Context, book *core.Book) (WriteOutcome, error)

	// GetBook retrieves a book by natural key.
	// Returns ErrNotFound if the book doesn't exist.
	GetBook(ctx context.Context, subject, bookTitle string) (*core.Book, error)

	// ListDistinctSubjects returns every distinct subject across books.
	ListDistinctSubjects(ctx context.Context) ([]string, error)

	// ListBookTitlesBySubject returns the titles of all books in subject.
	// Only titles are read; book records are not loaded.
	ListBookTitlesBySubject(ctx context.Context, subject string) ([]string, error)

	// ListBooksBySubject returns all books in subject.
	ListBooksBySubject(ctx context.Context, subject string) ([]*core.Book, error)

	// Close releases resources held by the repository.
	Close() error
}

// PageRepository provides operations for managing pages.
// Implementations must be thread-safe and support concurrent access.
type PageRepository interface {
	// UpsertPage inserts the page or overwrites the record sharing its
	// (Subject, BookTitle, PageNum) key. Sets UpdatedAt, and ImportedAt if zero.
	// Atomic per key under concurrent calls.
	UpsertPage(ctx context.Context, page *core.Page) (WriteOutcome, error)

	// GetPage retrieves a page by natural key.
	// Returns ErrNotFound if the page doesn't exist.
	GetPage(ctx context.Context, subject, bookTitle string, pageNum int) (*core.Page, error)

	// FindPages returns the pages satisfying every constraint of query.
	// Pages are grouped by the order of query.BookTitles, then ordered by
	// PageNum. Returns an empty slice when nothing matches.
	FindPages(ctx context.Context, query PageQuery) ([]*core.Page, error)

	// Close releases resources held by the repository.
	Close() error
}

// IndexManager maintains the indexes the page search depends on.
type IndexManager interface {
	// EnsureIndexes creates or rebuilds indexes as needed.
	// Safe to call on every process start.
	EnsureIndexes(ctx context.Context) error
}
