package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pagesearch/core"
	"github.com/poiesic/pagesearch/storage"
)

// BookRepository implements storage.BookRepository for BadgerDB.
type BookRepository struct {
	conn *Connector
}

var _ storage.BookRepository = (*BookRepository)(nil)

// NewBookRepository creates a new BookRepository.
func NewBookRepository(conn *Connector) *BookRepository {
	return &BookRepository{
		conn: conn,
	}
}

// Close releases resources. BookRepository has no resources to release;
// the connector owns the database handle.
func (r *BookRepository) Close() error {
	return nil
}

// UpsertBook inserts or overwrites the book keyed by (Subject, BookTitle).
func (r *BookRepository) UpsertBook(ctx context.Context, book *core.Book) (storage.WriteOutcome, error) {
	if err := core.ValidateBook(book); err != nil {
		return storage.WriteOutcome{}, err
	}
	backend, err := r.conn.Backend()
	if err != nil {
		return storage.WriteOutcome{}, err
	}

	record := *book
	record.Id = book.NaturalKey()

	var outcome storage.WriteOutcome
	err = r.conn.retryOnConflict(ctx, func() error {
		return backend.WithTx(func(tx *badger.Txn) error {
			key := makeBookKey(record.Id)

			// Reading the key registers it for conflict detection
			old, err := readBook(tx, key)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if record.ImportedAt.IsZero() {
				record.ImportedAt = now
			}
			record.UpdatedAt = now

			// Store primary record
			if err := tx.Set(key, storage.MarshalBook(&record)); err != nil {
				return err
			}

			// Store subject index
			subjectKey := makeBookSubjectKey(record.Subject, record.BookTitle)
			if err := tx.Set(subjectKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}

			outcome = storage.WriteOutcome{
				ID:        record.Id,
				Created:   old == nil,
				UpdatedAt: now,
			}
			return tx.Commit()
		}, true)
	})
	if err != nil {
		return storage.WriteOutcome{}, err
	}

	*book = record
	return outcome, nil
}

// GetBook retrieves a book by natural key.
func (r *BookRepository) GetBook(ctx context.Context, subject, bookTitle string) (*core.Book, error) {
	backend, err := r.conn.Backend()
	if err != nil {
		return nil, err
	}

	var result *core.Book
	err = backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readBook(tx, makeBookKey(core.BookID(subject, bookTitle)))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListDistinctSubjects returns every distinct subject across books.
// Walks the subject index without reading values, seeking past each subject
// once it has been seen.
func (r *BookRepository) ListDistinctSubjects(ctx context.Context) ([]string, error) {
	backend, err := r.conn.Backend()
	if err != nil {
		return nil, err
	}

	subjects := []string{}
	err = backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(bookSubjectPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); {
			subject, _, ok := splitBookSubjectKey(iter.Item().Key())
			if !ok {
				iter.Next()
				continue
			}
			subjects = append(subjects, subject)

			// Skip the remaining titles of this subject
			next := makeBookSubjectPrefix(subject)
			next[len(next)-1] = subjectTitleSeparator + 1
			iter.Seek(next)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

// ListBookTitlesBySubject returns the titles of all books in subject,
// read from the subject index keys alone.
func (r *BookRepository) ListBookTitlesBySubject(ctx context.Context, subject string) ([]string, error) {
	backend, err := r.conn.Backend()
	if err != nil {
		return nil, err
	}

	titles := []string{}
	err = backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeBookSubjectPrefix(subject)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			titles = append(titles, string(bytes.TrimPrefix(iter.Item().Key(), prefix)))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// ListBooksBySubject returns all books in subject.
func (r *BookRepository) ListBooksBySubject(ctx context.Context, subject string) ([]*core.Book, error) {
	backend, err := r.conn.Backend()
	if err != nil {
		return nil, err
	}

	books := []*core.Book{}
	err = backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeBookSubjectPrefix(subject)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var bookID core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				bookID, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			book, err := readBook(tx, makeBookKey(bookID))
			if err != nil {
				return err
			}
			if book != nil {
				books = append(books, book)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return books, nil
}

// readBook reads a book from the transaction.
// Returns nil, nil if the key doesn't exist.
func readBook(tx *badger.Txn, key []byte) (*core.Book, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var book *core.Book
	err = item.Value(func(val []byte) error {
		var err error
		book, err = storage.UnmarshalBook(val)
		return err
	})
	return book, err
}
