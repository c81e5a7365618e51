package badger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pagesearch/core"
	"github.com/poiesic/pagesearch/storage"
)

// indexVersion identifies the layout of the secondary indexes. Bump it when
// the tokenizer or an index key format changes so existing databases are
// rebuilt on the next start.
const indexVersion uint64 = 1

// IndexManager implements storage.IndexManager for BadgerDB.
//
// Page uniqueness over (subject, title, page number) holds by construction:
// the page key is derived from that triple. The manager checks every stored
// record sits under its own natural key and rebuilds the subject index and
// the token index whenever the stored index version is behind.
type IndexManager struct {
	conn   *Connector
	logger *slog.Logger
}

var _ storage.IndexManager = (*IndexManager)(nil)

// NewIndexManager creates a new IndexManager.
func NewIndexManager(conn *Connector, logger *slog.Logger) *IndexManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexManager{
		conn:   conn,
		logger: logger,
	}
}

// EnsureIndexes rebuilds the indexes if the stored version is older than
// the current one. A database already at the current version is left alone.
func (m *IndexManager) EnsureIndexes(ctx context.Context) error {
	backend, err := m.conn.Backend()
	if err != nil {
		return err
	}

	current, err := readIndexVersion(backend)
	if err != nil {
		return err
	}
	if current >= indexVersion {
		m.logger.Debug("indexes up to date", "version", current)
		return nil
	}

	m.logger.Info("building indexes", "from", current, "to", indexVersion)
	return m.rebuild(ctx, backend)
}

// Rebuild drops and rebuilds the indexes regardless of the stored version.
func (m *IndexManager) Rebuild(ctx context.Context) error {
	backend, err := m.conn.Backend()
	if err != nil {
		return err
	}
	return m.rebuild(ctx, backend)
}

func (m *IndexManager) rebuild(ctx context.Context, backend *Backend) error {
	books, err := m.rebuildSubjectIndex(ctx, backend)
	if err != nil {
		return fmt.Errorf("subject index: %w", err)
	}
	pages, postings, err := m.rebuildTokenIndex(ctx, backend)
	if err != nil {
		return fmt.Errorf("token index: %w", err)
	}

	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(indexVersionKey), storage.MarshalID(core.ID(indexVersion))); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	m.logger.Info("indexes built", "version", indexVersion, "books", books, "pages", pages, "postings", postings)
	return nil
}

// rebuildSubjectIndex recreates the subject index from the book records.
func (m *IndexManager) rebuildSubjectIndex(ctx context.Context, backend *Backend) (int, error) {
	if err := backend.DropPrefix([]byte(bookSubjectPrefix + ":")); err != nil {
		return 0, err
	}

	wb := backend.NewWriteBatch()
	defer wb.Cancel()

	count := 0
	err := backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			var book *core.Book
			err := item.Value(func(val []byte) error {
				var err error
				book, err = storage.UnmarshalBook(val)
				return err
			})
			if err != nil {
				return err
			}
			if !bytes.Equal(item.Key(), makeBookKey(book.NaturalKey())) {
				return fmt.Errorf("%w: book (%s, %s) stored under %q",
					storage.ErrCorruptIndex, book.Subject, book.BookTitle, item.Key())
			}

			subjectKey := makeBookSubjectKey(book.Subject, book.BookTitle)
			if err := wb.Set(subjectKey, storage.MarshalID(book.NaturalKey())); err != nil {
				return err
			}
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, wb.Flush()
}

// rebuildTokenIndex recreates the token postings from the page records.
func (m *IndexManager) rebuildTokenIndex(ctx context.Context, backend *Backend) (int, int, error) {
	if err := backend.DropPrefix([]byte(pageTokenPrefix + ":")); err != nil {
		return 0, 0, err
	}

	wb := backend.NewWriteBatch()
	defer wb.Cancel()

	pages, postings := 0, 0
	err := backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pageRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			var page *core.Page
			err := item.Value(func(val []byte) error {
				var err error
				page, err = storage.UnmarshalPage(val)
				return err
			})
			if err != nil {
				return err
			}
			bookID := page.BookKey()
			if !bytes.Equal(item.Key(), makePageKey(bookID, page.PageNum)) {
				return fmt.Errorf("%w: page (%s, %s, %d) stored under %q",
					storage.ErrCorruptIndex, page.Subject, page.BookTitle, page.PageNum, item.Key())
			}

			for _, token := range core.Tokenize(page.Text) {
				if err := wb.Set(makePageTokenKey(core.TokenID(page.Subject, token), bookID, page.PageNum), nil); err != nil {
					return err
				}
				postings++
			}
			pages++
		}
		return nil
	}, false)
	if err != nil {
		return 0, 0, err
	}
	return pages, postings, wb.Flush()
}

// readIndexVersion returns the stored index version, or 0 if none is stored.
func readIndexVersion(backend *Backend) (uint64, error) {
	var version uint64
	err := backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(indexVersionKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			id, err := storage.UnmarshalID(val)
			version = uint64(id)
			return err
		})
	}, false)
	return version, err
}
