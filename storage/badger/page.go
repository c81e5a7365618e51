package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pagesearch/core"
	"github.com/poiesic/pagesearch/storage"
)

// PageRepository implements storage.PageRepository for BadgerDB.
//
// Pages of one book are stored contiguously in page number order. Every
// page also writes one posting per distinct word token of its text so that
// FindPages only reads pages containing all tokens of the phrase.
type PageRepository struct {
	conn *Connector
}

var _ storage.PageRepository = (*PageRepository)(nil)

// NewPageRepository creates a new PageRepository.
func NewPageRepository(conn *Connector) *PageRepository {
	return &PageRepository{
		conn: conn,
	}
}

// Close releases resources. PageRepository has no resources to release;
// the connector owns the database handle.
func (r *PageRepository) Close() error {
	return nil
}

// UpsertPage inserts or overwrites the page keyed by (Subject, BookTitle, PageNum).
func (r *PageRepository) UpsertPage(ctx context.Context, page *core.Page) (storage.WriteOutcome, error) {
	if err := core.ValidatePage(page); err != nil {
		return storage.WriteOutcome{}, err
	}
	backend, err := r.conn.Backend()
	if err != nil {
		return storage.WriteOutcome{}, err
	}

	record := *page
	record.Id = page.NaturalKey()
	bookID := page.BookKey()

	var outcome storage.WriteOutcome
	err = r.conn.retryOnConflict(ctx, func() error {
		return backend.WithTx(func(tx *badger.Txn) error {
			key := makePageKey(bookID, record.PageNum)

			// Reading the key registers it for conflict detection
			old, err := readPage(tx, key)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if record.ImportedAt.IsZero() {
				record.ImportedAt = now
			}
			record.UpdatedAt = now

			// Store primary record
			if err := tx.Set(key, storage.MarshalPage(&record)); err != nil {
				return err
			}

			// Update token index
			if err := updateTokenIndex(tx, old, &record, bookID); err != nil {
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

	*page = record
	return outcome, nil
}

// GetPage retrieves a page by natural key.
func (r *PageRepository) GetPage(ctx context.Context, subject, bookTitle string, pageNum int) (*core.Page, error) {
	backend, err := r.conn.Backend()
	if err != nil {
		return nil, err
	}

	var result *core.Page
	err = backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPage(tx, makePageKey(core.BookID(subject, bookTitle), pageNum))
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

// FindPages returns the pages satisfying every constraint of query.
//
// Books are visited in the order of query.BookTitles, skipping repeated
// titles. Within a book, candidate page numbers come from the token index
// when the phrase has word tokens, otherwise from the book's page range.
// Each candidate is then checked against the full constraint.
func (r *PageRepository) FindPages(ctx context.Context, query storage.PageQuery) ([]*core.Page, error) {
	if query.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", storage.ErrInvalidQuery)
	}
	if query.Text == nil {
		return nil, fmt.Errorf("%w: text matcher is required", storage.ErrInvalidQuery)
	}

	results := []*core.Page{}
	if len(query.BookTitles) == 0 {
		return results, nil
	}

	backend, err := r.conn.Backend()
	if err != nil {
		return nil, err
	}

	tokens := query.Text.Tokens()
	err = backend.WithTx(func(tx *badger.Txn) error {
		visited := make(map[string]struct{}, len(query.BookTitles))
		for _, title := range query.BookTitles {
			if _, ok := visited[title]; ok {
				continue
			}
			visited[title] = struct{}{}

			if err := ctx.Err(); err != nil {
				return err
			}

			bookID := core.BookID(query.Subject, title)
			var candidates []*core.Page
			var err error
			if len(tokens) == 0 {
				candidates, err = scanBookPages(tx, bookID)
			} else {
				candidates, err = lookupTokenPages(tx, query.Subject, bookID, tokens)
			}
			if err != nil {
				return err
			}

			for _, page := range candidates {
				// Guards against ID collisions as well as the text constraint
				if page.Subject != query.Subject || page.BookTitle != title {
					continue
				}
				if query.Text.Match(page.Text) {
					results = append(results, page)
				}
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// scanBookPages reads every page of a book in page number order.
func scanBookPages(tx *badger.Txn, bookID core.ID) ([]*core.Page, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePageBookPrefix(bookID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var pages []*core.Page
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var page *core.Page
		err := iter.Item().Value(func(val []byte) error {
			var err error
			page, err = storage.UnmarshalPage(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// lookupTokenPages reads the pages of a book that contain every token.
func lookupTokenPages(tx *badger.Txn, subject string, bookID core.ID, tokens []string) ([]*core.Page, error) {
	var pageNums []int
	for i, token := range tokens {
		nums := tokenPageNums(tx, core.TokenID(subject, token), bookID)
		if i == 0 {
			pageNums = nums
		} else {
			pageNums = intersectSorted(pageNums, nums)
		}
		if len(pageNums) == 0 {
			return nil, nil
		}
	}

	pages := make([]*core.Page, 0, len(pageNums))
	for _, pageNum := range pageNums {
		page, err := readPage(tx, makePageKey(bookID, pageNum))
		if err != nil {
			return nil, err
		}
		if page != nil {
			pages = append(pages, page)
		}
	}
	return pages, nil
}

// tokenPageNums returns the page numbers posted under a token for one book,
// in ascending order. Only keys are read.
func tokenPageNums(tx *badger.Txn, tokenID, bookID core.ID) []int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = makePageTokenPrefix(tokenID, bookID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var nums []int
	for iter.Rewind(); iter.Valid(); iter.Next() {
		nums = append(nums, pageNumFromKey(iter.Item().Key()))
	}
	return nums
}

// intersectSorted returns the values present in both ascending slices.
func intersectSorted(a, b []int) []int {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// updateTokenIndex replaces the postings of old with those of page.
// old may be nil for a new page.
func updateTokenIndex(tx *badger.Txn, old, page *core.Page, bookID core.ID) error {
	newTokens := core.Tokenize(page.Text)

	if old != nil {
		keep := make(map[string]struct{}, len(newTokens))
		for _, token := range newTokens {
			keep[token] = struct{}{}
		}
		for _, token := range core.Tokenize(old.Text) {
			if _, ok := keep[token]; ok {
				continue
			}
			if err := tx.Delete(makePageTokenKey(core.TokenID(old.Subject, token), bookID, old.PageNum)); err != nil {
				return err
			}
		}
	}

	for _, token := range newTokens {
		if err := tx.Set(makePageTokenKey(core.TokenID(page.Subject, token), bookID, page.PageNum), nil); err != nil {
			return err
		}
	}
	return nil
}

// readPage reads a page from the transaction.
// Returns nil, nil if the key doesn't exist.
func readPage(tx *badger.Txn, key []byte) (*core.Page, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var page *core.Page
	err = item.Value(func(val []byte) error {
		var err error
		page, err = storage.UnmarshalPage(val)
		return err
	})
	return page, err
}
