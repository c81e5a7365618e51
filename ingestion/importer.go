package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pagesearch/core"
	"github.com/poiesic/pagesearch/storage"
)

// Importer writes books and pages to storage.
type Importer struct {
	bookRepository storage.BookRepository
	pageRepository storage.PageRepository
	extractor      PageExtractor
	pool           *ants.Pool
	logger         *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the worker pool size for concurrent page writes.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(i *Importer) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if i.pool != nil {
			i.pool.Release()
			i.pool = nil
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		i.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// WithExtractor sets the page text extractor used by ImportPDF.
// Default extracts with langchaingo's PDF loader.
func WithExtractor(extractor PageExtractor) Option {
	return func(i *Importer) error {
		if extractor == nil {
			return ErrExtractorRequired
		}
		i.extractor = extractor
		return nil
	}
}

// NewImporter creates a new importer.
func NewImporter(
	bookRepository storage.BookRepository,
	pageRepository storage.PageRepository,
	opts ...Option,
) (*Importer, error) {
	if bookRepository == nil {
		return nil, ErrBookRepositoryRequired
	}
	if pageRepository == nil {
		return nil, ErrPageRepositoryRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create importer with defaults
	i := &Importer{
		bookRepository: bookRepository,
		pageRepository: pageRepository,
		extractor:      &pdfExtractor{},
		pool:           pool,
		logger:         slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(i); optErr != nil {
			i.Release()
			return nil, optErr
		}
	}

	return i, nil
}

// ImportBook upserts a book.
// Returns core.ErrInvalidInput if Subject or BookTitle is missing.
func (i *Importer) ImportBook(ctx context.Context, book *core.Book) (storage.WriteOutcome, error) {
	if err := core.ValidateBook(book); err != nil {
		return storage.WriteOutcome{}, err
	}
	return i.bookRepository.UpsertBook(ctx, book)
}

// ImportPage upserts a page.
// Returns core.ErrInvalidInput if Subject or BookTitle is missing or
// PageNum is negative.
func (i *Importer) ImportPage(ctx context.Context, page *core.Page) (storage.WriteOutcome, error) {
	if err := core.ValidatePage(page); err != nil {
		return storage.WriteOutcome{}, err
	}
	return i.pageRepository.UpsertPage(ctx, page)
}

// Summary reports the outcome of a bulk import.
type Summary struct {
	Book    storage.WriteOutcome // Outcome of the book upsert, if any
	Pages   int                  // Pages written
	Created int                  // Pages that did not exist before
	Failed  int                  // Pages that could not be written
}

// ImportPages upserts pages concurrently on the worker pool and waits for
// all of them. Pages that fail do not stop the others; their errors are
// returned joined.
func (i *Importer) ImportPages(ctx context.Context, pages []*core.Page) (Summary, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary Summary
		errs    []error
	)

	record := func(outcome storage.WriteOutcome, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			summary.Failed++
			errs = append(errs, err)
			return
		}
		summary.Pages++
		if outcome.Created {
			summary.Created++
		}
	}

	for _, page := range pages {
		wg.Add(1)
		submitErr := i.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				record(storage.WriteOutcome{}, err)
				return
			}
			outcome, err := i.ImportPage(ctx, page)
			if err != nil {
				i.logger.Error("error importing page", "subject", pageSubject(page), "page", pageNum(page), "err", err)
				err = fmt.Errorf("page %d: %w", pageNum(page), err)
			}
			record(outcome, err)
		})
		if submitErr != nil {
			wg.Done()
			record(storage.WriteOutcome{}, fmt.Errorf("page %d: %w", pageNum(page), submitErr))
		}
	}
	wg.Wait()

	return summary, errors.Join(errs...)
}

// Release releases resources including the worker pool.
// The importer should not be used after calling Release.
func (i *Importer) Release() {
	if i.pool != nil {
		i.pool.Release()
	}
}

func pageNum(page *core.Page) int {
	if page == nil {
		return -1
	}
	return page.PageNum
}

func pageSubject(page *core.Page) string {
	if page == nil {
		return ""
	}
	return page.Subject
}
