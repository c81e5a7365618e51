package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/pagesearch/core"
	"github.com/poiesic/pagesearch/storage"
)

// MaxBookTitles is the largest number of books a single search request may
// name. Callers accepting requests enforce it before calling Search.
const MaxBookTitles = 40

// Searcher performs whole-word phrase search over pages.
// It holds no per-query state and is safe for concurrent use.
type Searcher struct {
	pageRepository storage.PageRepository
	logger         *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(pageRepository storage.PageRepository, opts ...Option) (*Searcher, error) {
	if pageRepository == nil {
		return nil, ErrPageRepositoryRequired
	}

	s := &Searcher{
		pageRepository: pageRepository,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search finds the pages of bookTitles in subject whose text contains query
// as a whole word, ignoring case, and groups them by book title.
// Returns an empty result set when nothing matches.
func (s *Searcher) Search(ctx context.Context, subject, query string, bookTitles []string) (core.SearchResultSet, error) {
	return s.SearchWithMonitor(ctx, subject, query, bookTitles, nil)
}

// SearchWithMonitor is Search with a monitor receiving callbacks at each
// stage of the search.
func (s *Searcher) SearchWithMonitor(ctx context.Context, subject, query string, bookTitles []string, monitor SearchMonitor) (core.SearchResultSet, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(subject, query, bookTitles)

	if err := core.ValidateSubject(subject); err != nil {
		return nil, err
	}
	if len(bookTitles) == 0 {
		return nil, ErrNoBookTitles
	}

	matcher, err := core.NewPhraseMatcher(query)
	if err != nil {
		return nil, err
	}
	monitor.AfterMatcherCompiled(matcher)

	pages, err := s.pageRepository.FindPages(ctx, storage.PageQuery{
		Subject:    subject,
		BookTitles: bookTitles,
		Text:       matcher,
	})
	if err != nil {
		s.logger.Error("error finding pages", "subject", subject, "query", query, "err", err)
		return nil, fmt.Errorf("find pages: %w", err)
	}
	monitor.AfterPageLookup(pages)

	results := groupByTitle(pages)
	s.logger.Debug("search complete", "subject", subject, "query", query, "books", len(results), "pages", len(pages))

	monitor.Finish(results)
	return results, nil
}

// groupByTitle groups pages by book title, keeping their relative order.
func groupByTitle(pages []*core.Page) core.SearchResultSet {
	results := make(core.SearchResultSet)
	for _, page := range pages {
		results[page.BookTitle] = append(results[page.BookTitle], core.PageMatch{
			PageNum: page.PageNum,
			Text:    page.Text,
		})
	}
	return results
}
