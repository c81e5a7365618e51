package ingestion

import "errors"

var (
	// ErrBookRepositoryRequired is returned when a book repository is not provided.
	ErrBookRepositoryRequired = errors.New("book repository required")

	// ErrPageRepositoryRequired is returned when a page repository is not provided.
	ErrPageRepositoryRequired = errors.New("page repository required")

	// ErrExtractorRequired is returned when WithExtractor is given nil.
	ErrExtractorRequired = errors.New("page extractor required")

	// ErrNoPages is returned when a document yields no pages.
	ErrNoPages = errors.New("document has no pages")
)
