// Package ingestion loads books and their pages into storage.
//
// The Importer validates natural keys and passes single books and pages
// through to the repositories. It also imports whole PDF documents: text is
// extracted one page at a time, the book is upserted and the page upserts
// are fanned out over a worker pool.
//
// Re-importing a document overwrites existing pages in place; there is
// never more than one record per (subject, book title, page number).
package ingestion
