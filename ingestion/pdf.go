// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/pagesearch/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// ExtractedPage is the text of one page of a document.
type ExtractedPage struct {
	PageNum int
	Text    string
}

// PageExtractor extracts per-page text from a document.
type PageExtractor interface {
	ExtractPages(ctx context.Context, r io.ReaderAt, size int64) ([]ExtractedPage, error)
}

// pdfExtractor extracts PDF pages with langchaingo's PDF loader.
// Page numbers are 1-based as reported by the loader.
type pdfExtractor struct {
	password string
}

var _ PageExtractor = (*pdfExtractor)(nil)

// NewPDFExtractor returns the default PDF page extractor. An empty password
// opens unencrypted documents only.
func NewPDFExtractor(password string) PageExtractor {
	return &pdfExtractor{password: password}
}

func (e *pdfExtractor) ExtractPages(ctx context.Context, r io.ReaderAt, size int64) ([]ExtractedPage, error) {
	var opts []documentloaders.PDFOptions
	if e.password != "" {
		opts = append(opts, documentloaders.WithPassword(e.password))
	}

	docs, err := documentloaders.NewPDF(r, size, opts...).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pdf: %w", err)
	}

	pages := make([]ExtractedPage, 0, len(docs))
	for idx, doc := range docs {
		num, ok := doc.Metadata["page"].(int)
		if !ok {
			num = idx + 1
		}
		pages = append(pages, ExtractedPage{
			PageNum: num,
			Text:    doc.PageContent,
		})
	}
	return pages, nil
}

// PDFSource describes a PDF document to import as one book.
type PDFSource struct {
	Subject   string
	BookTitle string
	FileName  string
	Reader    io.ReaderAt
	Size      int64
}

// ImportPDF imports a PDF as a book: the book record is upserted first,
// then every extracted page is upserted on the worker pool.
func (i *Importer) ImportPDF(ctx context.Context, src PDFSource) (Summary, error) {
	book := &core.Book{
		Subject:   src.Subject,
		BookTitle: src.BookTitle,
		FileName:  src.FileName,
	}
	if err := core.ValidateBook(book); err != nil {
		return Summary{}, err
	}

	extracted, err := i.extractor.ExtractPages(ctx, src.Reader, src.Size)
	if err != nil {
		return Summary{}, err
	}
	if len(extracted) == 0 {
		return Summary{}, fmt.Errorf("%w: %s", ErrNoPages, src.FileName)
	}

	outcome, err := i.ImportBook(ctx, book)
	if err != nil {
		return Summary{}, err
	}

	pages := make([]*core.Page, len(extracted))
	for idx, ep := range extracted {
		pages[idx] = &core.Page{
			Subject:    book.Subject,
			BookTitle:  book.BookTitle,
			PageNum:    ep.PageNum,
			Text:       ep.Text,
			ImportedAt: book.ImportedAt,
		}
	}

	summary, err := i.ImportPages(ctx, pages)
	summary.Book = outcome
	i.logger.Info("imported pdf",
		"subject", book.Subject,
		"title", book.BookTitle,
		"pages", summary.Pages,
		"created", summary.Created,
		"failed", summary.Failed)
	return summary, err
}

// ImportPDFFile imports the PDF at path. An empty bookTitle defaults to the
// file name without its extension.
func (i *Importer) ImportPDFFile(ctx context.Context, subject, bookTitle, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Summary{}, err
	}

	fileName := filepath.Base(path)
	if bookTitle == "" {
		bookTitle = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}

	return i.ImportPDF(ctx, PDFSource{
		Subject:   subject,
		BookTitle: bookTitle,
		FileName:  fileName,
		Reader:    f,
		Size:      info.Size(),
	})
}
