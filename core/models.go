package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from an entity's natural key using content-based hashing.
type ID uint64

// keySeparator joins natural key parts before hashing. Key fields may not contain it.
const keySeparator = "\x00"

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// BookID returns the ID for the natural key (subject, bookTitle).
func BookID(subject, bookTitle string) ID {
	return IDFromContent(subject + keySeparator + bookTitle)
}

// PageID returns the ID for the natural key (subject, bookTitle, pageNum).
func PageID(subject, bookTitle string, pageNum int) ID {
	return IDFromContent(subject + keySeparator + bookTitle + keySeparator + strconv.Itoa(pageNum))
}

// TokenID returns the ID of a normalized word token scoped to a subject.
func TokenID(subject, token string) ID {
	return IDFromContent(subject + keySeparator + token)
}

// Book is a single source document (e.g. a PDF) identified by title within a subject.
type Book struct {
	Id         ID
	Subject    string
	BookTitle  string
	FileName   string    // Source artifact the book was imported from
	ImportedAt time.Time // When the book was imported
	UpdatedAt  time.Time // When the record was last upserted
}

// NaturalKey returns the natural key ID of the book.
func (b *Book) NaturalKey() ID {
	return BookID(b.Subject, b.BookTitle)
}

// Page is one page of extracted text belonging to a Book.
// Subject and BookTitle are denormalized from the owning book.
type Page struct {
	Id         ID
	Subject    string
	BookTitle  string
	PageNum    int
	Text       string
	ImportedAt time.Time
	UpdatedAt  time.Time
}

// NaturalKey returns the natural key ID of the page.
func (p *Page) NaturalKey() ID {
	return PageID(p.Subject, p.BookTitle, p.PageNum)
}

// BookKey returns the ID of the book owning the page.
func (p *Page) BookKey() ID {
	return BookID(p.Subject, p.BookTitle)
}

// PageMatch is a single page hit within a book.
type PageMatch struct {
	PageNum int    `json:"pageNum"`
	Text    string `json:"text"`
}

// SearchResultSet maps a book title to its page matches for one search.
type SearchResultSet map[string][]PageMatch
