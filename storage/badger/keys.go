package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/pagesearch/core"
)

// Key prefixes for different data types
const (
	bookRecordPrefix  = "book"
	bookSubjectPrefix = "bksub"
	pageRecordPrefix  = "page"
	pageTokenPrefix   = "pgtok"
	indexVersionKey   = "meta:indexver"
)

// subjectTitleSeparator splits subject and title in the subject index.
// Validation keeps it out of key fields.
const subjectTitleSeparator = 0x00

// makeBookKey generates a key for a book by ID.
func makeBookKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", bookRecordPrefix, id))
}

// makeBookSubjectKey generates a composite key for the subject index.
// Format: prefix:subject\x00title
func makeBookSubjectKey(subject, bookTitle string) []byte {
	buf := makeBookSubjectPrefix(subject)
	return append(buf, bookTitle...)
}

// makeBookSubjectPrefix generates a partial key for titles in one subject.
// Format: prefix:subject\x00
func makeBookSubjectPrefix(subject string) []byte {
	prefix := bookSubjectPrefix + ":"
	buf := make([]byte, 0, len(prefix)+len(subject)+1)
	buf = append(buf, prefix...)
	buf = append(buf, subject...)
	return append(buf, subjectTitleSeparator)
}

// splitBookSubjectKey returns the subject and title encoded in a subject index key.
func splitBookSubjectKey(key []byte) (subject, bookTitle string, ok bool) {
	rest := key[len(bookSubjectPrefix)+1:]
	for i, c := range rest {
		if c == subjectTitleSeparator {
			return string(rest[:i]), string(rest[i+1:]), true
		}
	}
	return "", "", false
}

// makePageKey generates a key for a page.
// Format: prefix:bookID:pageNum
// BigEndian keeps the pages of one book in page number order.
func makePageKey(bookID core.ID, pageNum int) []byte {
	buf := makePageBookPrefix(bookID)
	return binary.BigEndian.AppendUint64(buf, uint64(pageNum))
}

// makePageBookPrefix generates a partial key for all pages of a book.
// Format: prefix:bookID
func makePageBookPrefix(bookID core.ID) []byte {
	prefix := pageRecordPrefix + ":"
	buf := make([]byte, 0, len(prefix)+16)
	buf = append(buf, prefix...)
	return binary.BigEndian.AppendUint64(buf, uint64(bookID))
}

// makePageTokenKey generates a composite key for the token index.
// Format: prefix:tokenID:bookID:pageNum
func makePageTokenKey(tokenID, bookID core.ID, pageNum int) []byte {
	buf := makePageTokenPrefix(tokenID, bookID)
	return binary.BigEndian.AppendUint64(buf, uint64(pageNum))
}

// makePageTokenPrefix generates a partial key for one token within one book.
// Format: prefix:tokenID:bookID
func makePageTokenPrefix(tokenID, bookID core.ID) []byte {
	prefix := pageTokenPrefix + ":"
	buf := make([]byte, 0, len(prefix)+24)
	buf = append(buf, prefix...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(tokenID))
	return binary.BigEndian.AppendUint64(buf, uint64(bookID))
}

// pageNumFromKey extracts the trailing page number of a page or token key.
func pageNumFromKey(key []byte) int {
	return int(binary.BigEndian.Uint64(key[len(key)-8:]))
}
