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


package core

import (
	"fmt"
	"strings"
)

// ValidateBook validates a Book according to domain rules.
//
// Validation rules:
//   - Subject must not be empty
//   - BookTitle must not be empty
//   - Subject and BookTitle must not contain NUL
//
// NOT validated:
//   - FileName (advisory only)
//   - Timestamps (defaulted by storage)
func ValidateBook(book *Book) error {
	if book == nil {
		return fmt.Errorf("%w: book is nil", ErrInvalidBook)
	}
	if err := validateBookKey(book.Subject, book.BookTitle); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBook, err)
	}
	return nil
}

// ValidatePage validates a Page according to domain rules.
//
// Validation rules:
//   - Subject and BookTitle follow the same rules as for a Book
//   - PageNum must be >= 0
//
// Empty Text is valid; a blank page is still a page.
func ValidatePage(page *Page) error {
	if page == nil {
		return fmt.Errorf("%w: page is nil", ErrInvalidPage)
	}
	if err := validateBookKey(page.Subject, page.BookTitle); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPage, err)
	}
	if page.PageNum < 0 {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidPage, ErrNegativePageNum, page.PageNum)
	}
	return nil
}

// ValidateSubject checks a subject used as a lookup key.
func ValidateSubject(subject string) error {
	if subject == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptySubject)
	}
	if strings.Contains(subject, keySeparator) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrInvalidKeyChar)
	}
	return nil
}

func validateBookKey(subject, bookTitle string) error {
	if subject == "" {
		return ErrEmptySubject
	}
	if bookTitle == "" {
		return ErrEmptyBookTitle
	}
	if strings.Contains(subject, keySeparator) || strings.Contains(bookTitle, keySeparator) {
		return ErrInvalidKeyChar
	}
	return nil
}
