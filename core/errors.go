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
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrInvalidInput indicates missing or malformed required fields.
	// Every validation error in this package wraps it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidBook indicates a Book failed validation.
	ErrInvalidBook = fmt.Errorf("%w: book", ErrInvalidInput)

	// ErrInvalidPage indicates a Page failed validation.
	ErrInvalidPage = fmt.Errorf("%w: page", ErrInvalidInput)

	// ErrEmptySubject indicates the Subject field is empty.
	ErrEmptySubject = errors.New("subject cannot be empty")

	// ErrEmptyBookTitle indicates the BookTitle field is empty.
	ErrEmptyBookTitle = errors.New("book title cannot be empty")

	// ErrNegativePageNum indicates a PageNum below zero.
	ErrNegativePageNum = errors.New("page number cannot be negative")

	// ErrInvalidKeyChar indicates a natural key field contains a NUL byte.
	ErrInvalidKeyChar = errors.New("key field cannot contain NUL")

	// ErrEmptyQuery indicates the search phrase is empty.
	ErrEmptyQuery = errors.New("query cannot be empty")
)
