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


// Package storage provides the document store abstraction for pagesearch.
//
// This package defines repository interfaces that decouple the storage
// implementation from search and ingestion. The badger subpackage provides
// the embedded BadgerDB implementation.
//
// # Architecture
//
//   - BookRepository: upsert and lookup of books keyed by (subject, title)
//   - PageRepository: upsert of pages keyed by (subject, title, page number)
//     and predicate queries over them
//   - IndexManager: creation and rebuild of the indexes search relies on
//
// # Usage
//
//	conn := badger.NewConnector("/path/to/db", false)
//	defer conn.Close()
//	books := badger.NewBookRepository(conn)
//	pages := badger.NewPageRepository(conn)
//
// Use in tests with in-memory storage:
//
//	books, pages, conn, err := badger.NewMemoryRepositories()
//	defer conn.Close()
//
// # Errors
//
// Reads never fail because nothing matched; they return an empty slice.
// ErrNotConfigured is returned when the database cannot be opened and
// ErrWriteConflict when a contended upsert could not be committed after
// retrying.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
