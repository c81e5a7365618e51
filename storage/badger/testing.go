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


package badger

// NewMemoryRepositories creates in-memory book and page repositories for testing.
// Returns bookRepo, pageRepo, connector, and error.
// The connector is already established; caller must close it when done.
func NewMemoryRepositories(opts ...ConnectorOption) (*BookRepository, *PageRepository, *Connector, error) {
	conn := NewConnector("", true, opts...)
	if _, err := conn.Backend(); err != nil {
		return nil, nil, nil, err
	}
	return NewBookRepository(conn), NewPageRepository(conn), conn, nil
}
