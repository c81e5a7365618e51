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


// Package search provides phrase search over the pages of selected books.
//
// The Searcher matches a literal phrase as a case-insensitive whole word
// against every page of the requested books within one subject and groups
// the hits by book title:
//
//	results, err := searcher.Search(ctx, "Biology", "cell wall", []string{"Cells", "Plants"})
//
// There is no ranking. Books keep the order they were requested in and
// pages within a book are ordered by page number.
package search
