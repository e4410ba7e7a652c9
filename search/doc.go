// Copyright 2025 Quillon Labs
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


// Package search provides hybrid semantic and keyword search across
// collections.
//
// The Searcher type fans a query out over every selected collection
// concurrently, overfetching candidates from each, then fuses the hits:
//   - Semantic score: normalized cosine similarity from the backend
//   - Keyword score: stop-word-filtered query term overlap
//   - Combined score: a weighted blend, 0.7 semantic and 0.3 keyword by default
//
// Results are deduplicated to the best chunk per document and ordered
// deterministically: combined score descending, semantic score
// descending, document ID ascending. Collections that fail to answer are
// reported alongside the results; the search only fails outright when
// every collection does.
package search
