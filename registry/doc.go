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


// Package registry coordinates document indexing across collections.
//
// Each source type owns one collection named after it. Indexing a
// document runs chunk, embed, ensure-collection, delete-old, upsert-new
// in that order: embedding failures leave the previous version fully
// searchable, and an upsert failure is rolled back to zero chunks so a
// document is never half-indexed. Operations on the same document ID are
// serialized; different documents proceed in parallel, and bulk indexing
// fans out over an ants worker pool.
package registry
