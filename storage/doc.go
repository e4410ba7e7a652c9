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


// Package storage defines the vector backend contract and the types that
// flow across it.
//
// A Backend stores embedding vectors grouped into named collections and
// answers nearest-neighbour queries over them. Two implementations ship
// with this module:
//
//   - storage/badger: durable storage on BadgerDB, brute-force cosine scan
//   - storage/memory: a map-backed store for tests and fallback operation
//
// The Failover wrapper composes the two: it routes to a primary backend
// and switches permanently to the fallback when the primary reports
// itself unavailable, degrading Health rather than failing requests.
//
// Query scores are normalized cosine similarity, (cos + 1) / 2, so every
// hit lands in [0, 1] regardless of vector orientation. Items and
// collection metadata are serialized in MUS format; the serializers live
// in serialization.go and follow the XxxMUS naming convention.
package storage
