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


// Package ai provides the embedding provider abstraction used by the
// retrieval engine.
//
// The package defines the Embedder interface together with the provider
// configuration, retry policy, and usage accounting shared by all
// implementations. Provider responses are converted to the explicit Result
// type at the provider boundary; raw provider payloads never travel further
// into the pipeline.
//
// # Implementation Packages
//
//   - ai/openai: production implementation for OpenAI-compatible embedding
//     APIs, with transparent request batching and bounded retries
//   - ai/offline: deterministic hash-derived embeddings for development and
//     tests without a live provider
//   - ai/mock: test doubles with injectable behavior for unit tests
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder, offline.NewEmbedder) return the
// ai.Embedder INTERFACE to enforce abstraction and keep callers decoupled
// from the concrete provider. Test utility constructors (mock.NewEmbedder)
// return CONCRETE types so tests can inject behavior and assert on call
// counts.
//
// # Offline Mode
//
// Offline embeddings are flagged in every Result so callers can refuse to
// mix real and mock vectors within one collection.
package ai
