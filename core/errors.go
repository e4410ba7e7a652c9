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


package core

import "errors"

// Domain validation errors
var (
	// ErrValidation is the root of all request validation failures.
	// Callers can match it with errors.Is to distinguish caller bugs
	// from transient backend failures.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownSourceType indicates a source type outside the fixed enumeration.
	ErrUnknownSourceType = errors.New("unknown source type")

	// ErrEmptyDocumentID indicates a missing document identifier.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyQuery indicates an empty search query.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidTopK indicates a non-positive result limit.
	ErrInvalidTopK = errors.New("top_k must be positive")

	// ErrInvalidMinScore indicates a score floor outside [0,1].
	ErrInvalidMinScore = errors.New("min_score must be within [0,1]")
)
