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

import "fmt"

// ValidateSourceType validates that a source type is one of the known values.
func ValidateSourceType(st SourceType) error {
	if !st.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrUnknownSourceType, st)
	}
	return nil
}

// ValidateIndexRequest validates the inputs to an index operation.
//
// Validation rules:
//   - SourceType must be one of the fixed enumeration
//   - DocumentID must not be empty
//
// NOT validated:
//   - Text (empty text is a valid request and indexes zero chunks)
//   - Metadata (all fields optional)
func ValidateIndexRequest(st SourceType, documentID string) error {
	if err := ValidateSourceType(st); err != nil {
		return err
	}
	if documentID == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyDocumentID)
	}
	return nil
}

// ValidateSearchRequest validates the inputs to a search operation.
//
// Validation rules:
//   - Query must not be empty or whitespace-only
//   - TopK must be positive
//   - MinScore must be within [0,1]
//   - Every requested source type must be valid (an empty list is valid
//     and means "all collections with data")
func ValidateSearchRequest(query string, topK int, minScore float32, sourceTypes []SourceType) error {
	if !hasContent(query) {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyQuery)
	}
	if topK <= 0 {
		return fmt.Errorf("%w: %w: got %d", ErrValidation, ErrInvalidTopK, topK)
	}
	if minScore < 0 || minScore > 1 {
		return fmt.Errorf("%w: %w: got %v", ErrValidation, ErrInvalidMinScore, minScore)
	}
	for _, st := range sourceTypes {
		if err := ValidateSourceType(st); err != nil {
			return err
		}
	}
	return nil
}

// hasContent reports whether s contains any non-whitespace character.
func hasContent(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}
