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


package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrCollectionNotFound indicates an operation against a collection
	// that was never created.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrBackendUnavailable indicates the backend cannot be reached.
	// The failover wrapper treats it as a signal to switch to the
	// in-memory fallback.
	ErrBackendUnavailable = errors.New("vector backend unavailable")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrDimensionMismatch is the root of all vector dimension conflicts.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// DimensionMismatchError reports an attempt to mix vector dimensions within
// one collection. It is a structural error: never retried, and it must not
// corrupt the collection it was raised for.
type DimensionMismatchError struct {
	Collection string
	Expected   int
	Actual     int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("collection %q expects vectors of dimension %d, got %d",
		e.Collection, e.Expected, e.Actual)
}

// Is makes the typed error match ErrDimensionMismatch via errors.Is.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
