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


package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMaxAttempts indicates a non-positive retry attempt limit.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrProvider is the root of all embedding provider failures.
	ErrProvider = errors.New("embedding provider failed")
)

// ProviderError reports a batch embedding failure after retries were
// exhausted. Completed counts the vectors produced before the failing
// request; Failed counts the remaining inputs. Partial results are never
// returned alongside this error: the caller decides whether to retry the
// failed subset.
type ProviderError struct {
	Completed int
	Failed    int
	Attempts  int
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider failed after %d attempts (%d completed, %d failed): %v",
		e.Attempts, e.Completed, e.Failed, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes the typed error match ErrProvider via errors.Is.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}
