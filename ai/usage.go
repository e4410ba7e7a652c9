package ai

import "sync/atomic"

// Usage is a point-in-time snapshot of the provider accounting counters.
// It exists for budget observability only and has no effect on search
// correctness.
type Usage struct {
	Tokens   int64 // total tokens attributed to embedding calls
	Requests int64 // provider requests issued (after batching)
	Failures int64 // provider requests that failed all retry attempts
}

// UsageCounter accumulates token and request counts across concurrent
// embedding calls. The zero value is ready to use.
type UsageCounter struct {
	tokens   atomic.Int64
	requests atomic.Int64
	failures atomic.Int64
}

// AddTokens records tokens consumed by a completed request.
func (u *UsageCounter) AddTokens(n int) {
	u.tokens.Add(int64(n))
}

// AddRequest records one issued provider request.
func (u *UsageCounter) AddRequest() {
	u.requests.Add(1)
}

// AddFailure records one provider request that exhausted its retries.
func (u *UsageCounter) AddFailure() {
	u.failures.Add(1)
}

// Snapshot returns the current counter values.
func (u *UsageCounter) Snapshot() Usage {
	return Usage{
		Tokens:   u.tokens.Load(),
		Requests: u.requests.Load(),
		Failures: u.failures.Load(),
	}
}

// ApproximateTokens estimates the token count of a text using a whitespace
// split. It is a documented approximation for providers that do not report
// usage, not an exact tokenizer count.
func ApproximateTokens(texts []string) int {
	total := 0
	for _, text := range texts {
		inWord := false
		for _, r := range text {
			space := r == ' ' || r == '\t' || r == '\n' || r == '\r'
			if !space && !inWord {
				total++
			}
			inWord = !space
		}
	}
	return total
}
