package ai

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageCounter_Concurrent(t *testing.T) {
	var counter UsageCounter
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counter.AddTokens(10)
			counter.AddRequest()
		}()
	}
	wg.Wait()

	usage := counter.Snapshot()
	assert.Equal(t, int64(500), usage.Tokens)
	assert.Equal(t, int64(50), usage.Requests)
	assert.Zero(t, usage.Failures)
}

func TestApproximateTokens(t *testing.T) {
	assert.Zero(t, ApproximateTokens(nil))
	assert.Zero(t, ApproximateTokens([]string{""}))
	assert.Equal(t, 2, ApproximateTokens([]string{"hello world"}))
	assert.Equal(t, 5, ApproximateTokens([]string{"a b  c", "d\ne"}))
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Completed: 3, Failed: 2, Attempts: 3, Err: assert.AnError}

	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "3 completed")
	assert.Contains(t, err.Error(), "2 failed")
}
