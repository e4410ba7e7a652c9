package search

import "github.com/quillon/findry/core"

// Monitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during a search.
type Monitor interface {
	Start(query string, collections []string)
	AfterQueryEmbedding(dimension int)
	CollectionSearched(collection string, hits int, err error)
	Finish(results []core.SearchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ []string)                 {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)                  {}
func (n *noopMonitor) CollectionSearched(_ string, _ int, _ error) {}
func (n *noopMonitor) Finish(_ []core.SearchResult)               {}
