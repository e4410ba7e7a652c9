// Package memory provides a map-backed storage.Backend used for tests
// and as the degraded-mode fallback for the failover wrapper.
package memory
