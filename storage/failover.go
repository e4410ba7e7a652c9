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
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Failover routes operations to a primary backend and switches to the
// fallback when the primary becomes unavailable. The switch is one-way
// for the lifetime of the process: once degraded, all traffic stays on
// the fallback and Health reports HealthDegraded. Structural errors such
// as dimension mismatches pass through without triggering the switch.
type Failover struct {
	primary  Backend
	fallback Backend
	degraded atomic.Bool
	logOnce  sync.Once
	logger   *slog.Logger
}

var _ Backend = (*Failover)(nil)

// NewFailover wraps primary with a fallback backend.
func NewFailover(primary, fallback Backend) *Failover {
	return &Failover{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default().With("component", "storage-failover"),
	}
}

// Degraded reports whether traffic has switched to the fallback.
func (f *Failover) Degraded() bool {
	return f.degraded.Load()
}

// active returns the backend currently receiving traffic.
func (f *Failover) active() Backend {
	if f.degraded.Load() {
		return f.fallback
	}
	return f.primary
}

// isUnavailable reports whether err signals loss of the primary rather
// than a structural or caller error.
func isUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) || errors.Is(err, ErrStorageClosed)
}

// degrade flips traffic to the fallback, logging the transition once.
func (f *Failover) degrade(err error) {
	f.degraded.Store(true)
	f.logOnce.Do(func() {
		f.logger.Warn("primary vector backend unavailable, switching to in-memory fallback",
			"error", err)
	})
}

func (f *Failover) EnsureCollection(ctx context.Context, name string, vectorDim int) error {
	err := f.active().EnsureCollection(ctx, name, vectorDim)
	if err != nil && !f.degraded.Load() && isUnavailable(err) {
		f.degrade(err)
		return f.fallback.EnsureCollection(ctx, name, vectorDim)
	}
	return err
}

func (f *Failover) DeleteCollection(ctx context.Context, name string) error {
	err := f.active().DeleteCollection(ctx, name)
	if err != nil && !f.degraded.Load() && isUnavailable(err) {
		f.degrade(err)
		return f.fallback.DeleteCollection(ctx, name)
	}
	return err
}

func (f *Failover) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	infos, err := f.active().ListCollections(ctx)
	if err != nil && !f.degraded.Load() && isUnavailable(err) {
		f.degrade(err)
		return f.fallback.ListCollections(ctx)
	}
	return infos, err
}

func (f *Failover) CollectionInfo(ctx context.Context, name string) (*CollectionInfo, error) {
	info, err := f.active().CollectionInfo(ctx, name)
	if err != nil && !f.degraded.Load() && isUnavailable(err) {
		f.degrade(err)
		return f.fallback.CollectionInfo(ctx, name)
	}
	return info, err
}

func (f *Failover) Upsert(ctx context.Context, collection string, items []Item) error {
	err := f.active().Upsert(ctx, collection, items)
	if err != nil && !f.degraded.Load() && isUnavailable(err) {
		f.degrade(err)
		return f.fallback.Upsert(ctx, collection, items)
	}
	return err
}

func (f *Failover) Get(ctx context.Context, collection string, ids []string) ([]Item, error) {
	items, err := f.active().Get(ctx, collection, ids)
	if err != nil && !f.degraded.Load() && isUnavailable(err) {
		f.degrade(err)
		return f.fallback.Get(ctx, collection, ids)
	}
	return items, err
}

func (f *Failover) DeleteByDocument(ctx context.Context, collection, documentID string) error {
	err := f.active().DeleteByDocument(ctx, collection, documentID)
	if err != nil && !f.degraded.Load() && isUnavailable(err) {
		f.degrade(err)
		return f.fallback.DeleteByDocument(ctx, collection, documentID)
	}
	return err
}

func (f *Failover) Query(ctx context.Context, collection string, vector []float32, topK int, filter *Filter) ([]Hit, error) {
	hits, err := f.active().Query(ctx, collection, vector, topK, filter)
	if err != nil && !f.degraded.Load() && isUnavailable(err) {
		f.degrade(err)
		return f.fallback.Query(ctx, collection, vector, topK, filter)
	}
	return hits, err
}

func (f *Failover) Health(ctx context.Context) Health {
	if f.degraded.Load() {
		return HealthDegraded
	}
	return f.primary.Health(ctx)
}

// Close closes both backends, returning the first error encountered.
func (f *Failover) Close() error {
	err := f.primary.Close()
	if ferr := f.fallback.Close(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
