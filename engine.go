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


package findry

import (
	"context"
	"log/slog"

	"github.com/quillon/findry/ai"
	"github.com/quillon/findry/ai/offline"
	"github.com/quillon/findry/ai/openai"
	"github.com/quillon/findry/chunker"
	"github.com/quillon/findry/core"
	"github.com/quillon/findry/registry"
	"github.com/quillon/findry/search"
	"github.com/quillon/findry/storage"
	"github.com/quillon/findry/storage/badger"
	"github.com/quillon/findry/storage/memory"
)

// Engine is the top-level facade over chunking, embedding, storage,
// indexing and search. It owns the component lifecycles: open it once,
// share it across goroutines, close it on shutdown.
type Engine struct {
	backend  *storage.Failover
	embedder ai.Embedder
	registry *registry.Registry
	searcher *search.Searcher
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	inMemory      bool
	searchOptions []search.Option
	registryOpts  []registry.Option
}

// WithAIConfig overrides the embedding provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemory stores vectors in memory only, with no durability.
// Intended for tests and throwaway environments.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithSearchOptions forwards options to the searcher.
func WithSearchOptions(opts ...search.Option) EngineOption {
	return func(o *engineOptions) {
		o.searchOptions = append(o.searchOptions, opts...)
	}
}

// WithRegistryOptions forwards options to the registry.
func WithRegistryOptions(opts ...registry.Option) EngineOption {
	return func(o *engineOptions) {
		o.registryOpts = append(o.registryOpts, opts...)
	}
}

// Open creates an Engine with durable storage at dataDir. The primary
// backend is BadgerDB behind a failover wrapper: if it becomes
// unavailable at runtime, traffic switches to an in-memory store and the
// engine keeps answering in degraded mode.
func Open(dataDir string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	primary, err := badger.OpenBackend(dataDir, options.inMemory)
	if err != nil {
		return nil, err
	}
	backend := storage.NewFailover(primary, memory.NewBackend())

	var embedder ai.Embedder
	if options.aiConfig.Offline {
		embedder, err = offline.NewEmbedder(options.aiConfig)
	} else {
		embedder, err = openai.NewEmbedder(options.aiConfig)
	}
	if err != nil {
		backend.Close()
		return nil, err
	}

	registryOpts := append([]registry.Option{
		registry.WithChunker(chunker.New()),
	}, options.registryOpts...)
	reg, err := registry.New(backend, embedder, registryOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	searcher, err := search.NewSearcher(reg, backend, embedder, options.searchOptions...)
	if err != nil {
		reg.Release()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:  backend,
		embedder: embedder,
		registry: reg,
		searcher: searcher,
		logger:   slog.Default(),
	}, nil
}

// Close releases the worker pools and closes both storage backends.
func (e *Engine) Close() error {
	e.registry.Release()
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// IndexDocument chunks, embeds and stores one document.
func (e *Engine) IndexDocument(ctx context.Context, req registry.IndexRequest) (*registry.IndexResult, error) {
	return e.registry.IndexDocument(ctx, req)
}

// IndexDocuments indexes a batch of documents concurrently.
func (e *Engine) IndexDocuments(ctx context.Context, reqs []registry.IndexRequest) ([]*registry.IndexResult, error) {
	return e.registry.IndexDocuments(ctx, reqs)
}

// RemoveDocument deletes every chunk of a document.
func (e *Engine) RemoveDocument(ctx context.Context, sourceType core.SourceType, documentID string) error {
	return e.registry.RemoveDocument(ctx, sourceType, documentID)
}

// Search runs a hybrid search across collections.
func (e *Engine) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	return e.searcher.Search(ctx, req)
}

// FindSimilar ranks documents similar to an indexed one.
func (e *Engine) FindSimilar(ctx context.Context, sourceType core.SourceType, documentID string, topK int) (*search.Response, error) {
	return e.searcher.FindSimilar(ctx, sourceType, documentID, topK)
}

// ListCollections reports every collection with live chunk counts.
func (e *Engine) ListCollections(ctx context.Context) ([]*storage.CollectionInfo, error) {
	return e.registry.ListCollections(ctx)
}

// Status is a point-in-time health report.
type Status struct {
	Health   storage.Health
	Degraded bool
	Usage    ai.Usage
}

// Status reports storage health and running embedding usage counters.
func (e *Engine) Status(ctx context.Context) Status {
	return Status{
		Health:   e.backend.Health(ctx),
		Degraded: e.backend.Degraded(),
		Usage:    e.embedder.Usage(),
	}
}

// Registry exposes the collection registry for advanced callers.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Searcher exposes the underlying searcher for advanced callers.
func (e *Engine) Searcher() *search.Searcher {
	return e.searcher
}
