// Copyright 2025 Auricle Systems
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


package auricle

import (
	"io"
	"log/slog"

	"github.com/auricle-ai/auricle/ai"
	"github.com/auricle-ai/auricle/ai/openai"
	"github.com/auricle-ai/auricle/ingest"
	"github.com/auricle-ai/auricle/reembed"
	"github.com/auricle-ai/auricle/search"
	"github.com/auricle-ai/auricle/storage"
	"github.com/auricle-ai/auricle/storage/badger"
)

// Corpus bundles the chunk index, job records and embedding provider
// behind one handle. It is the embedded entry point: open a corpus, then
// create pipelines and searchers from it.
type Corpus struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	jobRepo   storage.JobRepository
	provider  ai.Provider
	logger    *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects a pre-built embedding provider, bypassing the
// OpenAI-compatible default. Useful for tests and custom backends.
func WithProvider(provider ai.Provider) CorpusOption {
	return func(o *corpusOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the store in memory instead of on disk. The file
// path is ignored and nothing survives Close.
func WithInMemory() CorpusOption {
	return func(o *corpusOptions) {
		o.inMemory = true
	}
}

// Open opens a corpus at the given directory, creating it if needed.
func Open(filePath string, opts ...CorpusOption) (*Corpus, error) {
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	jobRepo := badger.NewJobRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Corpus{
		backend:   backend,
		chunkRepo: chunkRepo,
		jobRepo:   jobRepo,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

// Close releases the provider, repositories and backing store.
func (c *Corpus) Close() error {
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing embedding provider", "err", err)
	}

	if err := c.jobRepo.Close(); err != nil {
		c.logger.Error("error closing job repository", "err", err)
		return err
	}
	if err := c.chunkRepo.Close(); err != nil {
		c.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ChunkRepository exposes the underlying chunk store.
func (c *Corpus) ChunkRepository() storage.ChunkRepository {
	return c.chunkRepo
}

// JobRepository exposes the underlying job store.
func (c *Corpus) JobRepository() storage.JobRepository {
	return c.jobRepo
}

// NewPipeline creates an ingestion pipeline over this corpus.
func (c *Corpus) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(c.chunkRepo, c.jobRepo, c.provider, opts...)
}

// NewSearcher creates a searcher over this corpus.
func (c *Corpus) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(c.chunkRepo, c.provider, opts...)
}

// NewReembedder creates a reembedder over this corpus.
func (c *Corpus) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(c.chunkRepo, c.provider.Embedder(), config, progress)
}
