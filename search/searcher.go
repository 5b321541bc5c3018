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


package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/auricle-ai/auricle/ai"
	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/rank"
	"github.com/auricle-ai/auricle/storage"
)

// DefaultTopK is the result count used when the caller passes topK <= 0.
const DefaultTopK = 10

// DefaultCandidateCap bounds how many chunks are pulled from the store
// for ranking on a single query.
const DefaultCandidateCap = 256

// DefaultEmbedTimeout bounds the query embedding call. Search degrades to
// lexical and recency scoring when the deadline passes.
const DefaultEmbedTimeout = 5 * time.Second

// ScopeFilter restricts a search to matching chunks. Zero-valued fields
// are ignored; set fields combine with AND.
type ScopeFilter struct {
	// Scopes limits results to the named owner scopes.
	Scopes []string

	// SourceTypes limits results to chunks from these source types.
	SourceTypes []core.SourceType

	// Tags requires every listed tag to be present on a chunk.
	Tags []string

	// CreatedAfter keeps chunks created at or after this instant.
	CreatedAfter time.Time

	// CreatedBefore keeps chunks created strictly before this instant.
	CreatedBefore time.Time
}

func (f ScopeFilter) toStorage() storage.Filter {
	return storage.Filter{
		Scopes:        f.Scopes,
		SourceTypes:   f.SourceTypes,
		Tags:          f.Tags,
		CreatedAfter:  f.CreatedAfter,
		CreatedBefore: f.CreatedBefore,
	}
}

// Response is the outcome of one search.
type Response struct {
	// Results are the ranked hits, best first, at most topK of them.
	Results []rank.Scored

	// QueryDegraded is true when the query embedding failed and results
	// were ranked on lexical and recency signals only.
	QueryDegraded bool
}

// Searcher ranks stored chunks against free-text queries, blending vector
// similarity with lexical overlap and recency.
type Searcher struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	rankConfig      rank.Config
	candidateCap    int
	embedTimeout    time.Duration
	logger          *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRankConfig overrides the ranking weights and recency half-life.
func WithRankConfig(cfg rank.Config) Option {
	return func(s *Searcher) error {
		s.rankConfig = cfg
		return nil
	}
}

// WithCandidateCap bounds how many chunks are ranked per query.
func WithCandidateCap(cap int) Option {
	return func(s *Searcher) error {
		if cap < 1 {
			cap = DefaultCandidateCap
		}
		s.candidateCap = cap
		return nil
	}
}

// WithEmbedTimeout bounds the query embedding call.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout <= 0 {
			timeout = DefaultEmbedTimeout
		}
		s.embedTimeout = timeout
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(chunkRepository storage.ChunkRepository, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	s := &Searcher{
		chunkRepository: chunkRepository,
		embedder:        provider.Embedder(),
		rankConfig:      rank.DefaultConfig(),
		candidateCap:    DefaultCandidateCap,
		embedTimeout:    DefaultEmbedTimeout,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns up to topK chunks matching the filter, ranked by blended
// relevance to the query.
func (s *Searcher) Search(ctx context.Context, query string, filter ScopeFilter, topK int) (*Response, error) {
	return s.SearchWithMonitor(ctx, query, filter, topK, nil)
}

// SearchWithMonitor is Search with monitoring callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, filter ScopeFilter, topK int, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	monitor.Start(query)

	// The query embedding is best-effort: an unreachable embedder degrades
	// the search instead of failing it.
	embedding, degraded := s.embedQuery(ctx, query)
	monitor.AfterQueryEmbedding(embedding, degraded)

	candidateLimit := s.candidateCap
	if topK > candidateLimit {
		candidateLimit = topK
	}
	candidates, err := s.chunkRepository.QueryCandidates(ctx, filter.toStorage(), candidateLimit)
	if err != nil {
		s.logger.Error("error querying candidates", "err", err)
		return nil, err
	}
	monitor.AfterCandidateQuery(candidates)

	ranked := rank.Rank(rank.Query{Text: query, Embedding: embedding}, candidates, s.rankConfig, time.Now().UTC())
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	monitor.Finish(ranked)
	s.logger.Debug("search complete",
		"query", query, "candidates", len(candidates), "results", len(ranked), "degraded", degraded)
	return &Response{Results: ranked, QueryDegraded: degraded}, nil
}

func (s *Searcher) embedQuery(ctx context.Context, query string) ([]float32, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil || len(embedding) == 0 {
		s.logger.Warn("query embedding unavailable, degrading to lexical ranking", "err", err)
		return nil, true
	}
	return rank.Normalize(embedding), false
}
