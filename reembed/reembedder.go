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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/auricle-ai/auricle/ai"
	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/storage"
)

const (
	// DefaultBatchSize is the default number of chunks embedded per API call.
	DefaultBatchSize = 100

	// DefaultReportInterval is how often progress is reported, in chunks.
	DefaultReportInterval = 100
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of chunks to embed in each batch.
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks).
	ReportInterval int

	// Retry bounds retries of failed embedding calls.
	Retry ai.RetryPolicy

	// Scopes limits the run to the named owner scopes. Empty means all.
	Scopes []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: DefaultReportInterval,
		Retry:          ai.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
	}
}

// Reembedder re-embeds stored chunks scope by scope, writing new vectors
// in place. Chunk IDs, text and sequence indexes never change.
type Reembedder struct {
	repo      storage.ChunkRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ScopeIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.ChunkRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Retry.MaxAttempts <= 0 {
		config.Retry = DefaultConfig().Retry
	}

	return &Reembedder{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.BatchSize, config.Retry),
		iterator:  NewScopeIterator(repo, config.Scopes),
	}
}

// Run executes the reembedding operation over the configured scopes.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	total, err := r.countChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d chunks (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(ownerScope string, chunks []*core.Chunk) error {
		if err := r.processor.Process(ctx, ownerScope, chunks); err != nil {
			return fmt.Errorf("scope %q: %w", ownerScope, err)
		}
		processed += len(chunks)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())
	return nil
}

func (r *Reembedder) countChunks(ctx context.Context) (int, error) {
	total := 0
	err := r.iterator.ForEach(ctx, func(_ string, chunks []*core.Chunk) error {
		total += len(chunks)
		return nil
	})
	return total, err
}
