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


package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/auricle-ai/auricle/ai"
	"github.com/auricle-ai/auricle/chunker"
	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/rank"
	"github.com/auricle-ai/auricle/storage"
)

// run drives one job through the stage machine:
// queued -> chunking -> embedding -> indexed | failed.
func (p *Pipeline) run(ctx context.Context, job *core.IngestionJob, source Source) {
	job.Attempt++
	p.setStage(ctx, job, core.JobStageChunking)

	pieces, err := p.split(source)
	if err != nil {
		// Malformed input; retrying the same input cannot succeed.
		p.fail(ctx, job, err, false)
		return
	}

	chunks := p.buildChunks(job.OwnerScope, source, pieces)
	job.ChunkCount = len(chunks)

	if len(chunks) == 0 {
		// An empty source still replaces the scope, clearing stale chunks.
		if err := p.install(ctx, job, nil); err != nil {
			return
		}
		p.setStage(ctx, job, core.JobStageIndexed)
		return
	}

	p.setStage(ctx, job, core.JobStageEmbedding)

	failed := p.embedChunks(ctx, chunks)
	job.FailedChunks = failed
	job.Degraded = failed > 0

	if fraction := float64(failed) / float64(len(chunks)); fraction > p.maxFailureFraction {
		p.fail(ctx, job, fmt.Errorf("%d of %d chunks failed embedding", failed, len(chunks)), true)
		return
	}

	if err := p.install(ctx, job, chunks); err != nil {
		return
	}

	p.setStage(ctx, job, core.JobStageIndexed)
	p.logger.Info("ingestion job indexed",
		"job", job.Id, "scope", job.OwnerScope, "chunks", len(chunks), "failedChunks", failed)
}

func (p *Pipeline) split(source Source) ([]chunker.Piece, error) {
	switch {
	case source.Type == core.SourceTypeTranscript:
		return p.splitter.SplitTimed(source.Segments)
	case len(source.Blocks) > 0:
		return p.splitter.SplitBlocks(source.Blocks), nil
	default:
		return p.splitter.SplitText(source.Text), nil
	}
}

func (p *Pipeline) buildChunks(ownerScope string, source Source, pieces []chunker.Piece) []*core.Chunk {
	now := time.Now().UTC()
	chunks := make([]*core.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &core.Chunk{
			Id:            core.ChunkID(ownerScope, i),
			OwnerScope:    ownerScope,
			Source:        source.Type,
			Text:          piece.Text,
			TimeRange:     piece.TimeRange,
			SequenceIndex: i,
			Tags:          source.Tags,
			CreatedAt:     now,
		}
	}
	return chunks
}

// embedChunks embeds all chunks on the shared embed pool and returns the
// number that failed. A failed chunk keeps a nil embedding and is indexed
// anyway; search falls back to lexical scoring for it.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*core.Chunk) int {
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, chunk := range chunks {
		chunk := chunk
		wg.Add(1)
		submitErr := p.embedPool.Submit(func() {
			defer wg.Done()
			if err := p.embedOne(ctx, chunk); err != nil {
				p.logger.Warn("chunk embedding failed",
					"scope", chunk.OwnerScope, "sequence", chunk.SequenceIndex, "err", err)
				chunk.Embedding = nil
				failed.Add(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			chunk.Embedding = nil
			failed.Add(1)
		}
	}
	wg.Wait()

	return int(failed.Load())
}

func (p *Pipeline) embedOne(ctx context.Context, chunk *core.Chunk) error {
	ctx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()

	return ai.RetryWithBackoff(ctx, func() error {
		vector, err := p.embedder.EmbedText(ctx, chunk.Text)
		if err != nil {
			return err
		}
		if len(vector) == 0 {
			return errors.New("embedder returned empty vector")
		}
		chunk.Embedding = rank.Normalize(vector)
		return nil
	}, p.retry)
}

// install replaces the scope's chunk set, handling supersession. Returns
// a non-nil error when the job has been moved to failed.
func (p *Pipeline) install(ctx context.Context, job *core.IngestionJob, chunks []*core.Chunk) error {
	err := p.chunkRepository.ReplaceScope(ctx, job.OwnerScope, job.Generation, chunks)
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrSuperseded) {
		// A newer job for this scope owns the index now; this result is
		// discarded, not retried.
		p.fail(ctx, job, err, false)
		return err
	}
	p.fail(ctx, job, err, true)
	return err
}

func (p *Pipeline) setStage(ctx context.Context, job *core.IngestionJob, stage core.JobStage) {
	job.Stage = stage
	job.UpdatedAt = time.Now().UTC()
	if err := p.jobRepository.PutJob(ctx, job); err != nil {
		p.logger.Error("error persisting job stage", "job", job.Id, "stage", stage, "err", err)
	}
}

func (p *Pipeline) fail(ctx context.Context, job *core.IngestionJob, cause error, retryable bool) {
	job.LastError = cause.Error()
	job.Retryable = retryable
	p.setStage(ctx, job, core.JobStageFailed)
	p.logger.Error("ingestion job failed",
		"job", job.Id, "scope", job.OwnerScope, "retryable", retryable, "err", cause)
}
