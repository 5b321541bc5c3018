package reembed

import (
	"context"
	"fmt"

	"github.com/auricle-ai/auricle/ai"
	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/rank"
	"github.com/auricle-ai/auricle/storage"
)

// BatchProcessor re-embeds one scope's chunks in bounded batches.
type BatchProcessor struct {
	repo      storage.ChunkRepository
	embedder  ai.Embedder
	batchSize int
	retry     ai.RetryPolicy
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(repo storage.ChunkRepository, embedder ai.Embedder, batchSize int, retry ai.RetryPolicy) *BatchProcessor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchProcessor{
		repo:      repo,
		embedder:  embedder,
		batchSize: batchSize,
		retry:     retry,
	}
}

// Process re-embeds the given chunks and writes the new vectors back in
// place. Chunks that previously failed embedding (nil vector) are filled
// in like any other. Vectors are normalized after embedding so cosine
// similarity stays well-defined.
func (bp *BatchProcessor) Process(ctx context.Context, ownerScope string, chunks []*core.Chunk) error {
	for start := 0; start < len(chunks); start += bp.batchSize {
		end := start + bp.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := bp.processBatch(ctx, ownerScope, chunks[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (bp *BatchProcessor) processBatch(ctx context.Context, ownerScope string, batch []*core.Chunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.retry)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.retry.MaxAttempts, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	for i := range batch {
		batch[i].Embedding = rank.Normalize(embeddings[i])
	}

	if err := bp.repo.UpdateEmbeddings(ctx, ownerScope, batch); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}
	return nil
}
