package auricle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auricle-ai/auricle/ai"
	"github.com/auricle-ai/auricle/ai/mock"
	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/ingest"
	"github.com/auricle-ai/auricle/search"
)

func openTestCorpus(t *testing.T) *Corpus {
	t.Helper()

	corpus, err := Open("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { corpus.Close() })
	return corpus
}

func TestCorpus_IngestAndSearch(t *testing.T) {
	corpus := openTestCorpus(t)
	ctx := context.Background()

	pipeline, err := corpus.NewPipeline(
		ingest.WithRetryPolicy(ai.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond}),
	)
	require.NoError(t, err)
	defer pipeline.Release()

	id, err := pipeline.Ingest(ctx, "notes-1", ingest.Source{
		Type: core.SourceTypeDocument,
		Text: "The quarterly revenue review covered projections and hiring plans.",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		job, err := pipeline.Job(ctx, id)
		return err == nil && job.Stage == core.JobStageIndexed
	}, 5*time.Second, 5*time.Millisecond)

	searcher, err := corpus.NewSearcher()
	require.NoError(t, err)

	resp, err := searcher.Search(ctx, "revenue projections", search.ScopeFilter{}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "notes-1", resp.Results[0].Chunk.OwnerScope)
}

func TestCorpus_DeleteScope(t *testing.T) {
	corpus := openTestCorpus(t)
	ctx := context.Background()

	pipeline, err := corpus.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	id, err := pipeline.Ingest(ctx, "notes-1", ingest.Source{
		Type: core.SourceTypeMessage,
		Text: "short note",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		job, err := pipeline.Job(ctx, id)
		return err == nil && job.Stage.Terminal()
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, corpus.ChunkRepository().DeleteScope(ctx, "notes-1"))

	chunks, err := corpus.ChunkRepository().ScopeChunks(ctx, "notes-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
