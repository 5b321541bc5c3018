package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auricle-ai/auricle/ai/mock"
	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/rank"
	badgerstore "github.com/auricle-ai/auricle/storage/badger"
)

type searchFixture struct {
	searcher *Searcher
	chunks   *badgerstore.ChunkRepository
	embedder *mock.MockEmbedder
}

func newSearchFixture(t *testing.T, opts ...Option) *searchFixture {
	t.Helper()

	chunks, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embedder := mock.NewMockEmbedder()
	searcher, err := NewSearcher(chunks, mock.NewMockProviderWithEmbedder(embedder), opts...)
	require.NoError(t, err)

	return &searchFixture{searcher: searcher, chunks: chunks, embedder: embedder}
}

func (f *searchFixture) seed(t *testing.T, ownerScope string, texts []string, embeddings [][]float32, createdAt time.Time) {
	t.Helper()

	chunks := make([]*core.Chunk, len(texts))
	for i := range texts {
		chunks[i] = &core.Chunk{
			Id:            core.ChunkID(ownerScope, i),
			OwnerScope:    ownerScope,
			Source:        core.SourceTypeDocument,
			Text:          texts[i],
			Embedding:     embeddings[i],
			SequenceIndex: i,
			CreatedAt:     createdAt,
		}
	}
	require.NoError(t, f.chunks.ReplaceScope(context.Background(), ownerScope, 1, chunks))
}

func queryVector(v []float32) func(ctx context.Context, text string) ([]float32, error) {
	return func(ctx context.Context, text string) ([]float32, error) {
		return v, nil
	}
}

func TestSearcher_RanksBySimilarity(t *testing.T) {
	f := newSearchFixture(t)
	now := time.Now().UTC()

	f.seed(t, "doc-1",
		[]string{"alpha body", "beta body", "gamma body"},
		[][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0.9, 0.1, 0, 0}},
		now)

	f.embedder.EmbedTextFunc = queryVector([]float32{1, 0, 0, 0})

	resp, err := f.searcher.Search(context.Background(), "unrelated wording", ScopeFilter{}, 3)
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.False(t, resp.QueryDegraded)

	assert.Equal(t, "alpha body", resp.Results[0].Chunk.Text)
	assert.Equal(t, "gamma body", resp.Results[1].Chunk.Text)
	assert.Equal(t, "beta body", resp.Results[2].Chunk.Text)
	assert.Greater(t, resp.Results[0].Score, resp.Results[2].Score)
}

func TestSearcher_ScopeFilter(t *testing.T) {
	f := newSearchFixture(t)
	now := time.Now().UTC()

	f.seed(t, "doc-1", []string{"from doc one"}, [][]float32{{1, 0, 0, 0}}, now)
	f.seed(t, "doc-2", []string{"from doc two"}, [][]float32{{1, 0, 0, 0}}, now)

	f.embedder.EmbedTextFunc = queryVector([]float32{1, 0, 0, 0})

	resp, err := f.searcher.Search(context.Background(), "doc", ScopeFilter{Scopes: []string{"doc-2"}}, 10)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "doc-2", resp.Results[0].Chunk.OwnerScope)
}

func TestSearcher_TopKTruncates(t *testing.T) {
	f := newSearchFixture(t)
	now := time.Now().UTC()

	texts := make([]string, 5)
	embeddings := make([][]float32, 5)
	for i := range texts {
		texts[i] = "filler content"
		embeddings[i] = []float32{1, 0, 0, 0}
	}
	f.seed(t, "doc-1", texts, embeddings, now)

	f.embedder.EmbedTextFunc = queryVector([]float32{1, 0, 0, 0})

	resp, err := f.searcher.Search(context.Background(), "filler", ScopeFilter{}, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestSearcher_DegradedQueryFallsBackToLexical(t *testing.T) {
	f := newSearchFixture(t)
	now := time.Now().UTC()

	f.seed(t, "doc-1",
		[]string{"quarterly revenue projections", "notes about gardening"},
		[][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}},
		now)

	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedder offline")
	}

	resp, err := f.searcher.Search(context.Background(), "revenue projections", ScopeFilter{}, 2)
	require.NoError(t, err, "embedder failure degrades the search, it does not fail it")
	assert.True(t, resp.QueryDegraded)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "quarterly revenue projections", resp.Results[0].Chunk.Text)
	assert.True(t, resp.Results[0].Degraded)
}

func TestSearcher_EmptyQuery(t *testing.T) {
	f := newSearchFixture(t)

	_, err := f.searcher.Search(context.Background(), "   ", ScopeFilter{}, 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

type recordingMonitor struct {
	started    bool
	candidates int
	finished   int
}

func (m *recordingMonitor) Start(_ string)                          { m.started = true }
func (m *recordingMonitor) AfterQueryEmbedding(_ []float32, _ bool) {}
func (m *recordingMonitor) AfterCandidateQuery(c []*core.Chunk)     { m.candidates = len(c) }
func (m *recordingMonitor) Finish(r []rank.Scored)                  { m.finished = len(r) }

func TestSearcher_Monitor(t *testing.T) {
	f := newSearchFixture(t)
	now := time.Now().UTC()

	f.seed(t, "doc-1", []string{"monitored content"}, [][]float32{{1, 0, 0, 0}}, now)
	f.embedder.EmbedTextFunc = queryVector([]float32{1, 0, 0, 0})

	monitor := &recordingMonitor{}
	_, err := f.searcher.SearchWithMonitor(context.Background(), "monitored", ScopeFilter{}, 5, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, 1, monitor.candidates)
	assert.Equal(t, 1, monitor.finished)
}
