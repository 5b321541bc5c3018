package rank

import (
	"testing"
	"time"

	"github.com/auricle-ai/auricle/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkAt(seq int, text string, embedding []float32, createdAt time.Time) *core.Chunk {
	return &core.Chunk{
		Id:            core.ChunkID("scope-1", seq),
		OwnerScope:    "scope-1",
		Source:        core.SourceTypeDocument,
		Text:          text,
		Embedding:     embedding,
		SequenceIndex: seq,
		CreatedAt:     createdAt,
	}
}

func TestRank_OrderFollowsSimilarity(t *testing.T) {
	now := time.Now().UTC()
	query := Query{Text: "unrelated words", Embedding: []float32{1, 0, 0}}

	candidates := []*core.Chunk{
		chunkAt(0, "one", []float32{0.2, 0.9, 0}, now),
		chunkAt(1, "two", []float32{0.9, 0.2, 0}, now),
		chunkAt(2, "three", []float32{0.5, 0.5, 0}, now),
	}

	scored := Rank(query, candidates, DefaultConfig(), now)
	require.Len(t, scored, 3)

	// With identical lexical and recency signals, order is non-increasing
	// in similarity.
	assert.Equal(t, 1, scored[0].Chunk.SequenceIndex)
	assert.Equal(t, 2, scored[1].Chunk.SequenceIndex)
	assert.Equal(t, 0, scored[2].Chunk.SequenceIndex)
	assert.GreaterOrEqual(t, scored[0].Similarity, scored[1].Similarity)
	assert.GreaterOrEqual(t, scored[1].Similarity, scored[2].Similarity)
}

func TestRank_LexicalOnlyWeighting(t *testing.T) {
	now := time.Now().UTC()
	cfg := Config{
		Weights:  Weights{Similarity: 0, Lexical: 1, Recency: 0},
		HalfLife: time.Hour,
	}

	// The chunk without "agenda" is much more recent; with lexical-only
	// weighting it must still lose.
	withTerm := chunkAt(0, "reviewing the agenda for tomorrow", nil, now.Add(-30*24*time.Hour))
	withoutTerm := chunkAt(1, "notes about the budget review", nil, now)

	scored := Rank(Query{Text: "agenda"}, []*core.Chunk{withoutTerm, withTerm}, cfg, now)
	require.Len(t, scored, 2)
	assert.Equal(t, 0, scored[0].Chunk.SequenceIndex)
	assert.Equal(t, 1.0, scored[0].Lexical)
	assert.Equal(t, 0.0, scored[1].Lexical)
}

func TestRank_RecencyBreaksEqualSignals(t *testing.T) {
	now := time.Now().UTC()
	embedding := []float32{1, 0, 0}
	query := Query{Text: "agenda", Embedding: embedding}

	older := chunkAt(0, "the agenda", embedding, now.Add(-48*time.Hour))
	newer := chunkAt(1, "the agenda", embedding, now.Add(-1*time.Hour))

	scored := Rank(query, []*core.Chunk{older, newer}, DefaultConfig(), now)
	require.Len(t, scored, 2)
	assert.Equal(t, 1, scored[0].Chunk.SequenceIndex, "more recent chunk should rank first")
}

func TestRank_MissingChunkEmbeddingDegrades(t *testing.T) {
	now := time.Now().UTC()
	query := Query{Text: "agenda", Embedding: []float32{1, 0, 0}}

	embedded := chunkAt(0, "agenda", []float32{1, 0, 0}, now)
	unembedded := chunkAt(1, "agenda", nil, now)

	scored := Rank(query, []*core.Chunk{embedded, unembedded}, DefaultConfig(), now)
	require.Len(t, scored, 2)

	byIndex := map[int]Scored{}
	for _, s := range scored {
		byIndex[s.Chunk.SequenceIndex] = s
	}

	assert.False(t, byIndex[0].Degraded)
	assert.True(t, byIndex[1].Degraded)
	assert.Equal(t, 0.0, byIndex[1].Similarity)

	// Redistributed weights still sum to 1: with full lexical and recency
	// ~1, the degraded candidate's score stays close to 1 rather than
	// collapsing to lexical+recency fractions of the original weights.
	assert.InDelta(t, 1.0, byIndex[1].Score, 0.01)
}

func TestRank_MissingQueryEmbeddingDegradesAll(t *testing.T) {
	now := time.Now().UTC()
	query := Query{Text: "agenda"}

	candidates := []*core.Chunk{
		chunkAt(0, "agenda", []float32{1, 0, 0}, now),
		chunkAt(1, "other", []float32{0, 1, 0}, now),
	}

	scored := Rank(query, candidates, DefaultConfig(), now)
	for _, s := range scored {
		assert.True(t, s.Degraded)
		assert.Equal(t, 0.0, s.Similarity)
	}
	assert.Equal(t, 0, scored[0].Chunk.SequenceIndex, "lexical match should rank first")
}

func TestRank_TieBreaks(t *testing.T) {
	now := time.Now().UTC()

	// Identical text, embeddings and timestamps: scores tie exactly, so
	// order falls back to sequence index ascending.
	a := chunkAt(3, "same text", nil, now)
	b := chunkAt(1, "same text", nil, now)
	c := chunkAt(2, "same text", nil, now)

	scored := Rank(Query{Text: "same"}, []*core.Chunk{a, b, c}, DefaultConfig(), now)
	require.Len(t, scored, 3)
	assert.Equal(t, 1, scored[0].Chunk.SequenceIndex)
	assert.Equal(t, 2, scored[1].Chunk.SequenceIndex)
	assert.Equal(t, 3, scored[2].Chunk.SequenceIndex)
}

func TestRank_SkipsNilCandidates(t *testing.T) {
	now := time.Now().UTC()
	scored := Rank(Query{Text: "x"}, []*core.Chunk{nil, chunkAt(0, "x", nil, now)}, DefaultConfig(), now)
	require.Len(t, scored, 1)
}

func TestRecencyScore(t *testing.T) {
	halfLife := 24 * time.Hour

	assert.Equal(t, 1.0, RecencyScore(0, halfLife))
	assert.Equal(t, 1.0, RecencyScore(-time.Hour, halfLife), "future ages clamp to zero")

	// Strictly decreasing in age.
	prev := 1.0
	for _, age := range []time.Duration{time.Hour, 6 * time.Hour, 24 * time.Hour, 96 * time.Hour} {
		score := RecencyScore(age, halfLife)
		assert.Less(t, score, prev, "age %v", age)
		assert.Greater(t, score, 0.0)
		prev = score
	}
}

func TestSimilarityScore_Range(t *testing.T) {
	assert.InDelta(t, 1.0, SimilarityScore([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, SimilarityScore([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.InDelta(t, 0.5, SimilarityScore([]float32{1, 0}, []float32{0, 1}), 1e-6)
}

func TestWeights_Normalized(t *testing.T) {
	w := Weights{Similarity: 3, Lexical: 1, Recency: 1}.normalized()
	assert.InDelta(t, 0.6, w.Similarity, 1e-9)
	assert.InDelta(t, 0.2, w.Lexical, 1e-9)
	assert.InDelta(t, 0.2, w.Recency, 1e-9)

	zero := Weights{}.normalized()
	assert.Equal(t, Weights{}, zero)
}
