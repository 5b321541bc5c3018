package storage

import (
	"testing"
	"time"

	"github.com/auricle-ai/auricle/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSerialization(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	chunk := &core.Chunk{
		Id:            core.ChunkID("meeting-7", 3),
		OwnerScope:    "meeting-7",
		Source:        core.SourceTypeTranscript,
		Text:          "agenda items for the week",
		Embedding:     []float32{0.25, -0.5, 0.75},
		TimeRange:     &core.TimeRange{StartSec: 10, EndSec: 25},
		SequenceIndex: 3,
		Tags:          []string{"weekly", "planning"},
		CreatedAt:     createdAt,
	}

	data, err := MarshalChunk(chunk)
	require.NoError(t, err)

	restored, err := UnmarshalChunk(data)
	require.NoError(t, err)

	assert.Equal(t, chunk.Id, restored.Id)
	assert.Equal(t, chunk.OwnerScope, restored.OwnerScope)
	assert.Equal(t, chunk.Source, restored.Source)
	assert.Equal(t, chunk.Text, restored.Text)
	assert.Equal(t, chunk.Embedding, restored.Embedding)
	require.NotNil(t, restored.TimeRange)
	assert.Equal(t, *chunk.TimeRange, *restored.TimeRange)
	assert.Equal(t, chunk.SequenceIndex, restored.SequenceIndex)
	assert.Equal(t, chunk.Tags, restored.Tags)
	assert.True(t, chunk.CreatedAt.Equal(restored.CreatedAt))
}

func TestChunkSerialization_NilEmbedding(t *testing.T) {
	chunk := &core.Chunk{
		Id:            core.ChunkID("doc-1", 0),
		OwnerScope:    "doc-1",
		Source:        core.SourceTypeDocument,
		Text:          "body",
		SequenceIndex: 0,
		CreatedAt:     time.Now().UTC(),
	}

	data, err := MarshalChunk(chunk)
	require.NoError(t, err)

	restored, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Nil(t, restored.Embedding, "failed embedding must survive as nil")
	assert.Nil(t, restored.TimeRange)
}

func TestUnmarshalChunk_Corrupt(t *testing.T) {
	_, err := UnmarshalChunk([]byte("{not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalChunk([]byte(`{"source":"spreadsheet"}`))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestJobSerialization(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	job := &core.IngestionJob{
		Id:           "b3e0a5c2",
		OwnerScope:   "meeting-7",
		Source:       core.SourceTypeTranscript,
		Stage:        core.JobStageFailed,
		Generation:   4,
		Attempt:      2,
		LastError:    "embedding service unavailable",
		Retryable:    true,
		ChunkCount:   12,
		FailedChunks: 12,
		CreatedAt:    now,
		UpdatedAt:    now.Add(time.Minute),
	}

	data, err := MarshalJob(job)
	require.NoError(t, err)

	restored, err := UnmarshalJob(data)
	require.NoError(t, err)
	assert.Equal(t, job.Id, restored.Id)
	assert.Equal(t, job.Stage, restored.Stage)
	assert.Equal(t, job.Generation, restored.Generation)
	assert.Equal(t, job.LastError, restored.LastError)
	assert.True(t, restored.Retryable)
	assert.Equal(t, job.ChunkCount, restored.ChunkCount)
	assert.True(t, job.UpdatedAt.Equal(restored.UpdatedAt))
}

func TestFilter_Matches(t *testing.T) {
	now := time.Now().UTC()
	chunk := &core.Chunk{
		OwnerScope:    "meeting-7",
		Source:        core.SourceTypeTranscript,
		Text:          "agenda",
		Tags:          []string{"weekly", "planning"},
		SequenceIndex: 0,
		CreatedAt:     now,
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter matches", Filter{}, true},
		{"scope match", Filter{Scopes: []string{"meeting-7"}}, true},
		{"scope mismatch", Filter{Scopes: []string{"meeting-8"}}, false},
		{"source match", Filter{SourceTypes: []core.SourceType{core.SourceTypeTranscript}}, true},
		{"source mismatch", Filter{SourceTypes: []core.SourceType{core.SourceTypeMessage}}, false},
		{"all tags present", Filter{Tags: []string{"weekly", "planning"}}, true},
		{"missing tag", Filter{Tags: []string{"weekly", "offsite"}}, false},
		{"created after inclusive", Filter{CreatedAfter: now}, true},
		{"created after excludes older", Filter{CreatedAfter: now.Add(time.Second)}, false},
		{"created before excludes boundary", Filter{CreatedBefore: now}, false},
		{"created before includes older", Filter{CreatedBefore: now.Add(time.Second)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(chunk))
		})
	}

	assert.False(t, Filter{}.Matches(nil))
}
