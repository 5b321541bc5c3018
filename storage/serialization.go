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


package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/auricle-ai/auricle/core"
)

// Stored records use dedicated wire structs so the JSON field names stay
// stable independently of the domain model.

type timeRangeRecord struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
}

type chunkRecord struct {
	ID            uint64           `json:"id"`
	OwnerScope    string           `json:"owner_scope"`
	Source        string           `json:"source"`
	Text          string           `json:"text"`
	Embedding     []float32        `json:"embedding,omitempty"`
	TimeRange     *timeRangeRecord `json:"time_range,omitempty"`
	SequenceIndex int              `json:"sequence_index"`
	Tags          []string         `json:"tags,omitempty"`
	CreatedAtUs   int64            `json:"created_at_us"`
}

type jobRecord struct {
	ID           string `json:"id"`
	OwnerScope   string `json:"owner_scope"`
	Source       string `json:"source"`
	Stage        string `json:"stage"`
	Generation   uint64 `json:"generation"`
	Attempt      int    `json:"attempt"`
	LastError    string `json:"last_error,omitempty"`
	Retryable    bool   `json:"retryable,omitempty"`
	Degraded     bool   `json:"degraded,omitempty"`
	ChunkCount   int    `json:"chunk_count"`
	FailedChunks int    `json:"failed_chunks"`
	CreatedAtUs  int64  `json:"created_at_us"`
	UpdatedAtUs  int64  `json:"updated_at_us"`
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) ([]byte, error) {
	rec := chunkRecord{
		ID:            uint64(chunk.Id),
		OwnerScope:    chunk.OwnerScope,
		Source:        chunk.Source.String(),
		Text:          chunk.Text,
		Embedding:     chunk.Embedding,
		SequenceIndex: chunk.SequenceIndex,
		Tags:          chunk.Tags,
		CreatedAtUs:   chunk.CreatedAt.UnixMicro(),
	}
	if chunk.TimeRange != nil {
		rec.TimeRange = &timeRangeRecord{StartSec: chunk.TimeRange.StartSec, EndSec: chunk.TimeRange.EndSec}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var rec chunkRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	source, err := core.ParseSourceType(rec.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	chunk := &core.Chunk{
		Id:            core.ID(rec.ID),
		OwnerScope:    rec.OwnerScope,
		Source:        source,
		Text:          rec.Text,
		Embedding:     rec.Embedding,
		SequenceIndex: rec.SequenceIndex,
		Tags:          rec.Tags,
		CreatedAt:     time.UnixMicro(rec.CreatedAtUs).UTC(),
	}
	if rec.TimeRange != nil {
		chunk.TimeRange = &core.TimeRange{StartSec: rec.TimeRange.StartSec, EndSec: rec.TimeRange.EndSec}
	}
	return chunk, nil
}

// MarshalJob serializes an IngestionJob to bytes.
func MarshalJob(job *core.IngestionJob) ([]byte, error) {
	rec := jobRecord{
		ID:           job.Id,
		OwnerScope:   job.OwnerScope,
		Source:       job.Source.String(),
		Stage:        string(job.Stage),
		Generation:   job.Generation,
		Attempt:      job.Attempt,
		LastError:    job.LastError,
		Retryable:    job.Retryable,
		Degraded:     job.Degraded,
		ChunkCount:   job.ChunkCount,
		FailedChunks: job.FailedChunks,
		CreatedAtUs:  job.CreatedAt.UnixMicro(),
		UpdatedAtUs:  job.UpdatedAt.UnixMicro(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalJob deserializes an IngestionJob from bytes.
func UnmarshalJob(data []byte) (*core.IngestionJob, error) {
	var rec jobRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	source, err := core.ParseSourceType(rec.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &core.IngestionJob{
		Id:           rec.ID,
		OwnerScope:   rec.OwnerScope,
		Source:       source,
		Stage:        core.JobStage(rec.Stage),
		Generation:   rec.Generation,
		Attempt:      rec.Attempt,
		LastError:    rec.LastError,
		Retryable:    rec.Retryable,
		Degraded:     rec.Degraded,
		ChunkCount:   rec.ChunkCount,
		FailedChunks: rec.FailedChunks,
		CreatedAt:    time.UnixMicro(rec.CreatedAtUs).UTC(),
		UpdatedAt:    time.UnixMicro(rec.UpdatedAtUs).UTC(),
	}, nil
}
