package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for chunks.
// It is derived from chunk content so that re-indexing identical input
// assigns identical identifiers.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID generates the ID for a chunk at the given position within a scope.
// The ID is stable across re-embedding: it depends only on the owner scope
// and the sequence index, never on the embedding.
func ChunkID(ownerScope string, sequenceIndex int) ID {
	return IDFromContent(ownerScope + "#" + strconv.Itoa(sequenceIndex))
}

// SourceType identifies the kind of content a chunk was extracted from.
type SourceType int

const (
	// SourceTypeMessage represents a chat or conversation message.
	SourceTypeMessage SourceType = iota + 1
	// SourceTypeDocument represents an uploaded or linked document.
	SourceTypeDocument
	// SourceTypeTranscript represents a timed meeting transcript.
	SourceTypeTranscript
)

// String returns the wire name of the source type.
func (s SourceType) String() string {
	switch s {
	case SourceTypeMessage:
		return "message"
	case SourceTypeDocument:
		return "document"
	case SourceTypeTranscript:
		return "transcript"
	default:
		return "unknown"
	}
}

// ParseSourceType converts a wire name back into a SourceType.
// Returns ErrInvalidSourceType for unknown names.
func ParseSourceType(s string) (SourceType, error) {
	switch s {
	case "message":
		return SourceTypeMessage, nil
	case "document":
		return SourceTypeDocument, nil
	case "transcript":
		return SourceTypeTranscript, nil
	default:
		return 0, ErrInvalidSourceType
	}
}

// TimeRange locates a chunk within its source recording, in seconds.
type TimeRange struct {
	StartSec float64
	EndSec   float64
}

// Segment is a timed piece of source text, as produced by a transcription
// service. Segments are the input to transcript chunking.
type Segment struct {
	StartSec float64
	EndSec   float64
	Text     string
}

// Chunk is the unit of indexing and retrieval: a bounded segment of source
// text with optional time range and embedding.
type Chunk struct {
	Id            ID
	OwnerScope    string // identifier of the owning conversation/meeting/document
	Source        SourceType
	Text          string
	Embedding     []float32  // nil when embedding failed or has not run yet
	TimeRange     *TimeRange // set only for transcript-sourced chunks
	SequenceIndex int        // position within OwnerScope, contiguous from 0
	Tags          []string
	CreatedAt     time.Time
}

// JobStage is the lifecycle state of an ingestion job.
type JobStage string

const (
	JobStageQueued    JobStage = "queued"
	JobStageChunking  JobStage = "chunking"
	JobStageEmbedding JobStage = "embedding"
	JobStageIndexed   JobStage = "indexed"
	JobStageFailed    JobStage = "failed"
)

// Terminal reports whether the stage is a terminal state.
func (s JobStage) Terminal() bool {
	return s == JobStageIndexed || s == JobStageFailed
}

// IngestionJob tracks one asynchronous run of the ingestion pipeline for a
// single (OwnerScope, Source) pair.
type IngestionJob struct {
	Id         string
	OwnerScope string
	Source     SourceType
	Stage      JobStage
	Generation uint64 // supersession guard; higher generations win
	Attempt    int
	LastError  string
	Retryable  bool // set when Stage is failed and a retry may succeed
	Degraded   bool // indexed, but some chunks lack embeddings

	ChunkCount   int
	FailedChunks int

	CreatedAt time.Time
	UpdatedAt time.Time
}
