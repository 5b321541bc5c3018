package storage

import (
	"context"
	"time"

	"github.com/auricle-ai/auricle/core"
)

// Filter selects candidate chunks on the read path. Zero-valued fields are
// ignored; set fields combine with AND semantics.
type Filter struct {
	// Scopes restricts results to the given owner scopes.
	Scopes []string
	// SourceTypes restricts results to the given source types.
	SourceTypes []core.SourceType
	// Tags requires every listed tag to be present on a chunk.
	Tags []string
	// CreatedAfter keeps chunks with CreatedAt >= CreatedAfter.
	CreatedAfter time.Time
	// CreatedBefore keeps chunks with CreatedAt < CreatedBefore.
	CreatedBefore time.Time
}

// Matches reports whether a chunk passes the filter.
func (f Filter) Matches(chunk *core.Chunk) bool {
	if chunk == nil {
		return false
	}
	if len(f.Scopes) > 0 && !containsString(f.Scopes, chunk.OwnerScope) {
		return false
	}
	if len(f.SourceTypes) > 0 && !containsSource(f.SourceTypes, chunk.Source) {
		return false
	}
	for _, tag := range f.Tags {
		if !containsString(chunk.Tags, tag) {
			return false
		}
	}
	if !f.CreatedAfter.IsZero() && chunk.CreatedAt.Before(f.CreatedAfter) {
		return false
	}
	if !f.CreatedBefore.IsZero() && !chunk.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsSource(haystack []core.SourceType, needle core.SourceType) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// ChunkRepository is the index store: a durable mapping of chunk to
// embedding and metadata, queryable by owner scope.
// Implementations must be thread-safe; mutations to one scope must be
// mutually exclusive with each other, and readers must observe either the
// pre-write or post-write chunk set for a scope, never a mix.
type ChunkRepository interface {
	// ReplaceScope atomically replaces all chunks for an owner scope.
	// The generation must come from NextGeneration for that scope; a
	// generation older than the latest issued one is rejected with
	// ErrSuperseded and nothing is written. An empty chunk slice clears
	// the scope.
	ReplaceScope(ctx context.Context, ownerScope string, generation uint64, chunks []*core.Chunk) error

	// AppendChunks adds chunks to an existing scope. Sequence indexes must
	// continue the scope's current sequence; a duplicate
	// (scope, sequenceIndex) is rejected with ErrDuplicateSequence.
	AppendChunks(ctx context.Context, ownerScope string, chunks []*core.Chunk) error

	// DeleteScope removes all chunks and derived index state for a scope.
	// Deleting an absent scope is a no-op, not an error.
	DeleteScope(ctx context.Context, ownerScope string) error

	// QueryCandidates returns up to limit chunks passing the filter, in a
	// stable store order (sequence order within each scope). No ranking is
	// applied here; a limit <= 0 means no limit.
	QueryCandidates(ctx context.Context, filter Filter, limit int) ([]*core.Chunk, error)

	// ScopeChunks returns all chunks of a scope in sequence order.
	ScopeChunks(ctx context.Context, ownerScope string) ([]*core.Chunk, error)

	// Scopes lists all owner scopes present in the store.
	Scopes(ctx context.Context) ([]string, error)

	// UpdateEmbeddings replaces the embeddings of existing chunks in a
	// scope, preserving IDs and sequence indexes. Chunks are matched by
	// sequence index; a missing chunk is ErrNotFound.
	UpdateEmbeddings(ctx context.Context, ownerScope string, chunks []*core.Chunk) error

	// NextGeneration issues the next job generation for a scope. Each call
	// returns a strictly larger value; issuing a new generation supersedes
	// every earlier one at ReplaceScope time.
	NextGeneration(ctx context.Context, ownerScope string) (uint64, error)

	// Close closes the repository and releases resources.
	Close() error
}

// JobRepository persists ingestion job records so their status can be
// polled after Ingest returns.
type JobRepository interface {
	// PutJob inserts or overwrites a job record by its ID.
	PutJob(ctx context.Context, job *core.IngestionJob) error

	// GetJob retrieves a job by ID. Returns ErrNotFound if absent.
	GetJob(ctx context.Context, id string) (*core.IngestionJob, error)

	// JobsForScope returns all job records for an owner scope, newest
	// generation first.
	JobsForScope(ctx context.Context, ownerScope string) ([]*core.IngestionJob, error)

	// Close closes the repository and releases resources.
	Close() error
}
