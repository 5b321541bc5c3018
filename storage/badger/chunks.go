package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
//
// Writes to one owner scope are serialized by a per-scope mutex on top of
// badger's transactions, so a scope is never concurrently replaced and
// deleted. Readers run outside the locks and observe either the pre- or
// post-write chunk set, never a mix.
type ChunkRepository struct {
	backend *Backend
	locks   sync.Map // ownerScope -> *sync.Mutex
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close releases repository resources. The backend is owned by the caller.
func (r *ChunkRepository) Close() error {
	return nil
}

func (r *ChunkRepository) lockScope(ownerScope string) func() {
	mu, _ := r.locks.LoadOrStore(ownerScope, &sync.Mutex{})
	mutex := mu.(*sync.Mutex)
	mutex.Lock()
	return mutex.Unlock
}

// ReplaceScope atomically replaces all chunks for an owner scope.
func (r *ChunkRepository) ReplaceScope(ctx context.Context, ownerScope string, generation uint64, chunks []*core.Chunk) error {
	if ownerScope == "" {
		return fmt.Errorf("%w: %w", core.ErrInvalidChunk, core.ErrEmptyOwnerScope)
	}
	// Replacement chunk sets always restart the sequence at 0.
	if err := core.ValidateChunkSet(chunks, 0); err != nil {
		return err
	}

	unlock := r.lockScope(ownerScope)
	defer unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		issued, err := readGeneration(tx, ownerScope)
		if err != nil {
			return err
		}
		if generation < issued {
			return fmt.Errorf("%w: generation %d, latest issued %d", storage.ErrSuperseded, generation, issued)
		}
		if generation > issued {
			if err := writeGeneration(tx, ownerScope, generation); err != nil {
				return err
			}
		}

		if err := checkDimension(tx, chunks); err != nil {
			return err
		}

		if err := deleteScopeChunks(tx, ownerScope); err != nil {
			return err
		}
		if err := writeChunks(tx, chunks); err != nil {
			return err
		}

		scopeKey := makeScopeKey(ownerScope)
		if len(chunks) == 0 {
			if err := tx.Delete(scopeKey); err != nil {
				return err
			}
		} else {
			if err := tx.Set(scopeKey, []byte(ownerScope)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// AppendChunks adds chunks continuing an existing scope's sequence.
func (r *ChunkRepository) AppendChunks(ctx context.Context, ownerScope string, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if ownerScope == "" {
		return fmt.Errorf("%w: %w", core.ErrInvalidChunk, core.ErrEmptyOwnerScope)
	}

	unlock := r.lockScope(ownerScope)
	defer unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		next, err := nextSequence(tx, ownerScope)
		if err != nil {
			return err
		}
		if chunks[0].SequenceIndex < next {
			return fmt.Errorf("%w: scope %q already has sequence index %d",
				storage.ErrDuplicateSequence, ownerScope, chunks[0].SequenceIndex)
		}
		if err := core.ValidateChunkSet(chunks, next); err != nil {
			return err
		}
		if err := checkDimension(tx, chunks); err != nil {
			return err
		}
		if err := writeChunks(tx, chunks); err != nil {
			return err
		}
		if err := tx.Set(makeScopeKey(ownerScope), []byte(ownerScope)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteScope removes all chunks and index entries for a scope.
// The generation counter survives deletion so writes from superseded jobs
// are still discarded after their scope has been removed.
func (r *ChunkRepository) DeleteScope(ctx context.Context, ownerScope string) error {
	if ownerScope == "" {
		return nil
	}

	unlock := r.lockScope(ownerScope)
	defer unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteScopeChunks(tx, ownerScope); err != nil {
			return err
		}
		if err := tx.Delete(makeScopeKey(ownerScope)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// QueryCandidates returns up to limit chunks passing the filter. When the
// filter names scopes, only those scopes are scanned; a pure date-range
// query walks the createdAt index; otherwise the whole chunk space is
// scanned. A limit <= 0 means no limit.
func (r *ChunkRepository) QueryCandidates(ctx context.Context, filter storage.Filter, limit int) ([]*core.Chunk, error) {
	var results []*core.Chunk

	collect := func(chunk *core.Chunk) bool {
		if filter.Matches(chunk) {
			results = append(results, chunk)
		}
		return limit > 0 && len(results) >= limit
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		switch {
		case len(filter.Scopes) > 0:
			seen := make(map[string]bool, len(filter.Scopes))
			for _, scope := range filter.Scopes {
				if seen[scope] {
					continue
				}
				seen[scope] = true
				done, err := scanScope(tx, scope, collect)
				if err != nil || done {
					return err
				}
			}
			return nil
		case !filter.CreatedAfter.IsZero() || !filter.CreatedBefore.IsZero():
			return scanDateIndex(tx, filter, collect)
		default:
			return scanAllChunks(tx, collect)
		}
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ScopeChunks returns all chunks of a scope in sequence order.
func (r *ChunkRepository) ScopeChunks(ctx context.Context, ownerScope string) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := scanScope(tx, ownerScope, func(chunk *core.Chunk) bool {
			results = append(results, chunk)
			return false
		})
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Scopes lists all owner scopes present in the store.
func (r *ChunkRepository) Scopes(ctx context.Context) ([]string, error) {
	var scopes []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(scopePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				scopes = append(scopes, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return scopes, nil
}

// UpdateEmbeddings replaces the embeddings of existing chunks, matched by
// sequence index. IDs, text and sequence indexes are preserved.
func (r *ChunkRepository) UpdateEmbeddings(ctx context.Context, ownerScope string, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	unlock := r.lockScope(ownerScope)
	defer unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := checkDimension(tx, chunks); err != nil {
			return err
		}
		for _, chunk := range chunks {
			key := makeChunkKey(ownerScope, chunk.SequenceIndex)
			existing, err := readChunk(tx, key)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("%w: scope %q sequence %d", storage.ErrNotFound, ownerScope, chunk.SequenceIndex)
			}
			existing.Embedding = chunk.Embedding
			data, err := storage.MarshalChunk(existing)
			if err != nil {
				return err
			}
			if err := tx.Set(key, data); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// NextGeneration issues the next job generation for a scope.
func (r *ChunkRepository) NextGeneration(ctx context.Context, ownerScope string) (uint64, error) {
	unlock := r.lockScope(ownerScope)
	defer unlock()

	var next uint64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		current, err := readGeneration(tx, ownerScope)
		if err != nil {
			return err
		}
		next = current + 1
		if err := writeGeneration(tx, ownerScope, next); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return next, nil
}

// --- transaction helpers ---

func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

func writeChunks(tx *badger.Txn, chunks []*core.Chunk) error {
	for _, chunk := range chunks {
		data, err := storage.MarshalChunk(chunk)
		if err != nil {
			return err
		}
		key := makeChunkKey(chunk.OwnerScope, chunk.SequenceIndex)
		if err := tx.Set(key, data); err != nil {
			return err
		}
		dateKey := makeChunkDateKey(chunk.CreatedAt.UnixMicro(), chunk.OwnerScope, chunk.SequenceIndex)
		if err := tx.Set(dateKey, []byte{}); err != nil {
			return err
		}
	}
	return nil
}

// deleteScopeChunks removes a scope's chunk records and their date index
// entries. Keys are collected first, then deleted, so the iterator never
// observes its own writes.
func deleteScopeChunks(tx *badger.Txn, ownerScope string) error {
	prefix := makeScopeChunkPrefix(ownerScope)

	var chunkKeys [][]byte
	var dateKeys [][]byte

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		chunkKeys = append(chunkKeys, item.KeyCopy(nil))

		var chunk *core.Chunk
		err := item.Value(func(val []byte) error {
			var err error
			chunk, err = storage.UnmarshalChunk(val)
			return err
		})
		if err != nil {
			iter.Close()
			return err
		}
		dateKeys = append(dateKeys, makeChunkDateKey(chunk.CreatedAt.UnixMicro(), chunk.OwnerScope, chunk.SequenceIndex))
	}
	iter.Close()

	for _, key := range chunkKeys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	for _, key := range dateKeys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// nextSequence returns the sequence index the next appended chunk must
// carry. Sequences are contiguous from 0, so this is the chunk count.
func nextSequence(tx *badger.Txn, ownerScope string) (int, error) {
	prefix := makeScopeChunkPrefix(ownerScope)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	return count, nil
}

func scanScope(tx *badger.Txn, ownerScope string, collect func(*core.Chunk) bool) (bool, error) {
	prefix := makeScopeChunkPrefix(ownerScope)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var chunk *core.Chunk
		err := iter.Item().Value(func(val []byte) error {
			var err error
			chunk, err = storage.UnmarshalChunk(val)
			return err
		})
		if err != nil {
			return false, err
		}
		if collect(chunk) {
			return true, nil
		}
	}
	return false, nil
}

func scanAllChunks(tx *badger.Txn, collect func(*core.Chunk) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(chunkPrefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var chunk *core.Chunk
		err := iter.Item().Value(func(val []byte) error {
			var err error
			chunk, err = storage.UnmarshalChunk(val)
			return err
		})
		if err != nil {
			return err
		}
		if collect(chunk) {
			return nil
		}
	}
	return nil
}

// scanDateIndex walks the createdAt index chronologically, seeking straight
// to the range start when one is set.
func scanDateIndex(tx *badger.Txn, filter storage.Filter, collect func(*core.Chunk) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(chunkDatePrefix)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	start := []byte(chunkDatePrefix)
	if !filter.CreatedAfter.IsZero() {
		start = makePartialChunkDateKey(filter.CreatedAfter.UnixMicro())
	}

	for iter.Seek(start); iter.ValidForPrefix([]byte(chunkDatePrefix)); iter.Next() {
		key := iter.Item().Key()
		if !filter.CreatedBefore.IsZero() && chunkDateKeyTimestamp(key) >= filter.CreatedBefore.UnixMicro() {
			return nil
		}
		chunk, err := readChunk(tx, chunkKeyFromDateKey(key))
		if err != nil {
			return err
		}
		if chunk == nil {
			continue // dangling index entry
		}
		if collect(chunk) {
			return nil
		}
	}
	return nil
}

func readGeneration(tx *badger.Txn, ownerScope string) (uint64, error) {
	item, err := tx.Get(makeGenerationKey(ownerScope))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var gen uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("%w: malformed generation value", storage.ErrSerializationFailed)
		}
		gen = binary.BigEndian.Uint64(val)
		return nil
	})
	return gen, err
}

func writeGeneration(tx *badger.Txn, ownerScope string, generation uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, generation)
	return tx.Set(makeGenerationKey(ownerScope), buf)
}

// checkDimension enforces one embedding dimensionality across the index.
// The first embedded write pins the dimension; later writes must match.
func checkDimension(tx *badger.Txn, chunks []*core.Chunk) error {
	batchDim := 0
	for _, chunk := range chunks {
		if len(chunk.Embedding) > 0 {
			batchDim = len(chunk.Embedding)
			break
		}
	}
	if batchDim == 0 {
		return nil
	}

	key := []byte(dimKeyName)
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(batchDim))
		return tx.Set(key, buf)
	}
	if err != nil {
		return err
	}

	var stored uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("%w: malformed dimension value", storage.ErrSerializationFailed)
		}
		stored = binary.BigEndian.Uint64(val)
		return nil
	})
	if err != nil {
		return err
	}
	if uint64(batchDim) != stored {
		return fmt.Errorf("%w: index holds %d-dimensional embeddings, got %d",
			storage.ErrDimensionMismatch, stored, batchDim)
	}
	return nil
}
