package badger

import (
	"encoding/binary"

	"github.com/auricle-ai/auricle/core"
)

// Key prefixes for different data types
const (
	chunkPrefix    = "chk:"  // chunk records, scopeHash + sequence
	chunkDatePrefix = "chkd:" // createdAt index, timestamp + scopeHash + sequence
	scopePrefix    = "scp:"  // scope registry, scopeHash -> scope name
	genPrefix      = "gen:"  // issued job generations, scopeHash -> counter
	dimKeyName     = "meta:embdim" // embedding dimensionality of the index
	jobPrefix      = "job:"  // job records by ID
	jobScopePrefix = "jobs:" // job index, scopeHash + inverted generation -> job ID
)

// scopeHash collapses an opaque owner scope into a fixed-width key segment
// so composite keys stay sortable regardless of scope contents.
func scopeHash(ownerScope string) [8]byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], uint64(core.IDFromContent(ownerScope)))
	return out
}

// makeChunkKey generates the primary key for a chunk.
// Format: prefix + scopeHash + sequenceIndex, both big-endian so
// lexicographic iteration yields sequence order within a scope.
func makeChunkKey(ownerScope string, sequenceIndex int) []byte {
	hash := scopeHash(ownerScope)
	buf := make([]byte, len(chunkPrefix)+16)
	offset := copy(buf, chunkPrefix)
	offset += copy(buf[offset:], hash[:])
	binary.BigEndian.PutUint64(buf[offset:], uint64(sequenceIndex))
	return buf
}

// makeScopeChunkPrefix generates the iteration prefix for one scope's chunks.
func makeScopeChunkPrefix(ownerScope string) []byte {
	hash := scopeHash(ownerScope)
	buf := make([]byte, len(chunkPrefix)+8)
	offset := copy(buf, chunkPrefix)
	copy(buf[offset:], hash[:])
	return buf
}

// makeChunkDateKey generates a composite key for the createdAt index.
// Format: prefix + timestamp + scopeHash + sequenceIndex, big-endian so
// lexicographic order is chronological.
func makeChunkDateKey(createdAtUs int64, ownerScope string, sequenceIndex int) []byte {
	hash := scopeHash(ownerScope)
	buf := make([]byte, len(chunkDatePrefix)+24)
	offset := copy(buf, chunkDatePrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAtUs))
	offset += 8
	offset += copy(buf[offset:], hash[:])
	binary.BigEndian.PutUint64(buf[offset:], uint64(sequenceIndex))
	return buf
}

// makePartialChunkDateKey generates the seek key for a date range scan.
func makePartialChunkDateKey(createdAtUs int64) []byte {
	buf := make([]byte, len(chunkDatePrefix)+8)
	offset := copy(buf, chunkDatePrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAtUs))
	return buf
}

// chunkDateKeyTimestamp extracts the timestamp from a date index key.
func chunkDateKeyTimestamp(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key[len(chunkDatePrefix):]))
}

// chunkKeyFromDateKey rebuilds the primary chunk key referenced by a date
// index key.
func chunkKeyFromDateKey(key []byte) []byte {
	buf := make([]byte, len(chunkPrefix)+16)
	offset := copy(buf, chunkPrefix)
	copy(buf[offset:], key[len(chunkDatePrefix)+8:])
	return buf
}

// makeScopeKey generates the scope registry key.
func makeScopeKey(ownerScope string) []byte {
	hash := scopeHash(ownerScope)
	buf := make([]byte, len(scopePrefix)+8)
	offset := copy(buf, scopePrefix)
	copy(buf[offset:], hash[:])
	return buf
}

// makeGenerationKey generates the key holding the latest issued job
// generation for a scope.
func makeGenerationKey(ownerScope string) []byte {
	hash := scopeHash(ownerScope)
	buf := make([]byte, len(genPrefix)+8)
	offset := copy(buf, genPrefix)
	copy(buf[offset:], hash[:])
	return buf
}

// makeJobKey generates the key for a job record by ID.
func makeJobKey(id string) []byte {
	return append([]byte(jobPrefix), id...)
}

// makeJobScopeKey generates a composite key for the per-scope job index.
// The generation is stored inverted so iteration yields newest first.
func makeJobScopeKey(ownerScope string, generation uint64) []byte {
	hash := scopeHash(ownerScope)
	buf := make([]byte, len(jobScopePrefix)+16)
	offset := copy(buf, jobScopePrefix)
	offset += copy(buf[offset:], hash[:])
	binary.BigEndian.PutUint64(buf[offset:], ^generation)
	return buf
}

// makeJobScopePrefix generates the iteration prefix for one scope's jobs.
func makeJobScopePrefix(ownerScope string) []byte {
	hash := scopeHash(ownerScope)
	buf := make([]byte, len(jobScopePrefix)+8)
	offset := copy(buf, jobScopePrefix)
	copy(buf[offset:], hash[:])
	return buf
}
