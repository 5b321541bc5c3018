// Package chunker splits raw or timed source text into bounded, ordered
// pieces ready for embedding and indexing.
//
// Plain text is packed paragraph by paragraph with a configurable overlap
// between consecutive chunks. Timed transcript segments are packed at
// segment granularity so that every chunk carries a truthful time range:
// the start of its first segment and the end of its last. Hard source
// boundaries (separate documents) are never crossed.
package chunker
