// Package ingest turns raw sources into indexed, embedded chunks.
//
// Each call to Pipeline.Ingest creates a job that moves through the
// stages queued, chunking, embedding, and finally indexed or failed.
// Jobs run asynchronously on a worker pool and persist their state after
// every transition, so callers can poll job status across restarts.
//
// Every job carries a generation issued by the index store. When two
// jobs race on the same owner scope, only the newest generation may
// install its chunks; the older job fails as superseded instead of
// clobbering the newer result.
//
// Chunks whose embedding fails are indexed with a nil vector and scored
// lexically at search time. A job whose failure fraction exceeds the
// configured maximum fails outright and leaves the previous chunk set in
// place.
package ingest
