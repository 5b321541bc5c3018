// Package search implements retrieval over the chunk index.
//
// A query is embedded, candidates are pulled from the store under the
// caller's scope filter, and the rank package blends vector similarity,
// lexical overlap and recency into the final ordering. When the embedder
// is unavailable the search still answers, ranked on the non-vector
// signals, and the response is flagged as degraded.
package search
