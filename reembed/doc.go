// Package reembed re-embeds indexed chunks with a new or updated
// embedding model.
//
// Chunks are processed scope by scope in bounded batches, with retry and
// progress reporting. New vectors are written in place: IDs, text and
// sequence indexes are untouched, and chunks whose original embedding
// failed are filled in along the way. The store enforces one embedding
// dimensionality, so switching to a model with a different vector width
// requires deleting and re-ingesting instead.
package reembed
