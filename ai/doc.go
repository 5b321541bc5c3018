// Package ai defines the embedding service abstraction used by ingestion,
// search and re-embedding.
//
// The Embedder interface decouples the rest of the system from any
// particular embedding backend. The openai subpackage provides a client
// for OpenAI-compatible APIs (Ollama, LocalAI, vLLM, OpenAI itself), and
// the mock subpackage provides deterministic test doubles.
package ai
