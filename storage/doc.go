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


// Package storage provides the storage abstraction layer for auricle.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably and consumers can inject
// test doubles.
//
// # Architecture
//
//   - ChunkRepository: the index store — per-scope atomic replace, append,
//     idempotent scope deletion, filtered candidate queries, in-place
//     embedding updates, and the job-generation counter used to discard
//     superseded writes
//   - JobRepository: ingestion job records for status polling
//
// # Usage
//
// Create repositories over a badger backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	chunks, err := badger.NewChunkRepository(backend)
//	jobs := badger.NewJobRepository(backend)
//
// In tests, use the in-memory open mode:
//
//	chunks, jobs, backend, err := badger.NewMemoryRepositories()
package storage
