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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateSequence indicates an (ownerScope, sequenceIndex) pair
	// that already exists in the store.
	ErrDuplicateSequence = errors.New("duplicate sequence index")

	// ErrSuperseded indicates a write carrying a generation older than the
	// latest issued one for its scope; the write was discarded.
	ErrSuperseded = errors.New("write superseded by newer generation")

	// ErrDimensionMismatch indicates an embedding whose length differs from
	// the dimensionality already recorded for the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
