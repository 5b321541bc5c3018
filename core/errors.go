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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyOwnerScope indicates the OwnerScope field is empty.
	ErrEmptyOwnerScope = errors.New("owner scope cannot be empty")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidSourceType indicates an invalid SourceType value.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrInvalidTimeRange indicates a time range with negative bounds or
	// start not strictly before end.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrNegativeSequenceIndex indicates a sequence index below zero.
	ErrNegativeSequenceIndex = errors.New("sequence index cannot be negative")

	// ErrSequenceNotContiguous indicates a chunk set whose sequence indexes
	// have gaps or repeats.
	ErrSequenceNotContiguous = errors.New("sequence indexes are not contiguous")

	// ErrMixedScopes indicates a chunk set spanning more than one owner scope.
	ErrMixedScopes = errors.New("chunk set spans multiple owner scopes")

	// ErrDimensionMismatch indicates embeddings of differing lengths in one
	// chunk set or index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
