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

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - OwnerScope must not be empty
//   - Text must not be empty
//   - Source must be a known SourceType
//   - SequenceIndex must not be negative
//   - TimeRange, when set, must satisfy 0 <= StartSec < EndSec
//
// NOT validated (populated later by the pipeline):
//   - Embedding (nil is valid until the embedding stage runs, and stays nil
//     for chunks whose embedding call failed)
//   - Id (derived from scope and sequence index at creation time)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.OwnerScope == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyOwnerScope)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if err := ValidateSourceType(chunk.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	if chunk.SequenceIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeSequenceIndex)
	}

	if chunk.TimeRange != nil {
		if err := ValidateTimeRange(chunk.TimeRange); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
		}
	}

	return nil
}

// ValidateChunkSet validates a batch of chunks destined for one owner scope.
//
// Validation rules, on top of per-chunk validation:
//   - all chunks share one OwnerScope
//   - sequence indexes are contiguous and strictly increasing from firstIndex
//   - all non-nil embeddings share one dimensionality
func ValidateChunkSet(chunks []*Chunk, firstIndex int) error {
	dim := 0
	for i, chunk := range chunks {
		if err := ValidateChunk(chunk); err != nil {
			return err
		}

		if chunk.OwnerScope != chunks[0].OwnerScope {
			return fmt.Errorf("%w: %q and %q", ErrMixedScopes, chunks[0].OwnerScope, chunk.OwnerScope)
		}

		if chunk.SequenceIndex != firstIndex+i {
			return fmt.Errorf("%w: expected %d, got %d", ErrSequenceNotContiguous, firstIndex+i, chunk.SequenceIndex)
		}

		if len(chunk.Embedding) > 0 {
			if dim == 0 {
				dim = len(chunk.Embedding)
			} else if len(chunk.Embedding) != dim {
				return fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, dim, len(chunk.Embedding))
			}
		}
	}
	return nil
}

// ValidateSourceType validates that a SourceType has a valid value.
func ValidateSourceType(source SourceType) error {
	if source != SourceTypeMessage && source != SourceTypeDocument && source != SourceTypeTranscript {
		return fmt.Errorf("%w: value %d", ErrInvalidSourceType, source)
	}
	return nil
}

// ValidateTimeRange validates that a time range has non-negative bounds and
// that the start precedes the end.
func ValidateTimeRange(tr *TimeRange) error {
	if tr == nil {
		return fmt.Errorf("%w: time range is nil", ErrInvalidTimeRange)
	}
	if tr.StartSec < 0 || tr.EndSec < 0 {
		return fmt.Errorf("%w: negative bounds [%v, %v]", ErrInvalidTimeRange, tr.StartSec, tr.EndSec)
	}
	if tr.StartSec >= tr.EndSec {
		return fmt.Errorf("%w: start %v is not before end %v", ErrInvalidTimeRange, tr.StartSec, tr.EndSec)
	}
	return nil
}
