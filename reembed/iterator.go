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


package reembed

import (
	"context"

	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/storage"
)

// ScopeIterator walks the index one owner scope at a time.
type ScopeIterator struct {
	repo   storage.ChunkRepository
	scopes []string
}

// NewScopeIterator creates an iterator over the given scopes.
// An empty scopes slice means all scopes in the store.
func NewScopeIterator(repo storage.ChunkRepository, scopes []string) *ScopeIterator {
	return &ScopeIterator{repo: repo, scopes: scopes}
}

// ForEach calls fn with each scope's full chunk set, in sequence order.
// Iteration stops on the first error from fn. Context cancellation is
// checked between scopes.
func (it *ScopeIterator) ForEach(ctx context.Context, fn func(ownerScope string, chunks []*core.Chunk) error) error {
	scopes := it.scopes
	if len(scopes) == 0 {
		var err error
		scopes, err = it.repo.Scopes(ctx)
		if err != nil {
			return err
		}
	}

	for _, scope := range scopes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunks, err := it.repo.ScopeChunks(ctx, scope)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			continue
		}
		if err := fn(scope, chunks); err != nil {
			return err
		}
	}
	return nil
}
