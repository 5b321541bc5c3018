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


// Package rank orders retrieval candidates by a weighted blend of three
// signals: cosine similarity between query and chunk embeddings, lexical
// overlap between query terms and chunk text, and an exponential recency
// decay over chunk age.
//
// Rank is a pure function: it holds no state and is fully testable in
// isolation. When an embedding is missing on either side, the similarity
// weight is redistributed to the other two signals so a candidate is never
// penalized for a failed embedding call beyond losing the semantic signal.
package rank
