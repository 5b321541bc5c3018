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


// Package core defines the domain model for auricle: chunks, their owner
// scopes and time ranges, ingestion jobs, and the validation rules applied
// at construction time.
//
// A Chunk belongs to exactly one owner scope, carries a sequence index that
// is contiguous within that scope, and may carry an embedding vector and a
// time range. An IngestionJob tracks the asynchronous work of turning raw
// source content into indexed chunks.
package core
