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


// Package badger provides BadgerDB-backed implementations of the storage
// repository interfaces.
//
// Chunks are stored under composite binary keys (scope hash + big-endian
// sequence index) so a prefix scan over one scope yields chunks in
// sequence order. A secondary createdAt index supports chronological
// range scans, and a per-scope generation counter lets the ingestion
// pipeline discard writes from superseded jobs.
package badger
