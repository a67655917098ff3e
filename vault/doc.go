// Copyright 2025 Poiesic Systems
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


// Package vault provides the document store abstraction for docent.
//
// The Vault interface decouples the enrichment pipeline from storage
// implementation. Documents and embeddings are persisted through it;
// identity assignment and vector indexing are the store's responsibility.
//
// # Implementation Packages
//
//   - vault/badger: BadgerDB-backed implementation
//
// Constructors in implementation packages return concrete types internally
// but consumers should program against the Vault interface; this keeps
// alternative backends (in-memory, SQL) swappable without touching the
// pipeline.
//
// # Thread Safety
//
// All Vault implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package vault
