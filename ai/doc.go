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


// Package ai defines the embedding backend abstraction used by docent.
//
// The EmbeddingBackend interface covers exactly the capability set the
// enrichment layer needs: generating a vector from text, reporting the model
// name for storage metadata, and reporting the output dimensionality.
//
// # Implementation Packages
//
// Two implementations form a closed variant set:
//
//   - ai/openai: production backend for OpenAI-compatible embedding APIs
//   - ai/mock: deterministic backend for tests and offline pipelines
//
// Backend selection happens by explicit configuration at construction time,
// never by runtime type inspection. Constructors in the implementation
// packages return the ai.EmbeddingBackend interface to prevent coupling to
// provider-specific details; mock's constructor additionally exposes a
// concrete type for test assertions.
//
// # Usage
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("text-embedding-3-small"))
//	backend, err := openai.NewBackend(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vector, err := backend.Generate(ctx, "quarterly planning notes")
package ai
