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


// Package retrieval provides semantic search over the ingested corpus.
//
// The Retriever type embeds a natural-language query and runs a vector
// similarity search against stored passages, returning the top matches
// in descending similarity order. Retrieval is deterministic for a
// fixed corpus: the same query always yields the same passages in the
// same order.
package retrieval
