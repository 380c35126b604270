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


package flow

import "errors"

var (
	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidMaxRetries is returned when the rewrite ceiling is negative.
	ErrInvalidMaxRetries = errors.New("maxRetries must not be negative")

	// ErrRetrievalFailed wraps index errors surfaced during the Retrieve state.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrRewriteFailed wraps model errors surfaced during the Rewrite state.
	// Fatal because the flow cannot re-retrieve without a query.
	ErrRewriteFailed = errors.New("query rewrite failed")

	// ErrGenerationFailed wraps model errors surfaced during the Generate state.
	ErrGenerationFailed = errors.New("answer generation failed")
)
