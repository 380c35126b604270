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


package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// RelevanceGrader judges whether a retrieved passage meaningfully addresses a
// question. Judgments are independent per passage; implementations must not
// keep state between calls and must be thread-safe for concurrent use.
type RelevanceGrader interface {
	// GradeRelevance classifies the passage text as relevant or not relevant
	// to the question. RelevanceIndeterminate means the model produced no
	// usable judgment; callers decide how to treat such passages.
	// Returns an error only on transport or service failure.
	GradeRelevance(ctx context.Context, question, passage string) (Relevance, error)
}

// QueryRewriter reformulates a question into a form better suited for vector
// retrieval. Implementations must be thread-safe for concurrent use.
type QueryRewriter interface {
	// RewriteQuery produces a reformulated question. The result may be empty
	// if the model returns nothing; callers should treat that as degenerate.
	// Returns an error if the rewriting call fails.
	RewriteQuery(ctx context.Context, question string) (string, error)
}

// AnswerGenerator produces a natural-language answer from a question and
// supporting passages. When passages is empty the generator is expected to
// state that it does not know rather than fabricate content; this is a prompt
// contract, so callers must treat the output as untrusted prose.
type AnswerGenerator interface {
	// GenerateAnswer produces an answer grounded in the given passage texts.
	// Returns an error if the generation call fails.
	GenerateAnswer(ctx context.Context, question string, passages []string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the embedding and text-generation backed services,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Grader returns the passage relevance grading service.
	// The returned RelevanceGrader is safe for concurrent use.
	Grader() RelevanceGrader

	// Rewriter returns the query rewriting service.
	// The returned QueryRewriter is safe for concurrent use.
	Rewriter() QueryRewriter

	// Generator returns the answer generation service.
	// The returned AnswerGenerator is safe for concurrent use.
	Generator() AnswerGenerator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
