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


package retrieval

import (
	"context"
	"log/slog"

	"github.com/poiesic/lexqa/ai"
	"github.com/poiesic/lexqa/core"
	"github.com/poiesic/lexqa/storage"
)

const (
	// DefaultTopK is the number of passages returned per query.
	DefaultTopK = 4

	// DefaultMinSimilarity admits all passages regardless of score.
	// Weak matches are weeded out downstream by relevance grading.
	DefaultMinSimilarity = 0.0
)

// Retriever performs semantic search over stored passages.
type Retriever struct {
	passageRepository storage.PassageRepository
	embedder          ai.Embedder
	topK              int
	minSimilarity     float32
	logger            *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithTopK sets the number of passages returned per query.
// Default is DefaultTopK.
func WithTopK(topK int) Option {
	return func(r *Retriever) error {
		if topK <= 0 {
			return ErrInvalidTopK
		}
		r.topK = topK
		return nil
	}
}

// WithMinSimilarity sets the minimum cosine similarity for a passage
// to be returned. Default is DefaultMinSimilarity.
func WithMinSimilarity(minSimilarity float32) Option {
	return func(r *Retriever) error {
		if minSimilarity < 0 || minSimilarity > 1 {
			return ErrInvalidMinSimilarity
		}
		r.minSimilarity = minSimilarity
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	passageRepository storage.PassageRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Retriever, error) {
	if passageRepository == nil {
		return nil, ErrPassageRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		passageRepository: passageRepository,
		embedder:          provider.Embedder(),
		topK:              DefaultTopK,
		minSimilarity:     DefaultMinSimilarity,
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve embeds the query and returns the most similar passages,
// ordered by descending similarity. An empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*core.Passage, error) {
	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := r.passageRepository.FindSimilar(ctx, embedding, r.minSimilarity, r.topK)
	if err != nil {
		r.logger.Error("error querying for similar passages", "err", err)
		return nil, err
	}

	passages := make([]*core.Passage, 0, len(matches))
	for _, match := range matches {
		passages = append(passages, match.Passage)
	}

	r.logger.Debug("retrieved passages", "query", query, "count", len(passages))
	return passages, nil
}
