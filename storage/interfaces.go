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


package storage

import (
	"context"

	"github.com/poiesic/lexqa/core"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent read-only access;
// the retrieval path issues concurrent similarity queries against an index
// that is only written during ingestion.
type Repository interface {
	// FindSimilar finds passages similar to the given vector.
	// Returns passages with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// PassageRepository provides operations for managing corpus passages.
type PassageRepository interface {
	Repository
	// AddPassages adds one or more passages to storage.
	// For passages with ID=0, assigns the content-based ID of the passage key,
	// so re-ingesting a source document updates passages in place.
	// Sets InsertedAt timestamp if not already set.
	// Returns the passages with IDs and timestamps populated.
	AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error)

	// UpdatePassages updates existing passages.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any passage doesn't exist.
	UpdatePassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error)

	// DeletePassages removes passages by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any passage doesn't exist.
	DeletePassages(ctx context.Context, ids ...core.ID) error

	// GetPassage retrieves a single passage by ID.
	// Returns ErrNotFound if the passage doesn't exist.
	GetPassage(ctx context.Context, id core.ID) (*core.Passage, error)

	// GetPassages retrieves multiple passages by their IDs.
	// Returns only the passages that exist (no error for missing passages).
	GetPassages(ctx context.Context, ids ...core.ID) ([]*core.Passage, error)

	// GetPassagesBySource retrieves all passages from a source document,
	// ordered by their position within the document.
	GetPassagesBySource(ctx context.Context, source string) ([]*core.Passage, error)

	// GetAllPassages retrieves every passage in the store. Intended for bulk
	// maintenance such as re-embedding; ordering is unspecified.
	GetAllPassages(ctx context.Context) ([]*core.Passage, error)

	// CountPassages returns the number of passages in the store.
	CountPassages(ctx context.Context) (int, error)
}
