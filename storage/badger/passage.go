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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lexqa/core"
	"github.com/poiesic/lexqa/storage"
)

// PassageRepository implements storage.PassageRepository on a BadgerDB backend.
type PassageRepository struct {
	backend *Backend
}

var _ storage.PassageRepository = (*PassageRepository)(nil)

// NewPassageRepository creates a new PassageRepository.
func NewPassageRepository(backend *Backend) (*PassageRepository, error) {
	return &PassageRepository{
		backend: backend,
	}, nil
}

// Close releases repository resources.
// The underlying backend is owned by the caller and closed separately.
func (r *PassageRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *PassageRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *PassageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddPassages adds one or more passages to storage.
// Passages with ID=0 get the content-based ID of their key, so re-ingesting
// the same document overwrites its passages instead of duplicating them.
func (r *PassageRepository) AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	for _, passage := range passages {
		if err := core.ValidatePassage(passage); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, passage := range passages {
			if passage.Id == 0 {
				passage.Id = core.IDFromContent(passage.Key())
			}

			key := makePassageKey(passage.Id)

			// A re-ingested passage keeps its original insertion time.
			existing, err := r.readPassage(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				passage.InsertedAt = existing.InsertedAt
				passage.UpdatedAt = time.Now().UTC()
			} else {
				if passage.InsertedAt.IsZero() {
					passage.InsertedAt = time.Now().UTC()
				}
				passage.UpdatedAt = passage.InsertedAt
			}
			value := storage.MarshalPassage(passage)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update source index
			sourceKey := makePassageSourceKey(passage.Source, passage.Seq)
			if err := tx.Set(sourceKey, storage.MarshalID(passage.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return passages, err
}

// UpdatePassages updates existing passages.
func (r *PassageRepository) UpdatePassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, passage := range passages {
			key := makePassageKey(passage.Id)

			// Ensure the passage exists before updating
			existing, err := r.readPassage(tx, key)
			if err != nil {
				return err
			}
			if existing == nil {
				return storage.ErrNotFound
			}

			passage.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalPassage(passage)); err != nil {
				return err
			}

			// Refresh the source index if the passage moved
			if existing.Source != passage.Source || existing.Seq != passage.Seq {
				if err := tx.Delete(makePassageSourceKey(existing.Source, existing.Seq)); err != nil {
					return err
				}
				if err := tx.Set(makePassageSourceKey(passage.Source, passage.Seq), storage.MarshalID(passage.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return passages, err
}

// DeletePassages removes passages by their IDs.
func (r *PassageRepository) DeletePassages(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makePassageKey(id)

			passage, err := r.readPassage(tx, key)
			if err != nil {
				return err
			}
			if passage == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
			if err := tx.Delete(makePassageSourceKey(passage.Source, passage.Seq)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetPassage retrieves a single passage by ID.
func (r *PassageRepository) GetPassage(ctx context.Context, id core.ID) (*core.Passage, error) {
	var result *core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makePassageKey(id)
		var err error
		result, err = r.readPassage(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetPassages retrieves multiple passages by their IDs.
func (r *PassageRepository) GetPassages(ctx context.Context, ids ...core.ID) ([]*core.Passage, error) {
	var result []*core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makePassageKey(id)
			passage, err := r.readPassage(tx, key)
			if err != nil {
				return err
			}
			if passage != nil {
				result = append(result, passage)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetPassagesBySource retrieves all passages from a source document in
// document order. The source index keys sort by sequence number.
func (r *PassageRepository) GetPassagesBySource(ctx context.Context, source string) ([]*core.Passage, error) {
	var result []*core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePassageSourceScanPrefix(source)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			passage, err := r.readPassage(tx, makePassageKey(id))
			if err != nil {
				return err
			}
			if passage != nil {
				result = append(result, passage)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetAllPassages retrieves every passage in the store.
func (r *PassageRepository) GetAllPassages(ctx context.Context) ([]*core.Passage, error) {
	var result []*core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = passageRecordScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var passage *core.Passage
			err := iter.Item().Value(func(val []byte) error {
				var err error
				passage, err = storage.UnmarshalPassage(val)
				return err
			})
			if err != nil {
				return err
			}
			if passage != nil {
				result = append(result, passage)
			}
		}
		return nil
	}, false)
	return result, err
}

// CountPassages returns the number of passages in the store.
func (r *PassageRepository) CountPassages(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = passageRecordScanPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readPassage reads and unmarshals a passage, returning nil when absent.
func (r *PassageRepository) readPassage(tx *badger.Txn, key []byte) (*core.Passage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var passage *core.Passage
	err = item.Value(func(val []byte) error {
		var err error
		passage, err = storage.UnmarshalPassage(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return passage, nil
}
