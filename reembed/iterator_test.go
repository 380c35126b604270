package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/lexqa/core"
	"github.com/poiesic/lexqa/storage"
	"github.com/poiesic/lexqa/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (storage.PassageRepository, func()) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		backend.Close()
	}

	return repo, cleanup
}

func addTestPassages(t *testing.T, repo storage.PassageRepository, n int) []*core.Passage {
	t.Helper()
	ctx := context.Background()
	passages := make([]*core.Passage, n)
	for i := 0; i < n; i++ {
		passages[i] = &core.Passage{
			Contents: fmt.Sprintf("passage %d", i),
			Source:   "civil_code.md",
			Seq:      i,
		}
	}
	added, err := repo.AddPassages(ctx, passages...)
	require.NoError(t, err)
	return added
}

func TestPassageIterator_Basic(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	addTestPassages(t, repo, 3)

	// Iterate all passages
	iter := NewPassageIterator(repo, 2) // Batch size of 2
	count := 0
	var ids []core.ID

	err := iter.ForEach(ctx, func(passages []*core.Passage) error {
		count += len(passages)
		for _, p := range passages {
			ids = append(ids, p.Id)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, count, "should iterate all 3 passages")
	assert.Len(t, ids, 3, "should have 3 IDs")
}

func TestPassageIterator_BatchSizes(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	addTestPassages(t, repo, 10)

	tests := []struct {
		name          string
		batchSize     int
		expectedBatch int
	}{
		{"batch size 1", 1, 10},
		{"batch size 3", 3, 4}, // 3+3+3+1
		{"batch size 5", 5, 2}, // 5+5
		{"batch size 10", 10, 1},
		{"batch size 100", 100, 1}, // All in one batch
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewPassageIterator(repo, tt.batchSize)
			batchCount := 0
			totalPassages := 0

			err := iter.ForEach(ctx, func(passages []*core.Passage) error {
				batchCount++
				totalPassages += len(passages)
				assert.LessOrEqual(t, len(passages), tt.batchSize)
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBatch, batchCount)
			assert.Equal(t, 10, totalPassages)
		})
	}
}

func TestPassageIterator_Empty(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	iter := NewPassageIterator(repo, 10)
	called := false

	err := iter.ForEach(context.Background(), func(passages []*core.Passage) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called, "callback should not run on an empty store")
}

func TestPassageIterator_CallbackError(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	addTestPassages(t, repo, 5)

	iter := NewPassageIterator(repo, 2)
	wantErr := errors.New("boom")
	batches := 0

	err := iter.ForEach(context.Background(), func(passages []*core.Passage) error {
		batches++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, batches, "iteration should stop on first error")
}

func TestPassageIterator_Cancellation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	addTestPassages(t, repo, 10)

	ctx, cancel := context.WithCancel(context.Background())

	iter := NewPassageIterator(repo, 2)
	batches := 0

	err := iter.ForEach(ctx, func(passages []*core.Passage) error {
		batches++
		cancel()
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, batches, "iteration should stop after cancellation")
}

func TestPassageIterator_DefaultBatchSize(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	iter := NewPassageIterator(repo, 0)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)

	iter = NewPassageIterator(repo, -5)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)
}
