package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/lexqa/ai/mock"
	"github.com/poiesic/lexqa/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatutes = `第十七条　十八周岁以上的自然人为成年人。不满十八周岁的自然人为未成年人。

第十八条　成年人为完全民事行为能力人，可以独立实施民事法律行为。

第十九条　八周岁以上的未成年人为限制民事行为能力人，实施民事法律行为由其法定代理人代理或者经其法定代理人同意、追认。`

func TestNewPipeline(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		pipeline, err := NewPipeline(repo, provider)
		require.NoError(t, err)
		defer pipeline.Release()
		assert.Equal(t, DefaultChunkSize, pipeline.chunkSize)
		assert.Equal(t, DefaultChunkOverlap, pipeline.chunkOverlap)
	})

	t.Run("with options", func(t *testing.T) {
		pipeline, err := NewPipeline(repo, provider,
			WithChunkSize(100),
			WithChunkOverlap(10),
			WithEmbedBatchSize(8),
			WithPoolSize(2),
		)
		require.NoError(t, err)
		defer pipeline.Release()
		assert.Equal(t, 100, pipeline.chunkSize)
		assert.Equal(t, 10, pipeline.chunkOverlap)
	})

	t.Run("nil passage repository", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.Equal(t, ErrPassageRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(repo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("invalid chunk size", func(t *testing.T) {
		_, err := NewPipeline(repo, provider, WithChunkSize(0))
		assert.Error(t, err)
	})
}

func TestIngestText(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	provider := mock.NewMockProvider()

	pipeline, err := NewPipeline(repo, provider, WithChunkSize(80), WithChunkOverlap(0))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	passages, err := pipeline.IngestText(ctx, "civil_code.md", sampleStatutes)
	require.NoError(t, err)
	require.NotEmpty(t, passages)

	for i, passage := range passages {
		assert.Equal(t, "civil_code.md", passage.Source)
		assert.Equal(t, i, passage.Seq)
		assert.NotZero(t, passage.Id)
		assert.NotEmpty(t, passage.Vector, "every passage should carry an embedding")
	}

	stored, err := repo.GetPassagesBySource(ctx, "civil_code.md")
	require.NoError(t, err)
	assert.Len(t, stored, len(passages))
}

func TestIngestText_VectorsAreNormalized(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{3, 4}
		}
		return vectors, nil
	}

	pipeline, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer pipeline.Release()

	passages, err := pipeline.IngestText(context.Background(), "doc.md", "some text")
	require.NoError(t, err)
	require.NotEmpty(t, passages)

	assert.InDelta(t, 0.6, passages[0].Vector[0], 1e-6)
	assert.InDelta(t, 0.8, passages[0].Vector[1], 1e-6)
}

func TestIngestText_ReingestUpdatesInPlace(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	provider := mock.NewMockProvider()

	pipeline, err := NewPipeline(repo, provider, WithChunkSize(80), WithChunkOverlap(0))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	first, err := pipeline.IngestText(ctx, "civil_code.md", sampleStatutes)
	require.NoError(t, err)

	second, err := pipeline.IngestText(ctx, "civil_code.md", sampleStatutes)
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))

	count, err := repo.CountPassages(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(first), count, "re-ingest should not duplicate passages")
}

func TestIngestText_EmptyDocument(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	pipeline, err := NewPipeline(repo, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.IngestText(context.Background(), "empty.md", "")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestIngestText_EmbedderErrorAbortsIngest(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	pipeline, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	_, err = pipeline.IngestText(ctx, "doc.md", "some text")
	require.Error(t, err)

	count, err := repo.CountPassages(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "failed ingest should store nothing")
}

func TestIngestFile(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	pipeline, err := NewPipeline(repo, mock.NewMockProvider(), WithChunkSize(80), WithChunkOverlap(0))
	require.NoError(t, err)
	defer pipeline.Release()

	path := filepath.Join(t.TempDir(), "civil_code.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleStatutes), 0o644))

	passages, err := pipeline.IngestFile(context.Background(), path)
	require.NoError(t, err)
	require.NotEmpty(t, passages)

	for _, passage := range passages {
		assert.Equal(t, "civil_code.md", passage.Source)
	}
}

func TestIngestFile_Missing(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	pipeline, err := NewPipeline(repo, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.IngestFile(context.Background(), filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestIngestText_ChunkOrderMatchesDocument(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	pipeline, err := NewPipeline(repo, mock.NewMockProvider(), WithChunkSize(40), WithChunkOverlap(0))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	doc := strings.Repeat("第一段内容。\n\n第二段内容。\n\n", 4)
	passages, err := pipeline.IngestText(ctx, "ordered.md", doc)
	require.NoError(t, err)

	stored, err := repo.GetPassagesBySource(ctx, "ordered.md")
	require.NoError(t, err)
	require.Equal(t, len(passages), len(stored))

	for i, passage := range stored {
		assert.Equal(t, i, passage.Seq)
		assert.Equal(t, passages[i].Contents, passage.Contents)
	}
}
