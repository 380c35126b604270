package reembed

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/lexqa/ai"
	"github.com/poiesic/lexqa/ai/openai"
	"github.com/poiesic/lexqa/core"
	"github.com/poiesic/lexqa/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_FullReembeddingWorkflow tests the complete reembedding workflow
// from database setup through completion using a mock embedder.
func TestIntegration_FullReembeddingWorkflow(t *testing.T) {
	// Skip if short tests
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	// Seed database with passages WITHOUT embeddings
	passages := make([]*core.Passage, 50)
	for i := 0; i < 50; i++ {
		passages[i] = &core.Passage{
			Contents: fmt.Sprintf("第%d条 条文内容。", i+1),
			Source:   "civil_code.md",
			Seq:      i,
			Vector:   nil, // No embedding initially
		}
	}

	added, err := repo.AddPassages(ctx, passages...)
	require.NoError(t, err)
	require.Len(t, added, 50)

	// Verify passages don't have embeddings
	for _, passage := range added {
		assert.Empty(t, passage.Vector, "initial passages should not have embeddings")
	}

	// Create embedder
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			// Return unique vectors for each text based on position
			result := make([][]float32, len(texts))
			for i := range texts {
				result[i] = []float32{
					float32(i+1) * 0.1,
					float32(i+1) * 0.2,
					float32(i+1) * 0.3,
				}
			}
			return result, nil
		},
	}

	// Configure reembedding
	config := &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, embedder, config, &buf)

	// Run reembedding
	err = reembedder.Run(ctx)
	require.NoError(t, err)

	// Verify all passages now have normalized embeddings
	allPassages, err := repo.GetAllPassages(ctx)
	require.NoError(t, err)
	require.Len(t, allPassages, 50, "should have all 50 passages")

	for i, passage := range allPassages {
		require.NotEmpty(t, passage.Vector, "passage %d should have embedding", i)

		// Verify normalization
		var magnitude float32
		for _, v := range passage.Vector {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "passage %d vector should be normalized", i)
	}

	// Verify progress output
	output := buf.String()
	assert.Contains(t, output, "Starting reembedding of 50 passages")
	assert.Contains(t, output, "50/50")
	assert.Contains(t, output, "100.0%")
	assert.Contains(t, output, "Reembedding complete")
}

// TestIntegration_WithRealEmbedder tests with a real OpenAI-compatible embedder
// This test requires a running embedding service and is skipped by default.
func TestIntegration_WithRealEmbedder(t *testing.T) {
	t.Skip("Requires running embedding service - enable manually for testing")

	ctx := context.Background()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	// Add test passages
	passages := []*core.Passage{
		{Contents: "十八周岁以上的自然人为成年人。", Source: "civil_code.md", Seq: 0},
		{Contents: "成年人为完全民事行为能力人。", Source: "civil_code.md", Seq: 1},
		{Contents: "诉讼时效期间为三年。", Source: "civil_code.md", Seq: 2},
	}
	added, err := repo.AddPassages(ctx, passages...)
	require.NoError(t, err)

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost("http://localhost:11434/v1"),
		ai.WithEmbeddingModel("embeddinggemma"),
		ai.WithLLMModel("qwen2.5:3b"),
	)

	// Create real embedder
	embedder, err := openai.NewEmbedder(aiConfig)
	require.NoError(t, err)

	// Run reembedding
	config := DefaultConfig()
	var buf bytes.Buffer
	reembedder := NewReembedder(repo, embedder, config, &buf)

	err = reembedder.Run(ctx)
	require.NoError(t, err)

	// Verify embeddings
	updated, err := repo.GetPassages(ctx, added[0].Id, added[1].Id, added[2].Id)
	require.NoError(t, err)
	require.Len(t, updated, 3)

	for _, passage := range updated {
		require.NotEmpty(t, passage.Vector)
		// Real embeddings should have a consistent dimension
		assert.Greater(t, len(passage.Vector), 0)
	}
}

// TestIntegration_IdempotentReembedding tests that reembedding can be run multiple times
func TestIntegration_IdempotentReembedding(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	added := addTestPassages(t, repo, 10)

	embedder := &mockEmbedder{}
	config := &Config{
		BatchSize:      5,
		ReportInterval: 5,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	// First run
	var buf1 bytes.Buffer
	reembedder1 := NewReembedder(repo, embedder, config, &buf1)
	err = reembedder1.Run(ctx)
	require.NoError(t, err)

	// Get embeddings after first run
	passages1, err := repo.GetPassages(ctx, added[0].Id, added[1].Id)
	require.NoError(t, err)
	vec1 := passages1[0].Vector

	// Second run (should overwrite with same vectors)
	var buf2 bytes.Buffer
	reembedder2 := NewReembedder(repo, embedder, config, &buf2)
	err = reembedder2.Run(ctx)
	require.NoError(t, err)

	// Get embeddings after second run
	passages2, err := repo.GetPassages(ctx, added[0].Id, added[1].Id)
	require.NoError(t, err)
	vec2 := passages2[0].Vector

	// Verify vectors are the same (idempotent)
	require.Equal(t, len(vec1), len(vec2))
	for i := range vec1 {
		assert.InDelta(t, vec1[i], vec2[i], 0.001, "vectors should be identical after re-embedding")
	}
}
