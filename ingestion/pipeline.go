package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lexqa/ai"
	"github.com/poiesic/lexqa/core"
	"github.com/poiesic/lexqa/storage"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 500

	// DefaultChunkOverlap is the number of characters shared between
	// adjacent chunks.
	DefaultChunkOverlap = 50

	// DefaultEmbedBatchSize is the number of chunks embedded per model call.
	DefaultEmbedBatchSize = 32
)

// defaultSeparators split on paragraph and sentence boundaries. The CJK
// punctuation entries keep statutes from being cut mid-sentence.
var defaultSeparators = []string{"\n\n", "\n", "。", "；", "，", " ", ""}

// Pipeline splits documents into passages, embeds them and stores them.
type Pipeline struct {
	passageRepository storage.PassageRepository
	embedder          ai.Embedder
	embeddingPool     *ants.Pool
	splitter          textsplitter.RecursiveCharacter
	chunkSize         int
	chunkOverlap      int
	embedBatchSize    int
	logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithChunkSize sets the target chunk length in characters.
// Default is DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}
		p.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks.
// Default is DefaultChunkOverlap.
func WithChunkOverlap(overlap int) Option {
	return func(p *Pipeline) error {
		if overlap < 0 {
			return fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
		}
		p.chunkOverlap = overlap
		return nil
	}
}

// WithEmbedBatchSize sets how many chunks are embedded per model call.
// Default is DefaultEmbedBatchSize.
func WithEmbedBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("embed batch size must be positive, got %d", size)
		}
		p.embedBatchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	passageRepository storage.PassageRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if passageRepository == nil {
		return nil, ErrPassageRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		passageRepository: passageRepository,
		embedder:          provider.Embedder(),
		embeddingPool:     embeddingPool,
		chunkSize:         DefaultChunkSize,
		chunkOverlap:      DefaultChunkOverlap,
		embedBatchSize:    DefaultEmbedBatchSize,
		logger:            slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the splitter after options are applied so it gets final config
	p.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.chunkOverlap),
		textsplitter.WithSeparators(defaultSeparators),
	)

	return p, nil
}

// IngestText splits a document into passages, embeds them and stores them.
// The source name identifies the document; re-ingesting the same source
// replaces its passages. Returns the stored passages.
func (p *Pipeline) IngestText(ctx context.Context, source, text string) ([]*core.Passage, error) {
	chunks, err := p.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	p.logger.Info("ingesting document", "source", source, "chunks", len(chunks))

	passages := make([]*core.Passage, len(chunks))
	for i, chunk := range chunks {
		passages[i] = &core.Passage{
			Contents: chunk,
			Source:   source,
			Seq:      i,
		}
	}

	if err := p.embedPassages(ctx, passages); err != nil {
		return nil, err
	}

	return p.passageRepository.AddPassages(ctx, passages...)
}

// IngestFile reads a document from disk and ingests it.
// The file's base name becomes the source identifier.
func (p *Pipeline) IngestFile(ctx context.Context, path string) ([]*core.Passage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := documentloaders.NewText(f).LoadAndSplit(ctx, p.splitter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrEmptyDocument
	}

	source := filepath.Base(path)
	p.logger.Info("ingesting file", "source", source, "chunks", len(docs))

	passages := make([]*core.Passage, len(docs))
	for i, doc := range docs {
		passages[i] = &core.Passage{
			Contents: doc.PageContent,
			Source:   source,
			Seq:      i,
		}
	}

	if err := p.embedPassages(ctx, passages); err != nil {
		return nil, err
	}

	return p.passageRepository.AddPassages(ctx, passages...)
}

// embedPassages generates embeddings in concurrent batches and attaches
// normalized vectors to the passages in place.
func (p *Pipeline) embedPassages(ctx context.Context, passages []*core.Passage) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(passages); start += p.embedBatchSize {
		end := start + p.embedBatchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]

		wg.Add(1)
		embed := func() {
			defer wg.Done()

			texts := make([]string, len(batch))
			for i, passage := range batch {
				texts[i] = passage.Contents
			}

			embeddings, err := p.embedder.EmbedTexts(ctx, texts)
			if err == nil && len(embeddings) != len(batch) {
				err = fmt.Errorf("embedding result mismatch. expected %d, received %d", len(batch), len(embeddings))
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			for i := range embeddings {
				batch[i].Vector = core.NormalizeVector(embeddings[i])
			}
		}
		if err := p.embeddingPool.Submit(embed); err != nil {
			// Pool unavailable, embed on the calling goroutine.
			embed()
		}
	}
	wg.Wait()

	if firstErr != nil {
		p.logger.Error("error generating embeddings", "err", firstErr)
		return firstErr
	}
	return nil
}

// Release releases the embedding worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
