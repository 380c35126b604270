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


package lexqa

import (
	"log/slog"

	"github.com/poiesic/lexqa/ai"
	"github.com/poiesic/lexqa/ai/openai"
	"github.com/poiesic/lexqa/flow"
	"github.com/poiesic/lexqa/ingestion"
	"github.com/poiesic/lexqa/retrieval"
	"github.com/poiesic/lexqa/storage"
	"github.com/poiesic/lexqa/storage/badger"
)

// Database bundles the passage store and the AI provider behind one handle.
// It is the entry point for embedding corpora and answering questions.
type Database struct {
	backend     *badger.Backend
	passageRepo storage.PassageRepository
	provider    ai.AIProvider
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig sets the AI provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create passage repository
	passageRepo, err := badger.NewPassageRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		passageRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:     backend,
		passageRepo: passageRepo,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.passageRepo.Close(); err != nil {
		db.logger.Error("error closing passage repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) PassageRepository() storage.PassageRepository {
	return db.passageRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.passageRepo, db.provider, opts...)
}

func (db *Database) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(db.passageRepo, db.provider, opts...)
}

// NewController builds a flow controller backed by this database's passage
// store and AI provider, using default retrieval settings unless overridden.
func (db *Database) NewController(retrieverOpts []retrieval.Option, opts ...flow.Option) (*flow.Controller, error) {
	retriever, err := retrieval.NewRetriever(db.passageRepo, db.provider, retrieverOpts...)
	if err != nil {
		return nil, err
	}
	return flow.NewController(retriever, db.provider, opts...)
}
