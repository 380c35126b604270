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


package mock

import "github.com/poiesic/lexqa/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder, grader, rewriter and generator instances.
type MockProvider struct {
	embedder  *MockEmbedder
	grader    *MockGrader
	rewriter  *MockRewriter
	generator *MockGenerator
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use the GetMock* accessors to reach concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		grader:    NewMockGrader(),
		rewriter:  NewMockRewriter(),
		generator: NewMockGenerator(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, grader *MockGrader, rewriter *MockRewriter, generator *MockGenerator) ai.AIProvider {
	return &MockProvider{
		embedder:  embedder,
		grader:    grader,
		rewriter:  rewriter,
		generator: generator,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Grader returns the mock grader.
func (p *MockProvider) Grader() ai.RelevanceGrader {
	return p.grader
}

// Rewriter returns the mock rewriter.
func (p *MockProvider) Rewriter() ai.QueryRewriter {
	return p.rewriter
}

// Generator returns the mock generator.
func (p *MockProvider) Generator() ai.AnswerGenerator {
	return p.generator
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockGrader returns the underlying mock grader for test assertions.
func (p *MockProvider) GetMockGrader() *MockGrader {
	return p.grader
}

// GetMockRewriter returns the underlying mock rewriter for test assertions.
func (p *MockProvider) GetMockRewriter() *MockRewriter {
	return p.rewriter
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}
