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

import (
	"context"
	"fmt"

	"github.com/poiesic/lexqa/ai"
)

// DontKnowAnswer is the canned response the mock generator returns when it
// receives no supporting passages, mirroring the production prompt contract.
const DontKnowAnswer = "我不知道。"

// MockGenerator is a test double for ai.AnswerGenerator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by GenerateAnswer if set.
	// If nil, uses default behavior.
	GenerateFunc func(ctx context.Context, question string, passages []string) (string, error)

	callCount int
}

var _ ai.AnswerGenerator = (*MockGenerator)(nil)

// NewMockGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateAnswer returns a canned answer naming the question and passage count,
// or DontKnowAnswer when no passages are provided.
func (m *MockGenerator) GenerateAnswer(ctx context.Context, question string, passages []string) (string, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, question, passages)
	}

	if len(passages) == 0 {
		return DontKnowAnswer, nil
	}

	return fmt.Sprintf("answer to %q based on %d passage(s)", question, len(passages)), nil
}

// CallCount returns the number of times GenerateAnswer was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom function.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
}
