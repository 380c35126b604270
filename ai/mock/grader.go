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
	"strings"
	"sync"

	"github.com/poiesic/lexqa/ai"
)

// MockGrader is a test double for ai.RelevanceGrader.
// It allows custom behavior injection via function fields.
type MockGrader struct {
	// GradeFunc is called by GradeRelevance if set.
	// If nil, uses default word-overlap behavior.
	GradeFunc func(ctx context.Context, question, passage string) (ai.Relevance, error)

	mu        sync.Mutex
	callCount int
}

// NewMockGrader creates a mock grader with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGrader().
func NewMockGrader() *MockGrader {
	return &MockGrader{}
}

// GradeRelevance judges relevance with a simple word-overlap heuristic:
// the passage is relevant when it shares at least one word with the question.
// Grading is called concurrently by the flow controller, so the call counter
// is guarded by a mutex.
func (m *MockGrader) GradeRelevance(ctx context.Context, question, passage string) (ai.Relevance, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.GradeFunc != nil {
		return m.GradeFunc(ctx, question, passage)
	}

	// Default: word overlap
	passageWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(passage)) {
		passageWords[w] = true
	}
	for _, w := range strings.Fields(strings.ToLower(question)) {
		if passageWords[w] {
			return ai.RelevanceRelevant, nil
		}
	}
	return ai.RelevanceNotRelevant, nil
}

// CallCount returns the number of times GradeRelevance was called.
func (m *MockGrader) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom function.
func (m *MockGrader) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.GradeFunc = nil
}
