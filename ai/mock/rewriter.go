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

	"github.com/poiesic/lexqa/ai"
)

// MockRewriter is a test double for ai.QueryRewriter.
// It allows custom behavior injection via function fields.
type MockRewriter struct {
	// RewriteFunc is called by RewriteQuery if set.
	// If nil, uses default behavior.
	RewriteFunc func(ctx context.Context, question string) (string, error)

	callCount int
}

var _ ai.QueryRewriter = (*MockRewriter)(nil)

// NewMockRewriter creates a mock rewriter with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockRewriter().
func NewMockRewriter() *MockRewriter {
	return &MockRewriter{}
}

// RewriteQuery appends a rewrite marker so tests can observe each cycle.
func (m *MockRewriter) RewriteQuery(ctx context.Context, question string) (string, error) {
	m.callCount++

	if m.RewriteFunc != nil {
		return m.RewriteFunc(ctx, question)
	}

	return question + " (rewritten)", nil
}

// CallCount returns the number of times RewriteQuery was called.
func (m *MockRewriter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom function.
func (m *MockRewriter) Reset() {
	m.callCount = 0
	m.RewriteFunc = nil
}
