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


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/lexqa/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Rewriter implements ai.QueryRewriter using OpenAI-compatible chat APIs.
type Rewriter struct {
	client llms.Model
	logger *slog.Logger
}

// newRewriter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newRewriter(config *ai.Config) (*Rewriter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.LLMHost),
		openai.WithToken("none"),
		openai.WithModel(config.LLMModel),
	)
	if err != nil {
		return nil, err
	}

	return &Rewriter{
		client: client,
		logger: slog.Default().With("component", "openai-rewriter"),
	}, nil
}

// NewRewriter creates a new query rewriter using the provided configuration.
//
// Returns ai.QueryRewriter interface to enforce abstraction.
func NewRewriter(config *ai.Config) (ai.QueryRewriter, error) {
	return newRewriter(config)
}

// RewriteQuery reformulates the question into a form better suited for vector
// retrieval. The result may be empty if the model returns nothing.
func (r *Rewriter) RewriteQuery(ctx context.Context, question string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(rewriteSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(fmt.Sprintf(rewriteUserTemplate, question)),
			},
		},
	}

	response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		r.logger.Error("failed to rewrite query", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		r.logger.Warn("no choices returned from model")
		return "", nil
	}

	rewritten := strings.TrimSpace(response.Choices[0].Content)
	r.logger.Debug("query rewritten", "from", question, "to", rewritten)
	return rewritten, nil
}
