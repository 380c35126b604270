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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/lexqa/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Grader implements ai.RelevanceGrader using OpenAI-compatible chat APIs.
type Grader struct {
	client llms.Model
	logger *slog.Logger
}

// gradeScore is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type gradeScore struct {
	BinaryScore string `json:"binary_score"`
}

// newGrader is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGrader(config *ai.Config) (*Grader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/grading
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.LLMHost),
		openai.WithToken("none"),
		openai.WithModel(config.LLMModel),
	)
	if err != nil {
		return nil, err
	}

	return &Grader{
		client: client,
		logger: slog.Default().With("component", "openai-grader"),
	}, nil
}

// NewGrader creates a new relevance grader using the provided configuration.
//
// Returns ai.RelevanceGrader interface to enforce abstraction.
func NewGrader(config *ai.Config) (ai.RelevanceGrader, error) {
	return newGrader(config)
}

// GradeRelevance judges whether the passage addresses the question using an LLM.
// A response the model never manages to phrase as a valid binary score is
// reported as RelevanceIndeterminate, not as an error; errors are reserved for
// transport and service failures.
func (g *Grader) GradeRelevance(ctx context.Context, question, passage string) (ai.Relevance, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(gradeSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(fmt.Sprintf(gradeUserTemplate, passage, question)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var score gradeScore
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			g.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return ai.RelevanceIndeterminate, err
		}

		if len(response.Choices) < 1 {
			g.logger.Debug("no choices returned from model")
			return ai.RelevanceIndeterminate, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &score); err != nil {
			lastErr = err
			g.logger.Warn("error parsing grader response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		// The model answered but never produced a usable judgment.
		g.logger.Warn("no usable judgment after retries", "err", lastErr)
		return ai.RelevanceIndeterminate, nil
	}

	switch strings.ToLower(strings.TrimSpace(score.BinaryScore)) {
	case "yes":
		return ai.RelevanceRelevant, nil
	case "no":
		return ai.RelevanceNotRelevant, nil
	default:
		g.logger.Warn("unexpected binary score", "score", score.BinaryScore)
		return ai.RelevanceIndeterminate, nil
	}
}
