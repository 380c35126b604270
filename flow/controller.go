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


package flow

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lexqa/ai"
	"github.com/poiesic/lexqa/core"
)

// DefaultMaxRetries is the rewrite ceiling applied when none is configured.
const DefaultMaxRetries = 3

// Retriever fetches candidate passages for a query, most similar first.
// Implementations must not mutate the underlying index.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]*core.Passage, error)
}

// Controller runs the question-answering state machine.
// It holds no per-question state and is safe for concurrent invocations.
type Controller struct {
	retriever  Retriever
	grader     ai.RelevanceGrader
	rewriter   ai.QueryRewriter
	generator  ai.AnswerGenerator
	maxRetries int
	gradePool  *ants.Pool
	logger     *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller) error

// WithMaxRetries sets how many rewrite cycles are allowed before the flow
// proceeds to generation unconditionally. Zero disables rewriting entirely.
// Default is DefaultMaxRetries.
func WithMaxRetries(maxRetries int) Option {
	return func(c *Controller) error {
		if maxRetries < 0 {
			return ErrInvalidMaxRetries
		}
		c.maxRetries = maxRetries
		return nil
	}
}

// WithGradeConcurrency sets the worker pool size for per-passage relevance
// grading. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithGradeConcurrency(size int) Option {
	return func(c *Controller) error {
		if size < 1 {
			size = 1
		}

		if c.gradePool != nil {
			c.gradePool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.gradePool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewController creates a new flow controller.
func NewController(
	retriever Retriever,
	provider ai.AIProvider,
	opts ...Option,
) (*Controller, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	gradePool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		retriever:  retriever,
		grader:     provider.Grader(),
		rewriter:   provider.Rewriter(),
		generator:  provider.Generator(),
		maxRetries: DefaultMaxRetries,
		gradePool:  gradePool,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			c.Release()
			return nil, err
		}
	}

	return c, nil
}

// Release releases the grading worker pool.
// The controller should not be used after calling Release.
func (c *Controller) Release() {
	if c.gradePool != nil {
		c.gradePool.Release()
	}
}

// Answer runs the full flow for one question and returns the final answer.
func (c *Controller) Answer(ctx context.Context, question string) (string, error) {
	return c.AnswerWithMonitor(ctx, question, nil)
}

// AnswerWithMonitor runs the full flow with monitoring callbacks at each
// transition. Retrieval, rewrite and generation errors abort the invocation;
// per-passage grading failures only drop the affected passage.
func (c *Controller) AnswerWithMonitor(ctx context.Context, question string, monitor Monitor) (string, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(question)

	st := &flowState{question: question}
	state := StateRetrieve

	for state != StateDone {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		next, err := c.step(ctx, state, st, monitor)
		if err != nil {
			return "", err
		}
		monitor.Transition(state, next)
		state = next
	}

	monitor.Finish(st.answer)
	return st.answer, nil
}

// step executes one state and returns the next one.
func (c *Controller) step(ctx context.Context, state State, st *flowState, monitor Monitor) (State, error) {
	switch state {
	case StateRetrieve:
		passages, err := c.retriever.Retrieve(ctx, st.question)
		if err != nil {
			return StateDone, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
		}
		st.passages = passages
		monitor.AfterRetrieve(st.question, passages)
		return StateGrade, nil

	case StateGrade:
		kept, err := c.gradePassages(ctx, st.question, st.passages, monitor)
		if err != nil {
			return StateDone, err
		}
		st.passages = kept
		monitor.AfterGrade(st.passages)
		return StateDecide, nil

	case StateDecide:
		if len(st.passages) > 0 {
			return StateGenerate, nil
		}
		if st.retryCount < c.maxRetries {
			return StateRewrite, nil
		}
		c.logger.Info("rewrite ceiling reached, generating without context",
			"question", st.question, "retries", st.retryCount)
		return StateGenerate, nil

	case StateRewrite:
		rewritten, err := c.rewriter.RewriteQuery(ctx, st.question)
		if err != nil {
			return StateDone, fmt.Errorf("%w: %w", ErrRewriteFailed, err)
		}
		if rewritten == "" {
			c.logger.Warn("rewriter produced empty query", "question", st.question)
		}
		st.question = rewritten
		st.retryCount++
		monitor.AfterRewrite(st.retryCount, rewritten)
		return StateRetrieve, nil

	case StateGenerate:
		texts := make([]string, len(st.passages))
		for i, p := range st.passages {
			texts[i] = p.Contents
		}
		answer, err := c.generator.GenerateAnswer(ctx, st.question, texts)
		if err != nil {
			return StateDone, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
		st.answer = answer
		return StateDone, nil

	default:
		return StateDone, nil
	}
}

// gradePassages classifies each passage concurrently and returns the
// relevant ones in their original retrieval order. A passage whose judgment
// fails or comes back indeterminate is dropped without aborting the flow.
// A cancelled context is the one exception: it aborts the invocation instead
// of masquerading as a batch of indeterminate judgments.
func (c *Controller) gradePassages(ctx context.Context, question string, passages []*core.Passage, monitor Monitor) ([]*core.Passage, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	type judgment struct {
		relevance ai.Relevance
		err       error
	}

	judgments := make([]judgment, len(passages))

	var wg sync.WaitGroup
	for i, passage := range passages {
		wg.Add(1)
		grade := func() {
			defer wg.Done()
			relevance, err := c.grader.GradeRelevance(ctx, question, passage.Contents)
			judgments[i] = judgment{relevance: relevance, err: err}
		}
		if err := c.gradePool.Submit(grade); err != nil {
			// Pool unavailable, grade on the calling goroutine.
			grade()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := make([]*core.Passage, 0, len(passages))
	for i, passage := range passages {
		j := judgments[i]
		switch {
		case j.err != nil:
			c.logger.Warn("relevance judgment unavailable, dropping passage",
				"passage", passage.Key(), "err", j.err)
			monitor.PassageIndeterminate(passage)
		case j.relevance == ai.RelevanceRelevant:
			kept = append(kept, passage)
			monitor.PassageRelevant(passage)
		case j.relevance == ai.RelevanceNotRelevant:
			monitor.PassageNotRelevant(passage)
		default:
			c.logger.Warn("indeterminate relevance judgment, dropping passage",
				"passage", passage.Key())
			monitor.PassageIndeterminate(passage)
		}
	}

	return kept, nil
}
