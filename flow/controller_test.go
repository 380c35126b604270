package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/lexqa/ai"
	"github.com/poiesic/lexqa/ai/mock"
	"github.com/poiesic/lexqa/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRetriever returns a fixed passage set, or fails if Err is set.
type stubRetriever struct {
	mu        sync.Mutex
	passages  []*core.Passage
	err       error
	callCount int
	queries   []string
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]*core.Passage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callCount++
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.passages, nil
}

func makePassages(contents ...string) []*core.Passage {
	passages := make([]*core.Passage, len(contents))
	for i, text := range contents {
		passages[i] = &core.Passage{
			Id:       core.ID(i + 1),
			Contents: text,
			Source:   "civil_code.md",
			Seq:      i,
		}
	}
	return passages
}

// recordingMonitor captures transitions and grading outcomes.
type recordingMonitor struct {
	transitions    []State
	rewrites       []string
	indeterminate  int
	notRelevant    int
	relevant       int
	finalAnswer    string
	retryAtRewrite []int
}

func (r *recordingMonitor) Start(_ string)      {}
func (r *recordingMonitor) Transition(_, to State) { r.transitions = append(r.transitions, to) }
func (r *recordingMonitor) AfterRetrieve(_ string, _ []*core.Passage) {}
func (r *recordingMonitor) PassageRelevant(_ *core.Passage)           { r.relevant++ }
func (r *recordingMonitor) PassageNotRelevant(_ *core.Passage)        { r.notRelevant++ }
func (r *recordingMonitor) PassageIndeterminate(_ *core.Passage)      { r.indeterminate++ }
func (r *recordingMonitor) AfterGrade(_ []*core.Passage)              {}
func (r *recordingMonitor) AfterRewrite(retryCount int, newQuery string) {
	r.rewrites = append(r.rewrites, newQuery)
	r.retryAtRewrite = append(r.retryAtRewrite, retryCount)
}
func (r *recordingMonitor) Finish(answer string) { r.finalAnswer = answer }

func TestNewController(t *testing.T) {
	retriever := &stubRetriever{}
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		controller, err := NewController(retriever, provider)
		require.NoError(t, err)
		defer controller.Release()
		assert.Equal(t, DefaultMaxRetries, controller.maxRetries)
	})

	t.Run("with options", func(t *testing.T) {
		controller, err := NewController(retriever, provider,
			WithMaxRetries(5),
			WithGradeConcurrency(2),
		)
		require.NoError(t, err)
		defer controller.Release()
		assert.Equal(t, 5, controller.maxRetries)
	})

	t.Run("zero retries allowed", func(t *testing.T) {
		controller, err := NewController(retriever, provider, WithMaxRetries(0))
		require.NoError(t, err)
		defer controller.Release()
		assert.Equal(t, 0, controller.maxRetries)
	})

	t.Run("nil retriever", func(t *testing.T) {
		_, err := NewController(nil, provider)
		assert.Equal(t, ErrRetrieverRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewController(retriever, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("negative maxRetries", func(t *testing.T) {
		_, err := NewController(retriever, provider, WithMaxRetries(-1))
		assert.Equal(t, ErrInvalidMaxRetries, err)
	})
}

func TestAnswer_RelevantPassageGoesStraightToGenerate(t *testing.T) {
	retriever := &stubRetriever{passages: makePassages(
		"第十七条 十八周岁以上的自然人为成年人。",
		"第一千零四十七条 结婚年龄，男不得早于二十二周岁。",
		"第一百八十八条 诉讼时效期间为三年。",
		"第一千一百二十一条 继承从被继承人死亡时开始。",
	)}

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockGrader().GradeFunc = func(ctx context.Context, question, passage string) (ai.Relevance, error) {
		if strings.Contains(passage, "成年人") {
			return ai.RelevanceRelevant, nil
		}
		return ai.RelevanceNotRelevant, nil
	}
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, question string, passages []string) (string, error) {
		require.Len(t, passages, 1)
		return "十八周岁以上的自然人为成年人。", nil
	}

	controller, err := NewController(retriever, provider)
	require.NoError(t, err)
	defer controller.Release()

	monitor := &recordingMonitor{}
	answer, err := controller.AnswerWithMonitor(context.Background(), "民法典规定的成年年龄是多少", monitor)
	require.NoError(t, err)

	assert.Equal(t, "十八周岁以上的自然人为成年人。", answer)
	assert.Equal(t, 1, retriever.callCount)
	assert.Empty(t, monitor.rewrites, "no rewrite cycle should run when a passage is relevant")
	assert.Equal(t, 1, monitor.relevant)
	assert.Equal(t, 3, monitor.notRelevant)
}

func TestAnswer_NoRelevantPassagesTriggersRewrite(t *testing.T) {
	retriever := &stubRetriever{passages: makePassages("a", "b", "c", "d")}

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockGrader().GradeFunc = func(ctx context.Context, question, passage string) (ai.Relevance, error) {
		return ai.RelevanceNotRelevant, nil
	}
	rewriteCalls := 0
	provider.GetMockRewriter().RewriteFunc = func(ctx context.Context, question string) (string, error) {
		rewriteCalls++
		return question + " (rewritten)", nil
	}

	controller, err := NewController(retriever, provider)
	require.NoError(t, err)
	defer controller.Release()

	monitor := &recordingMonitor{}
	answer, err := controller.AnswerWithMonitor(context.Background(), "xyz123nonsense", monitor)
	require.NoError(t, err)

	// 3 rewrite cycles, then forced generation with empty context.
	assert.Equal(t, DefaultMaxRetries, rewriteCalls)
	assert.Equal(t, DefaultMaxRetries+1, retriever.callCount)
	assert.Equal(t, mock.DontKnowAnswer, answer)
	assert.Equal(t, []int{1, 2, 3}, monitor.retryAtRewrite)

	// Each retrieval after the first uses the rewritten query.
	assert.Equal(t, "xyz123nonsense", retriever.queries[0])
	assert.Equal(t, "xyz123nonsense (rewritten)", retriever.queries[1])
}

func TestAnswer_RetryCountNeverExceedsCeiling(t *testing.T) {
	for _, maxRetries := range []int{0, 1, 3, 5} {
		retriever := &stubRetriever{passages: makePassages("a")}

		provider := mock.NewMockProvider().(*mock.MockProvider)
		provider.GetMockGrader().GradeFunc = func(ctx context.Context, question, passage string) (ai.Relevance, error) {
			return ai.RelevanceNotRelevant, nil
		}

		controller, err := NewController(retriever, provider, WithMaxRetries(maxRetries))
		require.NoError(t, err)

		monitor := &recordingMonitor{}
		_, err = controller.AnswerWithMonitor(context.Background(), "question", monitor)
		require.NoError(t, err)

		assert.Len(t, monitor.rewrites, maxRetries)
		for _, retry := range monitor.retryAtRewrite {
			assert.LessOrEqual(t, retry, maxRetries)
		}
		controller.Release()
	}
}

func TestAnswer_IndeterminateJudgmentsAreDroppedNotFatal(t *testing.T) {
	retriever := &stubRetriever{passages: makePassages("one", "two", "three", "four")}

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockGrader().GradeFunc = func(ctx context.Context, question, passage string) (ai.Relevance, error) {
		switch passage {
		case "one", "three":
			return ai.RelevanceIndeterminate, nil
		case "two":
			return ai.RelevanceRelevant, nil
		default:
			return ai.RelevanceNotRelevant, nil
		}
	}
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, question string, passages []string) (string, error) {
		require.Equal(t, []string{"two"}, passages)
		return "answer", nil
	}

	controller, err := NewController(retriever, provider)
	require.NoError(t, err)
	defer controller.Release()

	monitor := &recordingMonitor{}
	answer, err := controller.AnswerWithMonitor(context.Background(), "question", monitor)
	require.NoError(t, err)

	assert.Equal(t, "answer", answer)
	assert.Equal(t, 2, monitor.indeterminate)
	assert.Equal(t, 1, monitor.relevant)
	assert.Equal(t, 1, monitor.notRelevant)
	assert.Empty(t, monitor.rewrites)
}

func TestAnswer_GraderTransportErrorDropsPassage(t *testing.T) {
	retriever := &stubRetriever{passages: makePassages("good", "broken")}

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockGrader().GradeFunc = func(ctx context.Context, question, passage string) (ai.Relevance, error) {
		if passage == "broken" {
			return ai.RelevanceIndeterminate, errors.New("connection refused")
		}
		return ai.RelevanceRelevant, nil
	}
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, question string, passages []string) (string, error) {
		require.Equal(t, []string{"good"}, passages)
		return "answer", nil
	}

	controller, err := NewController(retriever, provider)
	require.NoError(t, err)
	defer controller.Release()

	answer, err := controller.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
}

func TestAnswer_GradingPreservesRetrievalOrder(t *testing.T) {
	// Many passages with a slow grader exercises the fan-out path.
	contents := make([]string, 20)
	for i := range contents {
		contents[i] = string(rune('a' + i))
	}
	retriever := &stubRetriever{passages: makePassages(contents...)}

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockGrader().GradeFunc = func(ctx context.Context, question, passage string) (ai.Relevance, error) {
		// Keep every other passage.
		if (passage[0]-'a')%2 == 0 {
			return ai.RelevanceRelevant, nil
		}
		return ai.RelevanceNotRelevant, nil
	}

	var got []string
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, question string, passages []string) (string, error) {
		got = passages
		return "answer", nil
	}

	controller, err := NewController(retriever, provider, WithGradeConcurrency(8))
	require.NoError(t, err)
	defer controller.Release()

	_, err = controller.Answer(context.Background(), "question")
	require.NoError(t, err)

	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i], "filtered passages must keep retrieval order")
	}
}

func TestAnswer_FatalErrors(t *testing.T) {
	t.Run("retrieval failure", func(t *testing.T) {
		retriever := &stubRetriever{err: errors.New("index unavailable")}
		controller, err := NewController(retriever, mock.NewMockProvider())
		require.NoError(t, err)
		defer controller.Release()

		_, err = controller.Answer(context.Background(), "question")
		assert.ErrorIs(t, err, ErrRetrievalFailed)
	})

	t.Run("rewrite failure", func(t *testing.T) {
		retriever := &stubRetriever{passages: makePassages("a")}
		provider := mock.NewMockProvider().(*mock.MockProvider)
		provider.GetMockGrader().GradeFunc = func(ctx context.Context, question, passage string) (ai.Relevance, error) {
			return ai.RelevanceNotRelevant, nil
		}
		provider.GetMockRewriter().RewriteFunc = func(ctx context.Context, question string) (string, error) {
			return "", errors.New("model overloaded")
		}

		controller, err := NewController(retriever, provider)
		require.NoError(t, err)
		defer controller.Release()

		_, err = controller.Answer(context.Background(), "question")
		assert.ErrorIs(t, err, ErrRewriteFailed)
	})

	t.Run("generation failure", func(t *testing.T) {
		retriever := &stubRetriever{passages: makePassages("a")}
		provider := mock.NewMockProvider().(*mock.MockProvider)
		provider.GetMockGrader().GradeFunc = func(ctx context.Context, question, passage string) (ai.Relevance, error) {
			return ai.RelevanceRelevant, nil
		}
		provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, question string, passages []string) (string, error) {
			return "", errors.New("model overloaded")
		}

		controller, err := NewController(retriever, provider)
		require.NoError(t, err)
		defer controller.Release()

		_, err = controller.Answer(context.Background(), "question")
		assert.ErrorIs(t, err, ErrGenerationFailed)
	})
}

func TestAnswer_EmptyRetrievalStillRewrites(t *testing.T) {
	retriever := &stubRetriever{}

	provider := mock.NewMockProvider().(*mock.MockProvider)

	controller, err := NewController(retriever, provider, WithMaxRetries(1))
	require.NoError(t, err)
	defer controller.Release()

	monitor := &recordingMonitor{}
	answer, err := controller.AnswerWithMonitor(context.Background(), "question", monitor)
	require.NoError(t, err)

	assert.Len(t, monitor.rewrites, 1)
	assert.Equal(t, mock.DontKnowAnswer, answer)
}

func TestAnswer_EmptyRewriteIsDegenerateButNotFatal(t *testing.T) {
	retriever := &stubRetriever{}

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockRewriter().RewriteFunc = func(ctx context.Context, question string) (string, error) {
		return "", nil
	}

	controller, err := NewController(retriever, provider, WithMaxRetries(1))
	require.NoError(t, err)
	defer controller.Release()

	answer, err := controller.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, mock.DontKnowAnswer, answer)
	assert.Equal(t, "", retriever.queries[1])
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateRetrieve: "retrieve",
		StateGrade:    "grade",
		StateDecide:   "decide",
		StateRewrite:  "rewrite",
		StateGenerate: "generate",
		StateDone:     "done",
		State(99):     "unknown",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}

func TestAnswer_CancellationDuringGradingSurfacesAsContextError(t *testing.T) {
	retriever := &stubRetriever{passages: makePassages(
		"第一条 为了保护民事主体的合法权益。",
		"第二条 民法调整平等主体之间的关系。",
		"第三条 民事权益受法律保护。",
	)}
	provider := mock.NewMockProvider().(*mock.MockProvider)

	ctx, cancel := context.WithCancel(context.Background())
	provider.GetMockGrader().GradeFunc = func(ctx context.Context, question, passage string) (ai.Relevance, error) {
		cancel()
		return ai.RelevanceIndeterminate, ctx.Err()
	}
	provider.GetMockRewriter().RewriteFunc = func(ctx context.Context, question string) (string, error) {
		t.Error("rewriter should not run after cancellation")
		return question, nil
	}

	controller, err := NewController(retriever, provider)
	require.NoError(t, err)
	defer controller.Release()

	monitor := &recordingMonitor{}
	_, err = controller.AnswerWithMonitor(ctx, "成年的年龄是多少？", monitor)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRewriteFailed)
	assert.Zero(t, monitor.indeterminate, "cancelled judgments must not be reported as indeterminate")
	assert.Empty(t, monitor.rewrites)
}

func TestAnswer_CancellationBeforeRetrievalSurfacesAsContextError(t *testing.T) {
	retriever := &stubRetriever{passages: makePassages("第一条 基本规定。")}
	provider := mock.NewMockProvider()

	controller, err := NewController(retriever, provider)
	require.NoError(t, err)
	defer controller.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = controller.Answer(ctx, "任意问题")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, retriever.callCount)
}
