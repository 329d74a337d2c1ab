package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/store"
)

type stubGenerator struct {
	mu            sync.Mutex
	questionCalls int
	failQuestion  func(call int) bool
	failEvaluate  bool
	failSummary   bool
	score         int
}

func (g *stubGenerator) GenerateQuestion(_ context.Context, _ string, mode interview.Mode, history []interview.HistoryEntry) (interview.Question, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.questionCalls++
	if g.failQuestion != nil && g.failQuestion(g.questionCalls) {
		return interview.Question{}, errors.New("pool exhausted")
	}
	return interview.Question{
		ID:       fmt.Sprintf("q%d", len(history)+1),
		Text:     fmt.Sprintf("Question %d", len(history)+1),
		Category: mode,
		Source:   interview.SourceFallback,
	}, nil
}

func (g *stubGenerator) EvaluateAnswer(context.Context, string, string, string) (interview.Evaluation, error) {
	if g.failEvaluate {
		return interview.Evaluation{}, errors.New("provider down")
	}
	score := g.score
	if score == 0 {
		score = 7
	}
	return interview.Evaluation{Feedback: "ok", Score: score, Clarity: score, Correctness: score, Completeness: score}, nil
}

func (g *stubGenerator) GenerateSummary(_ context.Context, history []interview.HistoryEntry) (interview.Summary, error) {
	if g.failSummary {
		return interview.Summary{}, errors.New("summary failed")
	}
	return interview.Summary{Strengths: []string{"s"}, AreasForImprovement: []string{"a"}, SuggestedResources: []string{"r"}, FinalScore: "7.0/10"}, nil
}

type failingSaveStore struct {
	*store.MemoryStore
	fail bool
}

func (f *failingSaveStore) Save(ctx context.Context, session *interview.Session) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, session)
}

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestService(gen Generator, st store.Store) *Service {
	if st == nil {
		st = store.NewMemory()
	}
	return NewService(st, gen, WithClock(func() time.Time { return fixedNow }))
}

func intPtr(v int) *int { return &v }

func TestStartDefaults(t *testing.T) {
	st := store.NewMemory()
	svc := newTestService(&stubGenerator{}, st)

	res, err := svc.Start(context.Background(), StartInput{Mode: "unknown"})
	require.NoError(t, err)
	require.Equal(t, 3, res.NumQuestions)
	require.Equal(t, 1, res.QuestionNumber)
	require.Equal(t, 3, res.TotalQuestions)
	require.Equal(t, msgStarted, res.Message)
	require.Equal(t, "Question 1", res.Question.Text)

	session, err := st.Get(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.Equal(t, interview.DefaultRole, session.Role)
	require.Equal(t, interview.Technical, session.Mode)
	require.Len(t, session.History, 1)
	require.Zero(t, session.CurrentQuestionIndex)
	require.Equal(t, fixedNow, session.StartTime)
	require.NotEmpty(t, session.UserID)
	require.Nil(t, session.EndTime)
}

func TestStartClampsQuestionCount(t *testing.T) {
	svc := newTestService(&stubGenerator{}, nil)

	res, err := svc.Start(context.Background(), StartInput{NumQuestions: intPtr(42)})
	require.NoError(t, err)
	require.Equal(t, interview.MaxQuestions, res.NumQuestions)

	res, err = svc.Start(context.Background(), StartInput{NumQuestions: intPtr(0)})
	require.NoError(t, err)
	require.Equal(t, interview.MinQuestions, res.NumQuestions)
}

func TestStartGenerationFailure(t *testing.T) {
	svc := newTestService(&stubGenerator{failQuestion: func(int) bool { return true }}, nil)

	_, err := svc.Start(context.Background(), StartInput{})
	require.ErrorIs(t, err, ErrGeneration)
}

func TestStartPersistenceFailure(t *testing.T) {
	svc := newTestService(&stubGenerator{}, &failingSaveStore{MemoryStore: store.NewMemory(), fail: true})

	_, err := svc.Start(context.Background(), StartInput{})
	require.ErrorIs(t, err, ErrPersistence)
}

func TestFullInterviewFlow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(&stubGenerator{}, st)

	start, err := svc.Start(ctx, StartInput{Role: "Go Developer", Mode: "behavioral", NumQuestions: intPtr(2)})
	require.NoError(t, err)

	first, err := svc.SubmitAnswer(ctx, start.SessionID, "  my first answer ")
	require.NoError(t, err)
	require.False(t, first.Completed)
	require.Equal(t, msgSubmitted, first.Message)
	require.NotNil(t, first.NextQuestion)
	require.Equal(t, "Question 2", first.NextQuestion.Text)
	require.Equal(t, 2, first.QuestionNumber)
	require.Equal(t, 2, first.TotalQuestions)

	second, err := svc.SubmitAnswer(ctx, start.SessionID, "my second answer")
	require.NoError(t, err)
	require.True(t, second.Completed)
	require.Equal(t, msgCompleted, second.Message)
	require.Nil(t, second.NextQuestion)

	session, err := st.Get(ctx, start.SessionID)
	require.NoError(t, err)
	require.Equal(t, 2, session.CurrentQuestionIndex)
	require.Len(t, session.History, 2)
	require.NotNil(t, session.EndTime)
	require.Equal(t, "my first answer", *session.History[0].Answer)

	_, err = svc.SubmitAnswer(ctx, start.SessionID, "one more")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, msgNoCurrentQuestion, inputErr.Message)
	require.ErrorIs(t, err, ErrInvalidInput)

	report, err := svc.GetSummary(ctx, start.SessionID)
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalQuestions)
	require.Equal(t, "Go Developer", report.Role)
	require.NotNil(t, report.CompletedAt)
}

func TestSingleQuestionInterviewCompletesImmediately(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{}
	svc := newTestService(gen, nil)

	start, err := svc.Start(ctx, StartInput{NumQuestions: intPtr(1)})
	require.NoError(t, err)

	res, err := svc.SubmitAnswer(ctx, start.SessionID, "answer")
	require.NoError(t, err)
	require.True(t, res.Completed)
	require.Equal(t, 1, gen.questionCalls)
}

func TestSubmitAnswerValidation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(&stubGenerator{}, st)

	start, err := svc.Start(ctx, StartInput{})
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(ctx, "  ", "answer")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SubmitAnswer(ctx, start.SessionID, "   ")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, msgAnswerRequired, inputErr.Message)

	session, err := st.Get(ctx, start.SessionID)
	require.NoError(t, err)
	require.Nil(t, session.History[0].Answer)

	_, err = svc.SubmitAnswer(ctx, "missing", "answer")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEvaluationFailureUsesTechnicalIssueFeedback(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&stubGenerator{failEvaluate: true}, nil)

	start, err := svc.Start(ctx, StartInput{})
	require.NoError(t, err)

	res, err := svc.SubmitAnswer(ctx, start.SessionID, "answer")
	require.NoError(t, err)
	require.Equal(t, technicalIssueEvaluation(), res.Evaluation)
	require.False(t, res.Completed)
}

func TestNextQuestionFailureForcesCompletion(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	gen := &stubGenerator{failQuestion: func(call int) bool { return call > 1 }}
	svc := newTestService(gen, st)

	start, err := svc.Start(ctx, StartInput{NumQuestions: intPtr(3)})
	require.NoError(t, err)

	res, err := svc.SubmitAnswer(ctx, start.SessionID, "answer")
	require.NoError(t, err)
	require.True(t, res.Completed)
	require.Equal(t, msgForcedCompleted, res.Message)

	session, err := st.Get(ctx, start.SessionID)
	require.NoError(t, err)
	require.Equal(t, 3, session.CurrentQuestionIndex)
	require.Len(t, session.History, 1)
	require.NotNil(t, session.EndTime)
	require.True(t, session.Completed())
	_, pending := session.PendingQuestion()
	require.False(t, pending)
}

func TestSubmitPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	st := &failingSaveStore{MemoryStore: store.NewMemory()}
	svc := newTestService(&stubGenerator{}, st)

	start, err := svc.Start(ctx, StartInput{})
	require.NoError(t, err)

	st.fail = true
	_, err = svc.SubmitAnswer(ctx, start.SessionID, "answer")
	require.ErrorIs(t, err, ErrPersistence)
}

func TestGetSummaryFallbackOnError(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&stubGenerator{failSummary: true, score: 8}, nil)

	start, err := svc.Start(ctx, StartInput{NumQuestions: intPtr(2)})
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, start.SessionID, "answer")
	require.NoError(t, err)

	report, err := svc.GetSummary(ctx, start.SessionID)
	require.NoError(t, err)
	require.Equal(t, []string{"Completed interview session"}, report.Strengths)
	require.Equal(t, "8.0/10", report.FinalScore)
	require.Equal(t, 1, report.TotalQuestions)
	require.Nil(t, report.CompletedAt)

	_, err = svc.GetSummary(ctx, "")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.GetSummary(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentSubmitsAreSerialized(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(&stubGenerator{}, st)

	start, err := svc.Start(ctx, StartInput{NumQuestions: intPtr(10)})
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SubmitAnswer(ctx, start.SessionID, fmt.Sprintf("answer %d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	session, err := st.Get(ctx, start.SessionID)
	require.NoError(t, err)
	require.Len(t, session.History, 10)
	require.Len(t, session.AnsweredEntries(), 10)
	require.True(t, session.Completed())
	require.Zero(t, svc.locks.size())
}
