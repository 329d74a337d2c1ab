package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/mock-interview/backend/internal/analysis/scoring"
	"github.com/zhouzirui/mock-interview/backend/internal/metrics"
	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/store"
)

const (
	msgStarted         = "Interview started successfully"
	msgSubmitted       = "Answer submitted successfully"
	msgCompleted       = "Interview completed! Get your summary."
	msgForcedCompleted = "Interview completed due to technical issue."

	msgSessionIDRequired = "Session ID is required"
	msgAnswerRequired    = "Answer cannot be empty"
	msgNoCurrentQuestion = "No current question to answer"
)

// Generator is the subset of the question generator the state machine needs.
type Generator interface {
	GenerateQuestion(ctx context.Context, role string, mode interview.Mode, history []interview.HistoryEntry) (interview.Question, error)
	EvaluateAnswer(ctx context.Context, question, answer, role string) (interview.Evaluation, error)
	GenerateSummary(ctx context.Context, history []interview.HistoryEntry) (interview.Summary, error)
}

// StartInput is the raw request to begin an interview.
type StartInput struct {
	Role         string
	Mode         string
	NumQuestions *int
}

type StartResult struct {
	SessionID      string
	Question       interview.Question
	NumQuestions   int
	QuestionNumber int
	TotalQuestions int
	Message        string
}

type SubmitResult struct {
	Message        string
	Evaluation     interview.Evaluation
	Completed      bool
	NextQuestion   *interview.Question
	QuestionNumber int
	TotalQuestions int
}

// Service drives sessions from creation to completion.
type Service struct {
	store     store.Store
	generator Generator
	now       func() time.Time
	newID     func() string
	locks     *keyedMutex
}

type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, gen Generator, opts ...Option) *Service {
	svc := &Service{
		store:     st,
		generator: gen,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Start creates a session and asks the first question.
func (s *Service) Start(ctx context.Context, in StartInput) (StartResult, error) {
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = interview.DefaultRole
	}
	mode := interview.ParseMode(in.Mode)

	numQuestions := interview.DefaultQuestions
	if in.NumQuestions != nil {
		numQuestions = *in.NumQuestions
	}
	numQuestions = interview.ClampQuestions(numQuestions)

	first, err := s.generator.GenerateQuestion(ctx, role, mode, nil)
	if err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	session := &interview.Session{
		SessionID:    s.newID(),
		UserID:       s.newID(),
		Role:         role,
		Mode:         mode,
		NumQuestions: numQuestions,
		History:      []interview.HistoryEntry{{Question: first}},
		StartTime:    s.now(),
	}

	if err := s.store.Save(ctx, session); err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.IncSession("started")
	log.Printf("[interview] started session=%s role=%q mode=%s questions=%d source=%s", session.SessionID, role, mode, numQuestions, first.Source)

	return StartResult{
		SessionID:      session.SessionID,
		Question:       first,
		NumQuestions:   numQuestions,
		QuestionNumber: 1,
		TotalQuestions: numQuestions,
		Message:        msgStarted,
	}, nil
}

// SubmitAnswer evaluates the answer to the pending question and advances the session.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, answer string) (SubmitResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	answer = strings.TrimSpace(answer)
	if sessionID == "" {
		return SubmitResult{}, invalidInput(msgSessionIDRequired)
	}
	if answer == "" {
		return SubmitResult{}, invalidInput(msgAnswerRequired)
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}

	pending, ok := session.PendingQuestion()
	if !ok {
		return SubmitResult{}, invalidInput(msgNoCurrentQuestion)
	}

	evaluation, err := s.generator.EvaluateAnswer(ctx, pending.Question.Text, answer, session.Role)
	if err != nil {
		log.Printf("[interview] evaluation failed session=%s: %v", sessionID, err)
		evaluation = technicalIssueEvaluation()
	}

	pending.Answer = &answer
	pending.Evaluation = &evaluation
	metrics.IncSession("answered")

	result := SubmitResult{
		Message:    msgSubmitted,
		Evaluation: evaluation,
	}

	nextIndex := session.CurrentQuestionIndex + 1
	if nextIndex >= session.NumQuestions {
		s.complete(session, nextIndex)
		result.Message = msgCompleted
		result.Completed = true
		metrics.IncSession("completed")
	} else {
		next, err := s.generator.GenerateQuestion(ctx, session.Role, session.Mode, session.History)
		if err != nil {
			log.Printf("[interview] next question failed session=%s, completing early: %v", sessionID, err)
			s.complete(session, session.NumQuestions)
			result.Message = msgForcedCompleted
			result.Completed = true
			metrics.IncSession("forced_complete")
		} else {
			session.History = append(session.History, interview.HistoryEntry{Question: next})
			session.CurrentQuestionIndex = nextIndex
			result.NextQuestion = &next
			result.QuestionNumber = nextIndex + 1
			result.TotalQuestions = session.NumQuestions
		}
	}

	if err := s.store.Save(ctx, session); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return result, nil
}

// GetSummary reports on the session; it may be called before completion.
func (s *Service) GetSummary(ctx context.Context, sessionID string) (interview.SummaryReport, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return interview.SummaryReport{}, invalidInput(msgSessionIDRequired)
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return interview.SummaryReport{}, err
	}

	summary, err := s.generator.GenerateSummary(ctx, session.History)
	if err != nil {
		log.Printf("[interview] summary failed session=%s: %v", sessionID, err)
		summary = interview.Summary{
			Strengths:           []string{"Completed interview session"},
			AreasForImprovement: []string{"Continue practicing"},
			SuggestedResources:  []string{"Technical interview guides"},
			FinalScore:          scoring.FinalScore(session.History),
		}
	}

	return interview.SummaryReport{
		Summary:        summary,
		SessionID:      session.SessionID,
		Role:           session.Role,
		TotalQuestions: len(session.AnsweredEntries()),
		CompletedAt:    session.EndTime,
	}, nil
}

// Snapshot returns the stored session.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*interview.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, invalidInput(msgSessionIDRequired)
	}
	return s.load(ctx, sessionID)
}

func (s *Service) load(ctx context.Context, sessionID string) (*interview.Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return session, nil
}

func (s *Service) complete(session *interview.Session, index int) {
	end := s.now()
	session.CurrentQuestionIndex = index
	session.EndTime = &end
}

func technicalIssueEvaluation() interview.Evaluation {
	return interview.Evaluation{
		Feedback:     "Thank you for your answer. Due to a technical issue, detailed feedback is not available.",
		Score:        6,
		Clarity:      6,
		Correctness:  6,
		Completeness: 6,
	}
}
