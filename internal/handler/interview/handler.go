package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
	interviewService "github.com/zhouzirui/mock-interview/backend/internal/service/interview"
	"github.com/zhouzirui/mock-interview/backend/pkg/utils"
)

const (
	errStartFailed      = "Failed to start interview. Please try again."
	errGenerationFailed = "Failed to generate interview question. Please try again."
	errCreateFailed     = "Failed to create session"
	errSubmitFailed     = "Failed to process answer"
	errSummaryFailed    = "Failed to generate summary"
	errSessionNotFound  = "Session not found"
	errInvalidBody      = "invalid request body"
)

// Service 抽象面试业务，便于测试与替换实现
type Service interface {
	Start(ctx context.Context, in interviewService.StartInput) (interviewService.StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (interviewService.SubmitResult, error)
	GetSummary(ctx context.Context, sessionID string) (interview.SummaryReport, error)
}

// Handler 面试流程的HTTP处理器
type Handler struct {
	svc Service
}

// New 创建面试处理器
func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册面试相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/start_interview", h.handleStart)
	r.Post("/submit_answer", h.handleSubmit)
	r.Get("/get_summary/{sessionId}", h.handleSummary)
}

type startRequest struct {
	Role         string          `json:"role"`
	Mode         string          `json:"mode"`
	NumQuestions json.RawMessage `json:"num_questions"`
}

type startResponse struct {
	SessionID      string `json:"sessionId"`
	Question       string `json:"question"`
	NumQuestions   int    `json:"numQuestions"`
	QuestionNumber int    `json:"questionNumber"`
	TotalQuestions int    `json:"totalQuestions"`
	Message        string `json:"message"`
}

type submitRequest struct {
	SessionID string `json:"sessionId"`
	Answer    string `json:"answer"`
}

// SubmitResponse is the wire shape of an answer submission.
type SubmitResponse struct {
	Message        string `json:"message"`
	Feedback       string `json:"feedback"`
	Score          int    `json:"score"`
	Clarity        int    `json:"clarity"`
	Correctness    int    `json:"correctness"`
	Completeness   int    `json:"completeness"`
	Completed      bool   `json:"completed"`
	NextQuestion   string `json:"nextQuestion,omitempty"`
	QuestionNumber int    `json:"questionNumber,omitempty"`
	TotalQuestions int    `json:"totalQuestions,omitempty"`
}

// handleStart 开始一场面试并返回第一题
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload startRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	numQuestions, err := parseNumQuestions(payload.NumQuestions)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Start(r.Context(), interviewService.StartInput{
		Role:         payload.Role,
		Mode:         payload.Mode,
		NumQuestions: numQuestions,
	})
	if err != nil {
		log.Printf("[interview] start failed: %v", err)
		switch {
		case errors.Is(err, interviewService.ErrGeneration):
			utils.RespondError(w, http.StatusInternalServerError, errGenerationFailed)
		case errors.Is(err, interviewService.ErrPersistence):
			utils.RespondError(w, http.StatusInternalServerError, errCreateFailed)
		default:
			utils.RespondError(w, http.StatusInternalServerError, errStartFailed)
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, startResponse{
		SessionID:      result.SessionID,
		Question:       result.Question.Text,
		NumQuestions:   result.NumQuestions,
		QuestionNumber: result.QuestionNumber,
		TotalQuestions: result.TotalQuestions,
		Message:        result.Message,
	})
}

// handleSubmit 提交答案并返回评分与下一题
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload submitRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	result, err := h.svc.SubmitAnswer(r.Context(), payload.SessionID, payload.Answer)
	if err != nil {
		respondServiceError(w, err, errSubmitFailed)
		return
	}

	utils.RespondJSON(w, http.StatusOK, NewSubmitResponse(result))
}

// handleSummary 返回面试总结
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetSummary(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		respondServiceError(w, err, errSummaryFailed)
		return
	}
	utils.RespondJSON(w, http.StatusOK, report)
}

// NewSubmitResponse flattens a submit result into the wire shape.
func NewSubmitResponse(result interviewService.SubmitResult) SubmitResponse {
	resp := SubmitResponse{
		Message:      result.Message,
		Feedback:     result.Evaluation.Feedback,
		Score:        result.Evaluation.Score,
		Clarity:      result.Evaluation.Clarity,
		Correctness:  result.Evaluation.Correctness,
		Completeness: result.Evaluation.Completeness,
		Completed:    result.Completed,
	}
	if result.NextQuestion != nil {
		resp.NextQuestion = result.NextQuestion.Text
		resp.QuestionNumber = result.QuestionNumber
		resp.TotalQuestions = result.TotalQuestions
	}
	return resp
}

// StatusFor maps service errors onto HTTP status codes and user-facing messages.
func StatusFor(err error, fallback string) (int, string) {
	var inputErr *interviewService.InputError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Message
	case errors.Is(err, interviewService.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, interviewService.ErrSessionNotFound):
		return http.StatusNotFound, errSessionNotFound
	default:
		return http.StatusInternalServerError, fallback
	}
}

func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	status, message := StatusFor(err, fallback)
	if status == http.StatusInternalServerError {
		log.Printf("[interview] request failed: %v", err)
	}
	utils.RespondError(w, status, message)
}

// parseNumQuestions accepts a JSON number or a numeric string.
func parseNumQuestions(raw json.RawMessage) (*int, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil, nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return toCount(number)
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return nil, fmt.Errorf("num_questions must be an integer")
	}
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return nil, fmt.Errorf("num_questions must be an integer")
	}
	return &n, nil
}

func toCount(number float64) (*int, error) {
	if math.IsNaN(number) || math.IsInf(number, 0) || math.Abs(number) > math.MaxInt32 {
		return nil, fmt.Errorf("num_questions must be an integer")
	}
	n := int(number)
	return &n, nil
}
