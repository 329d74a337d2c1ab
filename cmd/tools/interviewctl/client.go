package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	interviewHandler "github.com/zhouzirui/mock-interview/backend/internal/handler/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
	"github.com/zhouzirui/mock-interview/backend/pkg/utils"
)

// apiClient talks to a running interview backend over HTTP.
type apiClient struct {
	client *resty.Client
}

type startRequest struct {
	Role         string `json:"role,omitempty"`
	Mode         string `json:"mode,omitempty"`
	NumQuestions int    `json:"num_questions,omitempty"`
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

type clearResponse struct {
	Message string `json:"message"`
	Cleared struct {
		Questions   int `json:"questions"`
		Evaluations int `json:"evaluations"`
	} `json:"cleared"`
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	return &apiClient{client: client}
}

func (c *apiClient) Start(ctx context.Context, req startRequest) (startResponse, error) {
	var out startResponse
	err := c.do(ctx, resty.MethodPost, "/start_interview", req, &out)
	return out, err
}

func (c *apiClient) Submit(ctx context.Context, sessionID, answer string) (interviewHandler.SubmitResponse, error) {
	var out interviewHandler.SubmitResponse
	err := c.do(ctx, resty.MethodPost, "/submit_answer", submitRequest{SessionID: sessionID, Answer: answer}, &out)
	return out, err
}

func (c *apiClient) Summary(ctx context.Context, sessionID string) (interview.SummaryReport, error) {
	var out interview.SummaryReport
	err := c.do(ctx, resty.MethodGet, "/get_summary/"+sessionID, nil, &out)
	return out, err
}

func (c *apiClient) Status(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, resty.MethodGet, "/admin/api-status", nil, &out)
	return out, err
}

func (c *apiClient) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, resty.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *apiClient) ClearCache(ctx context.Context) (clearResponse, error) {
	var out clearResponse
	err := c.do(ctx, resty.MethodPost, "/admin/clear-cache", nil, &out)
	return out, err
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	req := c.client.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&utils.ErrorResponse{})
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		if apiErr, ok := resp.Error().(*utils.ErrorResponse); ok && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode())
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode())
	}
	return nil
}
