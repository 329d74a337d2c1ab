package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mock-interview/backend/internal/handler"
	"github.com/zhouzirui/mock-interview/backend/internal/handler/admin"
	"github.com/zhouzirui/mock-interview/backend/internal/model/questionbank"
	"github.com/zhouzirui/mock-interview/backend/internal/service/generator"
	"github.com/zhouzirui/mock-interview/backend/internal/service/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/store"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gen := generator.New(nil, nil, nil, questionbank.MustDefault(), generator.Options{DevelopmentMode: true, MaxRetries: 1})
	svc := interview.NewService(store.NewMemory(), gen)
	router := handler.NewRouter(svc, gen, handler.RouterOptions{Info: admin.Info{AIProvider: "development", SessionStore: "memory"}})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestClientRunsInterview(t *testing.T) {
	server := newBackend(t)
	client := newAPIClient(server.URL, 5*time.Second)
	ctx := context.Background()

	started, err := client.Start(ctx, startRequest{Mode: "behavioral", NumQuestions: 1})
	require.NoError(t, err)
	require.NotEmpty(t, started.SessionID)
	require.Equal(t, 1, started.TotalQuestions)

	resp, err := client.Submit(ctx, started.SessionID, "I led the migration and kept the team aligned through weekly demos.")
	require.NoError(t, err)
	require.True(t, resp.Completed)

	report, err := client.Summary(ctx, started.SessionID)
	require.NoError(t, err)
	require.Equal(t, started.SessionID, report.SessionID)
	require.True(t, strings.HasSuffix(report.FinalScore, "/10"))

	status, err := client.Status(ctx)
	require.NoError(t, err)
	require.Contains(t, status, "api_usage")

	cleared, err := client.ClearCache(ctx)
	require.NoError(t, err)
	require.Equal(t, "Cache cleared successfully", cleared.Message)
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	server := newBackend(t)
	client := newAPIClient(server.URL, 5*time.Second)

	_, err := client.Submit(context.Background(), "missing", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Session not found")
	require.Contains(t, err.Error(), "404")
}

func TestClientReportsNonJSONErrors(t *testing.T) {
	r := chi.NewRouter()
	server := httptest.NewServer(r)
	defer server.Close()

	_, err := newAPIClient(server.URL, time.Second).Health(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestStatusCommandRendersPayload(t *testing.T) {
	server := newBackend(t)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"status", "--health", "--server", server.URL})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "healthy")
}

func TestValidateQuestionCount(t *testing.T) {
	require.NoError(t, validateQuestionCount("3"))
	require.Error(t, validateQuestionCount("0"))
	require.Error(t, validateQuestionCount("eleven"))
	require.Error(t, validateQuestionCount(3))
}
