package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mock-interview/backend/internal/model/questionbank"
	"github.com/zhouzirui/mock-interview/backend/internal/service/generator"
	interviewService "github.com/zhouzirui/mock-interview/backend/internal/service/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/store"
)

func newInterviewService() *interviewService.Service {
	gen := generator.New(nil, nil, nil, questionbank.MustDefault(), generator.Options{DevelopmentMode: true, MaxRetries: 1})
	return interviewService.NewService(store.NewMemory(), gen)
}

func serve(t *testing.T, h *WebSocketHandler) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func setupServer(t *testing.T) (*httptest.Server, *interviewService.Service) {
	t.Helper()
	svc := newInterviewService()
	return serve(t, NewWebSocketHandler(svc)), svc
}

// slowService delays evaluation past the connection's idle timeout.
type slowService struct {
	*interviewService.Service
	delay time.Duration
}

func (s slowService) SubmitAnswer(ctx context.Context, sessionID, answer string) (interviewService.SubmitResult, error) {
	time.Sleep(s.delay)
	return s.Service.SubmitAnswer(ctx, sessionID, answer)
}

func dial(t *testing.T, server *httptest.Server, sessionID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/interview/" + sessionID
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) outgoingMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg outgoingMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestUnknownSessionRejectedBeforeUpgrade(t *testing.T) {
	server, _ := setupServer(t)

	_, resp, err := dial(t, server, "missing")
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLiveInterviewFlow(t *testing.T) {
	server, svc := setupServer(t)

	n := 2
	start, err := svc.Start(context.Background(), interviewService.StartInput{NumQuestions: &n})
	require.NoError(t, err)

	conn, _, err := dial(t, server, start.SessionID)
	require.NoError(t, err)
	defer conn.Close()

	connected := readMessage(t, conn)
	require.Equal(t, "result", connected.Type)
	data := connected.Data.(map[string]any)
	require.Equal(t, "connected", data["type"])
	require.Equal(t, start.Question.Text, data["question"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "answer", "data": map[string]string{"answer": "I would use a loop over the data."}}))
	feedback := readMessage(t, conn)
	data = feedback.Data.(map[string]any)
	require.Equal(t, "feedback", data["type"])
	result := data["result"].(map[string]any)
	require.Equal(t, false, result["completed"])
	next, _ := result["nextQuestion"].(string)
	require.NotEmpty(t, next)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "answer", "data": map[string]string{"answer": "   "}}))
	rejected := readMessage(t, conn)
	require.Equal(t, "error", rejected.Type)
	require.Equal(t, "Answer cannot be empty", rejected.Data.(map[string]any)["message"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "state"}))
	state := readMessage(t, conn).Data.(map[string]any)
	require.Equal(t, float64(2), state["questionNumber"])
	require.Equal(t, float64(1), state["answered"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "summary"}))
	summary := readMessage(t, conn).Data.(map[string]any)
	require.Equal(t, "summary", summary["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	require.Equal(t, "error", readMessage(t, conn).Type)
}

func TestSlowAnswerDoesNotExpireNextRead(t *testing.T) {
	svc := newInterviewService()
	h := NewWebSocketHandler(slowService{Service: svc, delay: 400 * time.Millisecond})
	h.readTimeout = 150 * time.Millisecond
	server := serve(t, h)

	n := 2
	start, err := svc.Start(context.Background(), interviewService.StartInput{NumQuestions: &n})
	require.NoError(t, err)

	conn, _, err := dial(t, server, start.SessionID)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "answer", "data": map[string]string{"answer": "Use a channel to hand off work."}}))
	require.Equal(t, "result", readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "state"}))
	state := readMessage(t, conn)
	require.Equal(t, "result", state.Type)
	require.Equal(t, "state", state.Data.(map[string]any)["type"])
}
