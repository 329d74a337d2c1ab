package live

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	interviewHandler "github.com/zhouzirui/mock-interview/backend/internal/handler/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
	interviewService "github.com/zhouzirui/mock-interview/backend/internal/service/interview"
)

const (
	defaultReadTimeout = 60 * time.Second
	pingInterval       = 54 * time.Second
	writeTimeout       = 10 * time.Second
)

// Service 实时通道所需的面试业务接口
type Service interface {
	SubmitAnswer(ctx context.Context, sessionID, answer string) (interviewService.SubmitResult, error)
	GetSummary(ctx context.Context, sessionID string) (interview.SummaryReport, error)
	Snapshot(ctx context.Context, sessionID string) (*interview.Session, error)
}

// WebSocketHandler 实时面试的WebSocket处理器
type WebSocketHandler struct {
	svc         Service
	upgrader    websocket.Upgrader
	readTimeout time.Duration
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(svc Service) *WebSocketHandler {
	return &WebSocketHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		readTimeout: defaultReadTimeout,
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/interview/{sessionId}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

type answerMessage struct {
	Answer string `json:"answer"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	session, err := h.svc.Snapshot(r.Context(), sessionID)
	if err != nil {
		status, message := interviewHandler.StatusFor(err, "session unavailable")
		http.Error(w, message, status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.sendInfo(conn, sessionID, stateData("connected", session))

	for {
		// handling a message may take longer than the idle timeout
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))

		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(conn, sessionID, "session mismatch")
			continue
		}

		h.handleMessage(ctx, conn, sessionID, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, sessionID string, msg *inboundMessage) {
	switch msg.Type {
	case "answer":
		var payload answerMessage
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				h.sendError(conn, sessionID, "invalid answer payload")
				return
			}
		}

		result, err := h.svc.SubmitAnswer(ctx, sessionID, payload.Answer)
		if err != nil {
			h.sendServiceError(conn, sessionID, err, "Failed to process answer")
			return
		}
		h.sendInfo(conn, sessionID, map[string]any{
			"type":   "feedback",
			"result": interviewHandler.NewSubmitResponse(result),
		})

	case "state":
		session, err := h.svc.Snapshot(ctx, sessionID)
		if err != nil {
			h.sendServiceError(conn, sessionID, err, "session unavailable")
			return
		}
		h.sendInfo(conn, sessionID, stateData("state", session))

	case "summary":
		report, err := h.svc.GetSummary(ctx, sessionID)
		if err != nil {
			h.sendServiceError(conn, sessionID, err, "Failed to generate summary")
			return
		}
		h.sendInfo(conn, sessionID, map[string]any{
			"type":    "summary",
			"summary": report,
		})

	default:
		h.sendError(conn, sessionID, "unsupported message type: "+msg.Type)
	}
}

// stateData 描述当前待回答的问题与进度
func stateData(kind string, session *interview.Session) map[string]any {
	data := map[string]any{
		"type":           kind,
		"role":           session.Role,
		"mode":           session.Mode,
		"totalQuestions": session.NumQuestions,
		"answered":       len(session.AnsweredEntries()),
		"completed":      session.Completed(),
	}
	if pending, ok := session.PendingQuestion(); ok {
		data["question"] = pending.Question.Text
		data["questionNumber"] = session.CurrentQuestionIndex + 1
	}
	return data
}

func (h *WebSocketHandler) sendInfo(conn *websocket.Conn, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write info failed: %v", err)
	}
}

func (h *WebSocketHandler) sendServiceError(conn *websocket.Conn, sessionID string, err error, fallback string) {
	status, message := interviewHandler.StatusFor(err, fallback)
	if status == http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		log.Printf("[websocket] session=%s request failed: %v", sessionID, err)
	}
	h.sendError(conn, sessionID, message)
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, sessionID, message string) {
	msg := outgoingMessage{
		Type:      "error",
		SessionID: sessionID,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// WriteControl may run concurrently with the JSON writers.
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
