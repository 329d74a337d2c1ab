package store

import (
	"encoding/json"
	"log"
	"time"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

// record is the flat form shared by the persistent backends. History is kept
// as a JSON string column, matching the existing sessions table.
type record struct {
	SessionID            string  `json:"sessionId"`
	UserID               string  `json:"userId"`
	Role                 string  `json:"role"`
	Mode                 string  `json:"mode"`
	NumQuestions         int     `json:"numQuestions"`
	History              string  `json:"history"`
	CurrentQuestionIndex int     `json:"currentQuestionIndex"`
	StartTime            string  `json:"startTime"`
	EndTime              *string `json:"endTime"`
}

type storedEntry struct {
	Question   json.RawMessage       `json:"question"`
	Answer     *string               `json:"answer"`
	Evaluation *interview.Evaluation `json:"evaluation"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
}

func toRecord(session *interview.Session) (record, error) {
	history, err := encodeHistory(session.History)
	if err != nil {
		return record{}, err
	}

	rec := record{
		SessionID:            session.SessionID,
		UserID:               session.UserID,
		Role:                 session.Role,
		Mode:                 string(session.Mode),
		NumQuestions:         session.NumQuestions,
		History:              history,
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		StartTime:            session.StartTime.UTC().Format(time.RFC3339Nano),
	}
	if session.EndTime != nil {
		end := session.EndTime.UTC().Format(time.RFC3339Nano)
		rec.EndTime = &end
	}
	return rec, nil
}

func (r record) toSession() *interview.Session {
	session := &interview.Session{
		SessionID:            r.SessionID,
		UserID:               r.UserID,
		Role:                 r.Role,
		Mode:                 interview.ParseMode(r.Mode),
		NumQuestions:         r.NumQuestions,
		History:              decodeHistory(r.SessionID, r.History),
		CurrentQuestionIndex: r.CurrentQuestionIndex,
		StartTime:            parseTime(r.StartTime),
	}
	if r.EndTime != nil && *r.EndTime != "" {
		end := parseTime(*r.EndTime)
		session.EndTime = &end
	}
	return session
}

func encodeHistory(history []interview.HistoryEntry) (string, error) {
	if history == nil {
		history = []interview.HistoryEntry{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeHistory restores the ordered history; unreadable JSON yields an empty history.
func decodeHistory(sessionID, raw string) []interview.HistoryEntry {
	history := []interview.HistoryEntry{}
	if raw == "" {
		return history
	}

	var stored []storedEntry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Printf("[store] history for session %s is not valid json, using empty history: %v", sessionID, err)
		return history
	}

	for _, entry := range stored {
		history = append(history, interview.HistoryEntry{
			Question:   decodeQuestion(entry.Question),
			Answer:     entry.Answer,
			Evaluation: entry.Evaluation,
		})
	}
	return history
}

// decodeQuestion accepts a bare string, {"question": ...} or {"text": ...}.
func decodeQuestion(raw json.RawMessage) interview.Question {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return interview.Question{Text: text}
	}

	var obj struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		Question string `json:"question"`
		Category string `json:"category"`
		Source   string `json:"source"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return interview.Question{}
	}

	q := interview.Question{
		ID:     obj.ID,
		Text:   obj.Text,
		Source: interview.Source(obj.Source),
	}
	if q.Text == "" {
		q.Text = obj.Question
	}
	if obj.Category != "" {
		q.Category = interview.ParseMode(obj.Category)
	}
	return q
}

func parseTime(raw string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
