package interview

import "time"

const (
	MinQuestions     = 1
	MaxQuestions     = 10
	DefaultQuestions = 3
	DefaultRole      = "Software Engineer"
)

// Session is one interview attempt.
//
// While in progress CurrentQuestionIndex < len(History) <= NumQuestions. EndTime
// is set exactly when CurrentQuestionIndex reaches NumQuestions; a session
// completed early after a failed question keeps its shorter History, so only
// len(History) <= NumQuestions holds after completion.
type Session struct {
	SessionID            string         `json:"sessionId"`
	UserID               string         `json:"userId"`
	Role                 string         `json:"role"`
	Mode                 Mode           `json:"mode"`
	NumQuestions         int            `json:"numQuestions"`
	History              []HistoryEntry `json:"history"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	StartTime            time.Time      `json:"startTime"`
	EndTime              *time.Time     `json:"endTime"`
}

// ClampQuestions bounds n to [MinQuestions, MaxQuestions].
func ClampQuestions(n int) int {
	if n < MinQuestions {
		return MinQuestions
	}
	if n > MaxQuestions {
		return MaxQuestions
	}
	return n
}

// Completed reports whether the session reached its terminal state.
func (s *Session) Completed() bool {
	return s.EndTime != nil
}

// PendingQuestion returns the entry awaiting an answer, if any.
func (s *Session) PendingQuestion() (*HistoryEntry, bool) {
	if s.Completed() || s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.History) {
		return nil, false
	}
	entry := &s.History[s.CurrentQuestionIndex]
	if entry.Answer != nil {
		return nil, false
	}
	return entry, true
}

// AnsweredEntries returns the entries holding both an answer and an evaluation.
func (s *Session) AnsweredEntries() []HistoryEntry {
	return Answered(s.History)
}

// Answered filters history down to fully answered entries.
func Answered(history []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(history))
	for _, entry := range history {
		if entry.Answered() {
			out = append(out, entry)
		}
	}
	return out
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.History = make([]HistoryEntry, len(s.History))
	for i, entry := range s.History {
		if entry.Answer != nil {
			answer := *entry.Answer
			entry.Answer = &answer
		}
		if entry.Evaluation != nil {
			eval := *entry.Evaluation
			entry.Evaluation = &eval
		}
		cp.History[i] = entry
	}
	if s.EndTime != nil {
		end := *s.EndTime
		cp.EndTime = &end
	}
	return &cp
}
