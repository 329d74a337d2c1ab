package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseModeDefaultsToTechnical(t *testing.T) {
	cases := map[string]Mode{
		"technical":   Technical,
		"behavioral":  Behavioral,
		"Behavioral":  Technical,
		" behavioral": Technical,
		"":            Technical,
		"system":      Technical,
	}
	for raw, want := range cases {
		require.Equal(t, want, ParseMode(raw), "ParseMode(%q)", raw)
	}
}

func TestClampQuestions(t *testing.T) {
	require.Equal(t, 1, ClampQuestions(0))
	require.Equal(t, 10, ClampQuestions(42))
	require.Equal(t, 4, ClampQuestions(4))
}

func TestPendingQuestion(t *testing.T) {
	answer := "a stack is LIFO"
	session := &Session{
		NumQuestions: 2,
		History: []HistoryEntry{
			{Question: Question{ID: "q1"}, Answer: &answer, Evaluation: &Evaluation{Score: 5}},
			{Question: Question{ID: "q2"}},
		},
		CurrentQuestionIndex: 1,
	}

	entry, ok := session.PendingQuestion()
	require.True(t, ok)
	require.Equal(t, "q2", entry.Question.ID)

	end := time.Now()
	session.EndTime = &end
	_, ok = session.PendingQuestion()
	require.False(t, ok, "completed session must not have a pending question")
}

func TestCloneIsDeep(t *testing.T) {
	answer := "original"
	session := &Session{
		History: []HistoryEntry{{Answer: &answer, Evaluation: &Evaluation{Score: 4}}},
	}

	cp := session.Clone()
	*cp.History[0].Answer = "changed"
	cp.History[0].Evaluation.Score = 9

	require.Equal(t, "original", *session.History[0].Answer)
	require.Equal(t, 4, session.History[0].Evaluation.Score)
}
