package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

const systemPrompt = "You are an experienced interviewer helping candidates practice. Follow the requested output format exactly."

const (
	questionTextLimit   = 200
	answerTextLimit     = 300
	transcriptTextLimit = 100
	transcriptEntries   = 3
)

// QuestionPrompt asks for one question, steering away from the last one asked.
func QuestionPrompt(role string, mode interview.Mode, history []interview.HistoryEntry) string {
	var context string
	if len(history) > 0 {
		context = " Avoid similar to: " + history[len(history)-1].Question.Text
	}

	if mode == interview.Behavioral {
		return fmt.Sprintf("STAR behavioral question for %s.%s Just the question:", role, context)
	}
	return fmt.Sprintf("Technical interview question for %s.%s Just the question:", role, context)
}

// EvaluationPrompt asks for a JSON score breakdown of one answer.
func EvaluationPrompt(role, question, answer string) string {
	return fmt.Sprintf(`Evaluate this %s interview answer:
Q: %s...
A: %s...

JSON format only: {"feedback": "brief constructive feedback", "score": 1-10, "clarity": 1-10, "correctness": 1-10, "completeness": 1-10}`,
		role, truncateRunes(question, questionTextLimit), truncateRunes(answer, answerTextLimit))
}

// SummaryPrompt asks for a coaching summary over the first answered entries.
func SummaryPrompt(answered []interview.HistoryEntry) string {
	lines := make([]string, 0, transcriptEntries)
	for i, entry := range answered {
		if i == transcriptEntries {
			break
		}
		score := 0
		if entry.Evaluation != nil {
			score = entry.Evaluation.Score
		}
		lines = append(lines, fmt.Sprintf("Q: %s... Score: %d/10", truncateRunes(entry.Question.Text, transcriptTextLimit), score))
	}

	return fmt.Sprintf(`Career coach summary for interview:
%s

JSON only: {"strengths": ["..."], "areas_for_improvement": ["..."], "suggested_resources": ["..."]}`, strings.Join(lines, "\n"))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
