package generator

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/mock-interview/backend/internal/analysis/scoring"
	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
	"github.com/zhouzirui/mock-interview/backend/pkg/utils"
)

// cleanQuestion strips whitespace and one pair of wrapping double quotes.
func cleanQuestion(raw string) string {
	text := strings.TrimSpace(raw)
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

func parseEvaluation(raw string) (interview.Evaluation, error) {
	obj, err := utils.ExtractJSONObject(raw)
	if err != nil {
		return interview.Evaluation{}, fmt.Errorf("parse evaluation: %w", err)
	}

	feedback := defaultFeedback
	if text, ok := obj["feedback"].(string); ok && strings.TrimSpace(text) != "" {
		feedback = strings.TrimSpace(text)
	}

	return interview.Evaluation{
		Feedback:     feedback,
		Score:        scoring.CoerceScore(obj["score"]),
		Clarity:      scoring.CoerceScore(obj["clarity"]),
		Correctness:  scoring.CoerceScore(obj["correctness"]),
		Completeness: scoring.CoerceScore(obj["completeness"]),
	}, nil
}

func parseSummary(raw string) (interview.Summary, error) {
	obj, err := utils.ExtractJSONObject(raw)
	if err != nil {
		return interview.Summary{}, fmt.Errorf("parse summary: %w", err)
	}

	return interview.Summary{
		Strengths:           stringList(obj["strengths"]),
		AreasForImprovement: stringList(obj["areas_for_improvement"]),
		SuggestedResources:  stringList(obj["suggested_resources"]),
	}, nil
}

// stringList keeps list values and replaces anything else with a marker entry.
func stringList(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return []string{notAssessed}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
