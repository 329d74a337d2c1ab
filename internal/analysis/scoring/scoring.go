package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 5
)

type bucket struct {
	maxWords int
	score    int
	feedback string
}

// Buckets are checked in order; the last one catches everything longer.
var lengthBuckets = []bucket{
	{maxWords: 5, score: 3, feedback: "Your answer is quite brief. Try to provide more detailed explanations in future responses."},
	{maxWords: 20, score: 5, feedback: "Good start! Consider adding more details and examples to strengthen your answer."},
	{maxWords: 50, score: 7, feedback: "Well-structured answer with good detail. Continue this approach for comprehensive responses."},
	{maxWords: math.MaxInt, score: 8, feedback: "Comprehensive and detailed response. Great job providing thorough explanations."},
}

// Heuristic scores an answer without any model: length decides the base score
// and a technical keyword bumps it by one.
func Heuristic(answer string, keywords []string) interview.Evaluation {
	words := len(strings.Fields(answer))

	chosen := lengthBuckets[len(lengthBuckets)-1]
	for _, b := range lengthBuckets {
		if words < b.maxWords {
			chosen = b
			break
		}
	}

	score := chosen.score
	if containsKeyword(answer, keywords) {
		score = min(MaxScore, score+1)
	}

	return interview.Evaluation{
		Feedback:     chosen.feedback,
		Score:        score,
		Clarity:      score,
		Correctness:  max(5, score-1),
		Completeness: score,
	}
}

// Placeholder is returned when there is nothing meaningful to evaluate.
func Placeholder(reason string) interview.Evaluation {
	return interview.Evaluation{
		Feedback:     "Thank you for your answer. " + reason + " occurred - your participation is valued.",
		Score:        6,
		Clarity:      6,
		Correctness:  6,
		Completeness: 6,
	}
}

func containsKeyword(text string, keywords []string) bool {
	normalized := strings.ToLower(text)
	for _, word := range keywords {
		if word == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

// Clamp bounds a score to [MinScore, MaxScore].
func Clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// CoerceScore converts a loosely typed model value into a clamped integer score.
// Fractions truncate toward zero; anything unparsable yields DefaultScore.
func CoerceScore(raw any) int {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return DefaultScore
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return DefaultScore
		}
		f = parsed
	case bool:
		if v {
			f = 1
		}
	default:
		return DefaultScore
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultScore
	}
	// bound before converting; int(f) is undefined outside the int range
	f = math.Trunc(f)
	if f >= MaxScore {
		return MaxScore
	}
	if f <= MinScore {
		return MinScore
	}
	return int(f)
}
