package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var keywords = []string{"algorithm", "data", "structure", "function", "class", "method", "variable", "loop", "condition"}

func TestHeuristicLengthBuckets(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{words: 1, want: 3},
		{words: 4, want: 3},
		{words: 5, want: 5},
		{words: 19, want: 5},
		{words: 20, want: 7},
		{words: 49, want: 7},
		{words: 50, want: 8},
		{words: 120, want: 8},
	}

	for _, tc := range cases {
		answer := strings.TrimSpace(strings.Repeat("word ", tc.words))
		got := Heuristic(answer, keywords)
		require.Equal(t, tc.want, got.Score, "%d words", tc.words)
		require.Equal(t, got.Score, got.Clarity)
		require.Equal(t, got.Score, got.Completeness)
		require.Equal(t, max(5, got.Score-1), got.Correctness)
	}
}

func TestHeuristicKeywordBump(t *testing.T) {
	got := Heuristic("I would use a LOOP", keywords)
	require.Equal(t, 6, got.Score)
}

func TestHeuristicKeywordBumpIsCaseInsensitive(t *testing.T) {
	got := Heuristic("Use an Algorithm", keywords)
	require.Equal(t, 4, got.Score)
}

func TestHeuristicKeywordBumpCapsAtTen(t *testing.T) {
	answer := strings.Repeat("data ", 80)
	got := Heuristic(answer, keywords)
	require.Equal(t, 9, got.Score)
}

func TestCoerceScore(t *testing.T) {
	cases := []struct {
		raw  any
		want int
	}{
		{raw: float64(7), want: 7},
		{raw: 7.9, want: 7},
		{raw: "11", want: 10},
		{raw: " 8 ", want: 8},
		{raw: "abc", want: 5},
		{raw: nil, want: 5},
		{raw: float64(-3), want: 1},
		{raw: float64(0), want: 1},
		{raw: []any{1}, want: 5},
		{raw: true, want: 1},
		{raw: 1e19, want: 10},
		{raw: 1e300, want: 10},
		{raw: -1e19, want: 1},
		{raw: "1e19", want: 10},
		{raw: "99999999999999999999", want: 10},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CoerceScore(tc.raw), "CoerceScore(%#v)", tc.raw)
	}
}

func TestPlaceholder(t *testing.T) {
	got := Placeholder("Invalid input")
	require.Equal(t, 6, got.Score)
	require.Contains(t, got.Feedback, "Invalid input")
}
