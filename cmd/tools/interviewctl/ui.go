package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	interviewHandler "github.com/zhouzirui/mock-interview/backend/internal/handler/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	questionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1).
			Width(80)

	feedbackStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(0, 1).
			Width(80)

	summaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(0, 1).
			Width(80)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
)

func renderStart(resp startResponse) string {
	header := titleStyle.Render(resp.Message)
	meta := labelStyle.Render(fmt.Sprintf("session %s", resp.SessionID))
	return lipgloss.JoinVertical(lipgloss.Left, header, meta, renderQuestion(resp.Question, resp.QuestionNumber, resp.TotalQuestions))
}

func renderQuestion(text string, number, total int) string {
	label := labelStyle.Render(fmt.Sprintf("Question %d of %d", number, total))
	return questionStyle.Render(label + "\n" + text)
}

func renderFeedback(resp interviewHandler.SubmitResponse) string {
	scores := fmt.Sprintf("%s %s  clarity %d  correctness %d  completeness %d",
		labelStyle.Render("score"),
		scoreStyle.Render(fmt.Sprintf("%d/10", resp.Score)),
		resp.Clarity, resp.Correctness, resp.Completeness)

	out := feedbackStyle.Render(resp.Feedback + "\n" + scores)
	if resp.NextQuestion != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, renderQuestion(resp.NextQuestion, resp.QuestionNumber, resp.TotalQuestions))
	} else if resp.Completed {
		out = lipgloss.JoinVertical(lipgloss.Left, out, titleStyle.Render(resp.Message))
	}
	return out
}

func renderSummary(report interview.SummaryReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("role"), report.Role)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("final score"), scoreStyle.Render(report.FinalScore))
	writeList(&b, "Strengths", report.Strengths)
	writeList(&b, "Areas for improvement", report.AreasForImprovement)
	writeList(&b, "Suggested resources", report.SuggestedResources)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Interview summary"),
		summaryStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func writeList(b *strings.Builder, title string, items []string) {
	b.WriteString("\n" + titleStyle.Render(title) + "\n")
	for _, item := range items {
		b.WriteString("  • " + item + "\n")
	}
}

// renderStatus flattens one level of nested maps into sorted key/value lines.
func renderStatus(title string, payload map[string]any) string {
	var lines []string
	for section, value := range payload {
		switch v := value.(type) {
		case map[string]any:
			for key, inner := range v {
				lines = append(lines, fmt.Sprintf("%s %v", labelStyle.Render(section+"."+key), inner))
			}
		case []any:
			for _, inner := range v {
				lines = append(lines, fmt.Sprintf("%s %v", labelStyle.Render(section), inner))
			}
		default:
			lines = append(lines, fmt.Sprintf("%s %v", labelStyle.Render(section), v))
		}
	}
	sort.Strings(lines)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), summaryStyle.Render(strings.Join(lines, "\n")))
}
