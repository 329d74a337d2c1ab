package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

// NotAvailable is the final score reported when nothing has been answered.
const NotAvailable = "N/A"

// Average returns the mean score over answered entries and false when there are none.
func Average(history []interview.HistoryEntry) (decimal.Decimal, bool) {
	answered := interview.Answered(history)
	if len(answered) == 0 {
		return decimal.Zero, false
	}

	total := decimal.Zero
	for _, entry := range answered {
		total = total.Add(decimal.NewFromInt(int64(entry.Evaluation.Score)))
	}
	return total.Div(decimal.NewFromInt(int64(len(answered)))), true
}

// FinalScore formats the average as "7.5/10", or NotAvailable.
func FinalScore(history []interview.HistoryEntry) string {
	avg, ok := Average(history)
	if !ok {
		return NotAvailable
	}
	return avg.StringFixedBank(1) + "/10"
}
