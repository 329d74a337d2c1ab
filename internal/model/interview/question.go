package interview

// Mode selects the interview flavour.
type Mode string

const (
	Technical  Mode = "technical"
	Behavioral Mode = "behavioral"
)

// ParseMode accepts the exact mode names; anything else is Technical.
func ParseMode(raw string) Mode {
	switch Mode(raw) {
	case Behavioral:
		return Behavioral
	default:
		return Technical
	}
}

// Source records where a question's text came from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Question is immutable once created.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category Mode   `json:"category"`
	Source   Source `json:"source"`
}

// Evaluation captures the score breakdown for one answer. Numeric fields are kept in [1,10].
type Evaluation struct {
	Feedback     string `json:"feedback"`
	Score        int    `json:"score"`
	Clarity      int    `json:"clarity"`
	Correctness  int    `json:"correctness"`
	Completeness int    `json:"completeness"`
}

// HistoryEntry pairs an asked question with the answer and evaluation once submitted.
type HistoryEntry struct {
	Question   Question    `json:"question"`
	Answer     *string     `json:"answer"`
	Evaluation *Evaluation `json:"evaluation"`
}

// Answered reports whether both the answer and its evaluation are recorded.
func (e HistoryEntry) Answered() bool {
	return e.Answer != nil && e.Evaluation != nil
}
