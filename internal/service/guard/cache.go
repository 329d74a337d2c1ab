package guard

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

const keyPrefixRunes = 100

// ResponseCache memoizes generated questions and evaluations for the lifetime
// of the process. Entries never expire; Clear empties both maps.
type ResponseCache struct {
	mu          sync.RWMutex
	questions   map[string]interview.Question
	evaluations map[string]interview.Evaluation
}

func NewResponseCache() *ResponseCache {
	return &ResponseCache{
		questions:   make(map[string]interview.Question),
		evaluations: make(map[string]interview.Evaluation),
	}
}

func (c *ResponseCache) Question(key string) (interview.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.questions[key]
	return q, ok
}

func (c *ResponseCache) PutQuestion(key string, q interview.Question) {
	c.mu.Lock()
	c.questions[key] = q
	c.mu.Unlock()
}

func (c *ResponseCache) Evaluation(key string) (interview.Evaluation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.evaluations[key]
	return e, ok
}

func (c *ResponseCache) PutEvaluation(key string, e interview.Evaluation) {
	c.mu.Lock()
	c.evaluations[key] = e
	c.mu.Unlock()
}

// Sizes returns the number of cached questions and evaluations.
func (c *ResponseCache) Sizes() (questions, evaluations int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.questions), len(c.evaluations)
}

// Clear drops every entry and returns the sizes prior to clearing.
func (c *ResponseCache) Clear() (questions, evaluations int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	questions, evaluations = len(c.questions), len(c.evaluations)
	c.questions = make(map[string]interview.Question)
	c.evaluations = make(map[string]interview.Evaluation)
	return questions, evaluations
}

// QuestionKey identifies a question by role, mode and position in the interview.
func QuestionKey(role string, mode interview.Mode, position int) string {
	return fmt.Sprintf("question_%s_%s_%d", role, mode, position)
}

// EvaluationKey hashes the leading text of the question and answer.
func EvaluationKey(question, answer string) string {
	sum := sha256.Sum256([]byte(prefixRunes(question, keyPrefixRunes) + "_" + prefixRunes(answer, keyPrefixRunes)))
	return "eval_" + hex.EncodeToString(sum[:])
}

func prefixRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
