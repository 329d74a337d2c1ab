package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/zhouzirui/mock-interview/backend/internal/analysis/scoring"
	"github.com/zhouzirui/mock-interview/backend/internal/metrics"
	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/model/questionbank"
	"github.com/zhouzirui/mock-interview/backend/internal/service/ai"
	"github.com/zhouzirui/mock-interview/backend/internal/service/guard"
)

const (
	opQuestion   = "question"
	opEvaluation = "evaluation"
	opSummary    = "summary"

	sourceCache     = "cache"
	sourceFallback  = "fallback"
	sourceGenerated = "generated"
	sourceExhausted = "exhausted"

	defaultFeedback = "Good effort on answering the question."
	notAssessed     = "Assessment not available"
)

// ErrEmptyPool means the static bank has no question for the requested mode.
var ErrEmptyPool = errors.New("static question pool is empty")

var errEmptyQuestion = errors.New("model returned an empty question")

// Options 控制降级与重试行为。
type Options struct {
	DevelopmentMode bool
	CachingEnabled  bool
	MaxRetries      int
	RetryBaseDelay  time.Duration
	RetryMaxJitter  time.Duration
}

// Generator 负责出题、评分与总结；外部模型不可用时回退到静态题库与启发式评分。
type Generator struct {
	text    ai.TextGenerator
	limiter *guard.RateLimiter
	cache   *guard.ResponseCache
	bank    *questionbank.Bank
	opts    Options
	newID   func() string
}

// New 创建生成器。text 为 nil 时所有操作都走静态回退。
func New(text ai.TextGenerator, limiter *guard.RateLimiter, cache *guard.ResponseCache, bank *questionbank.Bank, opts Options) *Generator {
	if limiter == nil {
		limiter = guard.NewRateLimiter(guard.DefaultDailyLimit)
	}
	if cache == nil {
		cache = guard.NewResponseCache()
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &Generator{
		text:    text,
		limiter: limiter,
		cache:   cache,
		bank:    bank,
		opts:    opts,
		newID:   uuid.NewString,
	}
}

// shouldUseFallback 是三种操作共用的唯一降级判断点。
func (g *Generator) shouldUseFallback() bool {
	return g.opts.DevelopmentMode || g.text == nil || g.limiter.CheckLimit()
}

// UsingFallback reports whether calls currently skip the provider. Unlike
// shouldUseFallback it never rolls the limiter window.
func (g *Generator) UsingFallback() bool {
	usage := g.limiter.Snapshot()
	return g.opts.DevelopmentMode || g.text == nil || usage.CallsToday >= usage.Threshold
}

// DevelopmentMode reports whether the provider is disabled by configuration.
func (g *Generator) DevelopmentMode() bool {
	return g.opts.DevelopmentMode || g.text == nil
}

// Limiter exposes the shared limiter for status reporting.
func (g *Generator) Limiter() *guard.RateLimiter {
	return g.limiter
}

// Cache exposes the shared response cache for status reporting and clearing.
func (g *Generator) Cache() *guard.ResponseCache {
	return g.cache
}

// GenerateQuestion returns the next question for an interview that has
// already asked len(history) questions.
func (g *Generator) GenerateQuestion(ctx context.Context, role string, mode interview.Mode, history []interview.HistoryEntry) (interview.Question, error) {
	position := len(history)
	key := guard.QuestionKey(role, mode, position)

	if g.opts.CachingEnabled {
		if cached, ok := g.cache.Question(key); ok {
			log.Printf("[generator] question cache hit key=%s", key)
			metrics.IncGenerator(opQuestion, sourceCache)
			return cached, nil
		}
	}

	if g.shouldUseFallback() {
		metrics.IncGenerator(opQuestion, sourceFallback)
		return g.FallbackQuestion(mode, position)
	}

	prompt := ai.QuestionPrompt(role, mode, history)
	var text string
	err := g.withRetry(ctx, opQuestion, func(ctx context.Context) error {
		raw, err := g.text.Generate(ctx, prompt, ai.QuestionSampling)
		if err != nil {
			return err
		}
		text = cleanQuestion(raw)
		if text == "" {
			return errEmptyQuestion
		}
		return nil
	})
	if err != nil {
		metrics.IncGenerator(opQuestion, sourceExhausted)
		return g.FallbackQuestion(mode, position)
	}

	question := interview.Question{
		ID:       g.newID(),
		Text:     text,
		Category: mode,
		Source:   interview.SourceGenerated,
	}
	if g.opts.CachingEnabled {
		g.cache.PutQuestion(key, question)
	}
	g.limiter.Record()
	metrics.IncGenerator(opQuestion, sourceGenerated)
	return question, nil
}

// FallbackQuestion picks from the static pool by position, cycling when the
// pool is shorter than the interview.
func (g *Generator) FallbackQuestion(mode interview.Mode, position int) (interview.Question, error) {
	var pool []string
	if g.bank != nil {
		pool = g.bank.Pool(mode)
	}
	if len(pool) == 0 {
		return interview.Question{}, fmt.Errorf("%w: mode=%s", ErrEmptyPool, mode)
	}

	return interview.Question{
		ID:       g.newID(),
		Text:     pool[position%len(pool)],
		Category: mode,
		Source:   interview.SourceFallback,
	}, nil
}

// EvaluateAnswer scores one answer. It never fails: every failure path ends
// in a heuristic evaluation.
func (g *Generator) EvaluateAnswer(ctx context.Context, question, answer, role string) (interview.Evaluation, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return scoring.Placeholder("Invalid input"), nil
	}

	key := guard.EvaluationKey(question, answer)
	if g.opts.CachingEnabled {
		if cached, ok := g.cache.Evaluation(key); ok {
			metrics.IncGenerator(opEvaluation, sourceCache)
			return cached, nil
		}
	}

	if g.shouldUseFallback() {
		metrics.IncGenerator(opEvaluation, sourceFallback)
		return g.EvaluateAnswerFallback(answer), nil
	}

	prompt := ai.EvaluationPrompt(role, question, answer)
	var evaluation interview.Evaluation
	err := g.withRetry(ctx, opEvaluation, func(ctx context.Context) error {
		raw, err := g.text.Generate(ctx, prompt, ai.EvaluationSampling)
		if err != nil {
			return err
		}
		evaluation, err = parseEvaluation(raw)
		return err
	})
	if err != nil {
		metrics.IncGenerator(opEvaluation, sourceExhausted)
		return g.EvaluateAnswerFallback(answer), nil
	}

	if g.opts.CachingEnabled {
		g.cache.PutEvaluation(key, evaluation)
	}
	g.limiter.Record()
	metrics.IncGenerator(opEvaluation, sourceGenerated)
	return evaluation, nil
}

// EvaluateAnswerFallback scores by answer length and technical vocabulary.
func (g *Generator) EvaluateAnswerFallback(answer string) interview.Evaluation {
	var keywords []string
	if g.bank != nil {
		keywords = g.bank.TechnicalKeywords
	}
	return scoring.Heuristic(answer, keywords)
}

// GenerateSummary builds the end-of-interview report. The final score is
// always computed locally from the recorded evaluations.
func (g *Generator) GenerateSummary(ctx context.Context, history []interview.HistoryEntry) (interview.Summary, error) {
	answered := interview.Answered(history)
	if len(answered) == 0 {
		metrics.IncGenerator(opSummary, sourceFallback)
		return g.placeholderSummary(), nil
	}

	finalScore := scoring.FinalScore(answered)

	if g.shouldUseFallback() {
		metrics.IncGenerator(opSummary, sourceFallback)
		return g.tierSummary(answered, finalScore), nil
	}

	prompt := ai.SummaryPrompt(answered)
	var summary interview.Summary
	err := g.withRetry(ctx, opSummary, func(ctx context.Context) error {
		raw, err := g.text.Generate(ctx, prompt, ai.SummarySampling)
		if err != nil {
			return err
		}
		summary, err = parseSummary(raw)
		return err
	})
	if err != nil {
		metrics.IncGenerator(opSummary, sourceExhausted)
		return g.tierSummary(answered, finalScore), nil
	}

	summary.FinalScore = finalScore
	g.limiter.Record()
	metrics.IncGenerator(opSummary, sourceGenerated)
	return summary, nil
}

func (g *Generator) placeholderSummary() interview.Summary {
	summary := interview.Summary{
		Strengths:           []string{"Participated in the interview"},
		AreasForImprovement: []string{"Practice answering interview questions"},
		SuggestedResources:  []string{"Technical interview preparation guides"},
		FinalScore:          scoring.NotAvailable,
	}
	if g.bank != nil && len(g.bank.Placeholder.Strengths) > 0 {
		summary.Strengths = copyStrings(g.bank.Placeholder.Strengths)
		summary.AreasForImprovement = copyStrings(g.bank.Placeholder.AreasForImprovement)
		summary.SuggestedResources = copyStrings(g.bank.Placeholder.SuggestedResources)
	}
	return summary
}

func (g *Generator) tierSummary(answered []interview.HistoryEntry, finalScore string) interview.Summary {
	if g.bank == nil || len(g.bank.SummaryTiers) == 0 {
		summary := g.placeholderSummary()
		summary.FinalScore = finalScore
		return summary
	}

	avg, _ := scoring.Average(answered)
	tier := g.bank.TierFor(avg.InexactFloat64())
	return interview.Summary{
		Strengths:           copyStrings(tier.Strengths),
		AreasForImprovement: copyStrings(tier.AreasForImprovement),
		SuggestedResources:  copyStrings(tier.SuggestedResources),
		FinalScore:          finalScore,
	}
}

// withRetry runs fn up to MaxRetries times with exponential backoff plus jitter.
func (g *Generator) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var delayType retry.DelayTypeFunc = retry.BackOffDelay
	if g.opts.RetryMaxJitter > 0 {
		delayType = retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)
	}

	return retry.Do(
		func() error {
			start := time.Now()
			err := fn(ctx)
			metrics.ObserveProvider(op, start, err)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(g.opts.MaxRetries)),
		retry.Delay(g.opts.RetryBaseDelay),
		retry.MaxJitter(g.opts.RetryMaxJitter),
		retry.DelayType(delayType),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if ai.IsRateLimitError(err) {
				log.Printf("[generator] %s attempt %d hit provider rate limit: %v", op, n+1, err)
				return
			}
			log.Printf("[generator] %s attempt %d failed: %v", op, n+1, err)
		}),
	)
}

func copyStrings(in []string) []string {
	return append([]string{}, in...)
}
