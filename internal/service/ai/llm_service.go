package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/zhouzirui/mock-interview/backend/internal/config"
)

// Sampling carries per-call generation parameters.
type Sampling struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

var (
	QuestionSampling   = Sampling{Temperature: 0.7, TopP: 0.95, MaxTokens: 150}
	EvaluationSampling = Sampling{Temperature: 0.3, TopP: 0.9, MaxTokens: 250}
	SummarySampling    = Sampling{Temperature: 0.5, TopP: 0.9, MaxTokens: 300}
)

// TextGenerator turns a prompt into free text. The generator treats any error
// as a failed attempt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, sampling Sampling) (string, error)
}

// ErrEmptyResponse is returned when the model answers with no content.
var ErrEmptyResponse = errors.New("empty model response")

// Service runs prompts through an eino chain backed by the configured chat model.
type Service struct {
	provider string
	chain    compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the chat model from configuration and compiles the chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, cfg.Provider, chatModel)
}

// NewServiceWithModel compiles the chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, provider string, chatModel model.BaseChatModel) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile interview chain: %w", err)
	}

	return &Service{provider: provider, chain: runnable}, nil
}

// Provider names the backing model provider.
func (s *Service) Provider() string {
	return s.provider
}

// Generate sends a single prompt and returns the trimmed reply text.
func (s *Service) Generate(ctx context.Context, query string, sampling Sampling) (string, error) {
	input := map[string]any{
		"system": systemPrompt,
		"query":  query,
	}

	response, err := s.chain.Invoke(ctx, input, compose.WithChatModelOption(sampling.options()...))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyResponse
	}

	log.Printf("[ai] provider=%s generated length=%d", s.provider, len(response.Content))
	return strings.TrimSpace(response.Content), nil
}

func (p Sampling) options() []model.Option {
	var opts []model.Option
	if p.Temperature > 0 {
		opts = append(opts, model.WithTemperature(p.Temperature))
	}
	if p.TopP > 0 {
		opts = append(opts, model.WithTopP(p.TopP))
	}
	if p.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(p.MaxTokens))
	}
	return opts
}

// IsRateLimitError reports whether a provider error looks like quota exhaustion.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "quota", "rate limit", "rate_limit", "ratelimit"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
