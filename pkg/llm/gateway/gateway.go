package gateway

import (
	"context"
	"errors"
	"fmt"

	"deepseek-chat-be/pkg/llm"
)

const (
	BackendPrimary           = "DeepSeek"
	BackendSecondary         = "Python API"
	BackendSecondaryFallback = "Python API (fallback)"

	SystemInstruction = "You are DeepSeek, a helpful AI assistant. Provide accurate, helpful, and detailed responses."

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
)

var ErrNotConfigured = errors.New("no completion backend configured")

// BothFailedError is returned when the primary failed and the fallback hop failed too.
type BothFailedError struct {
	Primary   error
	Secondary error
}

func (e *BothFailedError) Error() string {
	return fmt.Sprintf("Both APIs failed. DeepSeek: %v, Python API: %v", e.Primary, e.Secondary)
}

func (e *BothFailedError) Unwrap() []error {
	return []error{e.Primary, e.Secondary}
}

type Result struct {
	Content string
	Backend string
}

type Completer interface {
	Generate(ctx context.Context, history []llm.Message) (*Result, error)
}

// Gateway tries the primary provider once, then the secondary once. Either may be nil.
type Gateway struct {
	primary     llm.LLMProvider
	secondary   llm.LLMProvider
	temperature float64
	maxTokens   int
}

var _ Completer = &Gateway{}

func New(primary, secondary llm.LLMProvider, temperature float64, maxTokens int) *Gateway {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Gateway{
		primary:     primary,
		secondary:   secondary,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (g *Gateway) Configured() bool {
	return g.primary != nil || g.secondary != nil
}

func (g *Gateway) Primary() llm.LLMProvider { return g.primary }

func (g *Gateway) Secondary() llm.LLMProvider { return g.secondary }

// Generate prefixes history with the system instruction and asks for one reply.
func (g *Gateway) Generate(ctx context.Context, history []llm.Message) (*Result, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: SystemInstruction})
	messages = append(messages, history...)

	opts := []llm.Option{llm.WithTemperature(g.temperature), llm.WithMaxTokens(g.maxTokens)}

	if g.primary == nil {
		content, err := g.secondary.Chat(ctx, messages, opts...)
		if err != nil {
			return nil, err
		}
		return &Result{Content: content, Backend: BackendSecondary}, nil
	}

	content, primaryErr := g.primary.Chat(ctx, messages, opts...)
	if primaryErr == nil {
		return &Result{Content: content, Backend: BackendPrimary}, nil
	}
	if g.secondary == nil {
		return nil, primaryErr
	}

	content, secondaryErr := g.secondary.Chat(ctx, messages, opts...)
	if secondaryErr != nil {
		return nil, &BothFailedError{Primary: primaryErr, Secondary: secondaryErr}
	}
	return &Result{Content: content, Backend: BackendSecondaryFallback}, nil
}

// Describe turns a Generate error into text a user can act on.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var both *BothFailedError
	if errors.As(err, &both) {
		return both.Error()
	}
	switch {
	case llm.IsRateLimited(err):
		return "Rate limit exceeded on DeepSeek API. Please try again in a moment."
	case llm.IsUnauthorized(err):
		return "Invalid DeepSeek API key. Please check your API key configuration."
	case llm.IsInsufficientCredit(err):
		return "Insufficient credits. Please check your DeepSeek account balance."
	}
	return err.Error()
}

// ProbeError is the short form used by the status endpoint.
func ProbeError(err error) string {
	switch {
	case llm.IsUnauthorized(err):
		return "Invalid API key"
	case llm.IsRateLimited(err):
		return "Rate limit exceeded"
	case llm.IsInsufficientCredit(err):
		return "Insufficient credits"
	case err != nil:
		return err.Error()
	}
	return "Unknown error"
}
