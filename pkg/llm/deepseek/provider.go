package deepseek

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"deepseek-chat-be/pkg/llm"

	"github.com/sashabaranov/go-openai"
)

const (
	ProviderName   = "DeepSeek"
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
)

// Provider talks to the OpenAI-compatible DeepSeek chat completions API.
type Provider struct {
	client *openai.Client
	model  string
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(apiKey, baseURL, model string, timeout time.Duration) *Provider {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	clientConfig.BaseURL = baseURL
	if timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: timeout}
	}
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Model: p.model, Temperature: 0.7}, opts...)

	messages := make([]openai.ChatCompletionMessage, len(history))
	for i, msg := range history {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       options.Model,
		Messages:    messages,
		Stream:      false,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &llm.ProviderError{Provider: ProviderName, Err: errors.New("empty choices in completion response")}
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Ping spends a tiny completion to prove the key works.
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.Generate(ctx, "Hello", llm.WithMaxTokens(10))
	return err
}

// wrapError lifts the HTTP status out of go-openai's error types.
func wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &llm.ProviderError{Provider: ProviderName, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &llm.ProviderError{Provider: ProviderName, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &llm.ProviderError{Provider: ProviderName, Err: fmt.Errorf("request failed: %w", err)}
}
