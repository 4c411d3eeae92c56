package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"deepseek-chat-be/pkg/llm"
)

const (
	ProviderName    = "Python API"
	NoResponseReply = "No response from Python API"
)

// Provider posts the whole history to a plain HTTP completion service.
type Provider struct {
	URL    string
	Model  string
	Client *http.Client
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(url, model string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Provider{
		URL:    url,
		Model:  model,
		Client: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Messages    []llm.Message `json:"messages"`
	Model       string        `json:"model"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// The service is loose about where it puts the reply text.
type chatResponse struct {
	Response string `json:"response"`
	Content  string `json:"content"`
	Message  string `json:"message"`
}

func (r chatResponse) text() string {
	for _, candidate := range []string{r.Response, r.Content, r.Message} {
		if candidate != "" {
			return candidate
		}
	}
	return NoResponseReply
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Model: p.Model, Temperature: 0.7}, opts...)

	payload, err := json.Marshal(chatRequest{
		Messages:    history,
		Model:       options.Model,
		Stream:      false,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", &llm.ProviderError{Provider: ProviderName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.ProviderError{Provider: ProviderName, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &llm.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &llm.ProviderError{Provider: ProviderName, StatusCode: resp.StatusCode, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	return parsed.text(), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Ping calls GET {URL}/health.
func (p *Provider) Ping(ctx context.Context) error {
	url := strings.TrimRight(p.URL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return &llm.ProviderError{Provider: ProviderName, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &llm.ProviderError{Provider: ProviderName, StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	return nil
}
