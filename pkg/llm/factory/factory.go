package factory

import (
	"deepseek-chat-be/internal/config"
	"deepseek-chat-be/pkg/llm"
	"deepseek-chat-be/pkg/llm/deepseek"
	"deepseek-chat-be/pkg/llm/fallback"
	"deepseek-chat-be/pkg/llm/gateway"
)

// NewGateway wires whichever providers cfg configures. A gateway with neither
// is still returned; it fails every Generate with ErrNotConfigured.
func NewGateway(cfg config.AIConfig) *gateway.Gateway {
	var primary, secondary llm.LLMProvider
	if cfg.DeepSeekAPIKey != "" {
		primary = deepseek.NewProvider(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.DeepSeekModel, cfg.Timeout)
	}
	if cfg.PythonAPIURL != "" {
		secondary = fallback.NewProvider(cfg.PythonAPIURL, cfg.DeepSeekModel, cfg.Timeout)
	}
	return gateway.New(primary, secondary, cfg.Temperature, cfg.MaxTokens)
}
