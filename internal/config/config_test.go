package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("PYTHON_API_URL", "")
	unsetEnv(t, "OTEL_ENABLED", "OTEL_SERVICE_NAME", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_TRACES_SAMPLE_RATIO")

	cfg := Load()

	assert.Equal(t, "", cfg.App.Port) // explicitly set to empty
	assert.Equal(t, "https://api.deepseek.com/v1", cfg.Ai.DeepSeekBaseURL)
	assert.Equal(t, "deepseek-chat", cfg.Ai.DeepSeekModel)
	assert.Equal(t, 0.7, cfg.Ai.Temperature)
	assert.Equal(t, 4000, cfg.Ai.MaxTokens)
	assert.Equal(t, 100*time.Millisecond, cfg.Events.RevealInterval)
	assert.False(t, cfg.Ai.HasCompletionBackend())
	assert.Equal(t, "deepseek-chat-backend", cfg.Tracing.ServiceName)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Endpoint)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("PYTHON_API_URL", "http://fallback.local/chat")

	cfg := Load()

	assert.Equal(t, 0.2, cfg.Ai.Temperature)
	assert.Equal(t, 4000, cfg.Ai.MaxTokens)
	assert.Equal(t, 5*time.Second, cfg.Ai.Timeout)
	assert.True(t, cfg.Ai.HasCompletionBackend())
}

func TestLoadTracing(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SERVICE_NAME", "chat-api")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.25")

	cfg := Load()

	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "chat-api", cfg.Tracing.ServiceName)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
}
