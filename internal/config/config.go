package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Ai        AIConfig
	RateLimit RateLimitConfig
	Events    EventsConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	StatusCacheTTL     time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret     string // HS256 shared secret
	JWTPublicKey  string // RS256 PEM, takes precedence over JWTSecret
	WebhookSecret string // svix signing secret ("whsec_...")
}

type AIConfig struct {
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string
	PythonAPIURL    string // secondary completion service
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
}

// HasCompletionBackend reports whether at least one model service is configured.
func (c AIConfig) HasCompletionBackend() bool {
	return c.DeepSeekAPIKey != "" || c.PythonAPIURL != ""
}

type RateLimitConfig struct {
	CompletionPerMinute int
	CompletionBurst     int
}

type EventsConfig struct {
	Topic          string
	RevealInterval time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string // OTLP HTTP host:port
	ServiceName string
	SampleRatio float64 // fraction of root traces kept
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			StatusCacheTTL:     getEnvAsDuration("STATUS_CACHE_TTL", 30*time.Second),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("AUTH_JWT_SECRET", ""),
			JWTPublicKey:  getEnv("AUTH_JWT_PUBLIC_KEY", ""),
			WebhookSecret: getEnv("SVIX_SECRET", ""),
		},
		Ai: AIConfig{
			DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
			DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
			DeepSeekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			PythonAPIURL:    getEnv("PYTHON_API_URL", ""),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 4000),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		RateLimit: RateLimitConfig{
			CompletionPerMinute: getEnvAsInt("COMPLETION_RATE_PER_MINUTE", 20),
			CompletionBurst:     getEnvAsInt("COMPLETION_RATE_BURST", 5),
		},
		Events: EventsConfig{
			Topic:          getEnv("EVENTS_TOPIC", "conversation.events"),
			RevealInterval: getEnvAsDuration("REVEAL_INTERVAL", 100*time.Millisecond),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "deepseek-chat-backend"),
			SampleRatio: getEnvAsFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
