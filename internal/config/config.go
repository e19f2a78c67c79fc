package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// RequestTimeout bounds every HTTP request.
	RequestTimeout = 30 * time.Second
	// MaxAITimeout leaves room under RequestTimeout for the fallback reply.
	MaxAITimeout = RequestTimeout - 5*time.Second
)

// Config holds application configuration
type Config struct {
	DatabaseURL     string        `yaml:"database_url"`
	ServerPort      string        `yaml:"server_port"`
	BaseURL         string        `yaml:"base_url"`
	FrontendURL     string        `yaml:"frontend_url"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	AIProvider      string        `yaml:"ai_provider"`
	AIAPIKey        string        `yaml:"-"`
	AIModel         string        `yaml:"ai_model"`
	AIFallbackModel string        `yaml:"ai_fallback_model"`
	AIBaseURL       string        `yaml:"ai_base_url"`
	AITimeout       time.Duration `yaml:"ai_timeout"`
	AnalyzeOnCreate bool          `yaml:"analyze_on_create"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
	EnableHSTS      bool          `yaml:"enable_hsts"`
	RedisURL        string        `yaml:"redis_url"`
	RateLimit       string        `yaml:"rate_limit"`
	ServerDebugMode bool          `yaml:"debug"`
	LogFormat       string        `yaml:"log_format"`
	OTELEnabled     bool          `yaml:"otel_enabled"`
	OTELEndpoint    string        `yaml:"otel_endpoint"`
}

// defaults returns the configuration used when neither the YAML file nor the
// environment sets a value.
func defaults() *Config {
	return &Config{
		ServerPort:      "8080",
		BaseURL:         "http://localhost:8080",
		FrontendURL:     "http://localhost:3000",
		AIProvider:      "groq",
		AITimeout:       20 * time.Second,
		AnalyzeOnCreate: true,
		RateLimit:       "20-S",
		LogFormat:       "json",
	}
}

// Load loads configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing precedence. A .env
// file in the working directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.AIProvider = getEnv("AI_PROVIDER", cfg.AIProvider)
	cfg.AIAPIKey = getEnv("AI_API_KEY", getEnv("GROQ_API_KEY", getEnv("OPENAI_API_KEY", "")))
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIFallbackModel = getEnv("AI_FALLBACK_MODEL", cfg.AIFallbackModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.AITimeout = getEnvDuration("AI_TIMEOUT", cfg.AITimeout)
	cfg.AnalyzeOnCreate = getEnvBool("ANALYZE_ON_CREATE", cfg.AnalyzeOnCreate)
	cfg.AutoMigrate = getEnvBool("AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.EnableHSTS = getEnvBool("ENABLE_HSTS", cfg.EnableHSTS)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RateLimit = getEnv("RATE_LIMIT", cfg.RateLimit)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AITimeout <= 0 {
		return nil, fmt.Errorf("AI_TIMEOUT must be positive, got %s", cfg.AITimeout)
	}
	if cfg.AITimeout > MaxAITimeout {
		return nil, fmt.Errorf("AI_TIMEOUT must not exceed %s, got %s", MaxAITimeout, cfg.AITimeout)
	}

	return cfg, nil
}

// AllowedOrigins returns the CORS origins, falling back to the frontend URL.
func (c *Config) AllowedOrigins() []string {
	if len(c.CORSOrigins) > 0 {
		return c.CORSOrigins
	}
	if c.FrontendURL == "" {
		return nil
	}
	return []string{c.FrontendURL}
}

// AIEnabled reports whether an AI provider has credentials.
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("20s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
