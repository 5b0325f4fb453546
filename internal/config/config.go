package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL    string
	RedisURI       string // optional; rate limiting falls back to in-process and insights are not cached
	JWTSecret      string
	TokenTTL       time.Duration
	Port           string
	LogLevel       string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Host           string   // Raw HOST env (e.g. https://api.example.com)
	AllowedHost    string   // Hostname only for strict host check (production only)
	Environment    string   // ENV: production, development, etc.
	TrustProxy     bool     // read client IPs from X-Forwarded-For / X-Real-IP

	AI AIConfig

	MaxContentLength int
	AuthRateLimit    int
	AuthRateWindow   time.Duration
}

// AIConfig configures the OpenAI-compatible chat completions upstream.
type AIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8000")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = bareHost(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:5173"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	var errs []error
	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", getEnv("POSTGRES_URI", getEnv("MONGODB_URI", ""))),
		RedisURI:       getEnv("REDIS_URI", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       getDuration("TOKEN_TTL", 7*24*time.Hour, &errs),
		Port:           getEnv("PORT", "8000"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins: allowedOrigins,
		Host:           host,
		AllowedHost:    allowedHost,
		Environment:    env,
		TrustProxy:     getBool("TRUST_PROXY", false, &errs),
		AI: AIConfig{
			APIKey:      getEnv("AI_API_KEY", getEnv("GROQ_API_KEY", "")),
			BaseURL:     getEnv("AI_BASE_URL", ""),
			Model:       getEnv("AI_MODEL", "deepseek-r1-distill-llama-70b"),
			Temperature: float32(getFloat("AI_TEMPERATURE", 0.7, &errs)),
			MaxTokens:   getInt("AI_MAX_TOKENS", 500, &errs),
			Timeout:     getDuration("AI_TIMEOUT", 30*time.Second, &errs),
		},
		MaxContentLength: getInt("JOURNAL_MAX_CONTENT_LENGTH", 10000, &errs),
		AuthRateLimit:    getInt("AUTH_RATE_LIMIT", 10, &errs),
		AuthRateWindow:   getDuration("AUTH_RATE_WINDOW", time.Minute, &errs),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or unusable setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.IsProduction() && len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 bytes in production"))
	}
	if c.AI.APIKey == "" {
		errs = append(errs, errors.New("AI_API_KEY is required"))
	}
	if c.AI.BaseURL == "" {
		errs = append(errs, errors.New("AI_BASE_URL is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.AI.MaxTokens <= 0 {
		errs = append(errs, errors.New("AI_MAX_TOKENS must be positive"))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}
	if c.MaxContentLength <= 0 {
		errs = append(errs, errors.New("JOURNAL_MAX_CONTENT_LENGTH must be positive"))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateWindow <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// bareHost strips scheme, path and port.
func bareHost(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a boolean: %w", key, err))
		return defaultValue
	}
	return b
}

func getInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64, errs *[]error) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return f
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}
