package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	BaseURL            string
	DBDriver           string
	DBDSN              string
	DBLogLevel         string
	JWTSecret          string
	TokenTTL           time.Duration
	AllowRegistration  bool
	CORSAllowedOrigins []string
	GeminiAPIKey       string
	GeminiModel        string
	ExcelBackupPath    string
	LogFormat          string
	LogLevel           string
	AssistantRateLimit string
	DefaultCgstPct     float64
	DefaultSgstPct     float64
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		BaseURL:            valueOrDefault(k.String("BASE_URL"), "http://localhost:8080"),
		DBDriver:           strings.ToLower(valueOrDefault(k.String("DB_DRIVER"), "sqlite")),
		DBDSN:              valueOrDefault(k.String("DB_DSN"), "data/app.db"),
		DBLogLevel:         valueOrDefault(k.String("DB_LOG_LEVEL"), "warn"),
		JWTSecret:          k.String("JWT_SECRET"),
		TokenTTL:           parseDuration(k.String("TOKEN_TTL"), "24h"),
		AllowRegistration:  parseBool(k.String("ALLOW_REGISTRATION")),
		CORSAllowedOrigins: splitAndTrim(valueOrDefault(k.String("CORS_ALLOWED_ORIGINS"), "http://localhost:5173")),
		GeminiAPIKey:       valueOrDefault(k.String("GEMINI_API_KEY"), k.String("GOOGLE_API_KEY")),
		GeminiModel:        valueOrDefault(k.String("GEMINI_MODEL"), "gemini-2.0-flash"),
		ExcelBackupPath:    valueOrDefault(k.String("EXCEL_BACKUP_PATH"), "data/backup.xlsx"),
		LogFormat:          valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:           valueOrDefault(k.String("LOG_LEVEL"), "info"),
		AssistantRateLimit: valueOrDefault(k.String("ASSISTANT_RATE_LIMIT"), "30-M"),
		DefaultCgstPct:     parseFloat(k.String("DEFAULT_CGST_PCT"), 1.5),
		DefaultSgstPct:     parseFloat(k.String("DEFAULT_SGST_PCT"), 1.5),
	}

	switch cfg.DBDriver {
	case "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseFloat(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
