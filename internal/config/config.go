package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Session SessionConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port           string
	BaseURL        string
	Environment    string
	LogFilePath    string
	UploadMaxBytes int
	RefreshSeconds int
	StateTopic     string
}

// BackendConfig points at the analysis API that owns all computation.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

type SessionConfig struct {
	VisitorTTL    time.Duration
	CleanupPeriod time.Duration
	CookieName    string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:           getEnv("APP_PORT", "3000"),
			BaseURL:        getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:    getEnv("GO_ENV", "development"),
			LogFilePath:    getEnv("LOG_FILE_PATH", "logs/dashboard.log"),
			UploadMaxBytes: getEnvAsInt("UPLOAD_MAX_BYTES", 10*1024*1024),
			RefreshSeconds: getEnvAsInt("REFRESH_SECONDS", 3),
			StateTopic:     getEnv("STATE_TOPIC", "analysis_state_changed"),
		},
		Backend: BackendConfig{
			URL:     getEnv("BACKEND_URL", "http://localhost:8000"),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 120*time.Second),
		},
		Session: SessionConfig{
			VisitorTTL:    getEnvAsDuration("VISITOR_TTL", time.Hour),
			CleanupPeriod: getEnvAsDuration("VISITOR_CLEANUP_PERIOD", 10*time.Minute),
			CookieName:    getEnv("VISITOR_COOKIE", "dashboard_visitor"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "finance-dashboard"),
		},
	}
}

// IsProduction switches logging to JSON-only console output.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
