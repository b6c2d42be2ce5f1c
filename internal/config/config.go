package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Scope encodings accepted on the authorize URL. Schwab has been observed to
// accept both; exactly one is produced on output.
const (
	ScopeEncodingPercent = "percent"
	ScopeEncodingPlus    = "plus"
)

// Config contains runtime configuration values.
type Config struct {
	Environment string
	HTTPPort    string
	ServiceName string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SchwabAPIBase      string
	SchwabAuthorizeURL string
	SchwabTokenURL     string
	OAuthScope         string
	ScopeEncoding      string
	SuccessRedirect    string
	RefreshInterval    time.Duration
	BrokerTimeout      time.Duration

	// Deprecated fallback used by refresh only when no credential row exists.
	FallbackClientID     string
	FallbackClientSecret string
	FallbackRedirectURI  string

	TelemetryEndpoint string
	TelemetryInsecure bool

	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	apiBase := strings.TrimRight(getEnv("SCHWAB_API_BASE", "https://api.schwabapi.com"), "/")

	cfg := Config{
		Environment: getEnv("APP_ENV", "development"),
		HTTPPort:    getEnv("HTTP_PORT", "3000"),
		ServiceName: getEnv("SERVICE_NAME", "schweb-login"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		SchwabAPIBase:      apiBase,
		SchwabAuthorizeURL: getEnv("SCHWAB_AUTHORIZE_URL", apiBase+"/v1/oauth/authorize"),
		SchwabTokenURL:     getEnv("SCHWAB_TOKEN_URL", apiBase+"/v1/oauth/token"),
		OAuthScope:         getEnv("SCHWAB_OAUTH_SCOPE", "PlaceTrade ReadAccounts"),
		ScopeEncoding:      getEnv("SCOPE_ENCODING", ScopeEncodingPercent),
		SuccessRedirect:    getEnv("OAUTH_SUCCESS_REDIRECT", "/oauth/success"),
		RefreshInterval:    getDuration("REFRESH_INTERVAL", 29*time.Minute),
		BrokerTimeout:      getDuration("SCHWAB_TIMEOUT", 15*time.Second),

		FallbackClientID:     os.Getenv("SCHWAB_CLIENT_ID"),
		FallbackClientSecret: os.Getenv("SCHWAB_CLIENT_SECRET"),
		FallbackRedirectURI:  os.Getenv("SCHWAB_REDIRECT_URI"),

		TelemetryEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure: getBool("OTEL_EXPORTER_OTLP_INSECURE", true),

		CORSAllowedOrigins:   getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowedMethods:   getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "DELETE", "OPTIONS"}),
		CORSAllowedHeaders:   getList("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type"}),
		CORSAllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.ScopeEncoding {
	case ScopeEncodingPercent, ScopeEncodingPlus:
	default:
		return Config{}, fmt.Errorf("SCOPE_ENCODING must be %q or %q", ScopeEncodingPercent, ScopeEncodingPlus)
	}

	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 29 * time.Minute
	}
	if cfg.BrokerTimeout <= 0 {
		cfg.BrokerTimeout = 15 * time.Second
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
