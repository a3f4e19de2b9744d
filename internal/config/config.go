package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// SessionBackend はクライアントセッションの永続化先を表す。
type SessionBackend string

const (
	// BackendMemory はプロセス内メモリ。再起動でセッションは失われる。
	BackendMemory SessionBackend = "memory"
	// BackendPostgres はPostgreSQL（DATABASE_URL必須）。
	BackendPostgres SessionBackend = "postgres"
	// BackendSQLite は単一ファイルのSQLite。
	BackendSQLite SessionBackend = "sqlite"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	SessionBackend SessionBackend
	DatabaseURL    string
	SQLitePath     string

	// Session
	SessionSecret          string
	CSRFSecret             string
	SessionMaxAge          int
	SessionCleanupInterval time.Duration

	// Auth
	AuthSimulatedLatency time.Duration
	ClientCacheSize      int
	ClientIdleTTL        time.Duration

	// Catalog
	CatalogRefreshInterval time.Duration
	CatalogStrictIDs       bool

	// Rate Limit
	RateLimitAuth     int
	RateLimitAuthAddr int
	// TrustProxyHeaders がtrueの場合、X-Forwarded-For等から送信元アドレスを決める。
	TrustProxyHeaders bool

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS（カンマ区切りで複数指定可）
	CORSAllowedOrigin string
}

// SessionTTL はセッションの有効期間を返す。
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	cfg.SessionBackend = SessionBackend(strings.ToLower(getEnvString("SESSION_BACKEND", string(BackendMemory))))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.SessionBackend == BackendPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	switch cfg.SessionBackend {
	case BackendMemory, BackendPostgres, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q (want memory, postgres or sqlite)", cfg.SessionBackend)
	}

	// Optional fields with defaults
	cfg.SQLitePath = getEnvString("SQLITE_PATH", "wanderluxe.db")
	cfg.CSRFSecret = getEnvString("CSRF_SECRET", cfg.SessionSecret)
	cfg.SessionMaxAge = getEnv("SESSION_MAX_AGE", 86400, positiveInt)
	cfg.SessionCleanupInterval = getEnv("SESSION_CLEANUP_INTERVAL", time.Hour, positiveDuration)
	cfg.AuthSimulatedLatency = getEnv("AUTH_SIMULATED_LATENCY", time.Second, nonNegativeDuration)
	cfg.ClientCacheSize = getEnv("CLIENT_CACHE_SIZE", 10000, positiveInt)
	cfg.ClientIdleTTL = getEnv("CLIENT_IDLE_TTL", 30*time.Minute, positiveDuration)
	cfg.CatalogRefreshInterval = getEnv("CATALOG_REFRESH_INTERVAL", time.Second, positiveDuration)
	cfg.CatalogStrictIDs = getEnv("CATALOG_STRICT_IDS", false, strconv.ParseBool)
	cfg.RateLimitAuth = getEnv("RATE_LIMIT_AUTH", 20, positiveInt)
	cfg.RateLimitAuthAddr = getEnv("RATE_LIMIT_AUTH_ADDR", 60, positiveInt)
	cfg.TrustProxyHeaders = getEnv("TRUST_PROXY_HEADERS", false, strconv.ParseBool)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getEnv はkeyの値をparseで解釈する。未設定なら既定値を返し、
// 解釈できない値は警告ログを出して既定値にフォールバックする。
func getEnv[T any](key string, defaultVal T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parsed, err := parse(v)
	if err != nil {
		slog.Warn("invalid environment variable, using default",
			slog.String("key", key),
			slog.String("error", err.Error()),
			slog.Any("default", defaultVal),
		)
		return defaultVal
	}
	return parsed
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// positiveDuration はticker間隔やTTLに使う値を解釈する。0以下はtime.NewTickerがpanicするため拒否する。
func positiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func nonNegativeDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", d)
	}
	return d, nil
}
