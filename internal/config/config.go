// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTUserSecret    string
	JWTAdminSecret   string
	AdminSignupToken string
	UserTokenTTL     time.Duration

	// Upload
	UploadDir     string
	UploadMaxSize int64

	// Cover image fetch
	FetchTimeout time.Duration
	FetchMaxSize int64

	// Rate Limit
	RateLimitGeneral int
	RateLimitPostReg int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す（起動時に致命的エラーとして扱う）。
// 管理者登録用の共有トークンもここで注入し、コード中に定数として持たない。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTUserSecret = os.Getenv("JWT_USER_SECRET")
	if cfg.JWTUserSecret == "" {
		missing = append(missing, "JWT_USER_SECRET")
	}

	cfg.JWTAdminSecret = os.Getenv("JWT_ADMIN_SECRET")
	if cfg.JWTAdminSecret == "" {
		missing = append(missing, "JWT_ADMIN_SECRET")
	}

	cfg.AdminSignupToken = os.Getenv("ADMIN_SIGNUP_TOKEN")
	if cfg.AdminSignupToken == "" {
		missing = append(missing, "ADMIN_SIGNUP_TOKEN")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.UserTokenTTL = getEnvDuration("USER_TOKEN_TTL", 24*time.Hour)
	cfg.UploadDir = getEnvString("UPLOAD_DIR", "public/uploads/blog")
	cfg.UploadMaxSize = getEnvInt64("UPLOAD_MAX_SIZE", 5242880)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitPostReg = getEnvInt("RATE_LIMIT_POST_REG", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
