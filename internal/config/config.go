package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Payment  PaymentConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Addr string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type StorageConfig struct {
	Dir string
}

type PostgresConfig struct {
	// DSN пустой — избранное живёт только в локальных слотах
	DSN string
}

type PaymentConfig struct {
	// BaseURL пустой — демо-режим с mock-платежами
	BaseURL             string
	Timeout             time.Duration
	PollInitialInterval time.Duration
	PollMaxInterval     time.Duration
	PollMultiplier      float64
	PollMaxAttempts     int
}

type AuthConfig struct {
	JWTSecret     string
	SessionTTL    time.Duration
	WatchInterval time.Duration
	DemoEmail     string
	DemoPassword  string
}

// Load читает конфигурацию из окружения (.env подхватывается, если есть)
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":9090"),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOGGER_LEVEL", "info"),
			Encoding: getEnv("LOGGER_ENCODING", "console"),
		},
		Storage: StorageConfig{
			Dir: getEnv("STORAGE_DIR", "./data"),
		},
		Postgres: PostgresConfig{
			DSN: getEnv("FAVORITES_DB_DSN", ""),
		},
		Payment: PaymentConfig{
			BaseURL:             getEnv("PAYMENT_BASE_URL", ""),
			Timeout:             getEnvDuration("PAYMENT_TIMEOUT", 15*time.Second),
			PollInitialInterval: getEnvDuration("PAYMENT_POLL_INTERVAL", 5*time.Second),
			PollMaxInterval:     getEnvDuration("PAYMENT_POLL_MAX_INTERVAL", 30*time.Second),
			PollMultiplier:      getEnvFloat("PAYMENT_POLL_MULTIPLIER", 1.5),
			PollMaxAttempts:     getEnvInt("PAYMENT_POLL_MAX_ATTEMPTS", 40),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
			SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
			WatchInterval: getEnvDuration("SESSION_WATCH_INTERVAL", time.Minute),
			DemoEmail:     getEnv("DEMO_USER_EMAIL", "demo@nectix.store"),
			DemoPassword:  getEnv("DEMO_USER_PASSWORD", "demo12345"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if x, err := strconv.Atoi(v); err == nil {
			return x
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			return x
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
