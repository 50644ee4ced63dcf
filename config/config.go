package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration for the identity core. Secrets and
// lifetimes are loaded once at process start and passed into constructors;
// nothing reads the environment after that.
type Config struct {
	Environment   string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SigningSecret string
	AccessTTL     time.Duration
	RenewalTTL    time.Duration
	CacheTTL      time.Duration
}

// Load constructs a Config from environment variables.
func Load() Config {
	return Config{
		Environment:   GetString("APP_ENV", "development"),
		DatabaseURL:   GetString("DATABASE_URL", "postgres://photoshare:photoshare@db:5432/photoshare?sslmode=disable"),
		RedisAddr:     GetString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: GetString("REDIS_PASSWORD", ""),
		RedisDB:       GetInt("REDIS_DB", 0),
		SigningSecret: GetString("JWT_SECRET", ""),
		AccessTTL:     time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RenewalTTL:    time.Duration(GetInt("REFRESH_TOKEN_TTL_HOURS", 168)) * time.Hour,
		CacheTTL:      time.Duration(GetInt("IDENTITY_CACHE_TTL_SECONDS", 900)) * time.Second,
	}
}

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetBool retrieves an environment variable as bool or returns fallback.
func GetBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}
