package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the portal server
type Config struct {
	Port        string
	Origin      string
	Environment string
	LogLevel    string
	// APIBaseURL is the root of the hospital REST backend, e.g. http://localhost:5000/api
	APIBaseURL     string
	APITimeout     time.Duration
	Session        SessionConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	JanitorSpec    string
	StoreIdleAfter time.Duration
}

// SessionConfig controls where portal sessions live and how the cookie is issued.
type SessionConfig struct {
	// Backend is one of "memory", "redis" or "mysql".
	Backend      string
	CookieName   string
	CookieSecure bool
	// MaxAge caps how long a session is kept when the token carries no expiry.
	MaxAge time.Duration
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// RedisConfig holds redis connection details
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hospital_portal"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	sessionMaxAge, err := time.ParseDuration(getEnv("SESSION_MAX_AGE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE: %w", err)
	}

	idleAfter, err := time.ParseDuration(getEnv("STORE_IDLE_AFTER", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_IDLE_AFTER: %w", err)
	}

	environment := getEnv("APP_ENV", "development")

	backend := strings.ToLower(getEnv("SESSION_STORE", BackendMemory))
	switch backend {
	case BackendMemory, BackendRedis, BackendMySQL:
	default:
		return nil, fmt.Errorf("invalid SESSION_STORE %q: want memory, redis or mysql", backend)
	}

	secureDefault := strconv.FormatBool(environment != "development")
	cookieSecure, err := strconv.ParseBool(getEnv("SESSION_COOKIE_SECURE", secureDefault))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_COOKIE_SECURE: %w", err)
	}

	return &Config{
		Port:        getEnv("PORT", "3000"),
		Origin:      getEnv("ORIGIN", "http://localhost:3000"),
		Environment: environment,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		APIBaseURL:  strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api"), "/"),
		APITimeout:  apiTimeout,
		Session: SessionConfig{
			Backend:      backend,
			CookieName:   getEnv("SESSION_COOKIE_NAME", "portal_session"),
			CookieSecure: cookieSecure,
			MaxAge:       sessionMaxAge,
		},
		Database: dbConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JanitorSpec:    getEnv("JANITOR_SCHEDULE", "@every 15m"),
		StoreIdleAfter: idleAfter,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
