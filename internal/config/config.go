package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores all the configuration of the application.
// Values are loaded from environment variables with optional
// loading from a .env file via godotenv.
type Config struct {
	// Server settings
	ServerPort  string
	FrontendURL string
	Debug       bool

	// Token signing
	JWTSecret string

	// Database settings
	DatabaseURL string

	// Redis settings (optional message cache)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string

	// LLM settings
	GoogleAPIKey string
	AgentType    string
	LLMTimeout   time.Duration

	// Pacing between streamed chunks on the socket channel
	StreamDelay time.Duration
}

// LoadConfig reads configuration from environment variables and .env file.
// It returns the loaded configuration or an error if required values are missing.
func LoadConfig() (*Config, error) {
	// Try to load .env file, but proceed even if it doesn't exist
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Println("No .env file found, using environment variables only")
		} else {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Environment loaded from .env file")
	}

	config := &Config{
		// Server settings
		ServerPort:  getEnv("PORT", "7860"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		Debug:       getEnvAsBool("DEBUG", false),

		// Token signing
		JWTSecret: getEnv("JWT_SECRET_KEY", ""),

		// Database settings
		DatabaseURL: normalizeDatabaseURL(getEnv("DATABASE_URL", "sqlite:///agent.db")),

		// Redis settings
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		// LLM settings
		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		AgentType:    getEnv("AGENT_TYPE", "coding_assistant"),
		LLMTimeout:   getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),

		StreamDelay: getEnvAsDuration("STREAM_DELAY", 50*time.Millisecond),
	}

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the required configuration values are set and logs warnings
// for optional values that aren't set.
func (c *Config) Validate() error {
	var missingEnvs []string

	// Token signing secret is required
	if c.JWTSecret == "" {
		missingEnvs = append(missingEnvs, "JWT_SECRET_KEY")
	}

	if len(missingEnvs) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingEnvs, ", "))
	}

	// Log warnings for optional configurations
	if c.GoogleAPIKey == "" {
		log.Println("Warning: GOOGLE_API_KEY is not set, AI features will be disabled")
	}

	if c.RedisHost == "" {
		log.Println("Warning: Redis configuration is incomplete, message caching will be disabled")
	}

	if c.FrontendURL == "" {
		log.Println("Warning: FRONTEND_URL is not set, CORS defaults to allowing all origins")
	}

	return nil
}

// normalizeDatabaseURL rewrites the legacy postgres:// scheme alias still
// emitted by some hosting providers to the canonical postgresql:// form.
func normalizeDatabaseURL(url string) string {
	if strings.HasPrefix(url, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(url, "postgres://")
	}
	return url
}

// IsPostgres reports whether the configured database URL points at PostgreSQL
// rather than the SQLite fallback.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// SQLitePath extracts the file path from a sqlite:/// style database URL.
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite:///")
}

// GetRedisAddr returns the Redis address in the format host:port
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// RedisEnabled reports whether enough Redis configuration is present to dial.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// getEnv retrieves the value of the environment variable named by the key.
// If the variable is not present, the defaultValue is returned.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves the value of the environment variable named by the key
// as a bool. If the variable is not present or cannot be parsed,
// the defaultValue is returned.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves the value of the environment variable named by the
// key as a time.Duration. If the variable is not present or cannot be parsed,
// the defaultValue is returned.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
