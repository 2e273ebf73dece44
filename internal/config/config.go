package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Slack credentials
	SlackBotToken      string
	SlackSigningSecret string
	SlackAppToken      string
	SlackMode          string // "socket" or "http"
	SlackBaseURL       string

	// Stripe
	StripeSecretKey string
	StripeBaseURL   string
	StripeDryRun    bool
	StripeTimeout   time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		SlackAppToken:      getEnv("SLACK_APP_TOKEN", ""),
		SlackMode:          strings.ToLower(strings.TrimSpace(getEnv("SLACK_MODE", "socket"))),
		SlackBaseURL:       getEnv("SLACK_BASE_URL", ""),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		StripeBaseURL:   getEnv("STRIPE_BASE_URL", ""),
		StripeDryRun:    getEnvAsBool("STRIPE_DRY_RUN", false),
		StripeTimeout:   getEnvAsDuration("STRIPE_TIMEOUT", 15*time.Second),
	}
}

// IsProduction reports whether the app runs with a production environment tag.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
