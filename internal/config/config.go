package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	LogLevel       string
	Environment    string
	AllowedOrigins []string
	RedisURL       string
	AssetOrigin    string // static origin serving the SPA build and blog-metadata.json
	SiteBaseURL    string // public base URL used in canonical links and preview images
	SiteName       string
	TwitterHandle  string
	DefaultAuthor  string
	ResendAPIKey   string
	NotifyEmail    string // owner address that receives new-subscriber alerts
	SenderEmail    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "https://www.haasonsaas.com,http://localhost:5173")),
		RedisURL:       getEnv("REDIS_URL", ""),
		AssetOrigin:    getEnv("ASSET_ORIGIN", "http://localhost:8788"),
		SiteBaseURL:    getEnv("SITE_BASE_URL", "https://haasonsaas.com"),
		SiteName:       getEnv("SITE_NAME", "Haas on SaaS"),
		TwitterHandle:  getEnv("TWITTER_HANDLE", "@haasonsaas"),
		DefaultAuthor:  getEnv("DEFAULT_AUTHOR", "Jonathan Haas"),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		NotifyEmail:    getEnv("NOTIFY_EMAIL", "jonathan@haas.holdings"),
		SenderEmail:    getEnv("SENDER_EMAIL", "noreply@haasonsaas.com"),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
