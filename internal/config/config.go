// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/gamelens-api and cmd/gamelens-lambda.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is populated from environment variables. The env names match the
// deployment scripts; a .env file can supply them in local development
// (loaded by the caller via godotenv before Load runs).
type Config struct {
	// API server
	Host        string
	Port        int
	Environment string // development, staging, production

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// S3
	MediaBucket     string
	UploadURLExpiry time.Duration

	// Bedrock Data Automation
	DataAutomationProjectARN string
	DataAutomationProfileARN string // optional; derived from STS account when empty
	AnalysisPollInterval     time.Duration
	AnalysisTimeout          time.Duration

	// Bedrock Agent
	BedrockAgentID      string
	BedrockAgentAliasID string
}

// Load reads configuration from the environment and applies defaults.
// MediaBucket is the only hard requirement; Bedrock identifiers may be
// resolved later from SSM (see awsboot.LoadAgentConfig).
func Load() (*Config, error) {
	cfg := &Config{
		Host:        getEnv("API_HOST", "0.0.0.0"),
		Port:        getEnvInt("API_PORT", 8000),
		Environment: getEnv("ENVIRONMENT", "development"),

		CORSAllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),

		RateLimitEnabled:  getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		MediaBucket:     os.Getenv("AWS_BUCKET_NAME"),
		UploadURLExpiry: getEnvDuration("UPLOAD_URL_EXPIRY", time.Hour),

		DataAutomationProjectARN: os.Getenv("DATA_AUTOMATION_PROJECT_ARN"),
		DataAutomationProfileARN: os.Getenv("DATA_AUTOMATION_PROFILE_ARN"),
		AnalysisPollInterval:     getEnvDuration("ANALYSIS_POLL_INTERVAL", 30*time.Second),
		AnalysisTimeout:          getEnvDuration("ANALYSIS_TIMEOUT", 30*time.Minute),

		BedrockAgentID:      os.Getenv("BEDROCK_AGENT_ID"),
		BedrockAgentAliasID: getEnv("BEDROCK_AGENT_ALIAS_ID", "TSTALIASID"),
	}

	if cfg.MediaBucket == "" {
		return nil, fmt.Errorf("AWS_BUCKET_NAME environment variable is not set")
	}
	return cfg, nil
}

// --- env helpers ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
