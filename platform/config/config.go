// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// AuthConfig provides settings for the single-user board login.
type AuthConfig interface {
	GetJWTSecret() string
	GetBoardPasswordHash() string
	GetAccessTokenTTL() time.Duration
}

// ClickUpConfig provides settings for the ClickUp task feed.
type ClickUpConfig interface {
	GetClickUpAPIKey() string
	GetClickUpListID() string
	IsClickUpEnabled() bool
}

// WebhookConfig provides settings for the ClickUp webhook receiver.
type WebhookConfig interface {
	GetClickUpWebhookSecret() string
}

// SchedulerConfig provides settings for the asynq job scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetSyncCronSpec() string
	GetReengagementCronSpec() string
	GetDigestCronSpec() string
}

// EmailConfig provides settings for the pipeline digest email.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromAddress() string
	GetDigestToAddress() string
}

// ArchiveStorageConfig provides settings for S3-compatible deal-file archival.
type ArchiveStorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOBucketDealFiles() string
	IsArchiveStorageEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	JWTSecret            string
	BoardPasswordHash    string
	AccessTokenTTL       time.Duration
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	ClickUpAPIKey        string
	ClickUpListID        string
	ClickUpWebhookSecret string
	RedisURL             string
	AsynqQueueName       string
	AsynqConcurrency     int
	SyncCronSpec         string
	ReengagementCronSpec string
	DigestCronSpec       string
	EmailEnabled         bool
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	EmailFromAddress     string
	DigestToAddress      string
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinIOBucketDealFiles string
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		BoardPasswordHash:    getEnv("BOARD_PASSWORD_HASH", ""),
		AccessTokenTTL:       mustDuration(getEnv("JWT_ACCESS_TTL", "12h")),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		ClickUpAPIKey:        getEnv("CLICKUP_API_KEY", ""),
		ClickUpListID:        getEnv("CLICKUP_LIST_ID", ""),
		ClickUpWebhookSecret: getEnv("CLICKUP_WEBHOOK_SECRET", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		SyncCronSpec:         getEnv("SYNC_CRON", "0 */6 * * *"),
		ReengagementCronSpec: getEnv("REENGAGEMENT_CRON", "0 8 * * 1"),
		DigestCronSpec:       getEnv("DIGEST_CRON", "0 7 * * *"),
		EmailEnabled:         strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true"),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		EmailFromAddress:     getEnv("EMAIL_FROM_ADDRESS", ""),
		DigestToAddress:      getEnv("DIGEST_TO_ADDRESS", ""),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOBucketDealFiles: getEnv("MINIO_BUCKET_DEAL_FILES", "deal-files"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.EmailEnabled && (cfg.SMTPHost == "" || cfg.EmailFromAddress == "" || cfg.DigestToAddress == "") {
		return nil, fmt.Errorf("SMTP_HOST, EMAIL_FROM_ADDRESS and DIGEST_TO_ADDRESS are required when EMAIL_ENABLED is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetJWTSecret() string             { return c.JWTSecret }
func (c *Config) GetBoardPasswordHash() string     { return c.BoardPasswordHash }
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

func (c *Config) GetClickUpAPIKey() string { return c.ClickUpAPIKey }
func (c *Config) GetClickUpListID() string { return c.ClickUpListID }
func (c *Config) IsClickUpEnabled() bool {
	return c.ClickUpAPIKey != "" && c.ClickUpListID != ""
}

func (c *Config) GetClickUpWebhookSecret() string { return c.ClickUpWebhookSecret }

func (c *Config) GetRedisURL() string             { return c.RedisURL }
func (c *Config) GetAsynqQueueName() string       { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int        { return c.AsynqConcurrency }
func (c *Config) GetSyncCronSpec() string         { return c.SyncCronSpec }
func (c *Config) GetReengagementCronSpec() string { return c.ReengagementCronSpec }
func (c *Config) GetDigestCronSpec() string       { return c.DigestCronSpec }

func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetDigestToAddress() string  { return c.DigestToAddress }

func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinIOBucketDealFiles() string { return c.MinIOBucketDealFiles }
func (c *Config) IsArchiveStorageEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
