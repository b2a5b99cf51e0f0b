package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageSQLite = "sqlite"
	StorageDynamo = "dynamo"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	Location *time.Location // used for datetime-local listing inputs

	StorageDriver string
	SQLitePath    string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string
	SMSEnabled   bool

	AllowedOrigins []string // CORS allowed origins

	ChatSessionTTL   time.Duration
	VerifyRatePerSec float64
	VerifyRateBurst  int
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Listings string
	Claims   string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "4000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		Location: getEnvLocation("APP_TIMEZONE", time.UTC),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite)),
		SQLitePath:    getEnv("SQLITE_PATH", "./data.db"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Listings: getEnv("DYNAMO_TABLE_LISTINGS", "listings"),
			Claims:   getEnv("DYNAMO_TABLE_CLAIMS", "claims"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@nutribridge.local"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),
		SMSEnabled:   getEnvBool("SMS_ENABLED", false),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		ChatSessionTTL:   time.Duration(getEnvInt("CHAT_SESSION_TTL_MINUTES", 30)) * time.Minute,
		VerifyRatePerSec: getEnvFloat("VERIFY_RATE_PER_SEC", 1),
		VerifyRateBurst:  getEnvInt("VERIFY_RATE_BURST", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvLocation(key string, fallback *time.Location) *time.Location {
	if v := os.Getenv(key); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			return loc
		}
	}
	return fallback
}
