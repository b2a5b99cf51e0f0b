package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("S3_BUCKET_NAME", "")
	cfg := Load()
	assert.Equal(t, "4000", cfg.AppPort)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 30*time.Minute, cfg.ChatSessionTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.SMSEnabled)
	assert.Empty(t, cfg.S3BucketName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "DYNAMO")
	t.Setenv("SMS_ENABLED", "true")
	t.Setenv("VERIFY_RATE_BURST", "9")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	cfg := Load()
	assert.Equal(t, StorageDynamo, cfg.StorageDriver)
	assert.True(t, cfg.SMSEnabled)
	assert.Equal(t, 9, cfg.VerifyRateBurst)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("VERIFY_RATE_BURST", "lots")
	t.Setenv("APP_TIMEZONE", "Not/AZone")
	cfg := Load()
	assert.Equal(t, 5, cfg.VerifyRateBurst)
	assert.Equal(t, time.UTC, cfg.Location)
}
