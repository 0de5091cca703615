package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration values from environment variables. A .env
// file in the working directory is loaded first if present; real environment
// variables win over the file.
//
// Recognized variables:
//
//	SERVER_ADDRESS               HTTP bind address
//	DATABASE_DSN                 PostgreSQL DSN
//	SECRET_KEY                   JWT HMAC secret
//	ACCESS_TOKEN_EXPIRE_MINUTES  access token validity, minutes
//	RABBITMQ_URL                 AMQP connection string
//	OUTBOX_POLL_INTERVAL_SECONDS outbox poll interval, seconds
//	OUTBOX_BATCH_SIZE            outbox batch size
//	S3_ROOT_USER / S3_ROOT_PASSWORD / S3_BUCKET / S3_REGION / S3_BASE_ENDPOINT
func parseEnv(config *Config) {
	// allow env-only deployments, missing .env is not an error
	_ = godotenv.Load()

	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.AccessTokenValidityDuration = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		config.AMQPUrl = v
	}
	if v := os.Getenv("OUTBOX_POLL_INTERVAL_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			config.OutboxPollInterval = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("OUTBOX_BATCH_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.OutboxBatchSize = size
		}
	}
	if v := os.Getenv("S3_ROOT_USER"); v != "" {
		config.S3RootUser = v
	}
	if v := os.Getenv("S3_ROOT_PASSWORD"); v != "" {
		config.S3RootPassword = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.S3Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("S3_BASE_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
}
