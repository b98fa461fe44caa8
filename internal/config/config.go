package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cosealhq/coseal/internal/env"
)

type Config struct {
	Port        string
	ENV         string
	DB          DatabaseConfig
	Minio       MinioConfig
	RabbitMQ    RabbitMQConfig
	RateLimiter RateLimiterConfig
	Mail        MailConfig
	Auth        AuthConfig
	Signing     SigningConfig
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type AuthConfig struct {
	JWT_SECRET string
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type MinioConfig struct {
	ENDPOINT   string
	ACCESS_KEY string
	SECRET_KEY string
	BUCKET     string
	USE_SSL    bool
}

type RabbitMQConfig struct {
	HOST     string
	PORT     string
	USERNAME string
	PASSWORD string
}

func (r RabbitMQConfig) GetConnectionString() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.USERNAME, r.PASSWORD, r.HOST, r.PORT)
}

type MailConfig struct {
	SEND_GRID  SendGridConfig
	GMAIL      GmailConfig
	FROM_EMAIL string
}

type SendGridConfig struct {
	API_KEY string
}

type GmailConfig struct {
	USERNAME string
	PASSWORD string
}

type SigningConfig struct {
	// Default ordering policy for new requests, overridable per request.
	StrictOrder bool
	// Pattern for the human-readable verification URL printed next to the
	// QR code, receives the QR payload.
	VerifyURLPattern string
	// Pattern for the signing page linked from signer emails, receives the
	// request id.
	SignURLPattern string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func GetConfig() Config {
	rateLimiteTimeFrame, err := time.ParseDuration(env.GetString("RATE_LIMIT_TIME_FRAME", "1m"))
	if err != nil {
		rateLimiteTimeFrame = 60 * time.Second
	}

	return Config{
		Port: env.GetString("PORT", "8080"),
		ENV:  env.GetString("ENV", "development"),
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "root"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "coseal"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		Minio: MinioConfig{
			ENDPOINT:   env.GetString("MINIO_ENDPOINT", "127.0.0.1:9000"),
			ACCESS_KEY: env.GetString("MINIO_ACCESS_KEY", ""),
			SECRET_KEY: env.GetString("MINIO_SECRET_KEY", ""),
			BUCKET:     env.GetString("MINIO_BUCKET", "coseal"),
			USE_SSL:    env.GetBool("MINIO_USE_SSL", false),
		},
		RabbitMQ: RabbitMQConfig{
			HOST:     env.GetString("RABBITMQ_HOST", "127.0.0.1"),
			PORT:     env.GetString("RABBITMQ_PORT", "5672"),
			USERNAME: env.GetString("RABBITMQ_USERNAME", "guest"),
			PASSWORD: env.GetString("RABBITMQ_PASSWORD", "guest"),
		},
		// By default if not specified, we allow 5000 requests per minute on all routes
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame: env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:            rateLimiteTimeFrame,
			Enabled:              env.GetBool("RATE_LIMIT_ENABLED", true),
		},
		Mail: MailConfig{
			FROM_EMAIL: env.GetString("MAIL_FROM_MAIL", ""),
			SEND_GRID: SendGridConfig{
				API_KEY: env.GetString("MAIL_SEND_GRID_API_KEY", ""),
			},
			GMAIL: GmailConfig{
				USERNAME: env.GetString("MAIL_GMAIL_USERNAME", ""),
				PASSWORD: env.GetString("MAIL_GMAIL_PASSWORD", ""),
			},
		},
		Auth: AuthConfig{
			JWT_SECRET: env.GetString("AUTH_JWT_SECRET", ""),
		},
		Signing: SigningConfig{
			StrictOrder:      env.GetBool("SIGNING_STRICT_ORDER", true),
			VerifyURLPattern: env.GetString("SIGNING_VERIFY_URL_PATTERN", "http://localhost:8080/api/v1/verify/%s"),
			SignURLPattern:   env.GetString("SIGNING_SIGN_URL_PATTERN", "http://localhost:3000/requests/%s/sign"),
		},
	}
}
