package appcontext

import (
	"github.com/cosealhq/coseal/internal/auth"
	"github.com/cosealhq/coseal/internal/config"
	"github.com/cosealhq/coseal/internal/mailer"
	"github.com/cosealhq/coseal/internal/queue"
	"github.com/cosealhq/coseal/internal/repository"
	"github.com/cosealhq/coseal/internal/signing"
	"github.com/cosealhq/coseal/internal/verification"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	// JWTService manages JWT operations for authentication such as generate, verify, refresh token.
	JWTService auth.JWTInterface

	// Queue publishes compose and mail jobs to RabbitMQ.
	Queue *queue.RabbitMQ

	// Signing drives signing request state transitions.
	Signing *signing.Service

	// Verification answers verify lookups and records them.
	Verification *verification.Service

	S3 *minio.Client
}
