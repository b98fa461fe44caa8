package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/cosealhq/coseal/internal/auth"
	"github.com/cosealhq/coseal/internal/config"
	"github.com/cosealhq/coseal/internal/mailer"
	"github.com/cosealhq/coseal/internal/repository"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type ConsumerContext struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// JWTService manages JWT operations for authentication such as generate, verify, refresh token.
	JWTService auth.JWTInterface

	Mailer mailer.Client

	Queue *RabbitMQ

	S3 *minio.Client
}

// FinalizePayload asks a consumer to compose the stamped final artifact for a
// completed signing request. Composition is at-least-once, re-delivery of the
// same request id is harmless.
type FinalizePayload struct {
	RequestID string `json:"request_id"`
	CreatedAt string `json:"created_at"`
	Retry     int    `json:"retry" default:"0"`
}

func NewFinalizePayload(requestId string) FinalizePayload {
	return FinalizePayload{
		RequestID: requestId,
		CreatedAt: time.Now().Format(time.RFC3339),
		Retry:     0,
	}
}

type FinalizeJobHandler func(jobPayload FinalizePayload, app *ConsumerContext) (bool, error)

func (r *RabbitMQ) PublishFinalizeJob(payload FinalizePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return r.Publish(QueueComposeFinalize, body)
}

func (r *RabbitMQ) ConsumeFinalizeJob(handler FinalizeJobHandler, maxWorker int, app *ConsumerContext) error {
	msgs, err := r.Consume(QueueComposeFinalize)
	if err != nil {
		return err
	}

	for i := range maxWorker {
		go func(workerID int) {
			for msg := range msgs {
				if msg.Body == nil {
					log.Printf("[Worker %d] Received empty message body", workerID)
					_ = r.Nack(msg, false)
					continue
				}

				var jobPayload FinalizePayload
				if err := json.Unmarshal(msg.Body, &jobPayload); err != nil {
					log.Printf("[Worker %d] Invalid payload: %v", workerID, err)
					_ = r.Nack(msg, false)
					continue
				}

				jobPayload.Retry++
				if jobPayload.Retry > MAX_QUEUE_RETRY {
					log.Printf("[Worker %d] Max retries reached for request %s", workerID, jobPayload.RequestID)
					_ = r.Nack(msg, false)
					continue
				}
				lastRetry := jobPayload.Retry == MAX_QUEUE_RETRY

				shouldRequeue, err := handler(jobPayload, app)
				if err != nil {
					log.Printf("[Worker %d] Handler error: %v", workerID, err)

					if !shouldRequeue || lastRetry {
						// The request stays completed, the regenerate endpoint
						// can enqueue another finalize job later.
						log.Printf("[Worker %d] Dropped finalize job for request %s", workerID, jobPayload.RequestID)
						_ = r.Nack(msg, false)
						continue
					}

					payloadBytes, err := json.Marshal(jobPayload)
					if err != nil {
						log.Printf("[Worker %d] Failed to marshal job payload: %v", workerID, err)
						_ = r.Nack(msg, false)
						continue
					}

					// requeue with updated retry count
					if err := r.Publish(QueueComposeFinalize, payloadBytes); err != nil {
						log.Printf("[Worker %d] Failed to requeue job: %v", workerID, err)
						_ = r.Nack(msg, false)
						continue
					}

					log.Printf("[Worker %d] Requeued finalize job for request %s, retry: %d", workerID, jobPayload.RequestID, jobPayload.Retry)
					_ = r.Ack(msg)
					continue
				}

				log.Printf("[Worker %d] Successfully finalized request %s", workerID, jobPayload.RequestID)
				_ = r.Ack(msg)
			}
		}(i + 1)
	}

	return nil
}
