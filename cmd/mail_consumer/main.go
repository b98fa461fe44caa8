package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cosealhq/coseal/internal/auth"
	"github.com/cosealhq/coseal/internal/config"
	"github.com/cosealhq/coseal/internal/database"
	"github.com/cosealhq/coseal/internal/env"
	filestorage "github.com/cosealhq/coseal/internal/file_storage"
	"github.com/cosealhq/coseal/internal/mailer"
	"github.com/cosealhq/coseal/internal/queue"
	"github.com/cosealhq/coseal/internal/repository"
	"github.com/cosealhq/coseal/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const MAX_WORKERS = 3

func handleMailJob(ctx context.Context, jobPayload queue.MailJobPayload, app *queue.MailConsumerContext) (bool, error) {
	var data any
	switch jobPayload.TemplateFile {
	case mailer.TemplateSignerTurn:
		var d mailer.SignerTurnData
		if err := json.Unmarshal(jobPayload.Data, &d); err != nil {
			return false, err
		}
		data = d
	case mailer.TemplateRequestCompleted:
		var d mailer.RequestCompletedData
		if err := json.Unmarshal(jobPayload.Data, &d); err != nil {
			return false, err
		}
		data = d
	case mailer.TemplateRequestRejected:
		var d mailer.RequestRejectedData
		if err := json.Unmarshal(jobPayload.Data, &d); err != nil {
			return false, err
		}
		data = d
	default:
		return false, fmt.Errorf("unknown mail template: %s", jobPayload.TemplateFile)
	}

	if _, err := app.Mailer.Send(jobPayload.TemplateFile, jobPayload.ToEmail, data); err != nil {
		return true, err
	}

	return false, nil
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger, jwtService, s3)
	mail := mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	logger.Info("RabbitMQ connected \n")
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()

	app := queue.MailConsumerContext{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
	}

	ctx := context.Background()
	if err := rabbitMQ.ConsumeMailJob(ctx, handleMailJob, MAX_WORKERS, &app); err != nil {
		logger.Panic("Error consuming mail jobs: ", err)
	}

	logger.Infof("Mail consumer started with %d workers", MAX_WORKERS)
	select {}
}
