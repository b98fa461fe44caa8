package main

import (
	"github.com/cosealhq/coseal/internal/auth"
	"github.com/cosealhq/coseal/internal/config"
	"github.com/cosealhq/coseal/internal/database"
	"github.com/cosealhq/coseal/internal/env"
	filestorage "github.com/cosealhq/coseal/internal/file_storage"
	"github.com/cosealhq/coseal/internal/mailer"
	"github.com/cosealhq/coseal/internal/queue"
	"github.com/cosealhq/coseal/internal/repository"
	"github.com/cosealhq/coseal/internal/signing"
	"github.com/cosealhq/coseal/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
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
	logger.Info("Minio connected \n")

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

	app := queue.ConsumerContext{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		JWTService: jwtService,
		Mailer:     mail,
		Queue:      rabbitMQ,
		S3:         s3,
	}

	maxWorkers := util.DetermineWorkers(0)
	if err := rabbitMQ.ConsumeFinalizeJob(signing.FinalizeRequest, maxWorkers, &app); err != nil {
		logger.Panic("Error consuming finalize jobs: ", err)
	}

	logger.Infof("Compose consumer started with %d workers", maxWorkers)
	select {}
}
