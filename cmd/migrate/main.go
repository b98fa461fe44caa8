package main

import (
	"github.com/cosealhq/coseal/internal/config"
	"github.com/cosealhq/coseal/internal/database"
	"github.com/cosealhq/coseal/internal/env"
	"github.com/cosealhq/coseal/internal/model"
	"go.uber.org/zap"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()
	cfg := config.GetConfig()

	logger.Infof("Database configuration: %+v", cfg.DB)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	db.Exec(`CREATE EXTENSION IF NOT EXISTS citext`)

	migrateErr := db.AutoMigrate(
		&model.Document{},
		&model.SigningRequest{},
		&model.SignerSlot{},
		&model.VerificationRecord{},
	)
	if migrateErr != nil {
		logger.Panic(migrateErr)
	}
}
