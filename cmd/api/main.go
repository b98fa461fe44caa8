package main

import (
	appcontext "github.com/cosealhq/coseal/internal/app_context"
	"github.com/cosealhq/coseal/internal/auth"
	"github.com/cosealhq/coseal/internal/config"
	"github.com/cosealhq/coseal/internal/controller"
	"github.com/cosealhq/coseal/internal/database"
	"github.com/cosealhq/coseal/internal/env"
	filestorage "github.com/cosealhq/coseal/internal/file_storage"
	"github.com/cosealhq/coseal/internal/mailer"
	"github.com/cosealhq/coseal/internal/middleware"
	"github.com/cosealhq/coseal/internal/queue"
	ratelimiter "github.com/cosealhq/coseal/internal/rate_limiter"
	"github.com/cosealhq/coseal/internal/repository"
	"github.com/cosealhq/coseal/internal/route"
	"github.com/cosealhq/coseal/internal/signing"
	"github.com/cosealhq/coseal/internal/util"
	"github.com/cosealhq/coseal/internal/verification"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

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

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterCustomValidations(v); err != nil {
			logger.Panicf("Failed to register custom validations: %v", err)
		}
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()
	logger.Info("RabbitMQ connected \n")

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	mail := mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger, jwtService, s3)
	app := appcontext.Application{
		Config:       &cfg,
		Repository:   repo,
		Logger:       logger,
		Mailer:       mail,
		JWTService:   jwtService,
		Queue:        rabbitMQ,
		Signing:      signing.NewService(repo, logger, rabbitMQ, &cfg),
		Verification: verification.NewService(repo, logger),
		S3:           s3,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.ENV == "production" {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimitMiddleware)

	_controller := controller.NewController(&app)

	r.GET("/", _controller.Index.Index)

	rApi := r.Group("/api")

	route.V1_Index(rApi, _controller.Index)
	route.V1_Documents(rApi, _controller.Document, _middleware)
	route.V1_Requests(rApi, _controller.Request, _middleware)
	route.V1_Verify(rApi, _controller.Verification)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panic("Error running server: %v \n", err)
	}
}
