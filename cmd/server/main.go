package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/adapters/event"
	httpAdapter "github.com/roomnet/roomnet-api/adapters/http"
	"github.com/roomnet/roomnet-api/adapters/media_storage"
	"github.com/roomnet/roomnet-api/adapters/notify"
	"github.com/roomnet/roomnet-api/adapters/persistence"
	authUC "github.com/roomnet/roomnet-api/internal/application/usecase/auth"
	matchUC "github.com/roomnet/roomnet-api/internal/application/usecase/match"
	quizUC "github.com/roomnet/roomnet-api/internal/application/usecase/quiz"
	waitlistUC "github.com/roomnet/roomnet-api/internal/application/usecase/waitlist"
	"github.com/roomnet/roomnet-api/internal/config"
	"github.com/roomnet/roomnet-api/pkg/auth"
	"github.com/roomnet/roomnet-api/pkg/logger"
	"github.com/roomnet/roomnet-api/pkg/tracing"
)

func main() {

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	log := logger.NewZapLogger(cfg.App.Env)
	log.Info("Starting RoomNet API Server...", zap.String("env", cfg.App.Env))

	// Tracing is optional; the server runs without a collector.
	if cfg.Jaeger.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, log, "roomnet-api")
		if err != nil {
			log.Warn("Tracing disabled", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp, log)
		}
	}

	// Infrastructure
	dbPool, err := persistence.NewPostgresPool(cfg, log)
	if err != nil {
		log.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, log)
	if err != nil {
		log.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		log.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, log)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, log)
	waitlistRepo := persistence.NewPostgresWaitlistRepo(dbPool, log)
	matchRepo := persistence.NewPostgresMatchRepo(dbPool, log)
	draftStore := persistence.NewRedisDraftStore(redisClient, log)
	tokenStore := persistence.NewRedisTokenStore(redisClient)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize uploader", err)
	}
	mailer, err := notify.NewHTTPMailer(cfg)
	if err != nil {
		log.Fatal("Failed to initialize mailer", err)
	}

	// Use Cases
	signupUseCase := authUC.NewSignupUseCase(userRepo, tokenStore, mailer,
		cfg.Auth.VerifyTokenTTL, cfg.Auth.VerifyURLBase, log)
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, log)
	verifyUseCase := authUC.NewVerifyEmailUseCase(userRepo, tokenStore, log)
	resendUseCase := authUC.NewResendVerificationUseCase(userRepo, tokenStore, mailer,
		cfg.Auth.VerifyTokenTTL, cfg.Auth.VerifyURLBase, log)
	currentUserUseCase := authUC.NewCurrentUserUseCase(userRepo)
	joinWaitlistUseCase := waitlistUC.NewJoinUseCase(waitlistRepo, log)
	wizardUseCase := quizUC.NewWizardUseCase(draftStore, profileRepo, uploader, kafkaClient, log)
	listMatchesUseCase := matchUC.NewListMatchesUseCase(matchRepo)

	// HTTP Handlers
	authHandler := httpAdapter.NewAuthHandler(signupUseCase, loginUseCase, verifyUseCase, resendUseCase, currentUserUseCase)
	waitlistHandler := httpAdapter.NewWaitlistHandler(joinWaitlistUseCase)
	quizHandler := httpAdapter.NewQuizHandler(wizardUseCase)
	matchHandler := httpAdapter.NewMatchHandler(listMatchesUseCase)

	// Middleware
	authMiddleware := httpAdapter.AuthMiddleware(jwtSvc)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(httpAdapter.ErrorMiddleware(log))

	api := router.Group("/api")
	{

		public := api.Group("/")
		{
			public.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
			public.POST("/waitlist", waitlistHandler.Join)
			public.GET("/quiz/options", quizHandler.Options)

			authGroup := public.Group("/auth")
			{
				authGroup.POST("/signup", authHandler.Signup)
				authGroup.POST("/login", authHandler.Login)
				authGroup.GET("/verify", authHandler.VerifyEmail)
				authGroup.POST("/resend-verification", authHandler.ResendVerification)
			}
		}

		private := api.Group("/")
		private.Use(authMiddleware)
		{
			quiz := private.Group("/quiz")
			{
				quiz.GET("/draft", quizHandler.GetDraft)
				quiz.PATCH("/draft", quizHandler.EditDraft)
				quiz.POST("/image", quizHandler.AttachImage)
				quiz.POST("/next", quizHandler.Next)
				quiz.POST("/previous", quizHandler.Previous)
				quiz.POST("/submit", quizHandler.Submit)
			}

			private.GET("/auth/me", authHandler.Me)
			private.GET("/profile/status", quizHandler.CompletionStatus)
			private.GET("/matches", matchHandler.List)
		}
	}

	log.Info("Server running", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatal("Cannot run server", err)
	}
}
