package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"lexaid-server/internal/config"
	"lexaid-server/internal/domain/chat"
	"lexaid-server/internal/domain/document"
	"lexaid-server/internal/infrastructure/auth"
	"lexaid-server/internal/infrastructure/database"
	"lexaid-server/internal/infrastructure/llmprovider"
	"lexaid-server/internal/infrastructure/logger"
	"lexaid-server/internal/infrastructure/observability"
	"lexaid-server/internal/infrastructure/queue"
	chatrepo "lexaid-server/internal/infrastructure/repository/chat"
	documentrepo "lexaid-server/internal/infrastructure/repository/document"
	"lexaid-server/internal/infrastructure/storage"
	"lexaid-server/internal/interfaces/httpserver"
	"lexaid-server/internal/webhook"
	"lexaid-server/internal/worker"
)

// @title LexAid API
// @version 1.0
// @description Legal assistance backend with authenticated conversations, LLM replies and document simplification.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	conversationRepository := chatrepo.NewConversationRepository(db)
	messageRepository := chatrepo.NewMessageRepository(db)
	documentRepository := documentrepo.NewRepository(db)

	llmClient := llmprovider.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMTimeout)

	documentStorage, err := storage.NewS3Storage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize document storage")
	}

	chatService := chat.NewService(
		conversationRepository,
		messageRepository,
		llmClient,
		cfg.LLMDefaultModel,
		log,
	)

	documentService := document.NewService(
		documentRepository,
		documentStorage,
		llmClient,
		cfg.LLMDefaultModel,
		cfg.MaxDocumentBytes,
		log,
	)

	webhookService := webhook.NewHTTPService(log)

	taskQueue := queue.NewPostgresQueue(db, log)
	workerPool := worker.NewPool(
		taskQueue,
		documentService,
		webhookService,
		worker.Config{
			WorkerCount: cfg.SimplifyWorkers,
			TaskTimeout: cfg.SimplifyTimeout,
		},
		log,
	)

	workerPool.Start(ctx)
	defer func() {
		log.Info().Msg("stopping worker pool")
		workerPool.Stop()
	}()

	httpServer := httpserver.New(cfg, log, chatService, documentService, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
