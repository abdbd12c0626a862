//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lexaid-server/internal/config"
	"lexaid-server/internal/domain/chat"
	"lexaid-server/internal/domain/document"
	"lexaid-server/internal/domain/llm"
	"lexaid-server/internal/infrastructure/auth"
	"lexaid-server/internal/infrastructure/database"
	"lexaid-server/internal/infrastructure/llmprovider"
	"lexaid-server/internal/infrastructure/logger"
	chatrepo "lexaid-server/internal/infrastructure/repository/chat"
	documentrepo "lexaid-server/internal/infrastructure/repository/document"
	"lexaid-server/internal/infrastructure/storage"
	"lexaid-server/internal/interfaces/httpserver"
	"lexaid-server/internal/webhook"
)

var serviceSet = wire.NewSet(
	chatrepo.NewConversationRepository,
	wire.Bind(new(chat.Repository), new(*chatrepo.ConversationRepository)),
	chatrepo.NewMessageRepository,
	wire.Bind(new(chat.MessageRepository), new(*chatrepo.MessageRepository)),
	documentrepo.NewRepository,
	wire.Bind(new(document.Repository), new(*documentrepo.Repository)),
	newDocumentStorage,
	wire.Bind(new(document.Storage), new(*storage.S3Storage)),
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	newWebhookService,
	wire.Bind(new(webhook.Service), new(*webhook.HTTPService)),
	newChatService,
	newDocumentService,
)

// BuildApplication demonstrates how to assemble the service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		serviceSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newLLMProvider(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMTimeout)
}

func newDocumentStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage.S3Storage, error) {
	return storage.NewS3Storage(ctx, cfg, log)
}

func newWebhookService(log zerolog.Logger) *webhook.HTTPService {
	return webhook.NewHTTPService(log)
}

func newChatService(
	conversations chat.Repository,
	messages chat.MessageRepository,
	provider llm.Provider,
	cfg *config.Config,
	log zerolog.Logger,
) chat.Service {
	return chat.NewService(conversations, messages, provider, cfg.LLMDefaultModel, log)
}

func newDocumentService(
	documents document.Repository,
	docStorage document.Storage,
	provider llm.Provider,
	cfg *config.Config,
	log zerolog.Logger,
) document.Service {
	return document.NewService(documents, docStorage, provider, cfg.LLMDefaultModel, cfg.MaxDocumentBytes, log)
}
