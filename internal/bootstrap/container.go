package bootstrap

import (
	"context"
	"log"

	"medivault-be/internal/config"
	"medivault-be/internal/controller"
	"medivault-be/internal/pkg/logger"
	"medivault-be/internal/repository/contract"
	"medivault-be/internal/repository/memory"
	redisrepo "medivault-be/internal/repository/redis"
	"medivault-be/internal/repository/unitofwork"
	"medivault-be/internal/service"
	"medivault-be/pkg/llm/factory"

	pktNats "medivault-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SearchController   controller.ISearchController
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.HuggingFaceAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Session store backing per config; memory is the default and needs
	// no external service.
	var sessionStore contract.SessionStore
	if cfg.Session.Backing == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessionStore = redisrepo.NewSessionRepository(rdb, cfg.Session.TTL)
		log.Printf("[INFO] Using Session Backing: REDIS")
	} else {
		sessionStore = memory.NewSessionRepository(cfg.Session.TTL)
		log.Printf("[INFO] Using Session Backing: MEMORY")
	}

	// NATS is optional: telemetry forwarding degrades to log-only.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 3. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.SearchTelemetryTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.SearchTelemetryTopic,
		sysLogger,
		natsPub,
	)

	searchService := service.NewSearchService(
		uowFactory,
		llmProvider,
		sessionStore,
		publisherService,
		cfg.Ai.GenerateTimeout,
	)
	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		sessionStore,
		sysLogger,
		cfg.Ai.GenerateTimeout,
	)
	documentService := service.NewDocumentService(uowFactory)

	// 4. Controllers
	return &Container{
		SearchController:   controller.NewSearchController(searchService),
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),

		ConsumerService: consumerService,
	}
}
