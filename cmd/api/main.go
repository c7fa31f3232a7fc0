package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Manav129/RAG-CHATBOT/internal/api/handlers"
	"github.com/Manav129/RAG-CHATBOT/internal/cache/redis"
	"github.com/Manav129/RAG-CHATBOT/internal/chat"
	"github.com/Manav129/RAG-CHATBOT/internal/ingestion"
	"github.com/Manav129/RAG-CHATBOT/internal/llm"
	"github.com/Manav129/RAG-CHATBOT/internal/metrics"
	"github.com/Manav129/RAG-CHATBOT/internal/middleware/ratelimit"
	"github.com/Manav129/RAG-CHATBOT/internal/middleware/security"
	"github.com/Manav129/RAG-CHATBOT/internal/middleware/validation"
	"github.com/Manav129/RAG-CHATBOT/internal/storage/tickets"
	"github.com/Manav129/RAG-CHATBOT/internal/vector/milvus"
	"github.com/Manav129/RAG-CHATBOT/pkg/config"
	appLogger "github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting customer support agent API server")

	if cfg.LLM.APIKey == "" {
		appLogger.Fatal("llm.apiKey is required (SUPPORT_AGENT_LLM_APIKEY)")
	}

	metrics.Init()

	db, err := openDatabase(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to open ticket database", zap.Error(err))
	}

	ticketStore, err := tickets.NewStore(db)
	if err != nil {
		appLogger.Fatal("Failed to initialize ticket store", zap.Error(err))
	}

	vectorDB, err := milvus.NewClient(
		cfg.Vector.Endpoint,
		cfg.Vector.APIKey,
		cfg.Vector.CollectionName,
		cfg.Vector.VectorDim,
	)
	if err != nil {
		appLogger.Fatal("Failed to create vector store client", zap.Error(err))
	}
	defer vectorDB.Close()

	if err := vectorDB.EnsureCollection(context.Background()); err != nil {
		appLogger.Fatal("Failed to prepare vector collection", zap.Error(err))
	}

	llmClient := llm.NewClient(llm.Options{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
	})

	var cacheClient *redis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	var answerCache chat.AnswerCache
	if cacheClient != nil {
		answerCache = cacheClient
	}

	processor := ingestion.NewProcessor(
		vectorDB,
		llmClient,
		cfg.Documents.Directory,
		cfg.Documents.ChunkSize,
		cfg.Documents.ChunkOverlap,
	)

	pipeline := chat.NewPipeline(
		llmClient,
		vectorDB,
		answerCache,
		cfg.RAG.TopK,
		time.Duration(cfg.Redis.CacheTTL)*time.Second,
	)

	chatHandler := handlers.NewChatHandler(pipeline, ticketStore)
	ticketHandler := handlers.NewTicketHandler(ticketStore)
	documentHandler := handlers.NewDocumentHandler(processor, cacheClient)
	systemHandler := handlers.NewSystemHandler(pipeline, ticketStore)
	wsHandler := handlers.NewWebSocketHandler(pipeline, ticketStore)

	limiter := ratelimit.New(ratelimit.Config{})
	defer limiter.Stop()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{}))

	app.Get("/health", systemHandler.HandleHealth)
	app.Get("/stats", systemHandler.HandleStats)
	app.Get("/metrics", metrics.Handler())

	app.Post("/ingest", documentHandler.HandleIngest)
	app.Post("/chat", chatHandler.HandleChat)

	app.Post("/tickets", ticketHandler.HandleCreate)
	app.Get("/tickets", ticketHandler.HandleList)
	app.Get("/tickets/:id", ticketHandler.HandleGet)
	app.Patch("/tickets/:id", ticketHandler.HandleUpdate)
	app.Delete("/tickets/:id", ticketHandler.HandleDelete)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{})
	case "mysql":
		return gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
