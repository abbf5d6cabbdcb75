package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nutrisync/nutrisync-bot/internal/bot"
	"github.com/nutrisync/nutrisync-bot/internal/bot/handlers"
	"github.com/nutrisync/nutrisync-bot/internal/bot/state"
	"github.com/nutrisync/nutrisync-bot/internal/config"
	"github.com/nutrisync/nutrisync-bot/internal/database"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	"github.com/nutrisync/nutrisync-bot/internal/logger"
	"github.com/nutrisync/nutrisync-bot/internal/repository"
	"github.com/nutrisync/nutrisync-bot/internal/services"
)

func main() {
	// Missing .env is fine in container deployments, env comes from the runtime.
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	logger.Info("Starting Nutri-Sync bot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage. Demo mode keeps everything in process memory, production wires
	// Postgres behind the same interfaces.
	var (
		persistence domain.PersistenceService
		users       domain.UserRepository
		ledger      domain.PaymentLedger
	)
	if cfg.App.DemoMode {
		logger.Info("Demo mode: using in-memory storage")
		mem := repository.NewMemory(cfg.App.StartingCredits)
		persistence, users, ledger = mem, mem, mem
	} else {
		db, err := database.NewPostgresDB(cfg.DB)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err)
		}
		logger.Info("Database connection established and migrations completed")
		pg := repository.NewPostgres(db, cfg.App.StartingCredits)
		persistence, users, ledger = pg, pg, pg
	}

	// Conversation state. Redis survives restarts; in-memory is the default.
	var stateManager state.StateManager
	if cfg.Redis.Enabled {
		redisManager, err := state.NewRedisManager(cfg.Redis.Host, cfg.Redis.Port)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisManager.Close()
		stateManager = redisManager
		logger.Info("Using Redis state manager")
	} else {
		stateManager = state.NewManager()
	}

	aiService, err := services.NewAIService(ctx, cfg.GeminiAPIKey, cfg.OpenAIAPIKey)
	if err != nil {
		logger.Fatal("Failed to initialize AI service", "error", err)
	}

	userService := services.NewUserService(users)
	historyService := services.NewHistoryService(persistence, cfg.App.HistoryLimit)
	entitlementService := services.NewEntitlementService(persistence)
	analysisService := services.NewAnalysisService(aiService, historyService, entitlementService)
	paymentService := services.NewPaymentService(cfg.Payment, ledger)
	logger.Info("Services initialized")

	deps := handlers.Dependencies{
		UserService:    userService,
		AnalysisSvc:    analysisService,
		HistorySvc:     historyService,
		EntitlementSvc: entitlementService,
		PaymentSvc:     paymentService,
		Sessions:       services.NewSessionRegistry(),
		Uploads:        state.NewUploads(),
	}

	telegramBot, err := bot.New(cfg.TelegramToken, deps, stateManager)
	if err != nil {
		logger.Fatal("Failed to create bot", "error", err)
	}

	if err := telegramBot.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("Bot stopped with error", "error", err)
	}
	logger.Info("Shutdown complete")
	os.Exit(0)
}
