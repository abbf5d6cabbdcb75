package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nutrisync/nutrisync-bot/internal/logger"
)

type Config struct {
	TelegramToken string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	DB            DBConfig
	Redis         RedisConfig
	Logger        LoggerConfig
	App           AppConfig
	Payment       PaymentConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Enabled bool
	Host    string
	Port    string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

type AppConfig struct {
	// HistoryLimit caps each user's history log. Deployed values have been
	// 10 and 50; default follows the larger configuration.
	HistoryLimit int
	// StartingCredits is the FREE-tier allowance granted on registration.
	StartingCredits int
	// DemoMode swaps Postgres for the in-memory store, matching the original
	// simulated-persistence behavior.
	DemoMode bool
}

type PaymentConfig struct {
	PayPalID        string
	PayPalLink      string
	UPIAddress      string
	ProPriceUSD     float64
	USDToINR        float64
	MinReferenceLen int
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "nutrisync"),
		},
		Redis: RedisConfig{
			Enabled: getEnvBool("REDIS_ENABLED"),
			Host:    getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:    getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "logs/app.log"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			HistoryLimit:    getEnvIntOrDefault("HISTORY_LIMIT", 50),
			StartingCredits: getEnvIntOrDefault("STARTING_CREDITS", 3),
			DemoMode:        getEnvBool("DEMO_MODE"),
		},
		Payment: PaymentConfig{
			PayPalID:        getEnvOrDefault("PAYPAL_ID", "billing@nutrisync.example"),
			PayPalLink:      getEnvOrDefault("PAYPAL_LINK", "https://paypal.me/nutrisyncpro"),
			UPIAddress:      getEnvOrDefault("UPI_ADDRESS", "nutrisync@paytm"),
			ProPriceUSD:     19.99,
			USDToINR:        83.5,
			MinReferenceLen: 6,
		},
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.App.HistoryLimit <= 0 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", cfg.App.HistoryLimit)
	}

	return cfg, nil
}
