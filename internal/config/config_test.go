package config

import (
	"testing"

	"github.com/nutrisync/nutrisync-bot/internal/logger"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:test-token")
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 50, cfg.App.HistoryLimit)
	require.Equal(t, 3, cfg.App.StartingCredits)
	require.False(t, cfg.App.DemoMode)
	require.Equal(t, "localhost", cfg.DB.Host)
	require.Equal(t, "5432", cfg.DB.Port)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, logger.LevelInfo, cfg.Logger.Level)
	require.InDelta(t, 19.99, cfg.Payment.ProPriceUSD, 0.001)
	require.InDelta(t, 83.5, cfg.Payment.USDToINR, 0.001)
	require.Equal(t, 6, cfg.Payment.MinReferenceLen)
}

func TestLoad_MissingTelegramToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoad_MissingGeminiKey(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:test-token")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HISTORY_LIMIT", "10")
	t.Setenv("STARTING_CREDITS", "5")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("REDIS_ENABLED", "1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.App.HistoryLimit)
	require.Equal(t, 5, cfg.App.StartingCredits)
	require.True(t, cfg.App.DemoMode)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, logger.LevelDebug, cfg.Logger.Level)
}

func TestLoad_InvalidHistoryLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HISTORY_LIMIT", "-5")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "HISTORY_LIMIT")
}
