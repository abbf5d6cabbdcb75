package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nutrisync/nutrisync-bot/internal/bot/menus"
	"github.com/nutrisync/nutrisync-bot/internal/bot/state"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	"github.com/nutrisync/nutrisync-bot/internal/logger"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.UserProfile) error {
	logger.Infof("Handling command %s from user %d", message.Command(), user.ID)

	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(user.TelegramID, state.None)
		h.deps.Uploads.Clear(user.TelegramID)
		h.deps.Sessions.Session(user.TelegramID).Reset()

		// Hydrate history from storage so the first /history tap is instant.
		if err := h.deps.HistorySvc.Load(ctx, user.OwnerID()); err != nil {
			logger.Error("History hydration failed", "owner_id", user.OwnerID(), "error", err)
		}
		return menus.SendMainMenu(h.api, message.Chat.ID, user)
	case "help":
		return h.handleHelp(message.Chat.ID)
	default:
		return h.handleUnknownCommand(message.Chat.ID)
	}
}

// handleHelp handles the /help command
func (h *CommandHandler) handleHelp(chatID int64) error {
	text := `Available commands:
/start - Show the main menu
/help - Show this message

How an analysis works:
1. Press "🧪 New Analysis"
2. Send your lab reports (photos or PDF documents)
3. Press Done, then send photos of your meal
4. Press "🔬 Analyze Bio-Compatibility"

Every verdict is cross-referenced against YOUR biomarker values. To remove an upload before running, reply with its number.

Free accounts include 3 analyses. Upgrade to Pro in the Wallet for unlimited access.`

	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.api.Send(msg)
	return err
}

// handleUnknownCommand handles unrecognized commands
func (h *CommandHandler) handleUnknownCommand(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see what I can do.")
	_, err := h.api.Send(msg)
	return err
}
