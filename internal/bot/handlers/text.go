package handlers

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nutrisync/nutrisync-bot/internal/bot/keyboards"
	"github.com/nutrisync/nutrisync-bot/internal/bot/menus"
	"github.com/nutrisync/nutrisync-bot/internal/bot/state"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	"github.com/nutrisync/nutrisync-bot/internal/ingest"
	"github.com/nutrisync/nutrisync-bot/internal/logger"
)

// TextHandler handles text messages
type TextHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.UserProfile) error {
	switch h.stateManager.GetUserState(user.TelegramID) {
	case state.CollectingReports:
		return h.handleRemoval(message, user, h.deps.Uploads.Reports(user.TelegramID), func(count int) error {
			return menus.SendCollectingReports(h.api, message.Chat.ID, count)
		})
	case state.CollectingFood:
		return h.handleRemoval(message, user, h.deps.Uploads.Foods(user.TelegramID), func(count int) error {
			return menus.SendCollectingFood(h.api, message.Chat.ID, count)
		})
	case state.AwaitingTxID:
		return h.handleTransactionID(ctx, message, user)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Please use the menu buttons, or /start to begin.")
		_, err := h.api.Send(msg)
		return err
	}
}

// handleRemoval interprets a bare number as "remove upload #N" during
// collection. Numbering is 1-based as shown to the user.
func (h *TextHandler) handleRemoval(message *tgbotapi.Message, user *domain.UserProfile, batch *ingest.Batch, sendMenu func(int) error) error {
	n, err := strconv.Atoi(message.Text)
	if err != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Send a file, press a button, or reply with an upload number to remove it.")
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	if !batch.RemoveAt(n - 1) {
		msg := tgbotapi.NewMessage(message.Chat.ID, "No upload with that number.")
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	return sendMenu(batch.Len())
}

// handleTransactionID verifies a payment reference and activates Pro
func (h *TextHandler) handleTransactionID(ctx context.Context, message *tgbotapi.Message, user *domain.UserProfile) error {
	channel := domain.ChannelPayPal
	if v, ok := h.stateManager.GetTempData(user.TelegramID, "payment_channel"); ok {
		if s, ok := v.(string); ok {
			channel = domain.PaymentChannel(s)
		}
	}

	verified, err := h.deps.PaymentSvc.Verify(ctx, user.OwnerID(), channel, message.Text)
	if err != nil {
		logger.Error("Payment verification failed", "owner_id", user.OwnerID(), "error", err)
	}
	if !verified {
		msg := tgbotapi.NewMessage(message.Chat.ID, "❌ That reference doesn't look right. Check the Transaction ID and send it again, or go back to the Wallet.")
		msg.ReplyMarkup = keyboards.GatewayMenu()
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	if err := h.deps.EntitlementSvc.Upgrade(ctx, user); err != nil {
		logger.Error("Upgrade failed after verified payment", "owner_id", user.OwnerID(), "error", err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "Payment received but the upgrade stalled. Send the Transaction ID once more.")
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	h.stateManager.SetUserState(user.TelegramID, state.None)
	h.stateManager.ClearTempData(user.TelegramID)
	logger.Info("Account upgraded", "owner_id", user.OwnerID(), "channel", channel)

	msg := tgbotapi.NewMessage(message.Chat.ID, "💎 *Welcome to Pro!* Unlimited analyses are now active.")
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err = h.api.Send(msg)
	return err
}
