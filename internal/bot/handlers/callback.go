package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nutrisync/nutrisync-bot/internal/bot/keyboards"
	"github.com/nutrisync/nutrisync-bot/internal/bot/menus"
	"github.com/nutrisync/nutrisync-bot/internal/bot/state"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
	"github.com/nutrisync/nutrisync-bot/internal/logger"
)

// Messages cycled through while the reasoning service works. Long enough to
// cover a slow multimodal call without the chat looking frozen.
var loadingSteps = []string{
	"🧪 Digitizing lab report...",
	"🩸 Extracting critical biomarkers...",
	"🍱 Identifying food molecules...",
	"🧬 Cross-referencing with your blood panel...",
	"📊 Calculating bio-compatibility score...",
}

const loadingStepInterval = 4 * time.Second

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user *domain.UserProfile) error {
	// Answer the callback query first
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		return err
	}

	chatID := query.Message.Chat.ID

	if resultID, ok := strings.CutPrefix(query.Data, keyboards.ViewPrefix); ok {
		return h.handleViewResult(ctx, chatID, user, resultID)
	}

	switch query.Data {
	case keyboards.CallbackNewAnalysis:
		return h.handleNewAnalysis(chatID, user)
	case keyboards.CallbackReportsDone:
		return h.handleReportsDone(chatID, user)
	case keyboards.CallbackRunAnalysis:
		return h.handleRunAnalysis(ctx, chatID, user)
	case keyboards.CallbackCancelAnalysis:
		return h.handleCancel(chatID, user)
	case keyboards.CallbackHistory:
		return h.handleHistory(ctx, chatID, user)
	case keyboards.CallbackClearHistory:
		return h.handleClearHistory(ctx, chatID, user)
	case keyboards.CallbackWallet:
		h.stateManager.SetUserState(user.TelegramID, state.None)
		return menus.SendWalletMenu(h.api, chatID, user, h.deps.PaymentSvc.ProPriceUSD())
	case keyboards.CallbackUpgrade:
		return h.handleUpgrade(chatID, user)
	case keyboards.CallbackPayPayPal:
		return h.handleGateway(ctx, chatID, user, domain.ChannelPayPal)
	case keyboards.CallbackPayUPI:
		return h.handleGateway(ctx, chatID, user, domain.ChannelUPI)
	case keyboards.CallbackMainMenu:
		return h.handleMainMenu(chatID, user)
	case keyboards.CallbackHelp:
		return NewCommandHandler(h.api, h.deps, h.stateManager).handleHelp(chatID)
	default:
		msg := tgbotapi.NewMessage(chatID, "That action is no longer available. Use /start for the menu.")
		_, err := h.api.Send(msg)
		return err
	}
}

func (h *CallbackHandler) handleNewAnalysis(chatID int64, user *domain.UserProfile) error {
	// Gate up front so the user does not upload files they cannot analyze.
	if !h.deps.EntitlementSvc.CanAnalyze(user) {
		return h.sendOutOfCredits(chatID, user)
	}

	h.deps.Uploads.Clear(user.TelegramID)
	h.deps.Sessions.Session(user.TelegramID).Reset()
	h.stateManager.SetUserState(user.TelegramID, state.CollectingReports)
	return menus.SendCollectingReports(h.api, chatID, 0)
}

func (h *CallbackHandler) handleReportsDone(chatID int64, user *domain.UserProfile) error {
	if h.deps.Uploads.Reports(user.TelegramID).Len() == 0 {
		msg := tgbotapi.NewMessage(chatID, "Send at least one lab report first.")
		_, err := h.api.Send(msg)
		return err
	}

	h.stateManager.SetUserState(user.TelegramID, state.CollectingFood)
	return menus.SendCollectingFood(h.api, chatID, h.deps.Uploads.Foods(user.TelegramID).Len())
}

func (h *CallbackHandler) handleRunAnalysis(ctx context.Context, chatID int64, user *domain.UserProfile) error {
	reports := h.deps.Uploads.Reports(user.TelegramID).Items()
	foods := h.deps.Uploads.Foods(user.TelegramID).Items()

	if len(foods) == 0 {
		msg := tgbotapi.NewMessage(chatID, "Send at least one food photo first.")
		_, err := h.api.Send(msg)
		return err
	}

	progressMsg := tgbotapi.NewMessage(chatID, loadingSteps[0])
	sent, err := h.api.Send(progressMsg)
	if err != nil {
		return fmt.Errorf("failed to send progress message: %w", err)
	}

	done := make(chan struct{})
	go h.cycleLoadingSteps(chatID, sent.MessageID, done)

	session := h.deps.Sessions.Session(user.TelegramID)
	result, err := h.deps.AnalysisSvc.AnalyzeMeal(ctx, session, user, reports, foods)
	close(done)

	h.api.Send(tgbotapi.NewDeleteMessage(chatID, sent.MessageID))

	if err != nil {
		return h.sendAnalysisError(chatID, user, err)
	}

	h.deps.Uploads.Clear(user.TelegramID)
	h.stateManager.SetUserState(user.TelegramID, state.None)

	logger.Info("Analysis delivered", "owner_id", user.OwnerID(), "result_id", result.ID, "score", result.CompatibilityScore)
	return menus.SendResult(h.api, chatID, result)
}

// cycleLoadingSteps edits the progress message through the step texts until
// the analysis finishes. Edit failures are ignored, progress text is cosmetic.
func (h *CallbackHandler) cycleLoadingSteps(chatID int64, messageID int, done <-chan struct{}) {
	ticker := time.NewTicker(loadingStepInterval)
	defer ticker.Stop()

	for i := 1; ; i++ {
		select {
		case <-done:
			return
		case <-ticker.C:
			edit := tgbotapi.NewEditMessageText(chatID, messageID, loadingSteps[i%len(loadingSteps)])
			h.api.Send(edit)
		}
	}
}

func (h *CallbackHandler) sendAnalysisError(chatID int64, user *domain.UserProfile, err error) error {
	logger.Error("Analysis failed", "owner_id", user.OwnerID(), "error", err)

	var text string
	switch {
	case errors.Is(err, apperrors.ErrCreditsExhausted):
		return h.sendOutOfCredits(chatID, user)
	case errors.Is(err, apperrors.ErrAnalysisInFlight):
		text = "An analysis is already running. Give it a moment."
	case errors.Is(err, apperrors.ErrStaleResponse):
		// The user reset the flow while the request was in flight; the
		// response was discarded on purpose, so say nothing alarming.
		text = "That analysis was cancelled."
	case errors.Is(err, apperrors.ErrEmptyResponse), errors.Is(err, apperrors.ErrMalformedResponse):
		text = "🔬 The analysis came back unreadable. This happens occasionally, please run it again — no credit was spent."
	case errors.Is(err, apperrors.ErrNoReportAttachments):
		text = "Send at least one lab report first."
	case errors.Is(err, apperrors.ErrNoFoodAttachments):
		text = "Send at least one food photo first."
	default:
		text = "Sorry, the analysis failed. Please try again in a few minutes — no credit was spent."
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.ResultMenu()
	_, sendErr := h.api.Send(msg)
	return sendErr
}

func (h *CallbackHandler) sendOutOfCredits(chatID int64, user *domain.UserProfile) error {
	text := fmt.Sprintf("🔒 You've used all your free analyses.\n\nUpgrade to *Pro* for $%.2f and analyze without limits.", h.deps.PaymentSvc.ProPriceUSD())
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.WalletMenu(user.Tier)
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleCancel(chatID int64, user *domain.UserProfile) error {
	h.deps.Uploads.Clear(user.TelegramID)
	h.deps.Sessions.Session(user.TelegramID).Reset()
	h.stateManager.SetUserState(user.TelegramID, state.None)
	return menus.SendMainMenu(h.api, chatID, user)
}

func (h *CallbackHandler) handleHistory(ctx context.Context, chatID int64, user *domain.UserProfile) error {
	results := h.deps.HistorySvc.List(ctx, user.OwnerID())
	return menus.SendHistoryMenu(h.api, chatID, results)
}

// handleViewResult re-displays a stored result. This never touches the
// entitlement gate: reading history is free.
func (h *CallbackHandler) handleViewResult(ctx context.Context, chatID int64, user *domain.UserProfile, resultID string) error {
	result := h.deps.HistorySvc.Get(ctx, user.OwnerID(), resultID)
	if result == nil {
		msg := tgbotapi.NewMessage(chatID, "That analysis is no longer in your history.")
		_, err := h.api.Send(msg)
		return err
	}
	return menus.SendResult(h.api, chatID, result)
}

func (h *CallbackHandler) handleClearHistory(ctx context.Context, chatID int64, user *domain.UserProfile) error {
	if err := h.deps.HistorySvc.Clear(ctx, user.OwnerID()); err != nil {
		logger.Error("History clear failed", "owner_id", user.OwnerID(), "error", err)
	}

	msg := tgbotapi.NewMessage(chatID, "🗑️ History cleared.")
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleUpgrade(chatID int64, user *domain.UserProfile) error {
	if user.Tier == domain.TierPro {
		msg := tgbotapi.NewMessage(chatID, "💎 You already have Pro — unlimited analyses.")
		_, err := h.api.Send(msg)
		return err
	}

	h.stateManager.SetUserState(user.TelegramID, state.AwaitingGateway)

	text := fmt.Sprintf("⚡ *Pro Membership — $%.2f*\n\n• Unlimited meal analyses\n• Priority processing\n\nChoose how you'd like to pay:", h.deps.PaymentSvc.ProPriceUSD())
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.GatewayMenu()
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleGateway(ctx context.Context, chatID int64, user *domain.UserProfile, channel domain.PaymentChannel) error {
	reference, err := h.deps.PaymentSvc.Initiate(ctx, user.OwnerID(), channel, h.deps.PaymentSvc.ProPriceUSD())
	if err != nil {
		logger.Error("Payment initiation failed", "owner_id", user.OwnerID(), "channel", channel, "error", err)
		msg := tgbotapi.NewMessage(chatID, "Could not prepare the payment. Please try again later.")
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	h.stateManager.SetUserState(user.TelegramID, state.AwaitingTxID)
	h.stateManager.SetTempData(user.TelegramID, "payment_channel", string(channel))

	var text string
	if channel == domain.ChannelPayPal {
		text = fmt.Sprintf("🌍 Pay with PayPal:\n%s\n\nWhen you're done, send me the Transaction ID to activate Pro.", reference)
	} else {
		text = fmt.Sprintf("🇮🇳 Pay via UPI:\n%s\n\nWhen you're done, send me the UPI Reference Number to activate Pro.", reference)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleMainMenu(chatID int64, user *domain.UserProfile) error {
	h.stateManager.SetUserState(user.TelegramID, state.None)
	return menus.SendMainMenu(h.api, chatID, user)
}
