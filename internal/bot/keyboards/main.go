package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
)

// Callback identifiers shared with the callback handler
const (
	CallbackNewAnalysis    = "new_analysis"
	CallbackReportsDone    = "reports_done"
	CallbackRunAnalysis    = "run_analysis"
	CallbackCancelAnalysis = "cancel_analysis"
	CallbackHistory        = "history"
	CallbackClearHistory   = "clear_history"
	CallbackWallet         = "wallet"
	CallbackUpgrade        = "upgrade"
	CallbackPayPayPal      = "pay_paypal"
	CallbackPayUPI         = "pay_upi"
	CallbackMainMenu       = "main_menu"
	CallbackHelp           = "help"

	// ViewPrefix prefixes a result ID for re-displaying a history entry
	ViewPrefix = "view:"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧪 New Analysis", CallbackNewAnalysis),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📂 History", CallbackHistory),
			tgbotapi.NewInlineKeyboardButtonData("💳 Wallet", CallbackWallet),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Help", CallbackHelp),
		),
	)
}

// CollectingReportsMenu is shown while lab reports are being uploaded
func CollectingReportsMenu(count int) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if count > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done — add food photos", CallbackReportsDone),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", CallbackCancelAnalysis),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CollectingFoodMenu is shown while food photos are being uploaded
func CollectingFoodMenu(count int) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if count > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔬 Analyze Bio-Compatibility", CallbackRunAnalysis),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", CallbackCancelAnalysis),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ResultMenu follows a displayed analysis result
func ResultMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 New Analysis", CallbackNewAnalysis),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", CallbackMainMenu),
		),
	)
}

// HistoryMenu lists recent results as buttons plus maintenance actions
func HistoryMenu(results []domain.AnalysisResult) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for i, r := range results {
		if i >= 10 {
			// Telegram keyboards get unwieldy; older entries stay reachable
			// after a clear-down or via the summary text.
			break
		}
		label := historyLabel(r)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, ViewPrefix+r.ID),
		))
	}
	if len(results) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Clear History", CallbackClearHistory),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Main Menu", CallbackMainMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// WalletMenu shows upgrade or gateway options depending on tier
func WalletMenu(tier domain.SubscriptionTier) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if tier != domain.TierPro {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚡ Get Unlimited Access", CallbackUpgrade),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Main Menu", CallbackMainMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// GatewayMenu offers the two checkout routes
func GatewayMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌍 Global (PayPal)", CallbackPayPayPal),
			tgbotapi.NewInlineKeyboardButtonData("🇮🇳 UPI / GPay", CallbackPayUPI),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", CallbackWallet),
		),
	)
}

func historyLabel(r domain.AnalysisResult) string {
	icon := "🔴"
	switch {
	case r.CompatibilityScore >= 70:
		icon = "🟢"
	case r.CompatibilityScore >= 50:
		icon = "🟡"
	}
	return fmt.Sprintf("%s %d/100 · %s", icon, r.CompatibilityScore, r.CreatedAt.Format("Jan 2 15:04"))
}
