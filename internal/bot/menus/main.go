package menus

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nutrisync/nutrisync-bot/internal/bot/keyboards"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	"github.com/nutrisync/nutrisync-bot/internal/utils"
)

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api *tgbotapi.BotAPI, chatID int64, user *domain.UserProfile) error {
	var plan string
	if user != nil && user.Tier == domain.TierPro {
		plan = "💎 *Plan:* Pro — unlimited analyses"
	} else {
		credits := 0
		if user != nil {
			credits = user.Credits
		}
		plan = fmt.Sprintf("🎟️ *Plan:* Free — %d reports remaining", credits)
	}

	text := fmt.Sprintf(`🧬 *Nutri-Sync* — sync your biological truth

Upload your lab reports and a photo of your meal, and I will:
• Extract your critical biomarkers (HbA1c, LDL, Glucose...)
• Cross-reference every food item against YOUR values
• Score the meal's compatibility from 0 to 100
• Suggest safer swaps for risky items

%s

⚠️ *Important:* This is reference information, always consult your doctor!

Choose an action:`, plan)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendCollectingReports prompts for lab report uploads and shows progress
func SendCollectingReports(api *tgbotapi.BotAPI, chatID int64, count int) error {
	var text string
	if count == 0 {
		text = "🧪 *Step 1 of 2 — Clinical Data*\n\nSend your lab reports: blood panels, hormonal logs or BP reports. Photos and PDF documents are accepted. You can send several pages.\n\nTo remove an upload, reply with its number (e.g. \"2\")."
	} else {
		text = fmt.Sprintf("🧪 *Step 1 of 2 — Clinical Data*\n\n%d report(s) attached. Send more pages, remove one by replying with its number, or press Done.", count)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.CollectingReportsMenu(count)
	_, err := api.Send(msg)
	return err
}

// SendCollectingFood prompts for food photo uploads and shows progress
func SendCollectingFood(api *tgbotapi.BotAPI, chatID int64, count int) error {
	var text string
	if count == 0 {
		text = "🍽️ *Step 2 of 2 — Nutrient Visuals*\n\nNow send photos of your meal. Multiple angles help. Only images are accepted here.\n\nTo remove an upload, reply with its number."
	} else {
		text = fmt.Sprintf("🍽️ *Step 2 of 2 — Nutrient Visuals*\n\n%d photo(s) attached. Send more, remove one by replying with its number, or run the analysis.", count)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.CollectingFoodMenu(count)
	_, err := api.Send(msg)
	return err
}

// SendHistoryMenu lists the user's recent results
func SendHistoryMenu(api *tgbotapi.BotAPI, chatID int64, results []domain.AnalysisResult) error {
	var text string
	if len(results) == 0 {
		text = "📂 No analyses yet. Run your first one from the main menu."
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "📂 *Your last %d analyses* (newest first):\n\n", len(results))
		for _, r := range results {
			fmt.Fprintf(&b, "• %s — score %d/100, %d item(s)\n",
				utils.FormatTimestamp(r.CreatedAt), r.CompatibilityScore, len(r.FoodItems))
		}
		text = b.String()
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.HistoryMenu(results)
	_, err := api.Send(msg)
	return err
}

// SendWalletMenu shows tier, balance and upgrade options
func SendWalletMenu(api *tgbotapi.BotAPI, chatID int64, user *domain.UserProfile, proPriceUSD float64) error {
	var text string
	if user != nil && user.Tier == domain.TierPro {
		text = "💳 *Wallet*\n\n💎 Pro Membership — unlimited analyses.\nThank you for supporting Nutri-Sync!"
	} else {
		credits := 0
		if user != nil {
			credits = user.Credits
		}
		text = fmt.Sprintf("💳 *Wallet*\n\n🎟️ Free tier — %d report(s) remaining.\n\nUpgrade to *Pro* for $%.2f: unlimited analyses, priority processing.", credits, proPriceUSD)
	}

	tier := domain.TierFree
	if user != nil {
		tier = user.Tier
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.WalletMenu(tier)
	_, err := api.Send(msg)
	return err
}

// FormatResult renders an analysis result as a Telegram Markdown message
func FormatResult(r *domain.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🧬 *Compatibility Score: %d/100*\n", r.CompatibilityScore)
	switch {
	case r.CompatibilityScore >= 90:
		b.WriteString("Everything on this plate works for you.\n")
	case r.CompatibilityScore >= 70:
		b.WriteString("Mostly fine, minor moderation needed.\n")
	case r.CompatibilityScore >= 50:
		b.WriteString("Some items should be avoided.\n")
	default:
		b.WriteString("⚠️ Dangerous combination for your profile.\n")
	}

	if len(r.Biomarkers) > 0 {
		b.WriteString("\n🩸 *Your biomarkers:*\n")
		for _, bm := range r.Biomarkers {
			fmt.Fprintf(&b, "%s %s: %s (%s)\n", biomarkerIcon(bm.Status), utils.EscapeMarkdown(bm.Name), utils.EscapeMarkdown(bm.Value), bm.Status)
		}
	}

	b.WriteString("\n🍽️ *Food verdicts:*\n")
	for _, item := range r.FoodItems {
		fmt.Fprintf(&b, "%s *%s* — %s\n", foodIcon(item.Status), utils.EscapeMarkdown(item.Name), utils.EscapeMarkdown(item.Reason))
		if item.SuggestedSwap != "" {
			fmt.Fprintf(&b, "   ↳ Swap: %s\n", utils.EscapeMarkdown(item.SuggestedSwap))
		}
	}

	fmt.Fprintf(&b, "\n📋 *Summary:* %s\n", utils.EscapeMarkdown(r.Summary))
	fmt.Fprintf(&b, "\n🕒 %s", utils.FormatTimestamp(r.CreatedAt))

	return strings.ToValidUTF8(b.String(), "")
}

// SendResult delivers a formatted result with the follow-up keyboard,
// retrying without Markdown when the model text breaks the parser.
func SendResult(api *tgbotapi.BotAPI, chatID int64, r *domain.AnalysisResult) error {
	msg := tgbotapi.NewMessage(chatID, FormatResult(r))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.ResultMenu()

	if _, err := api.Send(msg); err != nil {
		msg.ParseMode = ""
		if _, err := api.Send(msg); err != nil {
			return fmt.Errorf("failed to send result message: %w", err)
		}
	}
	return nil
}

func foodIcon(status domain.FoodStatus) string {
	switch status {
	case domain.FoodStatusSafe:
		return "🟢"
	case domain.FoodStatusModerate:
		return "🟡"
	default:
		return "🔴"
	}
}

func biomarkerIcon(status string) string {
	switch strings.ToLower(status) {
	case "normal":
		return "🟢"
	case "critical":
		return "🚨"
	case "high", "low":
		return "🟠"
	default:
		return "⚪"
	}
}
