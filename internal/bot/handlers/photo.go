package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nutrisync/nutrisync-bot/internal/bot/menus"
	"github.com/nutrisync/nutrisync-bot/internal/bot/state"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	"github.com/nutrisync/nutrisync-bot/internal/ingest"
	"github.com/nutrisync/nutrisync-bot/internal/logger"
)

// Telegram serves at most 20 MB through getFile, the client just caps reads.
const maxDownloadBytes = 20 << 20

// UploadHandler handles photo and document messages during attachment
// collection
type UploadHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
	httpClient   *http.Client
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *UploadHandler {
	return &UploadHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// HandlePhoto processes a photo message
func (h *UploadHandler) HandlePhoto(ctx context.Context, message *tgbotapi.Message, user *domain.UserProfile) error {
	batch, sendMenu, ok := h.activeBatch(user)
	if !ok {
		return h.sendNotCollecting(message.Chat.ID)
	}

	// Telegram sends several sizes; the last one is the largest.
	photo := message.Photo[len(message.Photo)-1]
	raw, err := h.download(ctx, photo.FileID)
	if err != nil {
		logger.Error("Photo download failed", "user_id", user.ID, "error", err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "Could not download that photo. Please send it again.")
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	if _, err := batch.Add(raw, "image/jpeg", photo.FileID); err != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID, "That file type is not accepted here.")
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	return sendMenu(message.Chat.ID, batch.Len())
}

// HandleDocument processes a document message (PDF lab reports, image files
// sent uncompressed)
func (h *UploadHandler) HandleDocument(ctx context.Context, message *tgbotapi.Message, user *domain.UserProfile) error {
	batch, sendMenu, ok := h.activeBatch(user)
	if !ok {
		return h.sendNotCollecting(message.Chat.ID)
	}

	doc := message.Document
	mediaType := doc.MimeType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	raw, err := h.download(ctx, doc.FileID)
	if err != nil {
		logger.Error("Document download failed", "user_id", user.ID, "error", err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "Could not download that file. Please send it again.")
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	if _, err := batch.Add(raw, mediaType, doc.FileID); err != nil {
		var text string
		if h.stateManager.GetUserState(user.TelegramID) == state.CollectingFood {
			text = "Food photos must be images."
		} else {
			text = "Lab reports must be images or PDF documents."
		}
		msg := tgbotapi.NewMessage(message.Chat.ID, text)
		_, sendErr := h.api.Send(msg)
		return sendErr
	}

	return sendMenu(message.Chat.ID, batch.Len())
}

// activeBatch resolves which upload slot the user's conversation state points
// at, along with the progress menu for it.
func (h *UploadHandler) activeBatch(user *domain.UserProfile) (*ingest.Batch, func(int64, int) error, bool) {
	switch h.stateManager.GetUserState(user.TelegramID) {
	case state.CollectingReports:
		return h.deps.Uploads.Reports(user.TelegramID), func(chatID int64, count int) error {
			return menus.SendCollectingReports(h.api, chatID, count)
		}, true
	case state.CollectingFood:
		return h.deps.Uploads.Foods(user.TelegramID), func(chatID int64, count int) error {
			return menus.SendCollectingFood(h.api, chatID, count)
		}, true
	}
	return nil, nil, false
}

func (h *UploadHandler) sendNotCollecting(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Press \"🧪 New Analysis\" first, then send your files.")
	_, err := h.api.Send(msg)
	return err
}

// download fetches a Telegram file's bytes through the bot file API
func (h *UploadHandler) download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := h.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(h.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	return raw, nil
}
