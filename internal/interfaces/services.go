package interfaces

import (
	"context"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
	"github.com/nutrisync/nutrisync-bot/internal/services"
)

// UserServiceInterface defines the contract for profile operations
type UserServiceInterface interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.UserProfile, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.UserProfile, error)
}

// AnalysisServiceInterface defines the contract for running the pipeline
type AnalysisServiceInterface interface {
	AnalyzeMeal(ctx context.Context, session *services.Session, user *domain.UserProfile, reports, foods []domain.Attachment) (*domain.AnalysisResult, error)
}

// HistoryServiceInterface defines the contract for history operations
type HistoryServiceInterface interface {
	Load(ctx context.Context, ownerID string) error
	List(ctx context.Context, ownerID string) []domain.AnalysisResult
	Get(ctx context.Context, ownerID, resultID string) *domain.AnalysisResult
	Clear(ctx context.Context, ownerID string) error
}

// EntitlementServiceInterface defines the contract for the credit gate
type EntitlementServiceInterface interface {
	CanAnalyze(user *domain.UserProfile) bool
	Upgrade(ctx context.Context, user *domain.UserProfile) error
}

// PaymentServiceInterface defines the contract for checkout and verification
type PaymentServiceInterface interface {
	Initiate(ctx context.Context, ownerID string, channel domain.PaymentChannel, amountUSD float64) (string, error)
	Verify(ctx context.Context, ownerID string, channel domain.PaymentChannel, txID string) (bool, error)
	ProPriceUSD() float64
}
