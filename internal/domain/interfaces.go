package domain

import (
	"context"
)

// ReasoningService is the external multimodal inference provider. It returns
// the raw response text; validation of the payload belongs to the caller.
// No retry contract is imposed here.
type ReasoningService interface {
	Generate(ctx context.Context, req *AnalysisRequest) (string, error)
}

// PersistenceService mirrors history and profiles to durable storage.
// It is best-effort: callers must not block the analysis flow on it beyond
// updating sync flags.
type PersistenceService interface {
	SaveHistory(ctx context.Context, ownerID string, history []AnalysisResult) error
	LoadHistory(ctx context.Context, ownerID string) ([]AnalysisResult, error)
	ClearHistory(ctx context.Context, ownerID string) error
	SaveProfile(ctx context.Context, profile *UserProfile) error
}

// UserRepository handles profile lookup and registration
type UserRepository interface {
	GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName string) (*UserProfile, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*UserProfile, error)
}

// PaymentLedger records payment attempts and verification outcomes
type PaymentLedger interface {
	Record(ctx context.Context, rec *PaymentRecord) error
}
