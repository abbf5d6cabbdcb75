package services

import (
	"context"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
	"github.com/nutrisync/nutrisync-bot/internal/logger"
)

// AnalysisService orchestrates one full analysis: entitlement gate, request
// assembly, reasoning call, validation, history append and credit burn.
type AnalysisService struct {
	reasoning    domain.ReasoningService
	history      *HistoryService
	entitlements *EntitlementService
}

// NewAnalysisService wires the pipeline
func NewAnalysisService(reasoning domain.ReasoningService, history *HistoryService, entitlements *EntitlementService) *AnalysisService {
	return &AnalysisService{
		reasoning:    reasoning,
		history:      history,
		entitlements: entitlements,
	}
}

// AnalyzeMeal runs the pipeline for one session. The gate and the input
// checks run before the reasoning call so an exhausted or empty submission
// never costs an external request. Persistence failures are logged and do
// not fail the analysis; the result is returned regardless.
func (s *AnalysisService) AnalyzeMeal(
	ctx context.Context,
	session *Session,
	user *domain.UserProfile,
	reports, foods []domain.Attachment,
) (*domain.AnalysisResult, error) {
	if !s.entitlements.CanAnalyze(user) {
		return nil, apperrors.ErrCreditsExhausted
	}

	req, err := BuildAnalysisRequest(reports, foods)
	if err != nil {
		return nil, err
	}

	generation, err := session.Begin()
	if err != nil {
		return nil, err
	}

	raw, err := s.reasoning.Generate(ctx, req)
	if err != nil {
		session.Fail(generation)
		return nil, err
	}

	result, err := ValidateResponse(raw)
	if err != nil {
		session.Fail(generation)
		return nil, err
	}

	ownerID := user.OwnerID()
	result.OwnerID = ownerID

	if !session.Complete(generation, result) {
		// The user reset while the call was in flight. The late result must
		// not reach history or burn a credit.
		logger.Info("Discarding stale analysis response", "owner_id", ownerID, "generation", generation)
		return nil, apperrors.ErrStaleResponse
	}

	s.history.Append(ctx, ownerID, *result)
	if err := s.history.SyncPending(ctx, ownerID); err != nil {
		logger.Error("History sync failed", "owner_id", ownerID, "error", err)
	}

	if err := s.entitlements.Consume(ctx, user); err != nil {
		logger.Error("Credit persistence failed", "owner_id", ownerID, "error", err)
	}

	return result, nil
}
