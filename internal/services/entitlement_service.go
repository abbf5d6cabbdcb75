package services

import (
	"context"
	"time"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
)

// EntitlementService decides whether a user may run another analysis and
// meters FREE-tier credits. It must be consulted before the reasoning call
// is issued, never after.
type EntitlementService struct {
	persistence domain.PersistenceService
}

// NewEntitlementService creates the gate
func NewEntitlementService(persistence domain.PersistenceService) *EntitlementService {
	return &EntitlementService{persistence: persistence}
}

// CanAnalyze reports whether the user is allowed another analysis.
// PRO users are never denied; FREE users need a positive balance.
func (s *EntitlementService) CanAnalyze(user *domain.UserProfile) bool {
	if user == nil {
		return false
	}
	return user.Tier == domain.TierPro || user.Credits > 0
}

// Consume burns one credit after a successful analysis. FREE credits are
// floored at zero; PRO is a no-op. The updated profile is persisted.
func (s *EntitlementService) Consume(ctx context.Context, user *domain.UserProfile) error {
	if user == nil || user.Tier == domain.TierPro {
		return nil
	}

	if user.Credits > 0 {
		user.Credits--
	}
	user.LastSyncedAt = time.Now()

	if err := s.persistence.SaveProfile(ctx, user); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

// Upgrade promotes the user to PRO with the unlimited-credit sentinel
func (s *EntitlementService) Upgrade(ctx context.Context, user *domain.UserProfile) error {
	if user == nil {
		return apperrors.NewInputError("no profile to upgrade")
	}

	user.Tier = domain.TierPro
	user.Credits = domain.ProCredits
	user.LastSyncedAt = time.Now()

	if err := s.persistence.SaveProfile(ctx, user); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}
