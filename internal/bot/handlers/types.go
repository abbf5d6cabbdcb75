package handlers

import (
	"github.com/nutrisync/nutrisync-bot/internal/bot/state"
	"github.com/nutrisync/nutrisync-bot/internal/interfaces"
	"github.com/nutrisync/nutrisync-bot/internal/services"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	UserService    interfaces.UserServiceInterface
	AnalysisSvc    interfaces.AnalysisServiceInterface
	HistorySvc     interfaces.HistoryServiceInterface
	EntitlementSvc interfaces.EntitlementServiceInterface
	PaymentSvc     interfaces.PaymentServiceInterface

	Sessions *services.SessionRegistry
	Uploads  *state.Uploads
}
