package services

import (
	"context"
	"sync"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
)

const defaultHistoryLimit = 50

// HistoryService keeps each owner's bounded, newest-first log of analysis
// results and mirrors it to the persistence service. All operations are
// scoped by owner; no operation touches another owner's log.
type HistoryService struct {
	mu          sync.RWMutex
	logs        map[string][]domain.AnalysisResult
	limit       int
	persistence domain.PersistenceService
}

// NewHistoryService creates a history store capped at limit entries per
// owner. A non-positive limit falls back to 50.
func NewHistoryService(persistence domain.PersistenceService, limit int) *HistoryService {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &HistoryService{
		logs:        make(map[string][]domain.AnalysisResult),
		limit:       limit,
		persistence: persistence,
	}
}

// Limit returns the per-owner cap
func (s *HistoryService) Limit() int {
	return s.limit
}

// Load hydrates an owner's log from the persistence service, for example on
// sign-in. Entries arriving from storage are by definition already synced.
func (s *HistoryService) Load(ctx context.Context, ownerID string) error {
	stored, err := s.persistence.LoadHistory(ctx, ownerID)
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}

	if len(stored) > s.limit {
		stored = stored[:s.limit]
	}
	for i := range stored {
		stored[i].Synced = true
	}

	s.mu.Lock()
	s.logs[ownerID] = stored
	s.mu.Unlock()
	return nil
}

// Append prepends the result to the owner's log, truncates to the cap and
// marks the entry pending sync. The result's owner is stamped here.
func (s *HistoryService) Append(ctx context.Context, ownerID string, result domain.AnalysisResult) {
	result.OwnerID = ownerID
	result.Synced = false

	s.mu.Lock()
	defer s.mu.Unlock()

	log := append([]domain.AnalysisResult{result}, s.logs[ownerID]...)
	if len(log) > s.limit {
		log = log[:s.limit]
	}
	s.logs[ownerID] = log
}

// List returns the owner's log newest-first. An owner with no history gets
// an empty slice, not an error.
func (s *HistoryService) List(ctx context.Context, ownerID string) []domain.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AnalysisResult, len(s.logs[ownerID]))
	copy(out, s.logs[ownerID])
	return out
}

// Get returns the entry with the given result ID, or nil
func (s *HistoryService) Get(ctx context.Context, ownerID, resultID string) *domain.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.logs[ownerID] {
		if r.ID == resultID {
			entry := r
			return &entry
		}
	}
	return nil
}

// Clear empties the owner's log and removes its persisted representation.
// The in-memory log is cleared even when the storage call fails.
func (s *HistoryService) Clear(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	delete(s.logs, ownerID)
	s.mu.Unlock()

	if err := s.persistence.ClearHistory(ctx, ownerID); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

// SyncPending hands the owner's log to the persistence service and flips the
// sync flag on every entry. Idempotent: with nothing pending it is a no-op
// and no storage call is made.
func (s *HistoryService) SyncPending(ctx context.Context, ownerID string) error {
	s.mu.RLock()
	log := s.logs[ownerID]
	pending := false
	for _, r := range log {
		if !r.Synced {
			pending = true
			break
		}
	}
	snapshot := make([]domain.AnalysisResult, len(log))
	copy(snapshot, log)
	s.mu.RUnlock()

	if !pending {
		return nil
	}

	for i := range snapshot {
		snapshot[i].Synced = true
	}
	if err := s.persistence.SaveHistory(ctx, ownerID, snapshot); err != nil {
		return apperrors.NewPersistenceError(err)
	}

	s.mu.Lock()
	current := s.logs[ownerID]
	for i := range current {
		current[i].Synced = true
	}
	s.mu.Unlock()
	return nil
}
