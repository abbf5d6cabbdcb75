package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
)

// Memory is an in-process implementation of the persistence interfaces,
// used in demo mode and in tests. It mimics the original app's simulated
// database: same contracts, no durability.
type Memory struct {
	mu              sync.Mutex
	users           map[int64]*domain.UserProfile
	histories       map[string][]domain.AnalysisResult
	payments        []domain.PaymentRecord
	userIDCounter   uint
	startingCredits int
}

var (
	_ domain.PersistenceService = (*Memory)(nil)
	_ domain.UserRepository     = (*Memory)(nil)
	_ domain.PaymentLedger      = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store
func NewMemory(startingCredits int) *Memory {
	return &Memory{
		users:           make(map[int64]*domain.UserProfile),
		histories:       make(map[string][]domain.AnalysisResult),
		startingCredits: startingCredits,
	}
}

// --- domain.UserRepository ---

// GetOrCreate returns the profile for the Telegram user, creating a FREE one
// on first contact.
func (m *Memory) GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[telegramID]; ok {
		copied := *u
		return &copied, nil
	}

	m.userIDCounter++
	now := time.Now()
	u := &domain.UserProfile{
		ID:         m.userIDCounter,
		CreatedAt:  now,
		UpdatedAt:  now,
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Tier:       domain.TierFree,
		Credits:    m.startingCredits,
	}
	m.users[telegramID] = u

	copied := *u
	return &copied, nil
}

// GetByTelegramID gets a user by their Telegram ID
func (m *Memory) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[telegramID]
	if !ok {
		return nil, fmt.Errorf("user %d not found", telegramID)
	}
	copied := *u
	return &copied, nil
}

// --- domain.PersistenceService ---

// SaveProfile stores tier, credits and sync time
func (m *Memory) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[profile.TelegramID]
	if !ok {
		return nil
	}
	u.Tier = profile.Tier
	u.Credits = profile.Credits
	u.LastSyncedAt = profile.LastSyncedAt
	u.UpdatedAt = time.Now()
	return nil
}

// SaveHistory replaces the owner's stored history
func (m *Memory) SaveHistory(ctx context.Context, ownerID string, history []domain.AnalysisResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]domain.AnalysisResult, len(history))
	copy(stored, history)
	m.histories[ownerID] = stored
	return nil
}

// LoadHistory returns the owner's stored history, newest-first as saved
func (m *Memory) LoadHistory(ctx context.Context, ownerID string) ([]domain.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.histories[ownerID]
	out := make([]domain.AnalysisResult, len(stored))
	copy(out, stored)
	return out, nil
}

// ClearHistory removes the owner's stored history
func (m *Memory) ClearHistory(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.histories, ownerID)
	return nil
}

// --- domain.PaymentLedger ---

// Record appends one payment audit row
func (m *Memory) Record(ctx context.Context, rec *domain.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.ID = uint(len(m.payments) + 1)
	stored.CreatedAt = time.Now()
	m.payments = append(m.payments, stored)
	return nil
}

// Payments returns a copy of the audit trail, oldest first
func (m *Memory) Payments() []domain.PaymentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.PaymentRecord, len(m.payments))
	copy(out, m.payments)
	return out
}
