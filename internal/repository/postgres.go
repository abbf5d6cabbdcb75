// Package repository provides the persistence implementations behind the
// domain interfaces: a Postgres store for deployments and an in-memory store
// for demo mode and tests.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nutrisync/nutrisync-bot/internal/database"
	"github.com/nutrisync/nutrisync-bot/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres implements the persistence service, user repository and payment
// ledger over gorm.
type Postgres struct {
	db              *gorm.DB
	startingCredits int
}

var (
	_ domain.PersistenceService = (*Postgres)(nil)
	_ domain.UserRepository     = (*Postgres)(nil)
	_ domain.PaymentLedger      = (*Postgres)(nil)
)

// NewPostgres creates the repository. startingCredits seeds new FREE profiles.
func NewPostgres(db *gorm.DB, startingCredits int) *Postgres {
	return &Postgres{db: db, startingCredits: startingCredits}
}

// --- domain.UserRepository ---

// GetOrCreate returns the profile for the Telegram user, creating a FREE one
// with the starting allowance on first contact.
func (r *Postgres) GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.UserProfile, error) {
	user := database.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Tier:       string(domain.TierFree),
		Credits:    r.startingCredits,
	}

	result := r.db.WithContext(ctx).Where(database.User{TelegramID: telegramID}).FirstOrCreate(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", result.Error)
	}

	return toProfile(&user), nil
}

// GetByTelegramID gets a user by their Telegram ID
func (r *Postgres) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.UserProfile, error) {
	var user database.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toProfile(&user), nil
}

// --- domain.PersistenceService ---

// SaveProfile writes tier, credits and sync time back to the user row
func (r *Postgres) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.ID == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"tier":           string(profile.Tier),
			"credits":        profile.Credits,
			"last_synced_at": profile.LastSyncedAt,
		}).Error
}

// SaveHistory upserts the owner's rows and drops any persisted rows that
// were evicted from the bounded log.
func (r *Postgres) SaveHistory(ctx context.Context, ownerID string, history []domain.AnalysisResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kept := make([]string, 0, len(history))
		for _, result := range history {
			record, err := toRecord(ownerID, result)
			if err != nil {
				return err
			}
			kept = append(kept, result.ID)

			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "result_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"synced"}),
			}).Create(record).Error
			if err != nil {
				return fmt.Errorf("failed to save analysis %s: %w", result.ID, err)
			}
		}

		q := tx.Where("owner_id = ?", ownerID)
		if len(kept) > 0 {
			q = q.Where("result_id NOT IN ?", kept)
		}
		if err := q.Delete(&database.AnalysisRecord{}).Error; err != nil {
			return fmt.Errorf("failed to prune evicted history: %w", err)
		}
		return nil
	})
}

// LoadHistory returns the owner's persisted history newest-first
func (r *Postgres) LoadHistory(ctx context.Context, ownerID string) ([]domain.AnalysisResult, error) {
	var records []database.AnalysisRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("analyzed_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	history := make([]domain.AnalysisResult, 0, len(records))
	for _, rec := range records {
		result, err := fromRecord(&rec)
		if err != nil {
			return nil, err
		}
		history = append(history, *result)
	}
	return history, nil
}

// ClearHistory removes every persisted row for the owner
func (r *Postgres) ClearHistory(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&database.AnalysisRecord{}).Error
}

// --- domain.PaymentLedger ---

// Record appends one payment audit row
func (r *Postgres) Record(ctx context.Context, rec *domain.PaymentRecord) error {
	audit := database.PaymentAudit{
		OwnerID:   rec.OwnerID,
		Channel:   string(rec.Channel),
		AmountUSD: rec.AmountUSD,
		Reference: rec.Reference,
		TxID:      rec.TxID,
		Verified:  rec.Verified,
	}
	return r.db.WithContext(ctx).Create(&audit).Error
}

// --- row conversion ---

func toProfile(u *database.User) *domain.UserProfile {
	return &domain.UserProfile{
		ID:           u.ID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		TelegramID:   u.TelegramID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Tier:         domain.SubscriptionTier(u.Tier),
		Credits:      u.Credits,
		LastSyncedAt: u.LastSyncedAt,
	}
}

func toRecord(ownerID string, result domain.AnalysisResult) (*database.AnalysisRecord, error) {
	biomarkers, err := json.Marshal(result.Biomarkers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode biomarkers: %w", err)
	}
	foodItems, err := json.Marshal(result.FoodItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode food items: %w", err)
	}

	return &database.AnalysisRecord{
		ResultID:           result.ID,
		OwnerID:            ownerID,
		CompatibilityScore: result.CompatibilityScore,
		Biomarkers:         string(biomarkers),
		FoodItems:          string(foodItems),
		Summary:            result.Summary,
		AnalyzedAt:         result.CreatedAt,
		Synced:             result.Synced,
	}, nil
}

func fromRecord(rec *database.AnalysisRecord) (*domain.AnalysisResult, error) {
	result := domain.AnalysisResult{
		ID:                 rec.ResultID,
		OwnerID:            rec.OwnerID,
		CreatedAt:          rec.AnalyzedAt,
		CompatibilityScore: rec.CompatibilityScore,
		Summary:            rec.Summary,
		Synced:             rec.Synced,
	}
	if rec.Biomarkers != "" {
		if err := json.Unmarshal([]byte(rec.Biomarkers), &result.Biomarkers); err != nil {
			return nil, fmt.Errorf("failed to decode biomarkers for %s: %w", rec.ResultID, err)
		}
	}
	if rec.FoodItems != "" {
		if err := json.Unmarshal([]byte(rec.FoodItems), &result.FoodItems); err != nil {
			return nil, fmt.Errorf("failed to decode food items for %s: %w", rec.ResultID, err)
		}
	}
	return &result, nil
}
