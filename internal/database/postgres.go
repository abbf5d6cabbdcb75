package database

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/nutrisync/nutrisync-bot/internal/config"
	"github.com/nutrisync/nutrisync-bot/internal/database/migrations"
	"github.com/nutrisync/nutrisync-bot/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// User is the persisted profile row
type User struct {
	gorm.Model
	TelegramID   int64 `gorm:"uniqueIndex"`
	Username     string
	FirstName    string
	LastName     string
	Tier         string `gorm:"default:FREE"`
	Credits      int    `gorm:"default:3"`
	LastSyncedAt time.Time
}

// AnalysisRecord is one persisted history entry. Biomarkers and FoodItems
// are stored as the original JSON payloads rather than normalized tables;
// the application never queries inside them.
type AnalysisRecord struct {
	gorm.Model
	ResultID           string `gorm:"uniqueIndex"`
	OwnerID            string `gorm:"index"`
	CompatibilityScore int
	Biomarkers         string `gorm:"type:jsonb"`
	FoodItems          string `gorm:"type:jsonb"`
	Summary            string
	AnalyzedAt         time.Time
	Synced             bool
}

// PaymentAudit is one row of the payment trail
type PaymentAudit struct {
	gorm.Model
	OwnerID   string `gorm:"index"`
	Channel   string
	AmountUSD float64
	Reference string
	TxID      string
	Verified  bool
}

// NewPostgresDB opens the connection and brings the schema up to date
func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("failed to get current file path")
	}
	migrationsDir := filepath.Join(filepath.Dir(filename), "migrations")

	if err := migrations.LoadSQLMigrations(db, migrationsDir); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &AnalysisRecord{}, &PaymentAudit{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Info("Database connection established and migrations completed")
	return db, nil
}
