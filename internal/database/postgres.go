package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/duleab/ai-agent/internal/config"
	"github.com/duleab/ai-agent/internal/models"
)

// InitDB opens the relational store named by DATABASE_URL and creates the
// schema idempotently. PostgreSQL is used for postgresql:// URLs, the
// bundled SQLite driver otherwise.
func InitDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.IsPostgres() {
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		dialector = sqlite.Open(cfg.SQLitePath())
	}

	gormCfg := &gorm.Config{}
	if !cfg.Debug {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := SeedGuest(db); err != nil {
		return nil, err
	}

	logger.Info("database ready", zap.Bool("postgres", cfg.IsPostgres()))
	return db, nil
}

// SeedGuest inserts the bootstrap guest identity unless it already exists.
// The guest row is the implicit actor for unauthenticated chat traffic.
func SeedGuest(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", models.GuestUsername).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up guest user: %w", err)
	}
	if count > 0 {
		return nil
	}

	guest := models.User{
		Username:     models.GuestUsername,
		Email:        "guest@example.com",
		PasswordHash: "guest",
		APIKey:       "guest_key",
	}
	if err := db.Create(&guest).Error; err != nil {
		return fmt.Errorf("failed to seed guest user: %w", err)
	}
	return nil
}
