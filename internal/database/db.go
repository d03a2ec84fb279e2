package database

import (
	"fmt"

	"kirana-backend/internal/config"
	"kirana-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init opens the Postgres connection and runs migrations. The returned handle
// is passed explicitly to every handler so tests can substitute their own store.
func Init(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates/updates all tables. Shared with the test helpers.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&models.OrderPayment{},
		&models.Customer{},
		&models.CreditEntry{},
		&models.Expense{},
		&models.Wholesaler{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}
