package database

import (
	"errors"

	"lumen-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 ("prepared statement already exists")
// behind connection poolers.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all marketplace models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Sale{},
		&domain.Listing{},
		&domain.EscrowAccount{},
		&domain.TokenAccount{},
		&domain.TokenAllowance{},
		&domain.LicenseToken{},
		&domain.LicenseBalance{},
		&domain.RoyaltyRecord{},
		&domain.CapabilityGrant{},
		&domain.MarketParameter{},
		&domain.MarketEvent{},
		&domain.Transaction{},
	)
}

// SeedListingFee writes the default listing fee if no parameter row exists
// yet. Later admin updates are never overwritten.
func SeedListingFee(db *gorm.DB, fee int64) error {
	var param domain.MarketParameter
	err := db.Where("name = ?", domain.ParamListingFee).First(&param).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&domain.MarketParameter{Name: domain.ParamListingFee, Value: fee}).Error
	}
	return err
}
