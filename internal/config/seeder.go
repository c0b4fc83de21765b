package config

import (
	"log"

	"qcc-stakevault/internal/adapters/persistence/models"
	"qcc-stakevault/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// defaultRates are the launch interest rates per lock period (annual %).
var defaultRates = map[int]decimal.Decimal{
	30:  decimal.NewFromFloat(3.0),
	90:  decimal.NewFromFloat(6.0),
	180: decimal.NewFromFloat(10.0),
	365: decimal.NewFromFloat(15.0),
}

// fallbackRate covers configured periods without a launch rate.
var fallbackRate = decimal.NewFromFloat(5.0)

// SeedMasterData seeds the interest rate table and the admin credential
func SeedMasterData(db *gorm.DB, cfg *Config) error {
	if err := seedInterestRates(db, cfg); err != nil {
		return err
	}

	if err := seedAdminCredential(db, cfg); err != nil {
		return err
	}

	log.Println("✅ Master data seeded successfully")
	return nil
}

// seedInterestRates makes sure every configured lock period has a rate row.
// Existing rates are never overwritten; admins change them over the API.
func seedInterestRates(db *gorm.DB, cfg *Config) error {
	for _, period := range cfg.Staking.Periods {
		var existing models.InterestRate
		err := db.Where("period = ?", period).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		rate, ok := defaultRates[period]
		if !ok {
			rate = fallbackRate
		}

		row := models.InterestRate{Period: period, Rate: rate}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		log.Printf("   Created interest_rate: %d days @ %s%%", period, rate.String())
	}
	return nil
}

// seedAdminCredential bootstraps the admin password from env when the table
// is empty. Without ADMIN_INITIAL_PASSWORD the credential stays unset and
// admin routes reject every login until it is configured.
func seedAdminCredential(db *gorm.DB, cfg *Config) error {
	var count int64
	if err := db.Model(&models.AdminCredential{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if cfg.Admin.InitialPassword == "" {
		log.Println("⚠️ Skipping admin seed: ADMIN_INITIAL_PASSWORD not set")
		return nil
	}
	if !password.Validate(cfg.Admin.InitialPassword) {
		log.Println("⚠️ Skipping admin seed: initial password too short")
		return nil
	}

	hash, err := password.Hash(cfg.Admin.InitialPassword)
	if err != nil {
		return err
	}

	cred := &models.AdminCredential{PasswordHash: hash}
	if err := db.Create(cred).Error; err != nil {
		return err
	}

	log.Println("✅ Admin credential created from ADMIN_INITIAL_PASSWORD")
	return nil
}
