package repositories

import (
	"context"

	"qcc-stakevault/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRateRepository handles interest rate data access
type GormRateRepository struct {
	db *gorm.DB
}

// NewRateRepository creates a new rate repository
func NewRateRepository(db *gorm.DB) *GormRateRepository {
	return &GormRateRepository{db: db}
}

// GetAll gets all interest rates ordered by period
func (r *GormRateRepository) GetAll(ctx context.Context) ([]*models.InterestRate, error) {
	var rates []*models.InterestRate
	err := r.db.WithContext(ctx).
		Order("period ASC").
		Find(&rates).Error
	return rates, err
}

// GetByPeriod gets the rate configured for one period
func (r *GormRateRepository) GetByPeriod(ctx context.Context, period int) (*models.InterestRate, error) {
	var rate models.InterestRate
	err := r.db.WithContext(ctx).
		Where("period = ?", period).
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// ReplaceAll upserts the whole rate set inside one transaction. Either every
// period is written or none are.
func (r *GormRateRepository) ReplaceAll(ctx context.Context, rates map[int]decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for period, rate := range rates {
			row := models.InterestRate{Period: period, Rate: rate}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "period"}},
				DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
