package services

import (
	"context"
	"fmt"

	"qcc-stakevault/internal/adapters/persistence/models"
	"qcc-stakevault/internal/adapters/persistence/repositories"
	"qcc-stakevault/internal/config"
	"qcc-stakevault/internal/core/domain"

	"github.com/shopspring/decimal"
)

// RateService administers the period -> interest rate table. Changes only
// affect stakings created afterwards; existing records keep their snapshot.
type RateService struct {
	rateRepo   repositories.RateRepository
	stakingCfg config.StakingConfig
}

// NewRateService creates a new rate service
func NewRateService(rateRepo repositories.RateRepository, stakingCfg config.StakingConfig) *RateService {
	return &RateService{
		rateRepo:   rateRepo,
		stakingCfg: stakingCfg,
	}
}

// GetAll returns the rate table ordered by period
func (s *RateService) GetAll(ctx context.Context) ([]*models.InterestRate, error) {
	return s.rateRepo.GetAll(ctx)
}

// ReplaceAll swaps in a complete new rate set. Every mandatory period must be
// present with a non-negative rate; the write is all-or-nothing, so a
// rejected set leaves the existing table untouched.
func (s *RateService) ReplaceAll(ctx context.Context, rates map[int]decimal.Decimal) error {
	for _, period := range s.stakingCfg.Periods {
		rate, ok := rates[period]
		if !ok {
			return fmt.Errorf("%w: %d days", domain.ErrMissingRatePeriod, period)
		}
		if rate.IsNegative() {
			return fmt.Errorf("%w: %d days", domain.ErrNegativeRate, period)
		}
	}

	if err := s.rateRepo.ReplaceAll(ctx, rates); err != nil {
		return fmt.Errorf("replace rate table: %w", err)
	}
	return nil
}
