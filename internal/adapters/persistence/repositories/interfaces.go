package repositories

import (
	"context"
	"time"

	"qcc-stakevault/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

// StakingStats holds aggregate counters for the stats endpoint
type StakingStats struct {
	TotalCount         int64           `json:"total_count"`
	ActiveCount        int64           `json:"active_count"`
	TotalActiveAmount  decimal.Decimal `json:"total_active_amount"`
	TotalEarnedRewards decimal.Decimal `json:"total_earned_rewards"`
}

// StakingRepository defines staking data access.
// UpdateStatusIf is the only write path for settling records: it updates the
// row only while its status still equals expectedStatus, so two concurrent
// passes can never settle the same staking twice.
type StakingRepository interface {
	Create(ctx context.Context, staking *models.Staking) error
	GetByID(ctx context.Context, id uint) (*models.Staking, error)
	ListByWallet(ctx context.Context, wallet string) ([]*models.Staking, error)
	List(ctx context.Context, offset, limit int, status string) ([]*models.Staking, int64, error)
	FindExpired(ctx context.Context, now time.Time) ([]*models.Staking, error)
	FindExpiringWithin(ctx context.Context, now time.Time, days int) ([]*models.Staking, error)
	FindRecentWithDeposit(ctx context.Context, from, to time.Time) ([]*models.Staking, error)
	FindInvalidOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Staking, error)
	UpdateStatusIf(ctx context.Context, id uint, expectedStatus string, fields map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context, wallet string) (*StakingStats, error)
}

// RateRepository defines interest rate table access
type RateRepository interface {
	GetAll(ctx context.Context) ([]*models.InterestRate, error)
	GetByPeriod(ctx context.Context, period int) (*models.InterestRate, error)
	ReplaceAll(ctx context.Context, rates map[int]decimal.Decimal) error
}

// AdminRepository defines admin credential access
type AdminRepository interface {
	Get(ctx context.Context) (*models.AdminCredential, error)
	Save(ctx context.Context, cred *models.AdminCredential) error
}
