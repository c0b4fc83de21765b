package repositories

import (
	"context"
	"time"

	"qcc-stakevault/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormStakingRepository handles staking data access
type GormStakingRepository struct {
	db *gorm.DB
}

// NewStakingRepository creates a new staking repository
func NewStakingRepository(db *gorm.DB) *GormStakingRepository {
	return &GormStakingRepository{db: db}
}

// Create inserts a new staking record
func (r *GormStakingRepository) Create(ctx context.Context, staking *models.Staking) error {
	return r.db.WithContext(ctx).Create(staking).Error
}

// GetByID gets a staking by ID
func (r *GormStakingRepository) GetByID(ctx context.Context, id uint) (*models.Staking, error) {
	var staking models.Staking
	err := r.db.WithContext(ctx).First(&staking, id).Error
	if err != nil {
		return nil, err
	}
	return &staking, nil
}

// ListByWallet gets all stakings for a wallet, newest first
func (r *GormStakingRepository) ListByWallet(ctx context.Context, wallet string) ([]*models.Staking, error) {
	var stakings []*models.Staking
	err := r.db.WithContext(ctx).
		Where("wallet_address = ?", wallet).
		Order("created_at DESC").
		Find(&stakings).Error
	return stakings, err
}

// List lists stakings with pagination and an optional status filter
func (r *GormStakingRepository) List(ctx context.Context, offset, limit int, status string) ([]*models.Staking, int64, error) {
	var stakings []*models.Staking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Staking{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&stakings).Error

	return stakings, total, err
}

// FindExpired gets active stakings whose lock period has elapsed, oldest expiry first
func (r *GormStakingRepository) FindExpired(ctx context.Context, now time.Time) ([]*models.Staking, error) {
	var stakings []*models.Staking
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", models.StatusActive, now).
		Order("end_date ASC").
		Find(&stakings).Error
	return stakings, err
}

// FindExpiringWithin gets active stakings maturing within the next N days
func (r *GormStakingRepository) FindExpiringWithin(ctx context.Context, now time.Time, days int) ([]*models.Staking, error) {
	var stakings []*models.Staking
	until := now.AddDate(0, 0, days)
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date > ? AND end_date <= ?", models.StatusActive, now, until).
		Order("end_date ASC").
		Find(&stakings).Error
	return stakings, err
}

// FindRecentWithDeposit gets active stakings created inside [from, to) that
// carry a deposit transaction hash to verify
func (r *GormStakingRepository) FindRecentWithDeposit(ctx context.Context, from, to time.Time) ([]*models.Staking, error) {
	var stakings []*models.Staking
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusActive).
		Where("transaction_hash IS NOT NULL AND transaction_hash != ''").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("id DESC").
		Find(&stakings).Error
	return stakings, err
}

// FindInvalidOlderThan gets quarantined stakings created before the cutoff
func (r *GormStakingRepository) FindInvalidOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Staking, error) {
	var stakings []*models.Staking
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at <= ?", models.StatusInvalid, cutoff).
		Order("created_at ASC").
		Find(&stakings).Error
	return stakings, err
}

// UpdateStatusIf applies fields only while the row's status still equals
// expectedStatus. Returns false when another pass won the race.
func (r *GormStakingRepository) UpdateStatusIf(ctx context.Context, id uint, expectedStatus string, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Staking{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete permanently removes a staking record
func (r *GormStakingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Staking{}, id).Error
}

// Stats returns aggregate counters, optionally scoped to one wallet
func (r *GormStakingRepository) Stats(ctx context.Context, wallet string) (*StakingStats, error) {
	var stats StakingStats

	query := r.db.WithContext(ctx).Model(&models.Staking{})
	if wallet != "" {
		query = query.Where("wallet_address = ?", wallet)
	}

	err := query.Select(
		"COUNT(*) as total_count, " +
			"SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END) as active_count, " +
			"COALESCE(SUM(CASE WHEN status = 'active' THEN staked_amount ELSE 0 END), 0) as total_active_amount, " +
			"COALESCE(SUM(CASE WHEN status = 'completed' THEN actual_reward ELSE 0 END), 0) as total_earned_rewards",
	).Scan(&stats).Error

	return &stats, err
}
