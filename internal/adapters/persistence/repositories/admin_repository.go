package repositories

import (
	"context"

	"qcc-stakevault/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormAdminRepository handles admin credential access
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// Get returns the newest admin credential row
func (r *GormAdminRepository) Get(ctx context.Context) (*models.AdminCredential, error) {
	var cred models.AdminCredential
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// Save creates or updates the admin credential
func (r *GormAdminRepository) Save(ctx context.Context, cred *models.AdminCredential) error {
	return r.db.WithContext(ctx).Save(cred).Error
}
