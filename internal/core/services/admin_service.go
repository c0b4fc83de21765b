package services

import (
	"context"
	"errors"
	"time"

	"qcc-stakevault/internal/adapters/persistence/repositories"
	"qcc-stakevault/internal/config"
	"qcc-stakevault/internal/core/domain"
	"qcc-stakevault/internal/pkg/jwt"
	"qcc-stakevault/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminService guards the single administrative credential. There is exactly
// one admin; logins verify against the stored bcrypt hash and hand out a
// short-lived session token for the admin routes.
type AdminService struct {
	adminRepo repositories.AdminRepository
	jwtCfg    config.JWTConfig
}

// NewAdminService creates a new admin service
func NewAdminService(adminRepo repositories.AdminRepository, jwtCfg config.JWTConfig) *AdminService {
	return &AdminService{
		adminRepo: adminRepo,
		jwtCfg:    jwtCfg,
	}
}

// VerifyPassword checks the admin password without issuing a token
func (s *AdminService) VerifyPassword(ctx context.Context, pass string) error {
	cred, err := s.adminRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrAdminNotConfigured
		}
		return err
	}

	if !password.Verify(pass, cred.PasswordHash) {
		return domain.ErrBadCredentials
	}
	return nil
}

// Login verifies the admin password and issues a session token
func (s *AdminService) Login(ctx context.Context, pass string) (string, error) {
	if err := s.VerifyPassword(ctx, pass); err != nil {
		return "", err
	}
	return jwt.GenerateAdminToken(uuid.NewString(), s.jwtCfg.Secret, s.jwtCfg.AdminTokenMins)
}

// ChangePassword rotates the admin credential after verifying the current one
func (s *AdminService) ChangePassword(ctx context.Context, current, newPass string) error {
	if !password.Validate(newPass) {
		return domain.ErrWeakPassword
	}

	cred, err := s.adminRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrAdminNotConfigured
		}
		return err
	}

	if !password.Verify(current, cred.PasswordHash) {
		return domain.ErrBadCredentials
	}

	hash, err := password.Hash(newPass)
	if err != nil {
		return err
	}

	cred.PasswordHash = hash
	return s.adminRepo.Save(ctx, cred)
}

// AdminStatus reports whether the credential is set up
type AdminStatus struct {
	IsSetup   bool       `json:"is_setup"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Status returns the admin credential setup state
func (s *AdminService) Status(ctx context.Context) (*AdminStatus, error) {
	cred, err := s.adminRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AdminStatus{IsSetup: false}, nil
		}
		return nil, err
	}

	return &AdminStatus{
		IsSetup:   true,
		CreatedAt: &cred.CreatedAt,
		UpdatedAt: &cred.UpdatedAt,
	}, nil
}
