package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Staking lifecycle errors
var (
	ErrStakingNotFound   = errors.New("staking not found")
	ErrNotOwner          = errors.New("staking does not belong to this wallet")
	ErrNotActive         = errors.New("staking is not active")
	ErrAlreadySettled    = errors.New("staking already settled by another pass")
	ErrAmountNotPositive = errors.New("staked amount must be greater than 0")
	ErrBadWalletAddress  = errors.New("invalid wallet address format")
	ErrRateNotConfigured = errors.New("no interest rate configured for this period")
)

// Settlement and rate configuration errors
var (
	ErrSettlementFailed   = errors.New("settlement broadcast failed")
	ErrMissingRatePeriod  = errors.New("rate table is missing a mandatory period")
	ErrNegativeRate       = errors.New("interest rate must not be negative")
	ErrAdminNotConfigured = errors.New("admin credential not configured")
	ErrBadCredentials     = errors.New("invalid admin password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)
