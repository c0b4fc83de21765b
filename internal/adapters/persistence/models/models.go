package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Staking status lifecycle:
// active -> completed (matured and settled)
// active -> cancelled (early exit, principal returned)
// active -> invalid   (deposit tx could not be verified)
// invalid -> active   (deposit tx verified on a later pass)
// invalid -> deleted  (still unverified past the purge age)
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusInvalid   = "invalid"
)

// Staking represents the stakings table
type Staking struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	WalletAddress  string          `gorm:"size:128;index;not null" json:"wallet_address"`
	StakedAmount   decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"staked_amount"`
	StakingPeriod  int             `gorm:"not null" json:"staking_period"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"interest_rate"`
	StartDate      time.Time       `gorm:"not null" json:"start_date"`
	EndDate        time.Time       `gorm:"index;not null" json:"end_date"`
	ExpectedReward decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"expected_reward"`
	// ActualReward stays NULL until the record reaches a terminal status.
	ActualReward *decimal.Decimal `gorm:"type:decimal(30,8)" json:"actual_reward"`
	// DepositTxHash is the hash of the inbound transfer that funded the
	// staking, supplied by the caller. Verified later by reconciliation.
	DepositTxHash *string `gorm:"column:transaction_hash;size:128" json:"transaction_hash"`
	// ReturnTxHash is set only after the settlement network confirmed the
	// payout. Provisional means the network accepted the broadcast but did
	// not include a hash in its response (or the transfer ran in dry-run).
	ReturnTxHash        *string   `gorm:"column:return_transaction_hash;size:128" json:"return_transaction_hash"`
	ReturnTxProvisional bool      `gorm:"default:false" json:"return_tx_provisional"`
	Status              string    `gorm:"size:16;index;default:'active'" json:"status"`
	CreatedAt           time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Staking) TableName() string {
	return "stakings"
}

// IsTerminal reports whether the staking reached a final status.
func (s *Staking) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusCancelled
}

// IsExpired reports whether the lock period has elapsed.
func (s *Staking) IsExpired(now time.Time) bool {
	return !now.Before(s.EndDate)
}

// ProgressPercent returns how far through the lock period the staking is, 0-100.
func (s *Staking) ProgressPercent(now time.Time) int {
	if now.Before(s.StartDate) {
		return 0
	}
	if !now.Before(s.EndDate) {
		return 100
	}
	total := s.EndDate.Sub(s.StartDate)
	if total <= 0 {
		return 100
	}
	elapsed := now.Sub(s.StartDate)
	return int(float64(elapsed) / float64(total) * 100)
}

// DaysRemaining returns whole days until maturity, rounded up. 0 once expired.
func (s *Staking) DaysRemaining(now time.Time) int {
	if !now.Before(s.EndDate) {
		return 0
	}
	d := s.EndDate.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// StakingResponse DTO with computed view fields
type StakingResponse struct {
	ID                  uint             `json:"id"`
	WalletAddress       string           `json:"wallet_address"`
	StakedAmount        decimal.Decimal  `json:"staked_amount"`
	StakingPeriod       int              `json:"staking_period"`
	InterestRate        decimal.Decimal  `json:"interest_rate"`
	StartDate           time.Time        `json:"start_date"`
	EndDate             time.Time        `json:"end_date"`
	ExpectedReward      decimal.Decimal  `json:"expected_reward"`
	TotalReturn         decimal.Decimal  `json:"total_return"`
	ActualReward        *decimal.Decimal `json:"actual_reward,omitempty"`
	DepositTxHash       *string          `json:"transaction_hash,omitempty"`
	ReturnTxHash        *string          `json:"return_transaction_hash,omitempty"`
	ReturnTxProvisional bool             `json:"return_tx_provisional"`
	Status              string           `json:"status"`
	Progress            int              `json:"progress"`
	DaysRemaining       int              `json:"days_remaining"`
	CreatedAt           time.Time        `json:"created_at"`
}

// ToResponse builds the DTO, computing progress fields against now.
func (s *Staking) ToResponse(now time.Time) *StakingResponse {
	return &StakingResponse{
		ID:                  s.ID,
		WalletAddress:       s.WalletAddress,
		StakedAmount:        s.StakedAmount,
		StakingPeriod:       s.StakingPeriod,
		InterestRate:        s.InterestRate,
		StartDate:           s.StartDate,
		EndDate:             s.EndDate,
		ExpectedReward:      s.ExpectedReward,
		TotalReturn:         s.StakedAmount.Add(s.ExpectedReward),
		ActualReward:        s.ActualReward,
		DepositTxHash:       s.DepositTxHash,
		ReturnTxHash:        s.ReturnTxHash,
		ReturnTxProvisional: s.ReturnTxProvisional,
		Status:              s.Status,
		Progress:            s.ProgressPercent(now),
		DaysRemaining:       s.DaysRemaining(now),
		CreatedAt:           s.CreatedAt,
	}
}

// InterestRate represents the interest_rates table (one row per period)
type InterestRate struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Period    int             `gorm:"uniqueIndex;not null" json:"period"`
	Rate      decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"rate"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InterestRate) TableName() string {
	return "interest_rates"
}

// AdminCredential represents the admin_auth table (single-row)
type AdminCredential struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AdminCredential) TableName() string {
	return "admin_auth"
}

// AutoMigrate creates/updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Staking{},
		&InterestRate{},
		&AdminCredential{},
	)
}
