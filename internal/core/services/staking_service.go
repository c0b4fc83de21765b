package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qcc-stakevault/internal/adapters/chain"
	"qcc-stakevault/internal/adapters/persistence/models"
	"qcc-stakevault/internal/adapters/persistence/repositories"
	"qcc-stakevault/internal/config"
	"qcc-stakevault/internal/core/domain"
	"qcc-stakevault/internal/pkg/reward"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// minWalletAddressLen is the shortest wallet address the chain issues.
const minWalletAddressLen = 11

// StakingService owns the staking lifecycle: creation, early cancellation and
// read access. Expiry settlement lives in SweepService, deposit verification
// in ReconcileService; all three settle through the repository's conditional
// status update so no record can be paid out twice.
type StakingService struct {
	stakingRepo repositories.StakingRepository
	rateRepo    repositories.RateRepository
	chainClient chain.Client
	stakingCfg  config.StakingConfig
	now         func() time.Time
}

// NewStakingService creates a new staking service
func NewStakingService(
	stakingRepo repositories.StakingRepository,
	rateRepo repositories.RateRepository,
	chainClient chain.Client,
	stakingCfg config.StakingConfig,
) *StakingService {
	return &StakingService{
		stakingRepo: stakingRepo,
		rateRepo:    rateRepo,
		chainClient: chainClient,
		stakingCfg:  stakingCfg,
		now:         time.Now,
	}
}

// CreateStakingInput represents a deposit request
type CreateStakingInput struct {
	WalletAddress string          `json:"wallet_address"`
	StakedAmount  decimal.Decimal `json:"staked_amount"`
	StakingPeriod int             `json:"staking_period"`
	// DepositTxHash is the inbound transfer that funded the staking;
	// optional, verified later by reconciliation.
	DepositTxHash string `json:"transaction_hash"`
}

// Create validates a deposit request and records a new active staking. The
// interest rate for the chosen period is snapshotted into the record: later
// rate changes never touch existing stakings.
func (s *StakingService) Create(ctx context.Context, input *CreateStakingInput) (*models.Staking, error) {
	if len(input.WalletAddress) < minWalletAddressLen {
		return nil, domain.ErrBadWalletAddress
	}
	if !input.StakedAmount.IsPositive() {
		return nil, domain.ErrAmountNotPositive
	}
	if !s.stakingCfg.HasPeriod(input.StakingPeriod) {
		return nil, domain.ErrRateNotConfigured
	}

	rateRow, err := s.rateRepo.GetByPeriod(ctx, input.StakingPeriod)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRateNotConfigured
		}
		return nil, fmt.Errorf("load rate for period %d: %w", input.StakingPeriod, err)
	}

	start := s.now().UTC()
	staking := &models.Staking{
		WalletAddress:  input.WalletAddress,
		StakedAmount:   input.StakedAmount,
		StakingPeriod:  input.StakingPeriod,
		InterestRate:   rateRow.Rate,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, input.StakingPeriod),
		ExpectedReward: reward.Compute(input.StakedAmount, rateRow.Rate, input.StakingPeriod),
		Status:         models.StatusActive,
	}
	if input.DepositTxHash != "" {
		hash := input.DepositTxHash
		staking.DepositTxHash = &hash
	}

	if err := s.stakingRepo.Create(ctx, staking); err != nil {
		return nil, fmt.Errorf("create staking: %w", err)
	}
	return staking, nil
}

// GetByID returns one staking record
func (s *StakingService) GetByID(ctx context.Context, id uint) (*models.StakingResponse, error) {
	staking, err := s.stakingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStakingNotFound
		}
		return nil, err
	}
	return staking.ToResponse(s.now()), nil
}

// ListByWallet returns all stakings of one wallet, newest first
func (s *StakingService) ListByWallet(ctx context.Context, wallet string) ([]*models.StakingResponse, error) {
	if len(wallet) < minWalletAddressLen {
		return nil, domain.ErrBadWalletAddress
	}

	stakings, err := s.stakingRepo.ListByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*models.StakingResponse, 0, len(stakings))
	for _, st := range stakings {
		out = append(out, st.ToResponse(now))
	}
	return out, nil
}

// ListAll returns stakings page by page with an optional status filter
func (s *StakingService) ListAll(ctx context.Context, offset, limit int, status string) ([]*models.StakingResponse, int64, error) {
	stakings, total, err := s.stakingRepo.List(ctx, offset, limit, status)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	out := make([]*models.StakingResponse, 0, len(stakings))
	for _, st := range stakings {
		out = append(out, st.ToResponse(now))
	}
	return out, total, nil
}

// CancelResult reports an early-exit settlement
type CancelResult struct {
	StakingID      uint            `json:"staking_id"`
	ReturnedAmount decimal.Decimal `json:"returned_amount"`
	Ref            chain.TxRef     `json:"return_tx"`
	DryRun         bool            `json:"dry_run"`
}

// Cancel settles an early exit. Policy: cancelling forfeits the entire
// reward; only the principal is returned and actual_reward is recorded as 0.
// The database is touched only after the settlement network confirmed the
// payout; a failed broadcast leaves the staking active for a later retry.
func (s *StakingService) Cancel(ctx context.Context, id uint, wallet string) (*CancelResult, error) {
	staking, err := s.stakingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStakingNotFound
		}
		return nil, err
	}

	if staking.WalletAddress != wallet {
		return nil, domain.ErrNotOwner
	}
	if staking.Status != models.StatusActive {
		return nil, domain.ErrNotActive
	}

	receipt, err := s.chainClient.BroadcastPayout(ctx, staking.WalletAddress, staking.StakedAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSettlementFailed, err)
	}

	hash := receipt.Ref.Hash
	ok, err := s.stakingRepo.UpdateStatusIf(ctx, staking.ID, models.StatusActive, map[string]interface{}{
		"status":                  models.StatusCancelled,
		"actual_reward":           decimal.Zero,
		"return_transaction_hash": hash,
		"return_tx_provisional":   receipt.Ref.Provisional,
	})
	if err != nil {
		return nil, fmt.Errorf("record cancellation of staking %d (payout %s already sent): %w", staking.ID, hash, err)
	}
	if !ok {
		// Another pass settled the record between our read and write; the
		// payout above is now an orphan and needs operator attention.
		return nil, fmt.Errorf("%w: staking %d, orphaned payout %s", domain.ErrAlreadySettled, staking.ID, hash)
	}

	return &CancelResult{
		StakingID:      staking.ID,
		ReturnedAmount: staking.StakedAmount,
		Ref:            receipt.Ref,
		DryRun:         receipt.DryRun,
	}, nil
}

// Stats returns aggregate staking counters, optionally scoped to a wallet
func (s *StakingService) Stats(ctx context.Context, wallet string) (*repositories.StakingStats, error) {
	if wallet != "" && len(wallet) < minWalletAddressLen {
		return nil, domain.ErrBadWalletAddress
	}
	return s.stakingRepo.Stats(ctx, wallet)
}

// PeriodOption is one staking period offer for the frontend
type PeriodOption struct {
	Period    int             `json:"period"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Periods returns the currently offered lock periods with their rates
func (s *StakingService) Periods(ctx context.Context) ([]*PeriodOption, error) {
	rates, err := s.rateRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*PeriodOption, 0, len(rates))
	for _, r := range rates {
		out = append(out, &PeriodOption{Period: r.Period, Rate: r.Rate, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}
