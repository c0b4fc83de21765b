package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"qcc-stakevault/internal/adapters/chain"
	"qcc-stakevault/internal/adapters/persistence/models"
	"qcc-stakevault/internal/adapters/persistence/repositories"
	"qcc-stakevault/internal/core/domain"
	"qcc-stakevault/internal/pkg/reward"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SweepService settles matured stakings: every active record past its end
// date gets principal plus the full simple-interest reward, computed from the
// rate snapshotted at creation. Records are processed one at a time with a
// fixed pause between settlement calls.
type SweepService struct {
	stakingRepo repositories.StakingRepository
	chainClient chain.Client
	callDelay   time.Duration
	now         func() time.Time
}

// NewSweepService creates a new sweep service
func NewSweepService(stakingRepo repositories.StakingRepository, chainClient chain.Client, callDelay time.Duration) *SweepService {
	return &SweepService{
		stakingRepo: stakingRepo,
		chainClient: chainClient,
		callDelay:   callDelay,
		now:         time.Now,
	}
}

// SweepOutcome is the per-record result of one sweep pass
type SweepOutcome struct {
	StakingID     uint            `json:"staking_id"`
	WalletAddress string          `json:"wallet_address"`
	Principal     decimal.Decimal `json:"principal"`
	Reward        decimal.Decimal `json:"reward"`
	Ref           *chain.TxRef    `json:"return_tx,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// SweepSummary aggregates one sweep pass
type SweepSummary struct {
	Eligible int            `json:"eligible"`
	Settled  int            `json:"settled"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	Outcomes []SweepOutcome `json:"outcomes"`
}

// SweepExpired settles every matured active staking. A record is written back
// as completed only after the settlement network confirmed the payout, via a
// conditional update keyed on the status still being active — running two
// sweeps back to back therefore settles each record at most once. A failing
// settlement never aborts the pass; the record stays active for the next run.
func (s *SweepService) SweepExpired(ctx context.Context) (*SweepSummary, error) {
	now := s.now()
	expired, err := s.stakingRepo.FindExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("query expired stakings: %w", err)
	}

	summary := &SweepSummary{Eligible: len(expired)}
	if len(expired) == 0 {
		log.Println("✅ No expired stakings to settle")
		return summary, nil
	}

	log.Printf("📋 Settling %d expired stakings", len(expired))

	for i, st := range expired {
		if i > 0 {
			s.pause(ctx)
		}
		outcome := s.settleOne(ctx, st.ID)
		summary.Outcomes = append(summary.Outcomes, outcome)
		switch {
		case outcome.Error != "":
			summary.Failed++
		case outcome.Ref == nil:
			summary.Skipped++
		default:
			summary.Settled++
		}
	}

	log.Printf("📊 Sweep done: %d settled, %d skipped, %d failed of %d",
		summary.Settled, summary.Skipped, summary.Failed, summary.Eligible)
	return summary, nil
}

// settleOne re-reads a single staking and settles it. The fresh read matters:
// the bulk query's snapshot may be stale by the time this record's turn
// comes, and no settlement call may be issued unless the record is still
// active right now.
func (s *SweepService) settleOne(ctx context.Context, id uint) SweepOutcome {
	outcome := SweepOutcome{StakingID: id}

	st, err := s.stakingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return outcome // purged since the bulk read; nothing to do
		}
		outcome.Error = err.Error()
		return outcome
	}

	outcome.WalletAddress = st.WalletAddress
	outcome.Principal = st.StakedAmount

	if st.Status != models.StatusActive || !st.IsExpired(s.now()) {
		return outcome // settled or re-quarantined meanwhile, skip
	}

	earned := reward.Compute(st.StakedAmount, st.InterestRate, st.StakingPeriod)
	payout := st.StakedAmount.Add(earned)
	outcome.Reward = earned

	receipt, err := s.chainClient.BroadcastPayout(ctx, st.WalletAddress, payout)
	if err != nil {
		// Record untouched: eligible again on the next sweep.
		log.Printf("❌ Settlement of staking %d failed: %v", st.ID, err)
		outcome.Error = fmt.Sprintf("%v: %v", domain.ErrSettlementFailed, err)
		return outcome
	}

	ok, err := s.stakingRepo.UpdateStatusIf(ctx, st.ID, models.StatusActive, map[string]interface{}{
		"status":                  models.StatusCompleted,
		"actual_reward":           earned,
		"return_transaction_hash": receipt.Ref.Hash,
		"return_tx_provisional":   receipt.Ref.Provisional,
	})
	if err != nil {
		// Payout confirmed but not recorded — the one unrecoverable spot.
		log.Printf("💥 Staking %d: payout %s sent but completion write failed: %v", st.ID, receipt.Ref.Hash, err)
		outcome.Error = fmt.Sprintf("payout %s sent, write-back failed: %v", receipt.Ref.Hash, err)
		return outcome
	}
	if !ok {
		log.Printf("💥 Staking %d: payout %s orphaned, record settled concurrently", st.ID, receipt.Ref.Hash)
		outcome.Error = fmt.Sprintf("payout %s orphaned: %v", receipt.Ref.Hash, domain.ErrAlreadySettled)
		return outcome
	}

	log.Printf("✅ Staking %d settled: %s + %s QCC to %s (tx %s)",
		st.ID, st.StakedAmount.String(), earned.String(), st.WalletAddress, receipt.Ref.Hash)
	outcome.Ref = &receipt.Ref
	return outcome
}

// UpcomingExpirations lists active stakings maturing within the next N days
func (s *SweepService) UpcomingExpirations(ctx context.Context, days int) ([]*models.StakingResponse, error) {
	stakings, err := s.stakingRepo.FindExpiringWithin(ctx, s.now(), days)
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

func (s *SweepService) pause(ctx context.Context) {
	if s.callDelay <= 0 {
		return
	}
	timer := time.NewTimer(s.callDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
