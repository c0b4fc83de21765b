package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"qcc-stakevault/internal/adapters/chain"
	"qcc-stakevault/internal/adapters/persistence/models"
	"qcc-stakevault/internal/adapters/persistence/repositories"
	"qcc-stakevault/internal/config"
)

// ReconcileService re-verifies recorded deposit transaction hashes against
// the settlement network. Deposits the network does not know (forged, reorged
// or expired inputs) are quarantined as invalid; quarantined records get
// re-checked after a cooldown and either recovered or, past the purge age,
// deleted. Network failures never quarantine anything — only a definite
// "not found" answer does.
type ReconcileService struct {
	stakingRepo repositories.StakingRepository
	chainClient chain.Client
	cfg         config.ReconConfig
	now         func() time.Time
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(stakingRepo repositories.StakingRepository, chainClient chain.Client, cfg config.ReconConfig) *ReconcileService {
	return &ReconcileService{
		stakingRepo: stakingRepo,
		chainClient: chainClient,
		cfg:         cfg,
		now:         time.Now,
	}
}

// ReconSummary aggregates one reconciliation pass
type ReconSummary struct {
	Checked     int `json:"checked"`
	Confirmed   int `json:"confirmed"`
	Quarantined int `json:"quarantined"`
	Recovered   int `json:"recovered"`
	Purged      int `json:"purged"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
}

// ScanRecent verifies the deposit hashes of active stakings created in the
// scan window (by default: yesterday — deposits get one full day to finalize
// before being checked). Unknown hashes quarantine the record as invalid;
// nothing is deleted here.
func (s *ReconcileService) ScanRecent(ctx context.Context) (*ReconSummary, error) {
	to := midnight(s.now())
	from := to.AddDate(0, 0, -s.cfg.ScanLagDays)

	records, err := s.stakingRepo.FindRecentWithDeposit(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query recent deposits: %w", err)
	}

	summary := &ReconSummary{}
	log.Printf("🔍 Verifying %d deposits created between %s and %s",
		len(records), from.Format("2006-01-02"), to.Format("2006-01-02"))

	for i, st := range records {
		if i > 0 {
			s.pause(ctx)
		}
		summary.Checked++

		lookup, err := s.chainClient.QueryTransaction(ctx, *st.DepositTxHash)
		if err != nil {
			// Transport failure: no verdict on the deposit, try next pass.
			log.Printf("⚠️ Deposit check for staking %d failed: %v", st.ID, err)
			summary.Errors++
			continue
		}

		if lookup.Found {
			summary.Confirmed++
			continue
		}

		ok, err := s.stakingRepo.UpdateStatusIf(ctx, st.ID, models.StatusActive, map[string]interface{}{
			"status": models.StatusInvalid,
		})
		if err != nil {
			log.Printf("❌ Quarantine of staking %d failed: %v", st.ID, err)
			summary.Errors++
			continue
		}
		if !ok {
			summary.Skipped++ // settled between read and write, leave it
			continue
		}

		log.Printf("🚧 Staking %d quarantined: deposit %s unknown to the network", st.ID, shortHash(*st.DepositTxHash))
		summary.Quarantined++
	}

	log.Printf("📊 Recent scan done: %d confirmed, %d quarantined, %d errors of %d",
		summary.Confirmed, summary.Quarantined, summary.Errors, summary.Checked)
	return summary, nil
}

// ScanStale revisits quarantined stakings past the retry cooldown. A deposit
// the network now knows recovers the record to active; one still unknown past
// the purge age is deleted for good; anything in between stays quarantined
// for another cycle.
func (s *ReconcileService) ScanStale(ctx context.Context) (*ReconSummary, error) {
	now := s.now()
	cooldownCutoff := now.AddDate(0, 0, -s.cfg.RetryCooldownDays)

	records, err := s.stakingRepo.FindInvalidOlderThan(ctx, cooldownCutoff)
	if err != nil {
		return nil, fmt.Errorf("query stale quarantined stakings: %w", err)
	}

	summary := &ReconSummary{}
	log.Printf("🔍 Re-checking %d quarantined stakings", len(records))

	for i, st := range records {
		if i > 0 {
			s.pause(ctx)
		}
		summary.Checked++

		if st.DepositTxHash == nil || *st.DepositTxHash == "" {
			// Should not happen: only hash-carrying records get quarantined.
			summary.Skipped++
			continue
		}

		lookup, err := s.chainClient.QueryTransaction(ctx, *st.DepositTxHash)
		if err != nil {
			log.Printf("⚠️ Recheck for staking %d failed: %v", st.ID, err)
			summary.Errors++
			continue
		}

		if lookup.Found {
			ok, err := s.stakingRepo.UpdateStatusIf(ctx, st.ID, models.StatusInvalid, map[string]interface{}{
				"status": models.StatusActive,
			})
			if err != nil {
				summary.Errors++
				continue
			}
			if !ok {
				summary.Skipped++
				continue
			}
			log.Printf("♻️ Staking %d recovered: deposit %s confirmed", st.ID, shortHash(*st.DepositTxHash))
			summary.Recovered++
			continue
		}

		if now.Sub(st.CreatedAt) >= time.Duration(s.cfg.PurgeAgeDays)*24*time.Hour {
			if err := s.stakingRepo.Delete(ctx, st.ID); err != nil {
				log.Printf("❌ Purge of staking %d failed: %v", st.ID, err)
				summary.Errors++
				continue
			}
			log.Printf("🗑️ Staking %d purged: wallet=%s amount=%s deposit=%s",
				st.ID, st.WalletAddress, st.StakedAmount.String(), shortHash(*st.DepositTxHash))
			summary.Purged++
			continue
		}

		summary.Skipped++ // still quarantined, next cycle decides
	}

	log.Printf("📊 Stale scan done: %d recovered, %d purged, %d left, %d errors of %d",
		summary.Recovered, summary.Purged, summary.Skipped, summary.Errors, summary.Checked)
	return summary, nil
}

func (s *ReconcileService) pause(ctx context.Context) {
	if s.cfg.CallDelay <= 0 {
		return
	}
	timer := time.NewTimer(s.cfg.CallDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func shortHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:16] + "..."
}
