package services

import (
	"context"
	"testing"
	"time"

	"qcc-stakevault/internal/adapters/persistence/models"
	"qcc-stakevault/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReconCfg = config.ReconConfig{
	ScanLagDays:       1,
	RetryCooldownDays: 2,
	PurgeAgeDays:      3,
}

func newTestReconcileService(repo *fakeStakingRepo, chainClient *fakeChain, now time.Time) *ReconcileService {
	svc := NewReconcileService(repo, chainClient, testReconCfg)
	svc.now = func() time.Time { return now }
	return svc
}

func TestScanRecentQuarantinesUnknownDeposits(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	chainClient.known["confirmed-hash"] = true
	svc := newTestReconcileService(repo, chainClient, now)

	good := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("confirmed-hash"),
		Status:        models.StatusActive,
		CreatedAt:     yesterday,
	})
	bad := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("unknown-hash"),
		Status:        models.StatusActive,
		CreatedAt:     yesterday,
	})

	summary, err := svc.ScanRecent(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Confirmed)
	assert.Equal(t, 1, summary.Quarantined)

	confirmed, err := repo.GetByID(context.Background(), good.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, confirmed.Status)

	quarantined, err := repo.GetByID(context.Background(), bad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvalid, quarantined.Status)
}

func TestScanRecentWindowGivesDepositsOneDay(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	svc := newTestReconcileService(repo, chainClient, now)

	// Created today: its deposit may still be finalizing, not checked yet.
	today := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("too-fresh-hash"),
		Status:        models.StatusActive,
		CreatedAt:     now.Add(-time.Hour),
	})
	// Created two days ago: outside the scan window as well.
	repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("old-hash"),
		Status:        models.StatusActive,
		CreatedAt:     now.AddDate(0, 0, -2),
	})

	summary, err := svc.ScanRecent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Checked)

	fresh, err := repo.GetByID(context.Background(), today.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, fresh.Status)
}

func TestScanRecentNetworkErrorIsNotAVerdict(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	chainClient.lookupErrs["flaky-hash"] = assert.AnError
	svc := newTestReconcileService(repo, chainClient, now)

	st := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("flaky-hash"),
		Status:        models.StatusActive,
		CreatedAt:     yesterday,
	})

	summary, err := svc.ScanRecent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 0, summary.Quarantined)

	stored, err := repo.GetByID(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status, "transport failure must never quarantine")
}

func TestScanStaleRecoversVerifiedDeposits(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	chainClient.known["late-hash"] = true
	svc := newTestReconcileService(repo, chainClient, now)

	st := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("late-hash"),
		Status:        models.StatusInvalid,
		CreatedAt:     now.AddDate(0, 0, -2),
	})

	summary, err := svc.ScanStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Recovered)
	assert.Equal(t, 0, summary.Purged)

	stored, err := repo.GetByID(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
}

func TestScanStaleRespectsCooldown(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	svc := newTestReconcileService(repo, newFakeChain(), now)

	// Quarantined yesterday: the cooldown has not elapsed, leave it alone.
	repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("recent-hash"),
		Status:        models.StatusInvalid,
		CreatedAt:     now.AddDate(0, 0, -1),
	})

	summary, err := svc.ScanStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Checked)
}

func TestScanStalePurgesPastPurgeAge(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	svc := newTestReconcileService(repo, chainClient, now)

	// Old enough to re-check, not old enough to purge.
	limbo := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("limbo-hash"),
		Status:        models.StatusInvalid,
		CreatedAt:     now.AddDate(0, 0, -2),
	})
	// Past the purge age and still unknown: deleted for good.
	doomed := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("doomed-hash"),
		Status:        models.StatusInvalid,
		CreatedAt:     now.AddDate(0, 0, -4),
	})

	summary, err := svc.ScanStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Purged)
	assert.Equal(t, 1, summary.Skipped)

	_, err = repo.GetByID(context.Background(), doomed.ID)
	assert.Error(t, err, "purged record must be gone")

	kept, err := repo.GetByID(context.Background(), limbo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvalid, kept.Status, "stays quarantined for another cycle")
}

func TestScanStaleNetworkErrorNeverPurges(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	chainClient.lookupErrs["flaky-hash"] = assert.AnError
	svc := newTestReconcileService(repo, chainClient, now)

	st := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		DepositTxHash: strPtr("flaky-hash"),
		Status:        models.StatusInvalid,
		CreatedAt:     now.AddDate(0, 0, -10),
	})

	summary, err := svc.ScanStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 0, summary.Purged)

	stored, err := repo.GetByID(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvalid, stored.Status)
}
