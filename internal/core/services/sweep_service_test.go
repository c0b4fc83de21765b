package services

import (
	"context"
	"testing"
	"time"

	"qcc-stakevault/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSweepService(repo *fakeStakingRepo, chainClient *fakeChain, now time.Time) *SweepService {
	svc := NewSweepService(repo, chainClient, 0)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSweepSettlesExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	svc := newTestSweepService(repo, chainClient, now)

	expired := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("1000"),
		StakingPeriod: 30,
		InterestRate:  dec("3"),
		StartDate:     now.AddDate(0, 0, -30),
		EndDate:       now.AddDate(0, 0, -1),
		Status:        models.StatusActive,
	})
	running := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("1000"),
		StakingPeriod: 90,
		InterestRate:  dec("6"),
		StartDate:     now.AddDate(0, 0, -10),
		EndDate:       now.AddDate(0, 0, 80),
		Status:        models.StatusActive,
	})

	summary, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Eligible)
	assert.Equal(t, 1, summary.Settled)
	assert.Equal(t, 0, summary.Failed)

	// Payout = principal + simple interest (1000 * 3% * 30/365).
	require.Len(t, chainClient.payouts, 1)
	assert.True(t, chainClient.payouts[0].amount.Equal(dec("1002.46575342")),
		"payout, got %s", chainClient.payouts[0].amount)

	settled, err := repo.GetByID(context.Background(), expired.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, settled.Status)
	require.NotNil(t, settled.ActualReward)
	assert.True(t, settled.ActualReward.Equal(dec("2.46575342")))
	require.NotNil(t, settled.ReturnTxHash)

	untouched, err := repo.GetByID(context.Background(), running.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, untouched.Status)
}

func TestSweepIsIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	svc := newTestSweepService(repo, chainClient, now)

	repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("1000"),
		StakingPeriod: 30,
		InterestRate:  dec("3"),
		EndDate:       now.AddDate(0, 0, -1),
		Status:        models.StatusActive,
	})

	first, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Settled)

	second, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Eligible)
	assert.Equal(t, 0, second.Settled)

	// Exactly one payout despite two passes.
	assert.Len(t, chainClient.payouts, 1)
}

func TestSweepBroadcastFailureLeavesRecordActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	chainClient.payoutErr = assert.AnError
	svc := newTestSweepService(repo, chainClient, now)

	st := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("1000"),
		StakingPeriod: 30,
		InterestRate:  dec("3"),
		EndDate:       now.AddDate(0, 0, -1),
		Status:        models.StatusActive,
	})

	summary, err := svc.SweepExpired(context.Background())
	require.NoError(t, err, "one failing record must not abort the pass")
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Settled)

	stored, err := repo.GetByID(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status, "eligible again on the next sweep")
	assert.Nil(t, stored.ActualReward)
}

func TestSweepSkipsRecordSettledBetweenReads(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	chainClient := newFakeChain()
	svc := newTestSweepService(repo, chainClient, now)

	st := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("1000"),
		StakingPeriod: 30,
		InterestRate:  dec("3"),
		EndDate:       now.AddDate(0, 0, -1),
		Status:        models.StatusActive,
	})
	// The record settles after the bulk query but before its turn: the fresh
	// per-record read must catch it and skip the payout.
	repo.readStatus = map[uint]string{st.ID: models.StatusCancelled}

	summary, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Eligible)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Settled)
	assert.Len(t, chainClient.payouts, 0)
}

func TestUpcomingExpirations(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeStakingRepo()
	svc := newTestSweepService(repo, newFakeChain(), now)

	soon := repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		EndDate:       now.AddDate(0, 0, 3),
		Status:        models.StatusActive,
	})
	repo.add(&models.Staking{
		WalletAddress: "qcc1walletaddress",
		StakedAmount:  dec("100"),
		EndDate:       now.AddDate(0, 0, 30),
		Status:        models.StatusActive,
	})

	out, err := svc.UpcomingExpirations(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, soon.ID, out[0].ID)
}
