package services

import (
	"context"
	"testing"

	"qcc-stakevault/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateReplaceAll(t *testing.T) {
	rates := defaultRates()
	svc := NewRateService(rates, testStakingCfg)

	err := svc.ReplaceAll(context.Background(), map[int]decimal.Decimal{
		30:  dec("3.5"),
		90:  dec("7"),
		180: dec("11"),
		365: dec("16"),
	})
	require.NoError(t, err)

	row, err := rates.GetByPeriod(context.Background(), 30)
	require.NoError(t, err)
	assert.True(t, row.Rate.Equal(dec("3.5")))
}

func TestRateReplaceAllRejectsIncompleteSet(t *testing.T) {
	rates := defaultRates()
	svc := NewRateService(rates, testStakingCfg)

	err := svc.ReplaceAll(context.Background(), map[int]decimal.Decimal{
		30: dec("3.5"),
		90: dec("7"),
	})
	assert.ErrorIs(t, err, domain.ErrMissingRatePeriod)

	// Rejected set leaves the table untouched.
	row, err := rates.GetByPeriod(context.Background(), 30)
	require.NoError(t, err)
	assert.True(t, row.Rate.Equal(dec("3")))
}

func TestRateReplaceAllRejectsNegativeRate(t *testing.T) {
	svc := NewRateService(defaultRates(), testStakingCfg)

	err := svc.ReplaceAll(context.Background(), map[int]decimal.Decimal{
		30:  dec("-1"),
		90:  dec("7"),
		180: dec("11"),
		365: dec("16"),
	})
	assert.ErrorIs(t, err, domain.ErrNegativeRate)
}

func TestRateReplaceAllAllowsExtraPeriods(t *testing.T) {
	rates := defaultRates()
	svc := NewRateService(rates, testStakingCfg)

	err := svc.ReplaceAll(context.Background(), map[int]decimal.Decimal{
		30:  dec("3"),
		60:  dec("4.5"),
		90:  dec("6"),
		180: dec("10"),
		365: dec("15"),
	})
	require.NoError(t, err)

	row, err := rates.GetByPeriod(context.Background(), 60)
	require.NoError(t, err)
	assert.True(t, row.Rate.Equal(dec("4.5")))
}
