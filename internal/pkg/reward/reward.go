// Package reward computes staking payouts. All arithmetic is decimal to keep
// amounts exact across repeated passes; rounding happens once, at the output,
// to the chain's 8-decimal minimum unit.
package reward

import "github.com/shopspring/decimal"

// Precision is the fractional precision of the settlement network's unit.
const Precision = 8

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)

	// DefaultEarlyWithdrawalPenalty is the share of earned reward forfeited
	// on early exit when a partial-payout policy is in effect.
	DefaultEarlyWithdrawalPenalty = decimal.New(5, -1)
)

// Compute returns simple interest: principal * (rate/100) * (days/365).
func Compute(principal, annualRatePercent decimal.Decimal, periodDays int) decimal.Decimal {
	days := decimal.NewFromInt(int64(periodDays))
	return principal.
		Mul(annualRatePercent).
		Mul(days).
		Div(hundred.Mul(daysPerYear)).
		Round(Precision)
}

// CompoundReference returns compound interest for the same inputs:
// principal * (1 + rate/100/365)^days - principal. Informational only; payouts
// always use Compute.
func CompoundReference(principal, annualRatePercent decimal.Decimal, periodDays int) decimal.Decimal {
	dailyRate := annualRatePercent.Div(hundred).Div(daysPerYear)
	grown := principal.Mul(decimal.NewFromInt(1).Add(dailyRate).Pow(decimal.NewFromInt(int64(periodDays))))
	return grown.Sub(principal).Round(Precision)
}

// ApplyEarlyWithdrawalPenalty reduces a reward by the penalty share:
// final = reward * (1 - penaltyRate). Principal is never touched by penalties.
func ApplyEarlyWithdrawalPenalty(earned, penaltyRate decimal.Decimal) decimal.Decimal {
	return earned.Mul(decimal.NewFromInt(1).Sub(penaltyRate)).Round(Precision)
}
