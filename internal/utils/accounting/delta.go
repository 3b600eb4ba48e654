// Package accounting holds the pure balance arithmetic: every balance
// mutation in the system is expressed as a signed delta produced here.
package accounting

import "github.com/shopspring/decimal"

// DeltaFor computes the signed effect of a ledger entry on its account
// balance: +amount for income, -amount for expense. Amount is treated as a
// magnitude; callers validate non-negativity upstream.
func DeltaFor(amount decimal.Decimal, isIncome bool) decimal.Decimal {
	if isIncome {
		return amount
	}
	return amount.Neg()
}

// DirectionFromFeed translates the external feed's sign convention into the
// internal explicit-direction form. The feed reports outflows as positive and
// inflows as negative, so a negative amount denotes income. Returns the
// non-negative magnitude and the direction flag.
//
// Keep this as the single translation point so the convention can be swapped
// if the upstream ever changes it.
func DirectionFromFeed(feedAmount decimal.Decimal) (magnitude decimal.Decimal, isIncome bool) {
	if feedAmount.IsNegative() {
		return feedAmount.Neg(), true
	}
	return feedAmount, false
}
