package reconcile

import "github.com/shopspring/decimal"

// Tolerance for POSSIBLE matches: 1% of the ledger amount, with a flat 1.00
// currency-unit floor so small amounts still get a workable band.
var (
	tolerancePct   = decimal.NewFromFloat(0.01)
	toleranceFloor = decimal.NewFromInt(1)
)

// AmountsExact reports whether the two amounts are equal in absolute value at
// the stored 2-decimal precision.
func AmountsExact(a, b decimal.Decimal) bool {
	return a.Abs().Equal(b.Abs())
}

// AmountsWithinTolerance reports whether the absolute difference between the
// amounts is at most max(|b|*0.01, 1.00), where b is the ledger-entry amount.
// Independent of exactness and of description similarity.
func AmountsWithinTolerance(a, b decimal.Decimal) bool {
	diff := a.Abs().Sub(b.Abs()).Abs()
	tol := decimal.Max(b.Abs().Mul(tolerancePct), toleranceFloor)
	return diff.LessThanOrEqual(tol)
}
