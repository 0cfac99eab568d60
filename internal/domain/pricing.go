package domain

import "math"

// TotalCost returns amount*unitPrice, reporting false when the product does
// not fit in int64. Both arguments must be non-negative; callers validate
// that before pricing.
func TotalCost(amount, unitPrice int64) (int64, bool) {
	if amount == 0 || unitPrice == 0 {
		return 0, true
	}
	if amount > math.MaxInt64/unitPrice {
		return 0, false
	}
	return amount * unitPrice, true
}

// RoyaltySplit divides cost between the royalty beneficiary and the seller.
// The cut is cost*bps/10000 truncated toward zero, computed without the
// intermediate product so it stays exact for every representable cost.
func RoyaltySplit(cost, bps int64) (royaltyCut, sellerCut int64) {
	royaltyCut = cost/10000*bps + cost%10000*bps/10000
	return royaltyCut, cost - royaltyCut
}
