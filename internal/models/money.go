package models

// PercentOf returns pct% of amount in cents, rounded half up. Both the promo
// validator and the B2B pricing calculator go through this helper so the two
// subsystems can never disagree by a cent.
func PercentOf(amount int64, pct int) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	return (amount*int64(pct) + 50) / 100
}
