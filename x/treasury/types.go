package treasury

import (
	"time"

	sdk "github.com/quantidexyz/levr-gov/types"
)

// DefaultBoostPeriod is the window a boost streams over when no other
// period is configured.
const DefaultBoostPeriod = 7 * 24 * time.Hour

// BoostPool streams boosted rewards for one token linearly over the
// boost period. Accrual is pull-based: nothing moves until Accrue runs
// against a caller-observed time.
type BoostPool struct {
	Token         string `json:"token"`
	Remaining     int64  `json:"remaining"`       // not yet released
	Accrued       int64  `json:"accrued"`         // released, claimable
	RatePerSecond int64  `json:"rate_per_second"` // recomputed on every boost
	LastAccrual   int64  `json:"last_accrual"`    // unix seconds
}

func (p BoostPool) releasableAt(now time.Time) int64 {
	elapsed := now.Unix() - p.LastAccrual
	if elapsed <= 0 || p.Remaining <= 0 {
		return 0
	}
	released := sdk.MulDiv64(p.RatePerSecond, elapsed, 1)
	return sdk.MinInt64(released, p.Remaining)
}
