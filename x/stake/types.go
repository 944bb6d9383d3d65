package stake

import (
	"fmt"
	"time"

	sdk "github.com/quantidexyz/levr-gov/types"
)

// DefaultNormalizer divides balance*seconds into voting power, so VP is
// denominated in token-days.
const DefaultNormalizer = 86400

// Delegation is a staked receipt-token position. StartTime is a
// weighted-average instant: a top-up pulls it forward so accrued voting
// power stays continuous, a partial withdrawal pushes it toward now so
// voting power scales by the square of the kept fraction.
type Delegation struct {
	DelegatorAddr sdk.AccAddress `json:"delegator_addr"`
	Amount        int64          `json:"amount"`
	StartTime     int64          `json:"start_time"` // unix seconds, weighted-average
}

// VotingPowerAt is the time-accrued power of the position:
// amount * secondsStaked / normalizer.
func (d Delegation) VotingPowerAt(now time.Time, normalizer int64) int64 {
	elapsed := now.Unix() - d.StartTime
	if elapsed <= 0 || d.Amount <= 0 {
		return 0
	}
	return sdk.MulDiv64(d.Amount, elapsed, normalizer)
}

func (d Delegation) String() string {
	return fmt.Sprintf("Delegation{%s, %d, %d}", d.DelegatorAddr, d.Amount, d.StartTime)
}
