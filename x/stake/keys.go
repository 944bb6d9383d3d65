package stake

import (
	sdk "github.com/quantidexyz/levr-gov/types"
)

const StoreName = "stake"

var (
	TotalStakedKey      = []byte{0x00}
	DelegationKeyPrefix = []byte{0x01}
)

// GetDelegationKey returns the store key of a delegator's position.
func GetDelegationKey(addr sdk.AccAddress) []byte {
	return append(DelegationKeyPrefix, addr.Bytes()...)
}
