package treasury

import (
	sdk "github.com/quantidexyz/levr-gov/types"
)

const StoreName = "treasury"

var (
	BalanceKeyPrefix   = []byte{0x00}
	PayoutKeyPrefix    = []byte{0x01}
	BoostPoolKeyPrefix = []byte{0x02}
)

// GetBalanceKey returns the store key of a token's pooled balance.
func GetBalanceKey(token string) []byte {
	return append(BalanceKeyPrefix, []byte(token)...)
}

// GetPayoutKey returns the store key of a recipient's payout ledger
// entry for a token. The token segment is length-prefixed so symbols
// cannot collide with address bytes.
func GetPayoutKey(token string, addr sdk.AccAddress) []byte {
	key := append(PayoutKeyPrefix, byte(len(token)))
	key = append(key, []byte(token)...)
	return append(key, addr.Bytes()...)
}

// GetBoostPoolKey returns the store key of a token's reward boost pool.
func GetBoostPoolKey(token string) []byte {
	return append(BoostPoolKeyPrefix, []byte(token)...)
}
