package stake

import (
	sdk "github.com/quantidexyz/levr-gov/types"
)

// Stake errors reserve 300 ~ 399.
const (
	DefaultCodespace sdk.CodespaceType = sdk.CodespaceStake

	CodeInvalidAmount       sdk.CodeType = 301
	CodeInsufficientBalance sdk.CodeType = 302
	CodeNoDelegation        sdk.CodeType = 303
)

func ErrInvalidAmount(codespace sdk.CodespaceType, amount int64) sdk.Error {
	return sdk.NewError(codespace, CodeInvalidAmount, "amount must be positive, got %d", amount)
}

func ErrInsufficientBalance(codespace sdk.CodespaceType, have, want int64) sdk.Error {
	return sdk.NewError(codespace, CodeInsufficientBalance, "staked balance %d is less than withdrawal %d", have, want)
}

func ErrNoDelegation(codespace sdk.CodespaceType, addr sdk.AccAddress) sdk.Error {
	return sdk.NewError(codespace, CodeNoDelegation, "no staked position for %s", addr)
}
