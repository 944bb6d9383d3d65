package treasury

import (
	sdk "github.com/quantidexyz/levr-gov/types"
)

// Treasury errors reserve 400 ~ 499.
const (
	DefaultCodespace sdk.CodespaceType = sdk.CodespaceTreasury

	CodeInvalidAmount     sdk.CodeType = 401
	CodeInsufficientFunds sdk.CodeType = 402
	CodeInvalidToken      sdk.CodeType = 403
)

func ErrInvalidAmount(codespace sdk.CodespaceType, amount int64) sdk.Error {
	return sdk.NewError(codespace, CodeInvalidAmount, "amount must be positive, got %d", amount)
}

func ErrInsufficientFunds(codespace sdk.CodespaceType, token string, have, want int64) sdk.Error {
	return sdk.NewError(codespace, CodeInsufficientFunds, "treasury holds %d %s, needs %d", have, token, want)
}

func ErrInvalidToken(codespace sdk.CodespaceType, token string) sdk.Error {
	return sdk.NewError(codespace, CodeInvalidToken, "invalid token symbol %q", token)
}
