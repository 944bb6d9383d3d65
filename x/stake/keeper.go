package stake

import (
	"github.com/tendermint/tendermint/libs/log"

	"github.com/quantidexyz/levr-gov/codec"
	sdk "github.com/quantidexyz/levr-gov/types"
)

// Keeper is the voting-power ledger: it tracks staked receipt-token
// positions and derives balance-and-time-weighted voting power from
// them. A freshly funded position carries ~0 power until real time
// passes, which is what makes flash-funded vote buying pointless.
type Keeper struct {
	storeKey   sdk.StoreKey
	cdc        *codec.Codec
	normalizer int64

	// codespace
	codespace sdk.CodespaceType
}

func NewKeeper(cdc *codec.Codec, key sdk.StoreKey, codespace sdk.CodespaceType) Keeper {
	return Keeper{
		storeKey:   key,
		cdc:        cdc,
		normalizer: DefaultNormalizer,
		codespace:  codespace,
	}
}

// WithNormalizer overrides the voting-power normalizer.
func (k Keeper) WithNormalizer(normalizer int64) Keeper {
	if normalizer <= 0 {
		panic("normalizer must be positive")
	}
	k.normalizer = normalizer
	return k
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/stake")
}

// return the codespace
func (k Keeper) Codespace() sdk.CodespaceType {
	return k.codespace
}

//_______________________________________________________________________

// GetDelegation loads a staked position.
func (k Keeper) GetDelegation(ctx sdk.Context, addr sdk.AccAddress) (Delegation, bool) {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get(GetDelegationKey(addr))
	if bz == nil {
		return Delegation{}, false
	}
	var delegation Delegation
	k.cdc.MustUnmarshalBinaryBare(bz, &delegation)
	return delegation, true
}

func (k Keeper) setDelegation(ctx sdk.Context, delegation Delegation) {
	store := ctx.KVStore(k.storeKey)
	store.Set(GetDelegationKey(delegation.DelegatorAddr), k.cdc.MustMarshalBinaryBare(delegation))
}

func (k Keeper) deleteDelegation(ctx sdk.Context, addr sdk.AccAddress) {
	store := ctx.KVStore(k.storeKey)
	store.Delete(GetDelegationKey(addr))
}

// Delegate stakes amount for addr. A deposit on top of an existing
// position merges via a weighted-average start instant,
// newStart = now - oldBalance*oldElapsed/newBalance, keeping accrued
// voting power continuous across the top-up.
func (k Keeper) Delegate(ctx sdk.Context, addr sdk.AccAddress, amount int64) sdk.Error {
	if amount <= 0 {
		return ErrInvalidAmount(k.codespace, amount)
	}
	if addr.Empty() {
		return sdk.ErrInvalidAddress("empty delegator address")
	}
	now := ctx.BlockTime().Unix()

	delegation, found := k.GetDelegation(ctx, addr)
	if !found {
		delegation = Delegation{DelegatorAddr: addr, Amount: amount, StartTime: now}
	} else {
		oldElapsed := now - delegation.StartTime
		if oldElapsed < 0 {
			oldElapsed = 0
		}
		newBalance := delegation.Amount + amount
		delegation.StartTime = now - sdk.MulDiv64(delegation.Amount, oldElapsed, newBalance)
		delegation.Amount = newBalance
	}
	k.setDelegation(ctx, delegation)
	k.setTotalStaked(ctx, k.TotalStaked(ctx)+amount)

	k.Logger(ctx).Info("delegation updated", "delegator", addr.String(), "balance", delegation.Amount)
	return nil
}

// Unbond withdraws amount from addr's position. A partial withdrawal
// scales accrued time by the kept balance fraction, so voting power
// drops by the square of that fraction; a full withdrawal removes the
// position and its power entirely.
func (k Keeper) Unbond(ctx sdk.Context, addr sdk.AccAddress, amount int64) sdk.Error {
	if amount <= 0 {
		return ErrInvalidAmount(k.codespace, amount)
	}
	delegation, found := k.GetDelegation(ctx, addr)
	if !found {
		return ErrNoDelegation(k.codespace, addr)
	}
	if amount > delegation.Amount {
		return ErrInsufficientBalance(k.codespace, delegation.Amount, amount)
	}
	now := ctx.BlockTime().Unix()

	if amount == delegation.Amount {
		k.deleteDelegation(ctx, addr)
	} else {
		remaining := delegation.Amount - amount
		elapsed := now - delegation.StartTime
		if elapsed < 0 {
			elapsed = 0
		}
		delegation.StartTime = now - sdk.MulDiv64(elapsed, remaining, delegation.Amount)
		delegation.Amount = remaining
		k.setDelegation(ctx, delegation)
	}
	k.setTotalStaked(ctx, k.TotalStaked(ctx)-amount)

	k.Logger(ctx).Info("delegation withdrawn", "delegator", addr.String(), "amount", amount)
	return nil
}

//_______________________________________________________________________

// GetVotingPower returns the accrued voting power of addr at the
// caller-observed time, 0 for unknown accounts.
func (k Keeper) GetVotingPower(ctx sdk.Context, addr sdk.AccAddress) int64 {
	delegation, found := k.GetDelegation(ctx, addr)
	if !found {
		return 0
	}
	return delegation.VotingPowerAt(ctx.BlockTime(), k.normalizer)
}

// StakedBalanceOf returns the raw staked balance of addr.
func (k Keeper) StakedBalanceOf(ctx sdk.Context, addr sdk.AccAddress) int64 {
	delegation, found := k.GetDelegation(ctx, addr)
	if !found {
		return 0
	}
	return delegation.Amount
}

// TotalStaked returns the live total supply of staked receipt tokens.
func (k Keeper) TotalStaked(ctx sdk.Context) int64 {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get(TotalStakedKey)
	if bz == nil {
		return 0
	}
	var total int64
	k.cdc.MustUnmarshalBinaryBare(bz, &total)
	return total
}

func (k Keeper) setTotalStaked(ctx sdk.Context, total int64) {
	store := ctx.KVStore(k.storeKey)
	store.Set(TotalStakedKey, k.cdc.MustMarshalBinaryBare(total))
}
