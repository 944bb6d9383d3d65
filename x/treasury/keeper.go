package treasury

import (
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/quantidexyz/levr-gov/codec"
	sdk "github.com/quantidexyz/levr-gov/types"
)

// Keeper holds the pooled treasury: per-token balances, the payout
// ledger written by executed transfer proposals, and the boost pools
// that stream approved reward boosts over time.
type Keeper struct {
	storeKey    sdk.StoreKey
	cdc         *codec.Codec
	boostPeriod time.Duration

	// codespace
	codespace sdk.CodespaceType
}

func NewKeeper(cdc *codec.Codec, key sdk.StoreKey, codespace sdk.CodespaceType) Keeper {
	return Keeper{
		storeKey:    key,
		cdc:         cdc,
		boostPeriod: DefaultBoostPeriod,
		codespace:   codespace,
	}
}

// WithBoostPeriod overrides the streaming window of future boosts.
func (k Keeper) WithBoostPeriod(period time.Duration) Keeper {
	if period <= 0 {
		panic("boost period must be positive")
	}
	k.boostPeriod = period
	return k
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/treasury")
}

func (k Keeper) Codespace() sdk.CodespaceType {
	return k.codespace
}

//_______________________________________________________________________

// BalanceOf returns the pooled balance of a token.
func (k Keeper) BalanceOf(ctx sdk.Context, token string) int64 {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get(GetBalanceKey(token))
	if bz == nil {
		return 0
	}
	var balance int64
	k.cdc.MustUnmarshalBinaryBare(bz, &balance)
	return balance
}

func (k Keeper) setBalance(ctx sdk.Context, token string, balance int64) {
	store := ctx.KVStore(k.storeKey)
	store.Set(GetBalanceKey(token), k.cdc.MustMarshalBinaryBare(balance))
}

// Fund credits amount of token to the pool.
func (k Keeper) Fund(ctx sdk.Context, token string, amount int64) sdk.Error {
	if len(token) == 0 {
		return ErrInvalidToken(k.codespace, token)
	}
	if amount <= 0 {
		return ErrInvalidAmount(k.codespace, amount)
	}
	k.setBalance(ctx, token, k.BalanceOf(ctx, token)+amount)
	return nil
}

// Transfer moves amount of token from the pool into the recipient's
// payout ledger. Used by executed TransferToAddress proposals.
func (k Keeper) Transfer(ctx sdk.Context, token string, to sdk.AccAddress, amount int64) sdk.Error {
	if amount <= 0 {
		return ErrInvalidAmount(k.codespace, amount)
	}
	if to.Empty() {
		return sdk.ErrInvalidAddress("empty transfer recipient")
	}
	balance := k.BalanceOf(ctx, token)
	if balance < amount {
		return ErrInsufficientFunds(k.codespace, token, balance, amount)
	}
	k.setBalance(ctx, token, balance-amount)
	k.setPayout(ctx, token, to, k.PayoutBalanceOf(ctx, token, to)+amount)

	k.Logger(ctx).Info("treasury transfer", "token", token, "to", to.String(), "amount", amount)
	return nil
}

// PayoutBalanceOf returns what a recipient has been paid out in token.
func (k Keeper) PayoutBalanceOf(ctx sdk.Context, token string, addr sdk.AccAddress) int64 {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get(GetPayoutKey(token, addr))
	if bz == nil {
		return 0
	}
	var paid int64
	k.cdc.MustUnmarshalBinaryBare(bz, &paid)
	return paid
}

func (k Keeper) setPayout(ctx sdk.Context, token string, addr sdk.AccAddress, paid int64) {
	store := ctx.KVStore(k.storeKey)
	store.Set(GetPayoutKey(token, addr), k.cdc.MustMarshalBinaryBare(paid))
}

//_______________________________________________________________________

// GetBoostPool loads a token's boost pool.
func (k Keeper) GetBoostPool(ctx sdk.Context, token string) (BoostPool, bool) {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get(GetBoostPoolKey(token))
	if bz == nil {
		return BoostPool{}, false
	}
	var pool BoostPool
	k.cdc.MustUnmarshalBinaryBare(bz, &pool)
	return pool, true
}

func (k Keeper) setBoostPool(ctx sdk.Context, pool BoostPool) {
	store := ctx.KVStore(k.storeKey)
	store.Set(GetBoostPoolKey(pool.Token), k.cdc.MustMarshalBinaryBare(pool))
}

// ApplyBoost moves amount of token from the pool into the token's
// boost pool and restarts the linear stream over the boost period.
// Used by executed BoostPool proposals.
func (k Keeper) ApplyBoost(ctx sdk.Context, token string, amount int64) sdk.Error {
	if amount <= 0 {
		return ErrInvalidAmount(k.codespace, amount)
	}
	balance := k.BalanceOf(ctx, token)
	if balance < amount {
		return ErrInsufficientFunds(k.codespace, token, balance, amount)
	}

	k.accrue(ctx, token)

	pool, found := k.GetBoostPool(ctx, token)
	if !found {
		pool = BoostPool{Token: token, LastAccrual: ctx.BlockTime().Unix()}
	}
	pool.Remaining += amount
	periodSeconds := int64(k.boostPeriod / time.Second)
	pool.RatePerSecond = pool.Remaining / periodSeconds
	if pool.RatePerSecond == 0 {
		pool.RatePerSecond = 1
	}

	k.setBalance(ctx, token, balance-amount)
	k.setBoostPool(ctx, pool)

	k.Logger(ctx).Info("boost applied", "token", token, "amount", amount, "remaining", pool.Remaining)
	return nil
}

// AccruedRewards returns the released, claimable portion of a token's
// boost pool at the caller-observed time.
func (k Keeper) AccruedRewards(ctx sdk.Context, token string) int64 {
	pool, found := k.GetBoostPool(ctx, token)
	if !found {
		return 0
	}
	return pool.Accrued + pool.releasableAt(ctx.BlockTime())
}

// accrue folds the releasable portion into the claimable balance and
// advances the accrual clock.
func (k Keeper) accrue(ctx sdk.Context, token string) {
	pool, found := k.GetBoostPool(ctx, token)
	if !found {
		return
	}
	released := pool.releasableAt(ctx.BlockTime())
	pool.Accrued += released
	pool.Remaining -= released
	pool.LastAccrual = ctx.BlockTime().Unix()
	k.setBoostPool(ctx, pool)
}
