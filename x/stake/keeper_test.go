package stake_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr-gov/codec"
	sdk "github.com/quantidexyz/levr-gov/types"
	"github.com/quantidexyz/levr-gov/x/mock"
	"github.com/quantidexyz/levr-gov/x/stake"
)

func createTestInput(t *testing.T) (sdk.Context, stake.Keeper) {
	key := sdk.NewKVStoreKey(stake.StoreName)
	ctx, _ := mock.NewTestContext(t, key)
	keeper := stake.NewKeeper(codec.New(), key, stake.DefaultCodespace)
	return ctx, keeper
}

func TestDelegateAndBalances(t *testing.T) {
	ctx, keeper := createTestInput(t)
	addr := mock.TestAddr(0)

	require.Equal(t, int64(0), keeper.TotalStaked(ctx))
	require.Equal(t, int64(0), keeper.StakedBalanceOf(ctx, addr))

	require.Nil(t, keeper.Delegate(ctx, addr, 1000))
	require.Equal(t, int64(1000), keeper.StakedBalanceOf(ctx, addr))
	require.Equal(t, int64(1000), keeper.TotalStaked(ctx))

	err := keeper.Delegate(ctx, addr, 0)
	require.NotNil(t, err)
	require.Equal(t, stake.CodeInvalidAmount, err.Code())
}

func TestVotingPowerAccrues(t *testing.T) {
	ctx, keeper := createTestInput(t)
	addr := mock.TestAddr(0)

	require.Nil(t, keeper.Delegate(ctx, addr, 1000))

	// a fresh position has no power yet
	require.Equal(t, int64(0), keeper.GetVotingPower(ctx, addr))

	// strictly increasing with time for an unchanged stake
	var last int64 = -1
	for _, days := range []int{1, 2, 5, 10} {
		later := ctx.WithBlockTime(mock.GenesisTime.Add(time.Duration(days) * 24 * time.Hour))
		vp := keeper.GetVotingPower(later, addr)
		require.Equal(t, int64(1000*days), vp)
		require.True(t, vp > last)
		last = vp
	}
}

func TestTopUpKeepsPowerContinuous(t *testing.T) {
	ctx, keeper := createTestInput(t)
	addr := mock.TestAddr(0)

	require.Nil(t, keeper.Delegate(ctx, addr, 1000))

	// after 10 days, VP = 1000 token-days * 10
	day10 := ctx.WithBlockTime(mock.GenesisTime.Add(10 * 24 * time.Hour))
	require.Equal(t, int64(10000), keeper.GetVotingPower(day10, addr))

	// topping up 1000 halves the weighted elapsed time:
	// newStart = now - 1000*10d/2000 = now - 5d
	require.Nil(t, keeper.Delegate(day10, addr, 1000))
	require.Equal(t, int64(10000), keeper.GetVotingPower(day10, addr))

	// flash-funded balance carries almost nothing extra immediately,
	// and accrual continues at the new balance's rate
	day11 := ctx.WithBlockTime(mock.GenesisTime.Add(11 * 24 * time.Hour))
	require.Equal(t, int64(12000), keeper.GetVotingPower(day11, addr))
}

func TestPartialWithdrawalSquareLaw(t *testing.T) {
	ctx, keeper := createTestInput(t)
	addr := mock.TestAddr(0)

	require.Nil(t, keeper.Delegate(ctx, addr, 1000))

	day8 := ctx.WithBlockTime(mock.GenesisTime.Add(8 * 24 * time.Hour))
	require.Equal(t, int64(8000), keeper.GetVotingPower(day8, addr))

	// withdrawing 50% of balance roughly quarters voting power
	require.Nil(t, keeper.Unbond(day8, addr, 500))
	require.Equal(t, int64(500), keeper.StakedBalanceOf(day8, addr))
	require.Equal(t, int64(2000), keeper.GetVotingPower(day8, addr))
	require.Equal(t, int64(500), keeper.TotalStaked(day8))
}

func TestFullWithdrawalResetsPower(t *testing.T) {
	ctx, keeper := createTestInput(t)
	addr := mock.TestAddr(0)

	require.Nil(t, keeper.Delegate(ctx, addr, 1000))
	day3 := ctx.WithBlockTime(mock.GenesisTime.Add(3 * 24 * time.Hour))
	require.True(t, keeper.GetVotingPower(day3, addr) > 0)

	require.Nil(t, keeper.Unbond(day3, addr, 1000))
	require.Equal(t, int64(0), keeper.GetVotingPower(day3, addr))
	require.Equal(t, int64(0), keeper.StakedBalanceOf(day3, addr))
	require.Equal(t, int64(0), keeper.TotalStaked(day3))
	_, found := keeper.GetDelegation(day3, addr)
	require.False(t, found)

	// a re-deposit starts over from zero power
	require.Nil(t, keeper.Delegate(day3, addr, 1000))
	require.Equal(t, int64(0), keeper.GetVotingPower(day3, addr))
}

func TestUnbondErrors(t *testing.T) {
	ctx, keeper := createTestInput(t)
	addr := mock.TestAddr(0)

	err := keeper.Unbond(ctx, addr, 100)
	require.NotNil(t, err)
	require.Equal(t, stake.CodeNoDelegation, err.Code())

	require.Nil(t, keeper.Delegate(ctx, addr, 100))
	err = keeper.Unbond(ctx, addr, 200)
	require.NotNil(t, err)
	require.Equal(t, stake.CodeInsufficientBalance, err.Code())
}
