package gov_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr-gov/codec"
	sdk "github.com/quantidexyz/levr-gov/types"
	"github.com/quantidexyz/levr-gov/x/gov"
	"github.com/quantidexyz/levr-gov/x/mock"
	"github.com/quantidexyz/levr-gov/x/stake"
	"github.com/quantidexyz/levr-gov/x/treasury"
)

const (
	testToken     = "LEVR"
	testTreasury  = int64(100000)
	day           = 24 * time.Hour
	afterVotingAt = 7*day + time.Second
)

type fixedParams struct {
	params gov.GovParams
}

func (s fixedParams) GovParams(token string) (gov.GovParams, error) {
	return s.params, nil
}

type testInput struct {
	ctx      sdk.Context
	keeper   gov.Keeper
	stake    stake.Keeper
	treasury treasury.Keeper
	params   gov.GovParams
}

// createTestInput wires a governance keeper over real stake and
// treasury keepers on a MemDB, funds the treasury and returns a
// context at genesis time.
func createTestInput(t *testing.T) testInput {
	return createTestInputWithParams(t, gov.DefaultGovParams())
}

func createTestInputWithParams(t *testing.T, params gov.GovParams) testInput {
	govKey := sdk.NewKVStoreKey(gov.StoreName)
	stakeKey := sdk.NewKVStoreKey(stake.StoreName)
	treasuryKey := sdk.NewKVStoreKey(treasury.StoreName)
	ctx, _ := mock.NewTestContext(t, govKey, stakeKey, treasuryKey)

	cdc := codec.New()
	stakeKeeper := stake.NewKeeper(cdc, stakeKey, stake.DefaultCodespace)
	treasuryKeeper := treasury.NewKeeper(cdc, treasuryKey, treasury.DefaultCodespace)
	keeper := gov.NewKeeper(cdc, govKey, stakeKeeper, treasuryKeeper, fixedParams{params}, gov.DefaultCodespace)

	require.Nil(t, treasuryKeeper.Fund(ctx, testToken, testTreasury))
	return testInput{ctx: ctx, keeper: keeper, stake: stakeKeeper, treasury: treasuryKeeper, params: params}
}

// at returns the genesis context shifted forward by d.
func (input testInput) at(d time.Duration) sdk.Context {
	return input.ctx.WithBlockTime(mock.GenesisTime.Add(d))
}

func (input testInput) mustPropose(t *testing.T, ctx sdk.Context, proposer sdk.AccAddress,
	kind gov.ProposalKind, amount int64, recipient sdk.AccAddress) gov.Proposal {
	proposal, err := input.keeper.SubmitProposal(ctx, proposer, kind, testToken, amount, recipient, "")
	require.Nil(t, err)
	return proposal
}

func (input testInput) mustVote(t *testing.T, ctx sdk.Context, proposalID int64, voter sdk.AccAddress, support bool) {
	require.Nil(t, input.keeper.AddVote(ctx, proposalID, voter, support))
}

func requireGovCode(t *testing.T, err sdk.Error, code sdk.CodeType) {
	require.NotNil(t, err)
	require.Equal(t, sdk.CodespaceGov, err.Codespace())
	require.Equal(t, code, err.Code())
}
