package gov_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr-gov/x/gov"
	"github.com/quantidexyz/levr-gov/x/mock"
)

func snapshotProposal(supply, quorumBps, minQuorumBps, approvalBps int64) gov.Proposal {
	return gov.Proposal{
		TotalSupplySnapshot:      supply,
		QuorumBpsSnapshot:        quorumBps,
		MinimumQuorumBpsSnapshot: minQuorumBps,
		ApprovalBpsSnapshot:      approvalBps,
	}
}

func TestRequiredQuorumHybrid(t *testing.T) {
	// snapshot 1000 at 70% quorum with a 0.25% floor
	p := snapshotProposal(1000, 7000, 25, 5100)

	// live supply grew to 1900: the bar stays on the snapshot
	require.Equal(t, int64(700), gov.RequiredQuorum(p, 1900))

	// live supply matches the snapshot
	require.Equal(t, int64(700), gov.RequiredQuorum(p, 1000))

	// mass exit: the percentage bar tracks the smaller live supply
	require.Equal(t, int64(350), gov.RequiredQuorum(p, 500))

	// near-total exit: the floor (0.25% of the snapshot) takes over
	require.Equal(t, int64(2), gov.RequiredQuorum(p, 1))
	require.Equal(t, int64(2), gov.RequiredQuorum(p, 0))
}

func TestMeetsQuorum(t *testing.T) {
	p := snapshotProposal(1000, 7000, 25, 5100)

	p.TotalBalanceVoted = 699
	require.False(t, gov.MeetsQuorum(p, 1000))
	p.TotalBalanceVoted = 700
	require.True(t, gov.MeetsQuorum(p, 1000))

	// shrunk live supply lowers the bar for the same turnout
	p.TotalBalanceVoted = 350
	require.False(t, gov.MeetsQuorum(p, 1000))
	require.True(t, gov.MeetsQuorum(p, 500))
}

func TestMeetsApproval(t *testing.T) {
	p := snapshotProposal(1000, 7000, 25, 5100)

	// 51% yes against a 51% threshold passes exactly
	p.YesVotes, p.NoVotes = 51, 49
	require.True(t, gov.MeetsApproval(p))

	p.YesVotes, p.NoVotes = 50, 50
	require.False(t, gov.MeetsApproval(p))

	// approval is a share of cast power: nobody voting never passes
	p.YesVotes, p.NoVotes = 0, 0
	require.False(t, gov.MeetsApproval(p))

	// pure-yes turnout passes regardless of size
	p.YesVotes, p.NoVotes = 1, 0
	require.True(t, gov.MeetsApproval(p))
}

// setupContest stakes n equal accounts, has each submit a transfer
// proposal at genesis and returns the proposals in submission order.
// Every staker votes yes on every proposal at the same instant, so all
// proposals carry identical tallies.
func setupContest(t *testing.T, input testInput, n int) []gov.Proposal {
	recipient := mock.TestAddr(50)
	for i := 0; i < n; i++ {
		require.Nil(t, input.stake.Delegate(input.ctx, mock.TestAddr(i), 1000))
	}
	proposals := make([]gov.Proposal, 0, n)
	for i := 0; i < n; i++ {
		proposals = append(proposals, input.mustPropose(t, input.ctx, mock.TestAddr(i), gov.ProposalTypeTransferToAddress, 100, recipient))
	}
	voteCtx := input.at(3 * day)
	for i := 0; i < n; i++ {
		for _, p := range proposals {
			input.mustVote(t, voteCtx, p.ProposalID, mock.TestAddr(i), true)
		}
	}
	return proposals
}

func TestGetWinnerTieBreak(t *testing.T) {
	for _, n := range []int{2, 3, 4} {
		input := createTestInput(t)
		proposals := setupContest(t, input, n)

		endCtx := input.at(afterVotingAt)
		winner, ok := input.keeper.GetWinner(endCtx, 1)
		require.True(t, ok)
		require.Equal(t, proposals[0].ProposalID, winner.ProposalID)
	}
}

func TestGetWinnerStrictlyGreaterDisplaces(t *testing.T) {
	input := createTestInput(t)
	proposals := setupContest(t, input, 3)

	// one extra yes on the middle proposal breaks the tie its way
	extra := mock.TestAddr(40)
	require.Nil(t, input.stake.Delegate(input.ctx, extra, 1000))
	input.mustVote(t, input.at(3*day), proposals[1].ProposalID, extra, true)

	winner, ok := input.keeper.GetWinner(input.at(afterVotingAt), 1)
	require.True(t, ok)
	require.Equal(t, proposals[1].ProposalID, winner.ProposalID)
}

func TestGetWinnerNoQualifier(t *testing.T) {
	input := createTestInput(t)
	alice := mock.TestAddr(0)
	recipient := mock.TestAddr(9)
	require.Nil(t, input.stake.Delegate(input.ctx, alice, 1000))
	input.mustPropose(t, input.ctx, alice, gov.ProposalTypeTransferToAddress, 100, recipient)

	// no votes at all: approval cannot pass
	_, ok := input.keeper.GetWinner(input.at(afterVotingAt), 1)
	require.False(t, ok)

	// before voting ends nothing qualifies either
	_, ok = input.keeper.GetWinner(input.at(5*day), 1)
	require.False(t, ok)
}

func TestGetWinnerExcludesQuorumFailures(t *testing.T) {
	input := createTestInput(t)
	whale := mock.TestAddr(0)
	minnow := mock.TestAddr(1)
	recipient := mock.TestAddr(9)
	require.Nil(t, input.stake.Delegate(input.ctx, whale, 9000))
	require.Nil(t, input.stake.Delegate(input.ctx, minnow, 1000))

	// quorum needs 40% of 10000; the minnow alone brings 10%
	p := input.mustPropose(t, input.ctx, minnow, gov.ProposalTypeTransferToAddress, 100, recipient)
	input.mustVote(t, input.at(3*day), p.ProposalID, minnow, true)

	endCtx := input.at(afterVotingAt)
	_, ok := input.keeper.GetWinner(endCtx, 1)
	require.False(t, ok)

	loaded, found := input.keeper.GetProposal(endCtx, p.ProposalID)
	require.True(t, found)
	require.Equal(t, gov.StatusDefeated, input.keeper.ProposalStatusAt(endCtx, loaded))
}
