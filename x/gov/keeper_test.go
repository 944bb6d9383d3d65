package gov_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantidexyz/levr-gov/pubsub"
	sdk "github.com/quantidexyz/levr-gov/types"
	"github.com/quantidexyz/levr-gov/x/gov"
	"github.com/quantidexyz/levr-gov/x/mock"
)

func TestSubmitProposalSnapshots(t *testing.T) {
	input := createTestInput(t)
	alice := mock.TestAddr(0)
	bob := mock.TestAddr(1)

	require.Nil(t, input.stake.Delegate(input.ctx, alice, 1000))
	require.Nil(t, input.stake.Delegate(input.ctx, bob, 900))

	recipient := mock.TestAddr(9)
	proposal := input.mustPropose(t, input.ctx, alice, gov.ProposalTypeTransferToAddress, 5000, recipient)

	require.Equal(t, int64(1), proposal.ProposalID)
	require.Equal(t, int64(1), proposal.CycleID)
	require.Equal(t, int64(1900), proposal.TotalSupplySnapshot)
	require.Equal(t, input.params.QuorumBps, proposal.QuorumBpsSnapshot)
	require.Equal(t, input.params.MinimumQuorumBps, proposal.MinimumQuorumBpsSnapshot)
	require.Equal(t, input.params.ApprovalBps, proposal.ApprovalBpsSnapshot)
	require.Equal(t, mock.GenesisTime.Add(input.params.ProposalWindow), proposal.VotingStartsAt)
	require.Equal(t, proposal.VotingStartsAt.Add(input.params.VotingWindow), proposal.VotingEndsAt)

	loaded, ok := input.keeper.GetProposal(input.ctx, proposal.ProposalID)
	require.True(t, ok)
	require.Equal(t, proposal, loaded)

	require.Equal(t, int64(1), input.keeper.CurrentCycleID(input.ctx))
	require.Equal(t, int64(1), input.keeper.ActiveProposalCountIn(input.ctx, 1, gov.ProposalTypeTransferToAddress))
	require.Equal(t, gov.StatusPending, input.keeper.ProposalStatusAt(input.ctx, proposal))
}

func TestSubmitProposalValidation(t *testing.T) {
	input := createTestInput(t)
	alice := mock.TestAddr(0)
	recipient := mock.TestAddr(9)
	require.Nil(t, input.stake.Delegate(input.ctx, alice, 1000))

	_, err := input.keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeNil, testToken, 100, recipient, "")
	requireGovCode(t, err, gov.CodeInvalidProposal)

	_, err = input.keeper.SubmitProposal(input.ctx, sdk.AccAddress{}, gov.ProposalTypeTransferToAddress, testToken, 100, recipient, "")
	require.NotNil(t, err)

	_, err = input.keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeTransferToAddress, "", 100, recipient, "")
	requireGovCode(t, err, gov.CodeInvalidProposal)

	_, err = input.keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeTransferToAddress, testToken, 0, recipient, "")
	requireGovCode(t, err, gov.CodeInvalidProposal)

	_, err = input.keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeTransferToAddress, testToken, 100, sdk.AccAddress{}, "")
	requireGovCode(t, err, gov.CodeInvalidProposal)

	_, err = input.keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeBoostPool, testToken, 100, recipient, "")
	requireGovCode(t, err, gov.CodeInvalidProposal)

	longMemo := strings.Repeat("x", gov.MaxMemoLength+1)
	_, err = input.keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeTransferToAddress, testToken, 100, recipient, longMemo)
	requireGovCode(t, err, gov.CodeInvalidProposal)

	// nothing persisted by the failed attempts
	require.Equal(t, int64(0), input.keeper.CurrentCycleID(input.ctx))
}

func TestSubmitProposalStakeGate(t *testing.T) {
	input := createTestInput(t)
	whale := mock.TestAddr(0)
	minnow := mock.TestAddr(1)
	recipient := mock.TestAddr(9)

	// empty ledger blocks everyone
	_, err := input.keeper.SubmitProposal(input.ctx, whale, gov.ProposalTypeTransferToAddress, testToken, 100, recipient, "")
	requireGovCode(t, err, gov.CodeInsufficientStake)

	// 1% floor with default params; minnow holds 0.5%
	require.Nil(t, input.stake.Delegate(input.ctx, whale, 99500))
	require.Nil(t, input.stake.Delegate(input.ctx, minnow, 500))

	_, err = input.keeper.SubmitProposal(input.ctx, minnow, gov.ProposalTypeTransferToAddress, testToken, 100, recipient, "")
	requireGovCode(t, err, gov.CodeInsufficientStake)

	input.mustPropose(t, input.ctx, whale, gov.ProposalTypeTransferToAddress, 100, recipient)
}

func TestSubmitProposalAmountGates(t *testing.T) {
	input := createTestInput(t)
	alice := mock.TestAddr(0)
	recipient := mock.TestAddr(9)
	require.Nil(t, input.stake.Delegate(input.ctx, alice, 1000))

	// over the treasury balance outright
	_, err := input.keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeTransferToAddress, testToken, testTreasury+1, recipient, "")
	requireGovCode(t, err, gov.CodeInsufficientTreasuryBalance)

	// within the balance but over the 20% per-proposal cap
	overCap := sdk.BpsOf(testTreasury, input.params.MaxProposalAmountBps) + 1
	_, err = input.keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeTransferToAddress, testToken, overCap, recipient, "")
	requireGovCode(t, err, gov.CodeProposalAmountExceedsLimit)

	input.mustPropose(t, input.ctx, alice, gov.ProposalTypeTransferToAddress, overCap-1, recipient)
}

func TestSubmitProposalPerCycleLimits(t *testing.T) {
	input := createTestInput(t)
	alice := mock.TestAddr(0)
	bob := mock.TestAddr(1)
	recipient := mock.TestAddr(9)
	require.Nil(t, input.stake.Delegate(input.ctx, alice, 1000))
	require.Nil(t, input.stake.Delegate(input.ctx, bob, 1000))

	input.mustPropose(t, input.ctx, alice, gov.ProposalTypeTransferToAddress, 100, recipient)

	// same proposer, same type, same cycle
	_, err := input.keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeTransferToAddress, testToken, 100, recipient, "")
	requireGovCode(t, err, gov.CodeAlreadyProposedInCycle)

	// a different type is a separate slot
	input.mustPropose(t, input.ctx, alice, gov.ProposalTypeBoostPool, 100, sdk.AccAddress{})

	// another proposer still fits
	input.mustPropose(t, input.ctx, bob, gov.ProposalTypeTransferToAddress, 100, recipient)
	require.Equal(t, int64(2), input.keeper.ActiveProposalCountIn(input.ctx, 1, gov.ProposalTypeTransferToAddress))
	require.Equal(t, int64(1), input.keeper.ActiveProposalCountIn(input.ctx, 1, gov.ProposalTypeBoostPool))
}

func TestSubmitProposalMaxActive(t *testing.T) {
	params := gov.DefaultGovParams()
	params.MaxActiveProposals = 2
	input := createTestInputWithParams(t, params)
	recipient := mock.TestAddr(9)

	for i := 0; i < 3; i++ {
		require.Nil(t, input.stake.Delegate(input.ctx, mock.TestAddr(i), 1000))
	}
	input.mustPropose(t, input.ctx, mock.TestAddr(0), gov.ProposalTypeTransferToAddress, 100, recipient)
	input.mustPropose(t, input.ctx, mock.TestAddr(1), gov.ProposalTypeTransferToAddress, 100, recipient)

	_, err := input.keeper.SubmitProposal(input.ctx, mock.TestAddr(2), gov.ProposalTypeTransferToAddress, testToken, 100, recipient, "")
	requireGovCode(t, err, gov.CodeTooManyActiveProposals)

	// the cap is per type
	input.mustPropose(t, input.ctx, mock.TestAddr(2), gov.ProposalTypeBoostPool, 100, sdk.AccAddress{})
}

func TestSubmitProposalWindowClosed(t *testing.T) {
	input := createTestInput(t)
	alice := mock.TestAddr(0)
	bob := mock.TestAddr(1)
	recipient := mock.TestAddr(9)
	require.Nil(t, input.stake.Delegate(input.ctx, alice, 1000))
	require.Nil(t, input.stake.Delegate(input.ctx, bob, 1000))

	input.mustPropose(t, input.ctx, alice, gov.ProposalTypeTransferToAddress, 100, recipient)

	// boundary instant is still open
	input.mustPropose(t, input.at(input.params.ProposalWindow), bob, gov.ProposalTypeTransferToAddress, 100, recipient)

	carol := mock.TestAddr(2)
	require.Nil(t, input.stake.Delegate(input.ctx, carol, 1000))
	_, err := input.keeper.SubmitProposal(input.at(input.params.ProposalWindow+time.Second),
		carol, gov.ProposalTypeTransferToAddress, testToken, 100, recipient, "")
	requireGovCode(t, err, gov.CodeProposalWindowClosed)
}

func TestVoteLifecycle(t *testing.T) {
	input := createTestInput(t)
	alice := mock.TestAddr(0)
	bob := mock.TestAddr(1)
	idle := mock.TestAddr(2)
	recipient := mock.TestAddr(9)
	require.Nil(t, input.stake.Delegate(input.ctx, alice, 1000))
	require.Nil(t, input.stake.Delegate(input.ctx, bob, 500))

	proposal := input.mustPropose(t, input.ctx, alice, gov.ProposalTypeTransferToAddress, 100, recipient)

	err := input.keeper.AddVote(input.ctx, 42, alice, true)
	requireGovCode(t, err, gov.CodeUnknownProposal)

	// before the window opens
	err = input.keeper.AddVote(input.at(3*day-time.Second), proposal.ProposalID, alice, true)
	requireGovCode(t, err, gov.CodeVotingNotActive)

	// both window boundaries are inclusive
	input.mustVote(t, input.at(3*day), proposal.ProposalID, alice, true)
	input.mustVote(t, input.at(7*day), proposal.ProposalID, bob, false)

	err = input.keeper.AddVote(input.at(4*day), proposal.ProposalID, alice, true)
	requireGovCode(t, err, gov.CodeAlreadyVoted)

	// no stake, no voting power
	err = input.keeper.AddVote(input.at(4*day), proposal.ProposalID, idle, true)
	requireGovCode(t, err, gov.CodeInsufficientVotingPower)

	err = input.keeper.AddVote(input.at(afterVotingAt), proposal.ProposalID, idle, true)
	requireGovCode(t, err, gov.CodeVotingNotActive)

	// three days of accrual: 1000 and 500 token-days
	tallied, ok := input.keeper.GetProposal(input.ctx, proposal.ProposalID)
	require.True(t, ok)
	require.Equal(t, int64(3000), tallied.YesVotes)
	require.Equal(t, int64(3500), tallied.NoVotes)
	require.Equal(t, int64(1500), tallied.TotalBalanceVoted)

	receipt, ok := input.keeper.GetVoteReceipt(input.ctx, proposal.ProposalID, alice)
	require.True(t, ok)
	require.True(t, receipt.HasVoted)
	require.True(t, receipt.Support)
	require.Equal(t, int64(3000), receipt.Votes)
	require.Equal(t, int64(1000), receipt.Balance)

	_, ok = input.keeper.GetVoteReceipt(input.ctx, proposal.ProposalID, idle)
	require.False(t, ok)
}

func TestVoteReceiptFrozenAgainstUnstake(t *testing.T) {
	input := createTestInput(t)
	alice := mock.TestAddr(0)
	recipient := mock.TestAddr(9)
	require.Nil(t, input.stake.Delegate(input.ctx, alice, 1000))

	proposal := input.mustPropose(t, input.ctx, alice, gov.ProposalTypeTransferToAddress, 100, recipient)
	input.mustVote(t, input.at(3*day), proposal.ProposalID, alice, true)

	// unstaking after the vote must not touch the receipt or the tally
	require.Nil(t, input.stake.Unbond(input.at(4*day), alice, 1000))
	require.Equal(t, int64(0), input.stake.GetVotingPower(input.at(4*day), alice))

	receipt, ok := input.keeper.GetVoteReceipt(input.ctx, proposal.ProposalID, alice)
	require.True(t, ok)
	require.Equal(t, int64(3000), receipt.Votes)
	require.Equal(t, int64(1000), receipt.Balance)

	tallied, ok := input.keeper.GetProposal(input.ctx, proposal.ProposalID)
	require.True(t, ok)
	require.Equal(t, int64(3000), tallied.YesVotes)
	require.Equal(t, int64(1000), tallied.TotalBalanceVoted)
}

func TestEventsBufferedUntilFlush(t *testing.T) {
	input := createTestInput(t)
	publisher := pubsub.NewPublisher("gov-test", nil)
	require.Nil(t, publisher.Start())
	defer publisher.Stop()
	keeper := input.keeper.WithPublisher(publisher)

	subscriber, err := publisher.NewSubscriber("gov-test-client")
	require.Nil(t, err)
	var (
		mtx  sync.Mutex
		seen []int64
	)
	require.Nil(t, subscriber.Subscribe(gov.Topic, func(e pubsub.Event) {
		if submitted, ok := e.(gov.ProposalSubmittedEvent); ok {
			mtx.Lock()
			seen = append(seen, submitted.Proposal.ProposalID)
			mtx.Unlock()
		}
	}))

	alice := mock.TestAddr(0)
	bob := mock.TestAddr(1)
	require.Nil(t, input.stake.Delegate(input.ctx, alice, 1000))
	require.Nil(t, input.stake.Delegate(input.ctx, bob, 1000))

	// a submission only buffers its event; nothing reaches subscribers
	// before the caller flushes
	dropped, subErr := keeper.SubmitProposal(input.ctx, alice, gov.ProposalTypeBoostPool, testToken, 100, nil, "")
	require.Nil(t, subErr)
	mtx.Lock()
	require.Empty(t, seen)
	mtx.Unlock()

	// a discarded buffer stays silent even across a later flush
	keeper.DiscardEvents()
	keeper.FlushEvents()

	kept, subErr := keeper.SubmitProposal(input.ctx, bob, gov.ProposalTypeBoostPool, testToken, 100, nil, "")
	require.Nil(t, subErr)
	keeper.FlushEvents()

	// the topic runs through a single loop, so once the kept event has
	// landed the discarded one can never arrive after it
	require.Eventually(t, func() bool {
		mtx.Lock()
		defer mtx.Unlock()
		return len(seen) == 1 && seen[0] == kept.ProposalID
	}, time.Second, 10*time.Millisecond)
	mtx.Lock()
	require.NotContains(t, seen, dropped.ProposalID)
	mtx.Unlock()
}
