package gov

import (
	sdk "github.com/quantidexyz/levr-gov/types"
)

// Gov errors reserve 100 ~ 199.
const (
	DefaultCodespace sdk.CodespaceType = sdk.CodespaceGov

	CodeUnknownProposal              sdk.CodeType = 101
	CodeInvalidProposal              sdk.CodeType = 102
	CodeInsufficientStake            sdk.CodeType = 103
	CodeProposalWindowClosed         sdk.CodeType = 104
	CodeAlreadyProposedInCycle       sdk.CodeType = 105
	CodeTooManyActiveProposals       sdk.CodeType = 106
	CodeProposalAmountExceedsLimit   sdk.CodeType = 107
	CodeInsufficientTreasuryBalance  sdk.CodeType = 108
	CodeExecutableProposalsRemaining sdk.CodeType = 109
	CodeInsufficientVotingPower      sdk.CodeType = 110
	CodeAlreadyVoted                 sdk.CodeType = 111
	CodeVotingNotActive              sdk.CodeType = 112
	CodeProposalNotInCurrentCycle    sdk.CodeType = 113
	CodeNotWinner                    sdk.CodeType = 114
	CodeVotingNotEnded               sdk.CodeType = 115
	CodeProposalAlreadyExecuted      sdk.CodeType = 116
)

func ErrUnknownProposal(codespace sdk.CodespaceType, proposalID int64) sdk.Error {
	return sdk.NewError(codespace, CodeUnknownProposal, "unknown proposal %d", proposalID)
}

func ErrInvalidProposal(codespace sdk.CodespaceType, msg string) sdk.Error {
	return sdk.NewError(codespace, CodeInvalidProposal, msg)
}

func ErrInsufficientStake(codespace sdk.CodespaceType, staked, minBps int64) sdk.Error {
	return sdk.NewError(codespace, CodeInsufficientStake, "staked balance %d is below %d bps of total supply", staked, minBps)
}

func ErrProposalWindowClosed(codespace sdk.CodespaceType, cycleID int64) sdk.Error {
	return sdk.NewError(codespace, CodeProposalWindowClosed, "proposal window of cycle %d is closed", cycleID)
}

func ErrAlreadyProposedInCycle(codespace sdk.CodespaceType, proposalType ProposalKind, cycleID int64) sdk.Error {
	return sdk.NewError(codespace, CodeAlreadyProposedInCycle, "proposer already submitted a %s proposal in cycle %d", proposalType, cycleID)
}

func ErrTooManyActiveProposals(codespace sdk.CodespaceType, proposalType ProposalKind, max int64) sdk.Error {
	return sdk.NewError(codespace, CodeTooManyActiveProposals, "cycle already holds %d active %s proposals", max, proposalType)
}

func ErrProposalAmountExceedsLimit(codespace sdk.CodespaceType, amount, maxBps int64) sdk.Error {
	return sdk.NewError(codespace, CodeProposalAmountExceedsLimit, "amount %d exceeds %d bps of the treasury balance", amount, maxBps)
}

func ErrInsufficientTreasuryBalance(codespace sdk.CodespaceType, token string, have, want int64) sdk.Error {
	return sdk.NewError(codespace, CodeInsufficientTreasuryBalance, "treasury holds %d %s, proposal needs %d", have, token, want)
}

func ErrExecutableProposalsRemaining(codespace sdk.CodespaceType, proposalID int64) sdk.Error {
	return sdk.NewError(codespace, CodeExecutableProposalsRemaining, "proposal %d must be executed before a new cycle starts", proposalID)
}

func ErrInsufficientVotingPower(codespace sdk.CodespaceType, voter sdk.AccAddress) sdk.Error {
	return sdk.NewError(codespace, CodeInsufficientVotingPower, "%s has no accrued voting power", voter)
}

func ErrAlreadyVoted(codespace sdk.CodespaceType, proposalID int64, voter sdk.AccAddress) sdk.Error {
	return sdk.NewError(codespace, CodeAlreadyVoted, "%s already voted on proposal %d", voter, proposalID)
}

func ErrVotingNotActive(codespace sdk.CodespaceType, proposalID int64) sdk.Error {
	return sdk.NewError(codespace, CodeVotingNotActive, "voting window of proposal %d is not open", proposalID)
}

func ErrProposalNotInCurrentCycle(codespace sdk.CodespaceType, proposalID, cycleID int64) sdk.Error {
	return sdk.NewError(codespace, CodeProposalNotInCurrentCycle, "proposal %d does not belong to current cycle %d", proposalID, cycleID)
}

func ErrNotWinner(codespace sdk.CodespaceType, proposalID int64) sdk.Error {
	return sdk.NewError(codespace, CodeNotWinner, "proposal %d is not the cycle winner", proposalID)
}

func ErrVotingNotEnded(codespace sdk.CodespaceType, proposalID int64) sdk.Error {
	return sdk.NewError(codespace, CodeVotingNotEnded, "voting on proposal %d has not ended", proposalID)
}

func ErrProposalAlreadyExecuted(codespace sdk.CodespaceType, proposalID int64) sdk.Error {
	return sdk.NewError(codespace, CodeProposalAlreadyExecuted, "proposal %d already reached a terminal state", proposalID)
}
