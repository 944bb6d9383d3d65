package gov

import (
	sdk "github.com/quantidexyz/levr-gov/types"
)

// GenesisState - all governance state that must be provided at genesis
type GenesisState struct {
	StartingProposalID int64         `json:"starting_proposal_id"`
	CycleState         CycleState    `json:"cycle_state"`
	Proposals          []Proposal    `json:"proposals"`
	VoteReceipts       []VoteReceipt `json:"vote_receipts"`
}

func NewGenesisState(startingProposalID int64) GenesisState {
	return GenesisState{StartingProposalID: startingProposalID}
}

func DefaultGenesisState() GenesisState {
	return NewGenesisState(1)
}

// InitGenesis - store genesis state
func InitGenesis(ctx sdk.Context, keeper Keeper, data GenesisState) {
	if err := keeper.setInitialProposalID(ctx, data.StartingProposalID); err != nil {
		panic(err)
	}
	if data.CycleState.CycleID > 0 {
		keeper.setCycleState(ctx, data.CycleState)
	}
	for _, proposal := range data.Proposals {
		keeper.SetProposal(ctx, proposal)
		keeper.incrementActiveCount(ctx, proposal.CycleID, proposal.ProposalType)
		keeper.markAlreadyProposed(ctx, proposal.CycleID, proposal.ProposalType, proposal.Proposer)
	}
	for _, receipt := range data.VoteReceipts {
		keeper.setVoteReceipt(ctx, receipt)
	}
}

// ExportGenesis - output genesis state
func ExportGenesis(ctx sdk.Context, keeper Keeper) GenesisState {
	state := GenesisState{
		StartingProposalID: keeper.peekNextProposalID(ctx),
		CycleState:         keeper.GetCycleState(ctx),
	}
	keeper.IterateProposals(ctx, func(p Proposal) bool {
		state.Proposals = append(state.Proposals, p)
		return false
	})
	keeper.iterateVoteReceipts(ctx, func(r VoteReceipt) bool {
		state.VoteReceipts = append(state.VoteReceipts, r)
		return false
	})
	return state
}
