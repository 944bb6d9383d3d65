package gov

import (
	sdk "github.com/quantidexyz/levr-gov/types"
)

// RequiredQuorum computes the balance that must vote for the proposal
// to count. The main bar scales off the smaller of the live staked
// supply and the snapshot taken at submission, so mass unstaking after
// submission lowers the bar instead of freezing proposals out. The
// minimum-quorum floor is always taken off the snapshot, so the bar
// never drops to nothing.
func RequiredQuorum(p Proposal, liveSupply int64) int64 {
	base := sdk.MinInt64(liveSupply, p.TotalSupplySnapshot)
	quorum := sdk.BpsOf(base, p.QuorumBpsSnapshot)
	floor := sdk.BpsOf(p.TotalSupplySnapshot, p.MinimumQuorumBpsSnapshot)
	if floor > quorum {
		return floor
	}
	return quorum
}

// MeetsQuorum reports whether enough balance voted, by either side.
func MeetsQuorum(p Proposal, liveSupply int64) bool {
	return p.TotalBalanceVoted >= RequiredQuorum(p, liveSupply)
}

// MeetsApproval reports whether yes power clears the approval
// threshold of the power that voted. A proposal nobody voted on never
// passes.
func MeetsApproval(p Proposal) bool {
	totalVotes := p.YesVotes + p.NoVotes
	if totalVotes <= 0 {
		return false
	}
	return sdk.BpsGTE(p.YesVotes, totalVotes, p.ApprovalBpsSnapshot)
}

// RequiredQuorumAt evaluates the quorum bar against the live staked
// supply.
func (keeper Keeper) RequiredQuorumAt(ctx sdk.Context, p Proposal) int64 {
	return RequiredQuorum(p, keeper.ledger.TotalStaked(ctx))
}

// MeetsQuorumAt evaluates quorum against the live staked supply.
func (keeper Keeper) MeetsQuorumAt(ctx sdk.Context, p Proposal) bool {
	return MeetsQuorum(p, keeper.ledger.TotalStaked(ctx))
}

// passedAt reports whether the proposal both ended voting and cleared
// quorum and approval.
func (keeper Keeper) passedAt(ctx sdk.Context, p Proposal) bool {
	if p.Executed || !p.VotingEndedAt(ctx.BlockTime()) {
		return false
	}
	liveSupply := keeper.ledger.TotalStaked(ctx)
	return MeetsQuorum(p, liveSupply) && MeetsApproval(p)
}

// GetWinner returns the cycle's winning proposal: the passing proposal
// with the most yes power, lowest id on a tie. The scan runs in
// ascending id order and only a strictly greater yes count displaces
// the incumbent, which is what makes the tie-break deterministic.
func (keeper Keeper) GetWinner(ctx sdk.Context, cycleID int64) (Proposal, bool) {
	var (
		winner Proposal
		found  bool
	)
	keeper.IterateProposals(ctx, func(p Proposal) bool {
		if p.CycleID != cycleID || !keeper.passedAt(ctx, p) {
			return false
		}
		if !found || p.YesVotes > winner.YesVotes {
			winner, found = p, true
		}
		return false
	})
	return winner, found
}
