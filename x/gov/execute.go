package gov

import (
	sdk "github.com/quantidexyz/levr-gov/types"
)

// ExecuteResult reports what Execute resolved the proposal to.
// Defeated means the proposal was marked terminal without a payout,
// which is a normal outcome, not a failure.
type ExecuteResult struct {
	Proposal Proposal `json:"proposal"`
	Defeated bool     `json:"defeated"`
}

// Execute resolves a proposal after voting ends. The cycle's winner is
// paid out and the cycle auto-advances. A proposal in a cycle with no
// winner is marked terminal as defeated so its slot and counters
// resolve. A treasury shortfall on the winner leaves it executable for
// retry and counts toward the cycle-advance escape hatch.
//
// Local bookkeeping (terminal flag, cycle id) is committed before the
// treasury call, so a reentrant call from the payout path observes the
// proposal as already executed.
func (keeper Keeper) Execute(ctx sdk.Context, proposalID int64) (ExecuteResult, sdk.Error) {
	keeper.mtx.Lock()
	defer keeper.mtx.Unlock()

	proposal, ok := keeper.GetProposal(ctx, proposalID)
	if !ok {
		return ExecuteResult{}, ErrUnknownProposal(keeper.codespace, proposalID)
	}
	cycleID := keeper.CurrentCycleID(ctx)
	if proposal.CycleID != cycleID {
		return ExecuteResult{}, ErrProposalNotInCurrentCycle(keeper.codespace, proposalID, cycleID)
	}
	if proposal.Executed {
		return ExecuteResult{}, ErrProposalAlreadyExecuted(keeper.codespace, proposalID)
	}
	if !proposal.VotingEndedAt(ctx.BlockTime()) {
		return ExecuteResult{}, ErrVotingNotEnded(keeper.codespace, proposalID)
	}

	winner, hasWinner := keeper.GetWinner(ctx, cycleID)
	if hasWinner && winner.ProposalID != proposalID {
		return ExecuteResult{}, ErrNotWinner(keeper.codespace, proposalID)
	}
	if !hasWinner {
		// defeated; terminal, no payout, cycle stays for an explicit
		// restart
		proposal.Executed = true
		keeper.SetProposal(ctx, proposal)

		keeper.Logger(ctx).Info("proposal defeated", "proposal", proposalID, "cycle", cycleID)
		keeper.metrics.ProposalsResolved.WithLabelValues(resultDefeated).Inc()
		keeper.publish(ProposalResolvedEvent{Proposal: proposal, Defeated: true})
		return ExecuteResult{Proposal: proposal, Defeated: true}, nil
	}

	// winner; re-check funding against the live treasury
	balance := keeper.treasury.BalanceOf(ctx, proposal.Token)
	if balance < proposal.Amount {
		proposal.FailedExecutions++
		keeper.SetProposal(ctx, proposal)

		keeper.Logger(ctx).Error("treasury shortfall on execution",
			"proposal", proposalID, "have", balance, "want", proposal.Amount,
			"failed_attempts", proposal.FailedExecutions)
		keeper.metrics.ExecutionFailures.Inc()
		keeper.publish(ExecutionFailedEvent{Proposal: proposal, TreasuryBalance: balance})
		return ExecuteResult{}, ErrInsufficientTreasuryBalance(keeper.codespace, proposal.Token, balance, proposal.Amount)
	}

	// effects before the treasury interaction
	proposal.Executed = true
	keeper.SetProposal(ctx, proposal)
	keeper.advanceCycle(ctx, false)

	var err sdk.Error
	switch proposal.ProposalType {
	case ProposalTypeBoostPool:
		err = keeper.treasury.ApplyBoost(ctx, proposal.Token, proposal.Amount)
	case ProposalTypeTransferToAddress:
		err = keeper.treasury.Transfer(ctx, proposal.Token, proposal.Recipient, proposal.Amount)
	default:
		err = ErrInvalidProposal(keeper.codespace, "unexecutable proposal type")
	}
	if err != nil {
		return ExecuteResult{}, err
	}

	if keeper.hooks != nil {
		if hookErr := keeper.hooks.OnProposalExecuted(ctx, proposal); hookErr != nil {
			return ExecuteResult{}, sdk.ErrInternal(hookErr.Error())
		}
	}

	keeper.Logger(ctx).Info("proposal executed",
		"proposal", proposalID, "cycle", cycleID,
		"type", proposal.ProposalType.String(), "token", proposal.Token, "amount", proposal.Amount)
	keeper.metrics.ProposalsResolved.WithLabelValues(resultExecuted).Inc()
	keeper.publish(ProposalResolvedEvent{Proposal: proposal, Defeated: false})

	return ExecuteResult{Proposal: proposal}, nil
}
