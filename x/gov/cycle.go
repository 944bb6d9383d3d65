package gov

import (
	"time"

	sdk "github.com/quantidexyz/levr-gov/types"
)

// CycleState tracks the single funding cycle the engine is in. The id
// only ever grows. A zero StartTime means the cycle has been opened by
// an execution but its clock has not started; the first proposal of
// the new cycle stamps it.
type CycleState struct {
	CycleID   int64     `json:"cycle_id"`
	StartTime time.Time `json:"start_time"`
}

// GetCycleState returns the current cycle, or a zero state before the
// first proposal ever.
func (keeper Keeper) GetCycleState(ctx sdk.Context) CycleState {
	store := ctx.KVStore(keeper.storeKey)
	bz := store.Get(KeyCycleState)
	if bz == nil {
		return CycleState{}
	}
	var state CycleState
	keeper.cdc.MustUnmarshalBinaryBare(bz, &state)
	return state
}

func (keeper Keeper) setCycleState(ctx sdk.Context, state CycleState) {
	store := ctx.KVStore(keeper.storeKey)
	store.Set(KeyCycleState, keeper.cdc.MustMarshalBinaryBare(state))
}

// CurrentCycleID returns the id of the cycle in progress, 0 before the
// first proposal.
func (keeper Keeper) CurrentCycleID(ctx sdk.Context) int64 {
	return keeper.GetCycleState(ctx).CycleID
}

// cycleForNewProposal resolves the cycle a new proposal lands in,
// opening the first cycle or stamping a freshly advanced one. Fails
// when the running cycle's proposal window has closed.
func (keeper Keeper) cycleForNewProposal(ctx sdk.Context, now time.Time, params GovParams) (CycleState, sdk.Error) {
	cycle := keeper.GetCycleState(ctx)
	if cycle.CycleID == 0 {
		return CycleState{CycleID: 1, StartTime: now}, nil
	}
	if cycle.StartTime.IsZero() {
		cycle.StartTime = now
		return cycle, nil
	}
	if now.After(cycle.StartTime.Add(params.ProposalWindow)) {
		return CycleState{}, ErrProposalWindowClosed(keeper.codespace, cycle.CycleID)
	}
	return cycle, nil
}

// advanceCycle opens the next cycle. The new cycle's clock starts when
// startNow is set; otherwise the next proposal stamps it.
func (keeper Keeper) advanceCycle(ctx sdk.Context, startNow bool) CycleState {
	cycle := keeper.GetCycleState(ctx)
	next := CycleState{CycleID: cycle.CycleID + 1}
	if startNow {
		next.StartTime = ctx.BlockTime()
	}
	keeper.setCycleState(ctx, next)

	keeper.Logger(ctx).Info("cycle advanced", "cycle", next.CycleID)
	keeper.metrics.CurrentCycle.Set(float64(next.CycleID))
	keeper.publish(CycleAdvancedEvent{Cycle: next})
	return next
}

// StartNewCycle manually advances past a cycle where every proposal
// was defeated. It refuses while any proposal of the current cycle is
// still pending or in voting, or while the cycle's winner remains
// executable. Only the winner can ever be executed, so a succeeded
// runner-up is not a blocker; and once the winner's retry budget is
// spent the cycle may advance, so a drained treasury cannot wedge
// governance forever.
func (keeper Keeper) StartNewCycle(ctx sdk.Context) (CycleState, sdk.Error) {
	keeper.mtx.Lock()
	defer keeper.mtx.Unlock()

	cycle := keeper.GetCycleState(ctx)
	if cycle.CycleID == 0 {
		return keeper.advanceCycle(ctx, true), nil
	}

	var blocker sdk.Error
	keeper.IterateProposals(ctx, func(p Proposal) bool {
		if p.CycleID != cycle.CycleID {
			return false
		}
		switch keeper.ProposalStatusAt(ctx, p) {
		case StatusPending, StatusActive:
			blocker = ErrExecutableProposalsRemaining(keeper.codespace, p.ProposalID)
			return true
		}
		return false
	})
	if blocker != nil {
		return CycleState{}, blocker
	}
	if winner, ok := keeper.GetWinner(ctx, cycle.CycleID); ok && winner.FailedExecutions < keeper.maxExecutionAttempts {
		return CycleState{}, ErrExecutableProposalsRemaining(keeper.codespace, winner.ProposalID)
	}
	return keeper.advanceCycle(ctx, true), nil
}

//-----------------------------------------------------------
// Per-cycle counters. Keyed by (cycle, type), so advancing the cycle
// is the reset.

// ActiveProposalCountIn counts proposals of a type submitted in a
// cycle.
func (keeper Keeper) ActiveProposalCountIn(ctx sdk.Context, cycleID int64, proposalType ProposalKind) int64 {
	store := ctx.KVStore(keeper.storeKey)
	bz := store.Get(GetActiveCountKey(cycleID, proposalType))
	if bz == nil {
		return 0
	}
	var count int64
	keeper.cdc.MustUnmarshalBinaryBare(bz, &count)
	return count
}

func (keeper Keeper) incrementActiveCount(ctx sdk.Context, cycleID int64, proposalType ProposalKind) {
	store := ctx.KVStore(keeper.storeKey)
	count := keeper.ActiveProposalCountIn(ctx, cycleID, proposalType) + 1
	store.Set(GetActiveCountKey(cycleID, proposalType), keeper.cdc.MustMarshalBinaryBare(count))
}

func (keeper Keeper) hasAlreadyProposed(ctx sdk.Context, cycleID int64, proposalType ProposalKind, proposer sdk.AccAddress) bool {
	store := ctx.KVStore(keeper.storeKey)
	return store.Get(GetAlreadyProposedKey(cycleID, proposalType, proposer)) != nil
}

func (keeper Keeper) markAlreadyProposed(ctx sdk.Context, cycleID int64, proposalType ProposalKind, proposer sdk.AccAddress) {
	store := ctx.KVStore(keeper.storeKey)
	store.Set(GetAlreadyProposedKey(cycleID, proposalType, proposer), []byte{0x01})
}
