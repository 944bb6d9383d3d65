package gov

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/quantidexyz/levr-gov/codec"
	"github.com/quantidexyz/levr-gov/pubsub"
	sdk "github.com/quantidexyz/levr-gov/types"
)

const proposalCacheSize = 512

// DefaultMaxExecutionAttempts bounds treasury-shortfall retries before
// the manual cycle-advance escape hatch opens.
const DefaultMaxExecutionAttempts = 3

// VotingPowerLedger is the staked receipt-token ledger governance
// reads. Voting power is time-and-balance weighted; balances feed
// quorum, power feeds approval.
type VotingPowerLedger interface {
	GetVotingPower(ctx sdk.Context, addr sdk.AccAddress) int64
	StakedBalanceOf(ctx sdk.Context, addr sdk.AccAddress) int64
	TotalStaked(ctx sdk.Context) int64
}

// Treasury is the pooled-asset collaborator payouts go through.
type Treasury interface {
	BalanceOf(ctx sdk.Context, token string) int64
	Transfer(ctx sdk.Context, token string, to sdk.AccAddress, amount int64) sdk.Error
	ApplyBoost(ctx sdk.Context, token string, amount int64) sdk.Error
}

// Keeper owns the governance store: proposals, vote receipts, cycle
// state and the per-cycle counters. Every mutating operation locks the
// keeper, checks all preconditions before the first write, and only
// then mutates, so a failed call leaves no partial state.
type Keeper struct {
	storeKey sdk.StoreKey
	cdc      *codec.Codec

	ledger      VotingPowerLedger
	treasury    Treasury
	paramSource ParamSource

	publisher            *pubsub.Publisher
	pending              *eventBuffer
	metrics              *Metrics
	hooks                GovHooks
	cache                *lru.Cache
	maxExecutionAttempts int64

	// serializes propose/vote/execute/advance
	mtx *sync.Mutex

	// codespace
	codespace sdk.CodespaceType
}

func NewKeeper(cdc *codec.Codec, key sdk.StoreKey, ledger VotingPowerLedger, treasury Treasury,
	paramSource ParamSource, codespace sdk.CodespaceType) Keeper {
	cache, err := lru.New(proposalCacheSize)
	if err != nil {
		panic(err)
	}
	return Keeper{
		storeKey:             key,
		cdc:                  cdc,
		ledger:               ledger,
		treasury:             treasury,
		paramSource:          paramSource,
		pending:              new(eventBuffer),
		metrics:              NopMetrics(),
		cache:                cache,
		maxExecutionAttempts: DefaultMaxExecutionAttempts,
		mtx:                  new(sync.Mutex),
		codespace:            codespace,
	}
}

// WithPublisher attaches the event publisher.
func (keeper Keeper) WithPublisher(publisher *pubsub.Publisher) Keeper {
	keeper.publisher = publisher
	return keeper
}

// WithMetrics attaches prometheus metrics.
func (keeper Keeper) WithMetrics(metrics *Metrics) Keeper {
	keeper.metrics = metrics
	return keeper
}

// WithHooks sets the governance hooks.
func (keeper Keeper) WithHooks(gh GovHooks) Keeper {
	if keeper.hooks != nil {
		panic("cannot set governance hooks twice")
	}
	keeper.hooks = gh
	return keeper
}

// WithMaxExecutionAttempts overrides the escape-hatch threshold.
func (keeper Keeper) WithMaxExecutionAttempts(attempts int64) Keeper {
	if attempts <= 0 {
		panic("max execution attempts must be positive")
	}
	keeper.maxExecutionAttempts = attempts
	return keeper
}

// Logger returns a module-specific logger.
func (keeper Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/gov")
}

// return the codespace
func (keeper Keeper) Codespace() sdk.CodespaceType {
	return keeper.codespace
}

// eventBuffer holds events raised by an operation until its store
// writes are committed.
type eventBuffer struct {
	mtx    sync.Mutex
	events []pubsub.Event
}

func (keeper Keeper) publish(event pubsub.Event) {
	if keeper.publisher == nil {
		return
	}
	keeper.pending.mtx.Lock()
	keeper.pending.events = append(keeper.pending.events, event)
	keeper.pending.mtx.Unlock()
}

// FlushEvents publishes the events buffered since the last flush. The
// caller runs it only after committing the store, so subscribers never
// observe a transition that was rolled back.
func (keeper Keeper) FlushEvents() {
	keeper.pending.mtx.Lock()
	events := keeper.pending.events
	keeper.pending.events = nil
	keeper.pending.mtx.Unlock()
	if keeper.publisher == nil {
		return
	}
	for _, event := range events {
		keeper.publisher.Publish(event)
	}
}

// DiscardEvents drops buffered events after a rollback.
func (keeper Keeper) DiscardEvents() {
	keeper.pending.mtx.Lock()
	keeper.pending.events = nil
	keeper.pending.mtx.Unlock()
}

//-----------------------------------------------------------
// Proposal storage

// GetProposal loads a proposal by id.
func (keeper Keeper) GetProposal(ctx sdk.Context, proposalID int64) (Proposal, bool) {
	if cached, ok := keeper.cache.Get(proposalID); ok {
		return cached.(Proposal), true
	}
	store := ctx.KVStore(keeper.storeKey)
	bz := store.Get(GetProposalKey(proposalID))
	if bz == nil {
		return Proposal{}, false
	}
	var proposal Proposal
	keeper.cdc.MustUnmarshalBinaryBare(bz, &proposal)
	keeper.cache.Add(proposalID, proposal)
	return proposal, true
}

// SetProposal writes a proposal back to the store.
func (keeper Keeper) SetProposal(ctx sdk.Context, proposal Proposal) {
	store := ctx.KVStore(keeper.storeKey)
	store.Set(GetProposalKey(proposal.ProposalID), keeper.cdc.MustMarshalBinaryBare(proposal))
	keeper.cache.Add(proposal.ProposalID, proposal)
}

// PurgeCache drops every cached proposal. Callers that roll back the
// backing store use it to keep later reads coherent.
func (keeper Keeper) PurgeCache() {
	keeper.cache.Purge()
}

// IterateProposals visits every proposal in ascending id order until
// the callback returns true.
func (keeper Keeper) IterateProposals(ctx sdk.Context, cb func(Proposal) (stop bool)) {
	store := ctx.KVStore(keeper.storeKey)
	iterator := store.Iterator(PrefixProposal, sdk.PrefixEndBytes(PrefixProposal))
	defer iterator.Close()
	for ; iterator.Valid(); iterator.Next() {
		var proposal Proposal
		keeper.cdc.MustUnmarshalBinaryBare(iterator.Value(), &proposal)
		if cb(proposal) {
			return
		}
	}
}

// GetProposalsInCycle returns a cycle's proposals in ascending id
// order.
func (keeper Keeper) GetProposalsInCycle(ctx sdk.Context, cycleID int64) []Proposal {
	var proposals []Proposal
	keeper.IterateProposals(ctx, func(p Proposal) bool {
		if p.CycleID == cycleID {
			proposals = append(proposals, p)
		}
		return false
	})
	return proposals
}

func (keeper Keeper) getNewProposalID(ctx sdk.Context) int64 {
	store := ctx.KVStore(keeper.storeKey)
	bz := store.Get(KeyNextProposalID)
	var proposalID int64 = 1
	if bz != nil {
		keeper.cdc.MustUnmarshalBinaryBare(bz, &proposalID)
	}
	store.Set(KeyNextProposalID, keeper.cdc.MustMarshalBinaryBare(proposalID+1))
	return proposalID
}

func (keeper Keeper) peekNextProposalID(ctx sdk.Context) int64 {
	store := ctx.KVStore(keeper.storeKey)
	bz := store.Get(KeyNextProposalID)
	if bz == nil {
		return 1
	}
	var proposalID int64
	keeper.cdc.MustUnmarshalBinaryBare(bz, &proposalID)
	return proposalID
}

// setInitialProposalID seeds the id sequence at genesis.
func (keeper Keeper) setInitialProposalID(ctx sdk.Context, proposalID int64) sdk.Error {
	store := ctx.KVStore(keeper.storeKey)
	if store.Get(KeyNextProposalID) != nil {
		return sdk.ErrInternal("initial proposal ID already set")
	}
	store.Set(KeyNextProposalID, keeper.cdc.MustMarshalBinaryBare(proposalID))
	return nil
}

//-----------------------------------------------------------
// Vote receipts

// GetVoteReceipt loads the immutable receipt of (proposal, voter).
func (keeper Keeper) GetVoteReceipt(ctx sdk.Context, proposalID int64, voter sdk.AccAddress) (VoteReceipt, bool) {
	store := ctx.KVStore(keeper.storeKey)
	bz := store.Get(GetVoteReceiptKey(proposalID, voter))
	if bz == nil {
		return VoteReceipt{}, false
	}
	var receipt VoteReceipt
	keeper.cdc.MustUnmarshalBinaryBare(bz, &receipt)
	return receipt, true
}

func (keeper Keeper) setVoteReceipt(ctx sdk.Context, receipt VoteReceipt) {
	store := ctx.KVStore(keeper.storeKey)
	store.Set(GetVoteReceiptKey(receipt.ProposalID, receipt.Voter), keeper.cdc.MustMarshalBinaryBare(receipt))
}

func (keeper Keeper) iterateVoteReceipts(ctx sdk.Context, cb func(VoteReceipt) (stop bool)) {
	store := ctx.KVStore(keeper.storeKey)
	iterator := store.Iterator(PrefixVoteReceipt, sdk.PrefixEndBytes(PrefixVoteReceipt))
	defer iterator.Close()
	for ; iterator.Valid(); iterator.Next() {
		var receipt VoteReceipt
		keeper.cdc.MustUnmarshalBinaryBare(iterator.Value(), &receipt)
		if cb(receipt) {
			return
		}
	}
}

//-----------------------------------------------------------
// Status

// ProposalStatusAt derives the state-machine position of a proposal at
// the caller-observed time. Succeeded/Defeated are functions of the
// tally and the live supply, never stored.
func (keeper Keeper) ProposalStatusAt(ctx sdk.Context, proposal Proposal) ProposalStatus {
	if proposal.Executed {
		return StatusExecuted
	}
	now := ctx.BlockTime()
	if now.Before(proposal.VotingStartsAt) {
		return StatusPending
	}
	if !proposal.VotingEndedAt(now) {
		return StatusActive
	}
	liveSupply := keeper.ledger.TotalStaked(ctx)
	if MeetsQuorum(proposal, liveSupply) && MeetsApproval(proposal) {
		return StatusSucceeded
	}
	return StatusDefeated
}

//-----------------------------------------------------------
// Operations

// SubmitProposal validates and records a new proposal, snapshotting
// supply and parameters so nothing later can move its bar.
func (keeper Keeper) SubmitProposal(ctx sdk.Context, proposer sdk.AccAddress, proposalType ProposalKind,
	token string, amount int64, recipient sdk.AccAddress, memo string) (Proposal, sdk.Error) {
	keeper.mtx.Lock()
	defer keeper.mtx.Unlock()

	if !validProposalType(proposalType) {
		return Proposal{}, ErrInvalidProposal(keeper.codespace, fmt.Sprintf("invalid proposal type %v", byte(proposalType)))
	}
	if proposer.Empty() {
		return Proposal{}, sdk.ErrInvalidAddress("empty proposer address")
	}
	if len(token) == 0 {
		return Proposal{}, ErrInvalidProposal(keeper.codespace, "empty token symbol")
	}
	if amount <= 0 {
		return Proposal{}, ErrInvalidProposal(keeper.codespace, fmt.Sprintf("amount must be positive, got %d", amount))
	}
	if proposalType == ProposalTypeTransferToAddress && recipient.Empty() {
		return Proposal{}, ErrInvalidProposal(keeper.codespace, "transfer proposal needs a recipient")
	}
	if proposalType == ProposalTypeBoostPool && !recipient.Empty() {
		return Proposal{}, ErrInvalidProposal(keeper.codespace, "boost proposal cannot name a recipient")
	}
	if len(memo) > MaxMemoLength {
		return Proposal{}, ErrInvalidProposal(keeper.codespace, fmt.Sprintf("memo is longer than max length of %d", MaxMemoLength))
	}

	params, err := keeper.paramSource.GovParams(token)
	if err != nil {
		return Proposal{}, ErrInvalidProposal(keeper.codespace, err.Error())
	}
	if err := params.Validate(); err != nil {
		return Proposal{}, ErrInvalidProposal(keeper.codespace, err.Error())
	}

	now := ctx.BlockTime()
	cycle, sdkErr := keeper.cycleForNewProposal(ctx, now, params)
	if sdkErr != nil {
		return Proposal{}, sdkErr
	}

	if keeper.hasAlreadyProposed(ctx, cycle.CycleID, proposalType, proposer) {
		return Proposal{}, ErrAlreadyProposedInCycle(keeper.codespace, proposalType, cycle.CycleID)
	}
	if keeper.ActiveProposalCountIn(ctx, cycle.CycleID, proposalType) >= params.MaxActiveProposals {
		return Proposal{}, ErrTooManyActiveProposals(keeper.codespace, proposalType, params.MaxActiveProposals)
	}

	totalStaked := keeper.ledger.TotalStaked(ctx)
	proposerStake := keeper.ledger.StakedBalanceOf(ctx, proposer)
	if totalStaked == 0 || !sdk.BpsGTE(proposerStake, totalStaked, params.MinStakeBpsToPropose) {
		return Proposal{}, ErrInsufficientStake(keeper.codespace, proposerStake, params.MinStakeBpsToPropose)
	}

	treasuryBalance := keeper.treasury.BalanceOf(ctx, token)
	if amount > treasuryBalance {
		return Proposal{}, ErrInsufficientTreasuryBalance(keeper.codespace, token, treasuryBalance, amount)
	}
	if !sdk.BpsLTE(amount, treasuryBalance, params.MaxProposalAmountBps) {
		return Proposal{}, ErrProposalAmountExceedsLimit(keeper.codespace, amount, params.MaxProposalAmountBps)
	}

	// all preconditions hold; persist
	keeper.setCycleState(ctx, cycle)

	votingStartsAt := cycle.StartTime.Add(params.ProposalWindow)
	proposal := Proposal{
		ProposalID:   keeper.getNewProposalID(ctx),
		CycleID:      cycle.CycleID,
		Proposer:     proposer,
		ProposalType: proposalType,
		Token:        token,
		Amount:       amount,
		Recipient:    recipient,
		Memo:         memo,

		CreatedAt:      now,
		VotingStartsAt: votingStartsAt,
		VotingEndsAt:   votingStartsAt.Add(params.VotingWindow),

		TotalSupplySnapshot:      totalStaked,
		QuorumBpsSnapshot:        params.QuorumBps,
		MinimumQuorumBpsSnapshot: params.MinimumQuorumBps,
		ApprovalBpsSnapshot:      params.ApprovalBps,
	}
	keeper.SetProposal(ctx, proposal)
	keeper.markAlreadyProposed(ctx, cycle.CycleID, proposalType, proposer)
	keeper.incrementActiveCount(ctx, cycle.CycleID, proposalType)

	if keeper.hooks != nil {
		if err := keeper.hooks.OnProposalSubmitted(ctx, proposal); err != nil {
			return Proposal{}, sdk.ErrInternal(err.Error())
		}
	}

	keeper.Logger(ctx).Info("proposal submitted",
		"proposal", proposal.ProposalID, "cycle", proposal.CycleID,
		"type", proposal.ProposalType.String(), "token", token, "amount", amount)
	keeper.metrics.ProposalsSubmitted.WithLabelValues(proposal.ProposalType.String()).Inc()
	keeper.publish(ProposalSubmittedEvent{Proposal: proposal})

	return proposal, nil
}

// AddVote casts a vote, freezing the voter's power and balance into an
// immutable receipt. A second vote from the same account fails and
// changes nothing.
func (keeper Keeper) AddVote(ctx sdk.Context, proposalID int64, voter sdk.AccAddress, support bool) sdk.Error {
	keeper.mtx.Lock()
	defer keeper.mtx.Unlock()

	if voter.Empty() {
		return sdk.ErrInvalidAddress("empty voter address")
	}
	proposal, ok := keeper.GetProposal(ctx, proposalID)
	if !ok {
		return ErrUnknownProposal(keeper.codespace, proposalID)
	}
	if proposal.Executed || !proposal.VotingActiveAt(ctx.BlockTime()) {
		return ErrVotingNotActive(keeper.codespace, proposalID)
	}
	if _, voted := keeper.GetVoteReceipt(ctx, proposalID, voter); voted {
		return ErrAlreadyVoted(keeper.codespace, proposalID, voter)
	}
	votes := keeper.ledger.GetVotingPower(ctx, voter)
	if votes <= 0 {
		return ErrInsufficientVotingPower(keeper.codespace, voter)
	}
	balance := keeper.ledger.StakedBalanceOf(ctx, voter)

	if support {
		proposal.YesVotes += votes
	} else {
		proposal.NoVotes += votes
	}
	proposal.TotalBalanceVoted += balance
	keeper.SetProposal(ctx, proposal)

	receipt := VoteReceipt{
		ProposalID: proposalID,
		Voter:      voter,
		HasVoted:   true,
		Support:    support,
		Votes:      votes,
		Balance:    balance,
	}
	keeper.setVoteReceipt(ctx, receipt)

	keeper.Logger(ctx).Info("vote cast",
		"proposal", proposalID, "voter", voter.String(), "support", support, "votes", votes)
	keeper.metrics.VotesCast.Inc()
	keeper.publish(VoteCastEvent{Receipt: receipt})

	return nil
}
