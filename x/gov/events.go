package gov

import (
	"github.com/quantidexyz/levr-gov/pubsub"
)

// Topic is the pubsub topic every governance event is published under.
const Topic = pubsub.Topic("gov")

// ProposalSubmittedEvent fires after a proposal is accepted into a
// cycle.
type ProposalSubmittedEvent struct {
	Proposal Proposal
}

func (event ProposalSubmittedEvent) GetTopic() pubsub.Topic {
	return Topic
}

// VoteCastEvent fires after a vote receipt is written.
type VoteCastEvent struct {
	Receipt VoteReceipt
}

func (event VoteCastEvent) GetTopic() pubsub.Topic {
	return Topic
}

// ProposalResolvedEvent fires when a proposal reaches a terminal
// state, either executed with a payout or marked defeated.
type ProposalResolvedEvent struct {
	Proposal Proposal
	Defeated bool
}

func (event ProposalResolvedEvent) GetTopic() pubsub.Topic {
	return Topic
}

// ExecutionFailedEvent fires on a treasury shortfall. The proposal
// stays executable.
type ExecutionFailedEvent struct {
	Proposal        Proposal
	TreasuryBalance int64
}

func (event ExecutionFailedEvent) GetTopic() pubsub.Topic {
	return Topic
}

// CycleAdvancedEvent fires whenever the cycle id moves, by execution
// or by an explicit restart.
type CycleAdvancedEvent struct {
	Cycle CycleState
}

func (event CycleAdvancedEvent) GetTopic() pubsub.Topic {
	return Topic
}
