package gov

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	sdk "github.com/quantidexyz/levr-gov/types"
)

// MaxMemoLength bounds the optional transfer memo.
const MaxMemoLength = 256

//-----------------------------------------------------------
// Proposal

// Proposal is created once and never deleted. Votes mutate the
// counters, execution flips the terminal flag; everything else is
// frozen at creation, so later config or supply changes cannot move an
// open proposal's bar.
type Proposal struct {
	ProposalID   int64          `json:"proposal_id"`   //  ID of the proposal; the tie-break ordering key
	CycleID      int64          `json:"cycle_id"`      //  Cycle the proposal competes in
	Proposer     sdk.AccAddress `json:"proposer"`      //  Account that submitted the proposal
	ProposalType ProposalKind   `json:"proposal_type"` //  Type of proposal. Initial set {BoostPool, TransferToAddress}
	Token        string         `json:"token"`         //  Treasury asset the proposal spends
	Amount       int64          `json:"amount"`        //  Amount of token requested
	Recipient    sdk.AccAddress `json:"recipient"`     //  Transfer recipient; empty for BoostPool
	Memo         string         `json:"memo"`          //  Optional transfer memo

	CreatedAt      time.Time `json:"created_at"`       //  Instant the proposal was created
	VotingStartsAt time.Time `json:"voting_starts_at"` //  First instant a vote is accepted (inclusive)
	VotingEndsAt   time.Time `json:"voting_ends_at"`   //  Last instant a vote is accepted (inclusive)

	TotalSupplySnapshot      int64 `json:"total_supply_snapshot"`       //  Live staked supply at creation
	QuorumBpsSnapshot        int64 `json:"quorum_bps_snapshot"`         //  Quorum bps frozen at creation
	MinimumQuorumBpsSnapshot int64 `json:"minimum_quorum_bps_snapshot"` //  Quorum floor bps frozen at creation
	ApprovalBpsSnapshot      int64 `json:"approval_bps_snapshot"`       //  Approval bps frozen at creation

	YesVotes          int64 `json:"yes_votes"`           //  Cumulative voting power in favor
	NoVotes           int64 `json:"no_votes"`            //  Cumulative voting power against
	TotalBalanceVoted int64 `json:"total_balance_voted"` //  Cumulative receipt balance of voters; the quorum input

	Executed         bool  `json:"executed"`          //  Terminal flag, monotonic false -> true
	FailedExecutions int64 `json:"failed_executions"` //  Treasury-shortfall attempts; feeds the escape hatch
}

// VotingActiveAt reports whether the voting window is open at the
// given instant. Boundary instants are inclusive.
func (p Proposal) VotingActiveAt(now time.Time) bool {
	return !now.Before(p.VotingStartsAt) && !now.After(p.VotingEndsAt)
}

// VotingEndedAt reports whether the voting window has closed.
func (p Proposal) VotingEndedAt(now time.Time) bool {
	return now.After(p.VotingEndsAt)
}

//-----------------------------------------------------------
// VoteReceipt

// VoteReceipt records one account's vote on one proposal. It is
// created on first vote and immutable after: voting power and balance
// are frozen at cast time, so later unstaking or supply growth cannot
// retroactively change a cast vote's weight.
type VoteReceipt struct {
	ProposalID int64          `json:"proposal_id"`
	Voter      sdk.AccAddress `json:"voter"`
	HasVoted   bool           `json:"has_voted"`
	Support    bool           `json:"support"`
	Votes      int64          `json:"votes"`   //  voting power at cast time
	Balance    int64          `json:"balance"` //  receipt balance at cast time
}

//-----------------------------------------------------------
// ProposalKind

// Type that represents Proposal Type as a byte
type ProposalKind byte

//nolint
const (
	ProposalTypeNil               ProposalKind = 0x00
	ProposalTypeBoostPool         ProposalKind = 0x01
	ProposalTypeTransferToAddress ProposalKind = 0x02
)

// AllProposalKinds lists every valid kind, in tag order.
var AllProposalKinds = []ProposalKind{ProposalTypeBoostPool, ProposalTypeTransferToAddress}

// String to proposalType byte.  Returns ff if invalid.
func ProposalTypeFromString(str string) (ProposalKind, error) {
	switch str {
	case "BoostPool":
		return ProposalTypeBoostPool, nil
	case "TransferToAddress":
		return ProposalTypeTransferToAddress, nil
	default:
		return ProposalKind(0xff), errors.Errorf("'%s' is not a valid proposal type", str)
	}
}

// is defined ProposalType?
func validProposalType(pt ProposalKind) bool {
	return pt == ProposalTypeBoostPool || pt == ProposalTypeTransferToAddress
}

// Marshals to JSON using string
func (pt ProposalKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(pt.String())
}

// Unmarshals from JSON assuming string form
func (pt *ProposalKind) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}

	bz2, err := ProposalTypeFromString(s)
	if err != nil {
		return err
	}
	*pt = bz2
	return nil
}

// Turns ProposalKind byte to String
func (pt ProposalKind) String() string {
	switch pt {
	case ProposalTypeBoostPool:
		return "BoostPool"
	case ProposalTypeTransferToAddress:
		return "TransferToAddress"
	default:
		return ""
	}
}

// For Printf / Sprintf, returns the name when using %s
// nolint: errcheck
func (pt ProposalKind) Format(s fmt.State, verb rune) {
	switch verb {
	case 's':
		s.Write([]byte(pt.String()))
	default:
		s.Write([]byte(fmt.Sprintf("%v", byte(pt))))
	}
}

//-----------------------------------------------------------
// ProposalStatus

// Type that represents Proposal Status as a byte
type ProposalStatus byte

//nolint
const (
	StatusNil       ProposalStatus = 0x00
	StatusPending   ProposalStatus = 0x01
	StatusActive    ProposalStatus = 0x02
	StatusSucceeded ProposalStatus = 0x03
	StatusDefeated  ProposalStatus = 0x04
	StatusExecuted  ProposalStatus = 0x05
)

// ProposalStatusFromString turns a string into a ProposalStatus
func ProposalStatusFromString(str string) (ProposalStatus, error) {
	switch str {
	case "Pending":
		return StatusPending, nil
	case "Active":
		return StatusActive, nil
	case "Succeeded":
		return StatusSucceeded, nil
	case "Defeated":
		return StatusDefeated, nil
	case "Executed":
		return StatusExecuted, nil
	case "":
		return StatusNil, nil
	default:
		return ProposalStatus(0xff), errors.Errorf("'%s' is not a valid proposal status", str)
	}
}

// Marshals to JSON using string
func (status ProposalStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(status.String())
}

// Unmarshals from JSON assuming string form
func (status *ProposalStatus) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}

	bz2, err := ProposalStatusFromString(s)
	if err != nil {
		return err
	}
	*status = bz2
	return nil
}

// Turns ProposalStatus byte to String
func (status ProposalStatus) String() string {
	switch status {
	case StatusPending:
		return "Pending"
	case StatusActive:
		return "Active"
	case StatusSucceeded:
		return "Succeeded"
	case StatusDefeated:
		return "Defeated"
	case StatusExecuted:
		return "Executed"
	default:
		return ""
	}
}

// For Printf / Sprintf, returns the name when using %s
// nolint: errcheck
func (status ProposalStatus) Format(s fmt.State, verb rune) {
	switch verb {
	case 's':
		s.Write([]byte(status.String()))
	default:
		s.Write([]byte(fmt.Sprintf("%v", byte(status))))
	}
}
