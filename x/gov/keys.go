package gov

import (
	"encoding/binary"

	sdk "github.com/quantidexyz/levr-gov/types"
)

const StoreName = "gov"

var (
	KeyNextProposalID = []byte{0x00}
	KeyCycleState     = []byte{0x01}

	PrefixProposal        = []byte{0x10}
	PrefixVoteReceipt     = []byte{0x11}
	PrefixActiveCount     = []byte{0x12}
	PrefixAlreadyProposed = []byte{0x13}
)

// GetProposalKey keys a proposal by big-endian id so iteration order is
// ascending id order, which the tie-break relies on.
func GetProposalKey(proposalID int64) []byte {
	key := make([]byte, len(PrefixProposal)+8)
	copy(key, PrefixProposal)
	binary.BigEndian.PutUint64(key[len(PrefixProposal):], uint64(proposalID))
	return key
}

// GetVoteReceiptKey keys a receipt by (proposal, voter).
func GetVoteReceiptKey(proposalID int64, voter sdk.AccAddress) []byte {
	key := make([]byte, len(PrefixVoteReceipt)+8)
	copy(key, PrefixVoteReceipt)
	binary.BigEndian.PutUint64(key[len(PrefixVoteReceipt):], uint64(proposalID))
	return append(key, voter.Bytes()...)
}

// GetActiveCountKey keys the active-proposal counter by (cycle, type).
// Keying by cycle id is what makes the counter reset exactly once per
// advance: a fresh cycle reads an untouched key.
func GetActiveCountKey(cycleID int64, proposalType ProposalKind) []byte {
	key := make([]byte, len(PrefixActiveCount)+8+1)
	copy(key, PrefixActiveCount)
	binary.BigEndian.PutUint64(key[len(PrefixActiveCount):], uint64(cycleID))
	key[len(PrefixActiveCount)+8] = byte(proposalType)
	return key
}

// GetAlreadyProposedKey keys the one-per-type-per-cycle flag by
// (cycle, type, proposer).
func GetAlreadyProposedKey(cycleID int64, proposalType ProposalKind, proposer sdk.AccAddress) []byte {
	key := make([]byte, len(PrefixAlreadyProposed)+8+1)
	copy(key, PrefixAlreadyProposed)
	binary.BigEndian.PutUint64(key[len(PrefixAlreadyProposed):], uint64(cycleID))
	key[len(PrefixAlreadyProposed)+8] = byte(proposalType)
	return append(key, proposer.Bytes()...)
}
