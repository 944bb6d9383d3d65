package gov

import (
	"time"

	"github.com/pkg/errors"

	sdk "github.com/quantidexyz/levr-gov/types"
)

// GovParams are the per-token governance knobs. They are read once, at
// proposal creation, and frozen into the proposal's snapshots; a later
// config change never moves an open proposal's bar.
type GovParams struct {
	QuorumBps            int64         `json:"quorum_bps" mapstructure:"quorum_bps"`                           //  bps of supply that must have voted
	ApprovalBps          int64         `json:"approval_bps" mapstructure:"approval_bps"`                       //  bps of cast voting power that must be yes
	MinimumQuorumBps     int64         `json:"minimum_quorum_bps" mapstructure:"minimum_quorum_bps"`           //  quorum floor, bps of the supply snapshot
	ProposalWindow       time.Duration `json:"proposal_window" mapstructure:"proposal_window"`                 //  length of the proposal window
	VotingWindow         time.Duration `json:"voting_window" mapstructure:"voting_window"`                     //  length of the voting window
	MaxActiveProposals   int64         `json:"max_active_proposals" mapstructure:"max_active_proposals"`       //  cap per (cycle, type)
	MinStakeBpsToPropose int64         `json:"min_stake_bps_to_propose" mapstructure:"min_stake_bps_to_propose"` //  proposer stake floor, bps of supply
	MaxProposalAmountBps int64         `json:"max_proposal_amount_bps" mapstructure:"max_proposal_amount_bps"` //  amount cap, bps of treasury balance
}

// DefaultGovParams returns the parameters used when a token has no
// explicit override.
func DefaultGovParams() GovParams {
	return GovParams{
		QuorumBps:            4000,
		ApprovalBps:          5100,
		MinimumQuorumBps:     25,
		ProposalWindow:       3 * 24 * time.Hour,
		VotingWindow:         4 * 24 * time.Hour,
		MaxActiveProposals:   10,
		MinStakeBpsToPropose: 100,
		MaxProposalAmountBps: 2000,
	}
}

// Validate rejects parameter sets that would make governance
// unwinnable or unbounded.
func (p GovParams) Validate() error {
	if p.QuorumBps <= 0 || p.QuorumBps > sdk.BpsDenom {
		return errors.Errorf("quorum_bps must be in (0, %d], got %d", sdk.BpsDenom, p.QuorumBps)
	}
	if p.ApprovalBps <= 0 || p.ApprovalBps > sdk.BpsDenom {
		return errors.Errorf("approval_bps must be in (0, %d], got %d", sdk.BpsDenom, p.ApprovalBps)
	}
	if p.MinimumQuorumBps < 0 || p.MinimumQuorumBps > p.QuorumBps {
		return errors.Errorf("minimum_quorum_bps must be in [0, quorum_bps], got %d", p.MinimumQuorumBps)
	}
	if p.ProposalWindow <= 0 {
		return errors.Errorf("proposal_window must be positive, got %s", p.ProposalWindow)
	}
	if p.VotingWindow <= 0 {
		return errors.Errorf("voting_window must be positive, got %s", p.VotingWindow)
	}
	if p.MaxActiveProposals <= 0 {
		return errors.Errorf("max_active_proposals must be positive, got %d", p.MaxActiveProposals)
	}
	if p.MinStakeBpsToPropose < 0 || p.MinStakeBpsToPropose > sdk.BpsDenom {
		return errors.Errorf("min_stake_bps_to_propose must be in [0, %d], got %d", sdk.BpsDenom, p.MinStakeBpsToPropose)
	}
	if p.MaxProposalAmountBps <= 0 || p.MaxProposalAmountBps > sdk.BpsDenom {
		return errors.Errorf("max_proposal_amount_bps must be in (0, %d], got %d", sdk.BpsDenom, p.MaxProposalAmountBps)
	}
	return nil
}

// ParamSource hands the keeper the per-token parameters at proposal
// creation time.
type ParamSource interface {
	GovParams(token string) (GovParams, error)
}
