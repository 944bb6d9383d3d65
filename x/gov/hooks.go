package gov

import (
	sdk "github.com/quantidexyz/levr-gov/types"
)

// GovHooks lets other modules react to governance transitions. An
// error from a hook aborts the triggering operation.
type GovHooks interface {
	OnProposalSubmitted(ctx sdk.Context, proposal Proposal) error
	OnProposalExecuted(ctx sdk.Context, proposal Proposal) error
}

// MultiGovHooks runs a hook chain in order, stopping at the first
// error.
type MultiGovHooks []GovHooks

var _ GovHooks = MultiGovHooks{}

func NewMultiGovHooks(hooks ...GovHooks) MultiGovHooks {
	return hooks
}

func (h MultiGovHooks) OnProposalSubmitted(ctx sdk.Context, proposal Proposal) error {
	for _, hook := range h {
		if err := hook.OnProposalSubmitted(ctx, proposal); err != nil {
			return err
		}
	}
	return nil
}

func (h MultiGovHooks) OnProposalExecuted(ctx sdk.Context, proposal Proposal) error {
	for _, hook := range h {
		if err := hook.OnProposalExecuted(ctx, proposal); err != nil {
			return err
		}
	}
	return nil
}
