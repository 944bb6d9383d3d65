package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sdk "github.com/quantidexyz/levr-gov/types"
	"github.com/quantidexyz/levr-gov/x/gov"
)

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/gov/proposals", s.handleSubmitProposal).Methods("POST")
	r.HandleFunc("/gov/proposals", s.handleListProposals).Methods("GET")
	r.HandleFunc("/gov/proposals/{id:[0-9]+}", s.handleGetProposal).Methods("GET")
	r.HandleFunc("/gov/proposals/{id:[0-9]+}/votes", s.handleVote).Methods("POST")
	r.HandleFunc("/gov/proposals/{id:[0-9]+}/votes/{addr}", s.handleGetVoteReceipt).Methods("GET")
	r.HandleFunc("/gov/proposals/{id:[0-9]+}/tally", s.handleGetTally).Methods("GET")
	r.HandleFunc("/gov/proposals/{id:[0-9]+}/execute", s.handleExecute).Methods("POST")
	r.HandleFunc("/gov/cycles", s.handleStartNewCycle).Methods("POST")
	r.HandleFunc("/gov/cycles/current", s.handleCurrentCycle).Methods("GET")
	r.HandleFunc("/gov/cycles/current/winner", s.handleCurrentWinner).Methods("GET")

	r.HandleFunc("/stake/delegations", s.handleDelegate).Methods("POST")
	r.HandleFunc("/stake/delegations/{addr}/unbond", s.handleUnbond).Methods("POST")
	r.HandleFunc("/stake/delegations/{addr}", s.handleGetDelegation).Methods("GET")
	r.HandleFunc("/stake/pool", s.handleStakePool).Methods("GET")

	r.HandleFunc("/treasury/deposits", s.handleFundTreasury).Methods("POST")
	r.HandleFunc("/treasury/balances/{token}", s.handleTreasuryBalance).Methods("GET")
	r.HandleFunc("/treasury/boosts/{token}", s.handleBoostPool).Methods("GET")

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

//-----------------------------------------------------------
// Request / response bodies

type submitProposalReq struct {
	Proposer  string `json:"proposer"`
	Type      string `json:"type"`
	Token     string `json:"token"`
	Amount    int64  `json:"amount"`
	Recipient string `json:"recipient,omitempty"`
	Memo      string `json:"memo,omitempty"`
}

type voteReq struct {
	Voter   string `json:"voter"`
	Support bool   `json:"support"`
}

type delegateReq struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

type unbondReq struct {
	Amount int64 `json:"amount"`
}

type fundReq struct {
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
}

type proposalResp struct {
	gov.Proposal
	Status gov.ProposalStatus `json:"status"`
}

type tallyResp struct {
	ProposalID        int64              `json:"proposal_id"`
	YesVotes          int64              `json:"yes_votes"`
	NoVotes           int64              `json:"no_votes"`
	TotalBalanceVoted int64              `json:"total_balance_voted"`
	RequiredQuorum    int64              `json:"required_quorum"`
	MeetsQuorum       bool               `json:"meets_quorum"`
	MeetsApproval     bool               `json:"meets_approval"`
	Status            gov.ProposalStatus `json:"status"`
}

type delegationResp struct {
	Address     string `json:"address"`
	Balance     int64  `json:"balance"`
	VotingPower int64  `json:"voting_power"`
}

type errorResp struct {
	Codespace sdk.CodespaceType `json:"codespace"`
	Code      sdk.CodeType      `json:"code"`
	Message   string            `json:"message"`
}

//-----------------------------------------------------------
// Governance handlers

func (s *Server) handleSubmitProposal(w http.ResponseWriter, r *http.Request) {
	var req submitProposalReq
	if !s.decodeBody(w, r, &req) {
		return
	}
	proposer, err := sdk.AccAddressFromHex(req.Proposer)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	kind, err := gov.ProposalTypeFromString(req.Type)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var recipient sdk.AccAddress
	if req.Recipient != "" {
		if recipient, err = sdk.AccAddressFromHex(req.Recipient); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}

	result, sdkErr := s.withCommit(nil, func(ctx sdk.Context) (interface{}, sdk.Error) {
		return s.gov.SubmitProposal(ctx, proposer, kind, req.Token, req.Amount, recipient, req.Memo)
	})
	if sdkErr != nil {
		writeSDKError(w, sdkErr)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	ctx := s.ctx()
	var proposals []proposalResp
	appendProposal := func(p gov.Proposal) bool {
		proposals = append(proposals, proposalResp{Proposal: p, Status: s.gov.ProposalStatusAt(ctx, p)})
		return false
	}
	if cycleStr := r.URL.Query().Get("cycle"); cycleStr != "" {
		cycleID, err := strconv.ParseInt(cycleStr, 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid cycle id")
			return
		}
		for _, p := range s.gov.GetProposalsInCycle(ctx, cycleID) {
			appendProposal(p)
		}
	} else {
		s.gov.IterateProposals(ctx, appendProposal)
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	ctx := s.ctx()
	proposal, ok := s.gov.GetProposal(ctx, pathID(r))
	if !ok {
		writeSDKError(w, gov.ErrUnknownProposal(gov.DefaultCodespace, pathID(r)))
		return
	}
	writeJSON(w, http.StatusOK, proposalResp{Proposal: proposal, Status: s.gov.ProposalStatusAt(ctx, proposal)})
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteReq
	if !s.decodeBody(w, r, &req) {
		return
	}
	voter, err := sdk.AccAddressFromHex(req.Voter)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	proposalID := pathID(r)
	_, sdkErr := s.withCommit(nil, func(ctx sdk.Context) (interface{}, sdk.Error) {
		return nil, s.gov.AddVote(ctx, proposalID, voter, req.Support)
	})
	if sdkErr != nil {
		writeSDKError(w, sdkErr)
		return
	}
	receipt, _ := s.gov.GetVoteReceipt(s.ctx(), proposalID, voter)
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleGetVoteReceipt(w http.ResponseWriter, r *http.Request) {
	voter, err := sdk.AccAddressFromHex(mux.Vars(r)["addr"])
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	receipt, ok := s.gov.GetVoteReceipt(s.ctx(), pathID(r), voter)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp{Message: "no vote receipt"})
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	ctx := s.ctx()
	proposal, ok := s.gov.GetProposal(ctx, pathID(r))
	if !ok {
		writeSDKError(w, gov.ErrUnknownProposal(gov.DefaultCodespace, pathID(r)))
		return
	}
	writeJSON(w, http.StatusOK, tallyResp{
		ProposalID:        proposal.ProposalID,
		YesVotes:          proposal.YesVotes,
		NoVotes:           proposal.NoVotes,
		TotalBalanceVoted: proposal.TotalBalanceVoted,
		RequiredQuorum:    s.gov.RequiredQuorumAt(ctx, proposal),
		MeetsQuorum:       s.gov.MeetsQuorumAt(ctx, proposal),
		MeetsApproval:     gov.MeetsApproval(proposal),
		Status:            s.gov.ProposalStatusAt(ctx, proposal),
	})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	proposalID := pathID(r)
	result, sdkErr := s.withCommit(isShortfall, func(ctx sdk.Context) (interface{}, sdk.Error) {
		return s.gov.Execute(ctx, proposalID)
	})
	if sdkErr != nil {
		writeSDKError(w, sdkErr)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStartNewCycle(w http.ResponseWriter, r *http.Request) {
	result, sdkErr := s.withCommit(nil, func(ctx sdk.Context) (interface{}, sdk.Error) {
		return s.gov.StartNewCycle(ctx)
	})
	if sdkErr != nil {
		writeSDKError(w, sdkErr)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleCurrentCycle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gov.GetCycleState(s.ctx()))
}

func (s *Server) handleCurrentWinner(w http.ResponseWriter, r *http.Request) {
	ctx := s.ctx()
	winner, ok := s.gov.GetWinner(ctx, s.gov.CurrentCycleID(ctx))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp{Message: "no winner"})
		return
	}
	writeJSON(w, http.StatusOK, proposalResp{Proposal: winner, Status: s.gov.ProposalStatusAt(ctx, winner)})
}

//-----------------------------------------------------------
// Stake handlers

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	var req delegateReq
	if !s.decodeBody(w, r, &req) {
		return
	}
	addr, err := sdk.AccAddressFromHex(req.Address)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	_, sdkErr := s.withCommit(nil, func(ctx sdk.Context) (interface{}, sdk.Error) {
		return nil, s.stake.Delegate(ctx, addr, req.Amount)
	})
	if sdkErr != nil {
		writeSDKError(w, sdkErr)
		return
	}
	s.writeDelegation(w, http.StatusCreated, addr)
}

func (s *Server) handleUnbond(w http.ResponseWriter, r *http.Request) {
	var req unbondReq
	if !s.decodeBody(w, r, &req) {
		return
	}
	addr, err := sdk.AccAddressFromHex(mux.Vars(r)["addr"])
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	_, sdkErr := s.withCommit(nil, func(ctx sdk.Context) (interface{}, sdk.Error) {
		return nil, s.stake.Unbond(ctx, addr, req.Amount)
	})
	if sdkErr != nil {
		writeSDKError(w, sdkErr)
		return
	}
	s.writeDelegation(w, http.StatusOK, addr)
}

func (s *Server) handleGetDelegation(w http.ResponseWriter, r *http.Request) {
	addr, err := sdk.AccAddressFromHex(mux.Vars(r)["addr"])
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	s.writeDelegation(w, http.StatusOK, addr)
}

func (s *Server) writeDelegation(w http.ResponseWriter, status int, addr sdk.AccAddress) {
	ctx := s.ctx()
	writeJSON(w, status, delegationResp{
		Address:     addr.String(),
		Balance:     s.stake.StakedBalanceOf(ctx, addr),
		VotingPower: s.stake.GetVotingPower(ctx, addr),
	})
}

func (s *Server) handleStakePool(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{"total_staked": s.stake.TotalStaked(s.ctx())})
}

//-----------------------------------------------------------
// Treasury handlers

func (s *Server) handleFundTreasury(w http.ResponseWriter, r *http.Request) {
	var req fundReq
	if !s.decodeBody(w, r, &req) {
		return
	}
	_, sdkErr := s.withCommit(nil, func(ctx sdk.Context) (interface{}, sdk.Error) {
		return nil, s.treasury.Fund(ctx, req.Token, req.Amount)
	})
	if sdkErr != nil {
		writeSDKError(w, sdkErr)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"balance": s.treasury.BalanceOf(s.ctx(), req.Token)})
}

func (s *Server) handleTreasuryBalance(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	writeJSON(w, http.StatusOK, map[string]int64{"balance": s.treasury.BalanceOf(s.ctx(), token)})
}

func (s *Server) handleBoostPool(w http.ResponseWriter, r *http.Request) {
	ctx := s.ctx()
	token := mux.Vars(r)["token"]
	pool, ok := s.treasury.GetBoostPool(ctx, token)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp{Message: "no boost pool"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pool":    pool,
		"accrued": s.treasury.AccruedRewards(ctx, token),
	})
}

//-----------------------------------------------------------
// Plumbing

func pathID(r *http.Request) int64 {
	// the route pattern guarantees digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResp{Message: msg})
}

func writeSDKError(w http.ResponseWriter, err sdk.Error) {
	writeJSON(w, statusOf(err), errorResp{
		Codespace: err.Codespace(),
		Code:      err.Code(),
		Message:   err.Error(),
	})
}

// isShortfall recognizes the retryable treasury-shortfall error. Its
// writes (the failed-attempt counter) must be committed, not rolled
// back.
func isShortfall(err sdk.Error) bool {
	return err.Codespace() == sdk.CodespaceGov && err.Code() == gov.CodeInsufficientTreasuryBalance
}

// statusOf maps typed errors onto HTTP statuses: missing entities are
// 404, state-machine conflicts 409, everything else a plain 400.
func statusOf(err sdk.Error) int {
	if err.Codespace() != sdk.CodespaceGov {
		return http.StatusBadRequest
	}
	switch err.Code() {
	case gov.CodeUnknownProposal:
		return http.StatusNotFound
	case gov.CodeAlreadyVoted, gov.CodeAlreadyProposedInCycle,
		gov.CodeProposalAlreadyExecuted, gov.CodeExecutableProposalsRemaining:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
