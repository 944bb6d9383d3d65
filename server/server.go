package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/quantidexyz/levr-gov/codec"
	"github.com/quantidexyz/levr-gov/config"
	"github.com/quantidexyz/levr-gov/pubsub"
	"github.com/quantidexyz/levr-gov/store"
	sdk "github.com/quantidexyz/levr-gov/types"
	"github.com/quantidexyz/levr-gov/x/gov"
	"github.com/quantidexyz/levr-gov/x/stake"
	"github.com/quantidexyz/levr-gov/x/treasury"
)

// Server exposes the governance engine over REST. It owns the
// multistore: every mutating request runs under the server mutex,
// commits on success and rolls the working tree back on error, so a
// failed request leaves no partial state on disk either.
type Server struct {
	logger log.Logger
	cfg    *config.Config
	cdc    *codec.Codec

	ms       *store.CommitMultiStore
	gov      gov.Keeper
	stake    stake.Keeper
	treasury treasury.Keeper

	publisher *pubsub.Publisher
	registry  *prometheus.Registry
	router    *mux.Router
	srv       *http.Server

	// serializes mutating requests around commit/rollback
	mtx sync.Mutex

	// clock, swappable in tests
	now func() time.Time
}

func New(logger log.Logger, db dbm.DB, cfg *config.Config) (*Server, error) {
	govKey := sdk.NewKVStoreKey(gov.StoreName)
	stakeKey := sdk.NewKVStoreKey(stake.StoreName)
	treasuryKey := sdk.NewKVStoreKey(treasury.StoreName)

	ms := store.NewCommitMultiStore(db)
	ms.MountStore(govKey)
	ms.MountStore(stakeKey)
	ms.MountStore(treasuryKey)
	if err := ms.LoadLatestVersion(); err != nil {
		return nil, err
	}

	cdc := codec.New()
	registry := prometheus.NewRegistry()
	publisher := pubsub.NewPublisher("gov", logger)

	stakeKeeper := stake.NewKeeper(cdc, stakeKey, stake.DefaultCodespace).
		WithNormalizer(cfg.StakeNormalizer)
	treasuryKeeper := treasury.NewKeeper(cdc, treasuryKey, treasury.DefaultCodespace).
		WithBoostPeriod(cfg.BoostPeriod)

	metrics := gov.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return nil, err
	}
	govKeeper := gov.NewKeeper(cdc, govKey, stakeKeeper, treasuryKeeper, cfg, gov.DefaultCodespace).
		WithMaxExecutionAttempts(cfg.MaxExecutionAttempts).
		WithMetrics(metrics).
		WithPublisher(publisher)

	s := &Server{
		logger:    logger.With("module", "server"),
		cfg:       cfg,
		cdc:       cdc,
		ms:        ms,
		gov:       govKeeper,
		stake:     stakeKeeper,
		treasury:  treasuryKeeper,
		publisher: publisher,
		registry:  registry,
		now:       time.Now,
	}
	s.router = s.buildRouter()
	s.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s, nil
}

// ctx returns a request context over the working tree at the current
// wall clock.
func (s *Server) ctx() sdk.Context {
	return sdk.NewContext(s.ms, s.now().UTC(), s.logger)
}

// Start serves until Stop or a listener error.
func (s *Server) Start() error {
	if err := s.publisher.Start(); err != nil {
		return err
	}
	s.logger.Info("listening", "addr", s.cfg.ListenAddr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the listener down and stops the event publisher.
func (s *Server) Stop() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.publisher.Stop()
}

// ExportGenesis dumps the governance state as pretty JSON.
func (s *Server) ExportGenesis() ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return codec.MarshalJSONIndent(s.cdc, gov.ExportGenesis(s.ctx(), s.gov))
}

// Publisher exposes the event bus so callers can subscribe to
// governance events.
func (s *Server) Publisher() *pubsub.Publisher {
	return s.publisher
}

// withCommit runs a mutating operation under the server mutex and
// commits the multistore, rolling back on error. persistOnErr marks
// error codes whose writes must survive anyway: a treasury shortfall
// during execution stores the failed-attempt counter the cycle-advance
// escape hatch reads.
func (s *Server) withCommit(persistOnErr func(sdk.Error) bool, op func(ctx sdk.Context) (interface{}, sdk.Error)) (interface{}, sdk.Error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	result, err := op(s.ctx())
	if err != nil && (persistOnErr == nil || !persistOnErr(err)) {
		s.rollback()
		return nil, err
	}
	if commitErr := s.ms.Commit(); commitErr != nil {
		s.rollback()
		return nil, sdk.ErrInternal(commitErr.Error())
	}
	// events go out only once the writes they describe are durable
	s.gov.FlushEvents()
	return result, err
}

func (s *Server) rollback() {
	s.ms.Rollback()
	s.gov.PurgeCache()
	s.gov.DiscardEvents()
}
