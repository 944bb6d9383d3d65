package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/quantidexyz/levr-gov/config"
	"github.com/quantidexyz/levr-gov/server"
)

const (
	flagHome   = "home"
	flagListen = "listen"
)

var configTemplate = `# levrgovd configuration

listen_addr = "%s"
db_backend = "%s"
stake_normalizer = %d
boost_period = "%s"
max_execution_attempts = %d

[gov]
quorum_bps = %d
approval_bps = %d
minimum_quorum_bps = %d
proposal_window = "%s"
voting_window = "%s"
max_active_proposals = %d
min_stake_bps_to_propose = %d
max_proposal_amount_bps = %d

# Per-token overrides, e.g.
# [tokens.LEVR]
# quorum_bps = 7000
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "levrgovd",
		Short: "Treasury governance daemon",
	}
	defaultHome, err := homedir.Expand("~/.levrgovd")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.PersistentFlags().String(flagHome, defaultHome, "directory for config and data")

	rootCmd.AddCommand(initCmd(), startCmd(), exportCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			configDir := filepath.Join(home, "config")
			if err := os.MkdirAll(configDir, 0755); err != nil {
				return err
			}
			configFile := filepath.Join(configDir, "config.toml")
			if _, err := os.Stat(configFile); err == nil {
				return fmt.Errorf("%s already exists", configFile)
			}

			cfg := config.DefaultConfig()
			rendered := fmt.Sprintf(configTemplate,
				cfg.ListenAddr, cfg.DBBackend, cfg.StakeNormalizer, cfg.BoostPeriod, cfg.MaxExecutionAttempts,
				cfg.Gov.QuorumBps, cfg.Gov.ApprovalBps, cfg.Gov.MinimumQuorumBps,
				cfg.Gov.ProposalWindow, cfg.Gov.VotingWindow,
				cfg.Gov.MaxActiveProposals, cfg.Gov.MinStakeBpsToPropose, cfg.Gov.MaxProposalAmountBps)
			if err := ioutil.WriteFile(configFile, []byte(rendered), 0644); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", configFile)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the governance state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			cfg, err := config.Load(home)
			if err != nil {
				return err
			}
			db := dbm.NewDB("levrgov", dbm.DBBackendType(cfg.DBBackend), filepath.Join(home, "data"))
			defer db.Close()

			srv, err := server.New(log.NewNopLogger(), db, cfg)
			if err != nil {
				return err
			}
			state, err := srv.ExportGenesis()
			if err != nil {
				return err
			}
			cmd.Println(string(state))
			return nil
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the governance server",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			cfg, err := config.Load(home)
			if err != nil {
				return err
			}
			if listen, err := cmd.Flags().GetString(flagListen); err == nil && listen != "" {
				cfg.ListenAddr = listen
			}

			dataDir := filepath.Join(home, "data")
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return err
			}
			db := dbm.NewDB("levrgov", dbm.DBBackendType(cfg.DBBackend), dataDir)
			defer db.Close()

			logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
			srv, err := server.New(logger, db, cfg)
			if err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				logger.Info("shutting down", "signal", sig.String())
				return srv.Stop()
			}
		},
	}
	cmd.Flags().String(flagListen, "", "listen address override")
	return cmd
}
