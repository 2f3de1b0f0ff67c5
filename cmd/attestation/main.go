package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/config"
	contract "github.com/nspcc-dev/revenue-attestation/contracts/attestation"
	"github.com/nspcc-dev/revenue-attestation/deploy"
	"github.com/nspcc-dev/revenue-attestation/host"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	flagConfig   = "config"
	flagContract = "contract"
	flagDebug    = "debug"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "revenue-attestation",
		Short:         "Revenue attestation contract tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP(flagConfig, "c", "", "Path to the YAML configuration file")
	cmd.PersistentFlags().String(flagContract, "", "Contract script hash in LE hex (defaults to the hash of the contract name)")
	cmd.PersistentFlags().Bool(flagDebug, false, "Enable debug logs")

	cmd.AddCommand(
		newDeployCmd(),
		newVerifyCmd(),
		newDumpCmd(),
		newManifestCmd(),
	)

	return cmd
}

// defaultContractHash is used when no script hash is given.
func defaultContractHash() util.Uint160 {
	return hash.Hash160([]byte(contract.ContractName))
}

func contractHash(cmd *cobra.Command) (util.Uint160, error) {
	s, _ := cmd.Flags().GetString(flagContract)
	if s == "" {
		return defaultContractHash(), nil
	}

	h, err := util.Uint160DecodeStringLE(s)
	if err != nil {
		return h, fmt.Errorf("invalid contract hash '%s': %w", s, err)
	}

	return h, nil
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	debug, _ := cmd.Flags().GetBool(flagDebug)
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(flagConfig)
	if path == "" {
		return nil, fmt.Errorf("missing --%s flag", flagConfig)
	}

	return config.Load(path)
}

// env is a set of the objects shared by all commands working with the chain.
type env struct {
	log   *zap.Logger
	cfg   *config.Config
	hash  util.Uint160
	chain *host.Chain
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	h, err := contractHash(cmd)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	chain, err := deploy.OpenChain(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	err = chain.SetTime(uint64(time.Now().Unix()))
	if err != nil {
		_ = chain.Close()
		return nil, err
	}

	return &env{log: log, cfg: cfg, hash: h, chain: chain}, nil
}

func (e *env) close() {
	if err := e.chain.Close(); err != nil {
		e.log.Warn("failed to close storage", zap.Error(err))
	}
	_ = e.log.Sync()
}
