package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/common"
	contract "github.com/nspcc-dev/revenue-attestation/contracts/attestation"
	"github.com/nspcc-dev/revenue-attestation/deploy"
	"github.com/nspcc-dev/revenue-attestation/rpc/attestation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDeployCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the contract to the configured storage and apply the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			err = deploy.Deploy(cmd.Context(), deploy.Prm{
				Logger: e.log,
				Chain:  e.chain,
				Hash:   e.hash,
				Config: e.cfg,
			})
			if err != nil {
				return err
			}

			cmd.Printf("Contract %s is deployed\n", e.hash.StringLE())

			return nil
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "verify <business> <period> <commitment>",
		Short:   "Check that the stored attestation matches the commitment",
		Long:    "Check that the stored attestation matches the commitment. Business is a NEO address, commitment is a base58-encoded SHA-256 hash.",
		Example: "revenue-attestation verify -c config.yml NfgHwwTi3wHAS8aFAN243C5vGbkYDpqLHP 2024-Q1 8dUk8jbqyfN4KLmMKJa5HzX7fLdG2Hs1Mi4PnhwReqzf",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			business, err := address.StringToUint160(args[0])
			if err != nil {
				return fmt.Errorf("invalid business address: %w", err)
			}

			commitment, err := common.DecodeID(args[2])
			if err != nil {
				return fmt.Errorf("invalid commitment: %w", err)
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			err = e.chain.Register(e.hash, contract.New(e.hash, contract.Prm{}))
			if err != nil {
				return err
			}

			reader := attestation.NewReader(e.chain, e.hash)

			ok, err := reader.Verify(business, args[1], commitment)
			if err != nil {
				return err
			}

			if !ok {
				return fmt.Errorf("attestation of %s for period '%s' does not match", args[0], args[1])
			}

			cmd.Println("OK")

			return nil
		},
	}
}

// newDumpCmd prints all storage items of the contract one per line: key in
// hex and value as a JSON stack item.
func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print contract storage items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			var n int

			e.chain.Iterate(nil, func(key, value []byte) bool {
				n++

				item, err := stackitem.Deserialize(value)
				if err != nil {
					e.log.Warn("undecodable storage item", zap.String("key", hex.EncodeToString(key)), zap.Error(err))
					cmd.Printf("%s %s\n", hex.EncodeToString(key), hex.EncodeToString(value))
					return true
				}

				js, err := stackitem.ToJSONWithTypes(item)
				if err != nil {
					js = []byte(hex.EncodeToString(value))
				}

				cmd.Printf("%s %s\n", hex.EncodeToString(key), js)

				return true
			})

			e.log.Info("storage dumped", zap.Int("items", n))

			return nil
		},
	}
}

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Print contract manifest in JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := json.MarshalIndent(contract.Manifest(), "", "  ")
			if err != nil {
				return fmt.Errorf("encode manifest: %w", err)
			}

			cmd.Println(string(data))

			return nil
		},
	}
}
