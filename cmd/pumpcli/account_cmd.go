package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
	sdkrpc "github.com/ninja0404/pumpfun-curve-sdk/pkg/rpc"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

func newAccountCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "account <pubkey>",
		Short: "Decode a pump account by its discriminator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := parsePubkey("account", args[0])
			if err != nil {
				return err
			}
			rpcCfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			data, err := sdkrpc.NewClient(rpcCfg).GetAccountData(ctx, pub, "")
			if err != nil {
				return err
			}
			schema, ok := pump.IdentifyAccount(data)
			if !ok {
				return &types.AccountError{Address: pub, Err: fmt.Errorf("unknown discriminator %x", data[:min(8, len(data))])}
			}
			decoded, err := pump.DecodeAccount(schema, data)
			if err != nil {
				return &types.AccountError{Schema: schema, Address: pub, Err: err}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "account=%s schema=%s\n", pub, schema)
			if bc, ok := decoded.(*pump.BondingCurve); ok {
				return printJSON(cmd.OutOrStdout(), viewReserves(curve.ReservesFromAccount(bc)))
			}
			return printJSON(cmd.OutOrStdout(), decoded)
		},
	}
}
