package main

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/txbuilder"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/wallet"
)

// submitFlags select between simulating and sending.
type submitFlags struct {
	simulate bool
}

func (s *submitFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&s.simulate, "simulate", false, "simulate instead of sending")
}

// submit signs ixs with payer and extra, then simulates or sends and confirms.
func (s *submitFlags) submit(ctx context.Context, cmd *cobra.Command, opts *globalOpts, deps *runtimeDeps, payer wallet.Signer, extra []wallet.Signer, ixs []solana.Instruction) error {
	tx, err := deps.builder.Build(ctx, payer, extra, ixs...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if s.simulate {
		logs, err := deps.builder.Simulate(ctx, tx)
		printLogs(cmd, logs)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "simulation ok")
		return nil
	}

	level, err := txbuilder.ParseConfirmationLevel(opts.confirm)
	if err != nil {
		return err
	}
	sig, err := deps.builder.SendAndConfirm(ctx, tx, level)
	if err != nil {
		if !sig.IsZero() {
			fmt.Fprintf(out, "tx signature: %s\n", sig)
		}
		return err
	}
	fmt.Fprintf(out, "tx signature: %s (%s)\n", sig, level)
	return nil
}

func printLogs(cmd *cobra.Command, logs []string) {
	if len(logs) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "logs:")
	for _, l := range logs {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", l)
	}
}
