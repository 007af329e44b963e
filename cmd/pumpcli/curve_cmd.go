package main

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/fixedpoint"
)

func newGlobalCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Show the protocol configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			g, err := deps.sdk.Global()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), g)
		},
	}
}

func newReservesCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "reserves <mint>",
		Short: "Show a bonding curve with progress, price and market cap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parsePubkey("mint", args[0])
			if err != nil {
				return err
			}
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			r, err := deps.sdk.GetReserves(ctx, mint)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), viewReserves(r))
		},
	}
}

// quoteFlags are shared by the quote subcommands and the trade commands.
type quoteFlags struct {
	amount   string
	slippage string
	fresh    bool
}

func (q *quoteFlags) register(cmd *cobra.Command, amountHelp string) {
	cmd.Flags().StringVar(&q.amount, "amount", "", amountHelp)
	cmd.Flags().StringVar(&q.slippage, "slippage", "100", "slippage in bps, or a rate with a decimal point (0.01)")
	_ = cmd.MarkFlagRequired("amount")
}

// reserves fetches the curve of mint, or the initial curve when --new is set.
func (q *quoteFlags) reserves(cmd *cobra.Command, opts *globalOpts, deps *runtimeDeps, mint solana.PublicKey) (*curve.Reserves, error) {
	if q.fresh {
		return deps.sdk.InitialReserves(solana.PublicKey{})
	}
	ctx, cancel := commandContext(cmd, opts)
	defer cancel()
	return deps.sdk.GetReserves(ctx, mint)
}

func newQuoteCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price trades without sending anything",
	}
	cmd.AddCommand(
		newQuoteSubCmd(opts, "buy <mint>", "Tokens received for a SOL input", solAmountHelp, parseSol,
			func(deps *runtimeDeps, amount math.Int, r *curve.Reserves, bps fixedpoint.Bps) (any, error) {
				q, err := deps.sdk.QuoteToBase(amount, r, bps)
				return viewBuy(q), err
			}),
		newQuoteSubCmd(opts, "buy-exact <mint>", "SOL needed for an exact token output", tokenAmountHelp, parseTokens,
			func(deps *runtimeDeps, amount math.Int, r *curve.Reserves, bps fixedpoint.Bps) (any, error) {
				q, err := deps.sdk.BaseToQuoteIn(amount, r, bps)
				return viewBuy(q), err
			}),
		newQuoteSubCmd(opts, "sell <mint>", "SOL received for a token input", tokenAmountHelp, parseTokens,
			func(deps *runtimeDeps, amount math.Int, r *curve.Reserves, bps fixedpoint.Bps) (any, error) {
				q, err := deps.sdk.BaseToQuote(amount, r, bps)
				return viewSell(q), err
			}),
	)
	return cmd
}

type quoteFunc func(deps *runtimeDeps, amount math.Int, r *curve.Reserves, bps fixedpoint.Bps) (any, error)

func newQuoteSubCmd(opts *globalOpts, use, short, amountHelp string, parseAmount func(string) (math.Int, error), price quoteFunc) *cobra.Command {
	var qf quoteFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mint solana.PublicKey
			if !qf.fresh {
				if len(args) == 0 {
					return fmt.Errorf("mint is required unless --new is set")
				}
				var err error
				if mint, err = parsePubkey("mint", args[0]); err != nil {
					return err
				}
			}
			amount, err := parseAmount(qf.amount)
			if err != nil {
				return err
			}
			bps, err := parseSlippage(qf.slippage)
			if err != nil {
				return err
			}
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			r, err := qf.reserves(cmd, opts, deps, mint)
			if err != nil {
				return err
			}
			out, err := price(deps, amount, r, bps)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	qf.register(cmd, amountHelp)
	cmd.Flags().BoolVar(&qf.fresh, "new", false, "price against a freshly created curve")
	return cmd
}
