package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/math"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/events"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/fixedpoint"
)

func newWatchCmd(opts *globalOpts) *cobra.Command {
	var (
		resyncEvery  time.Duration
		maxReconnect time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <mint>",
		Short: "Stream trades of a mint and keep its reserves in sync",
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
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fetch := func() (*curve.Reserves, error) {
				fctx, cancel := commandContext(cmd, opts)
				defer cancel()
				return deps.sdk.GetReserves(fctx, mint)
			}
			reserves, err := fetch()
			if err != nil {
				return err
			}
			tracker, err := events.NewTracker(mint, reserves, deps.log)
			if err != nil {
				return err
			}

			if resyncEvery > 0 {
				go func() {
					ticker := time.NewTicker(resyncEvery)
					defer ticker.Stop()
					for {
						select {
						case <-ctx.Done():
							return
						case <-ticker.C:
						}
						r, err := fetch()
						if err != nil {
							deps.log.Warn().Err(err).Msg("resync failed")
							continue
						}
						_ = tracker.Resync(r)
					}
				}()
			}

			watcher := events.NewWatcher(deps.rpcCfg.ResolveWSURL(), deps.sdk.ProgramConfig().ProgramID,
				events.WithMint(mint),
				events.WithCommitment(solanarpc.CommitmentType(deps.rpcCfg.Commitment)),
				events.WithMaxReconnectTime(maxReconnect),
				events.WithWatcherLogger(deps.log),
			)
			out := cmd.OutOrStdout()
			err = watcher.Run(ctx, func(ctx context.Context, ev events.Event) error {
				if err := tracker.Handle(ctx, ev); err != nil {
					return err
				}
				side := "sell"
				if ev.Trade.IsBuy {
					side = "buy"
				}
				snap := tracker.Snapshot()
				fmt.Fprintf(out, "%s slot=%d %s sol=%s tokens=%s progress=%.4f mcap=%s sig=%s\n",
					time.Unix(ev.Trade.Timestamp, 0).UTC().Format(time.RFC3339),
					ev.Slot, side,
					fixedpoint.FormatSol(math.NewIntFromUint64(ev.Trade.SolAmount)),
					fixedpoint.FormatTokens(math.NewIntFromUint64(ev.Trade.TokenAmount)),
					curve.Progress(snap),
					fixedpoint.FormatSol(curve.MarketCap(snap)),
					ev.Signature,
				)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&resyncEvery, "resync", time.Minute, "refetch the curve account at this interval (0 disables)")
	cmd.Flags().DurationVar(&maxReconnect, "max-reconnect", 0, "give up reconnecting after this long (0 = never)")
	return cmd
}
