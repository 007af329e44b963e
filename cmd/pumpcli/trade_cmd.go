package main

import (
	"fmt"
	"os"
	"time"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/instructions"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/metadata"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/quote"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/vanity"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/wallet"
)

func newBuyCmd(opts *globalOpts) *cobra.Command {
	var (
		qf       quoteFlags
		sf       submitFlags
		exactOut bool
	)

	cmd := &cobra.Command{
		Use:   "buy <mint>",
		Short: "Buy tokens on a bonding curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parsePubkey("mint", args[0])
			if err != nil {
				return err
			}
			parse := parseSol
			if exactOut {
				parse = parseTokens
			}
			amount, err := parse(qf.amount)
			if err != nil {
				return err
			}
			bps, err := parseSlippage(qf.slippage)
			if err != nil {
				return err
			}
			payer, err := opts.signer()
			if err != nil {
				return err
			}
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			reserves, err := deps.sdk.GetReserves(ctx, mint)
			if err != nil {
				return err
			}
			var q curve.BuyQuote
			if exactOut {
				q, err = deps.sdk.BaseToQuoteIn(amount, reserves, bps)
			} else {
				q, err = deps.sdk.QuoteToBase(amount, reserves, bps)
			}
			if err != nil {
				return err
			}
			if q.IsZero() {
				return fmt.Errorf("amount too small to trade")
			}
			if err := printJSON(cmd.OutOrStdout(), viewBuy(q)); err != nil {
				return err
			}

			ixs, err := deps.sdk.Buy(mint, q.BaseAmountOut, q.QuoteInMax, payer.PublicKey(), reserves)
			if err != nil {
				return err
			}
			return sf.submit(ctx, cmd, opts, deps, payer, nil, ixs)
		},
	}
	qf.register(cmd, solAmountHelp+"; tokens with --exact-out")
	sf.register(cmd)
	cmd.Flags().BoolVar(&exactOut, "exact-out", false, "treat --amount as the exact token output")
	return cmd
}

func newSellCmd(opts *globalOpts) *cobra.Command {
	var (
		qf  quoteFlags
		sf  submitFlags
		all bool
	)

	cmd := &cobra.Command{
		Use:   "sell <mint>",
		Short: "Sell tokens back to a bonding curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parsePubkey("mint", args[0])
			if err != nil {
				return err
			}
			bps, err := parseSlippage(qf.slippage)
			if err != nil {
				return err
			}
			payer, err := opts.signer()
			if err != nil {
				return err
			}
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			var amount math.Int
			if all {
				ata, err := deps.sdk.Resolver().AssociatedToken(payer.PublicKey(), mint)
				if err != nil {
					return err
				}
				bal, err := deps.rpc.GetTokenBalance(ctx, ata)
				if err != nil {
					return err
				}
				amount = math.NewIntFromUint64(bal)
			} else if amount, err = parseTokens(qf.amount); err != nil {
				return err
			}

			reserves, err := deps.sdk.GetReserves(ctx, mint)
			if err != nil {
				return err
			}
			q, err := deps.sdk.BaseToQuote(amount, reserves, bps)
			if err != nil {
				return err
			}
			if q.IsZero() {
				return fmt.Errorf("nothing to sell")
			}
			if err := printJSON(cmd.OutOrStdout(), viewSell(q)); err != nil {
				return err
			}

			ixs, err := deps.sdk.Sell(mint, q.BaseAmountIn, q.QuoteOutMin, payer.PublicKey(), reserves)
			if err != nil {
				return err
			}
			return sf.submit(ctx, cmd, opts, deps, payer, nil, ixs)
		},
	}
	cmd.Flags().StringVar(&qf.amount, "amount", "", tokenAmountHelp)
	cmd.Flags().StringVar(&qf.slippage, "slippage", "100", "slippage in bps, or a rate with a decimal point (0.01)")
	cmd.Flags().BoolVar(&all, "all", false, "sell the whole token balance")
	cmd.MarkFlagsOneRequired("amount", "all")
	cmd.MarkFlagsMutuallyExclusive("amount", "all")
	sf.register(cmd)
	return cmd
}

func newCreateCmd(opts *globalOpts) *cobra.Command {
	var (
		info         metadata.Info
		uri          string
		imagePath    string
		vanitySuffix string
		mintKeyOut   string
		devBuy       string
		slippage     string
		sf           submitFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Launch a token, optionally with a first buy",
		RunE: func(cmd *cobra.Command, args []string) error {
			payer, err := opts.signer()
			if err != nil {
				return err
			}
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()
			out := cmd.OutOrStdout()

			if uri == "" {
				if imagePath == "" {
					return fmt.Errorf("either --uri or --image is required")
				}
				if info.Image, err = os.ReadFile(imagePath); err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				if uri, err = deps.sdk.CreateMetadata(ctx, info); err != nil {
					return err
				}
				fmt.Fprintf(out, "metadata uri: %s\n", uri)
			}

			mint, err := newMintKey(cmd, deps, vanitySuffix)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "mint: %s\n", mint.PublicKey())
			if mintKeyOut != "" {
				if err := os.WriteFile(mintKeyOut, []byte(mint.PrivateKey().String()), 0o600); err != nil {
					return fmt.Errorf("write mint key: %w", err)
				}
			}

			ixs, err := deps.sdk.Create(instructions.CreateParams{
				Mint:   mint.PublicKey(),
				User:   payer.PublicKey(),
				Name:   info.Name,
				Symbol: info.Symbol,
				URI:    uri,
			})
			if err != nil {
				return err
			}

			if devBuy != "" {
				buy, err := firstBuy(deps, mint.PublicKey(), payer.PublicKey(), devBuy, slippage)
				if err != nil {
					return err
				}
				ixs = append(ixs, buy...)
			}
			return sf.submit(ctx, cmd, opts, deps, payer, []wallet.Signer{mint}, ixs)
		},
	}
	f := cmd.Flags()
	f.StringVar(&info.Name, "name", "", "token name")
	f.StringVar(&info.Symbol, "symbol", "", "token symbol")
	f.StringVar(&info.Description, "description", "", "token description")
	f.StringVar(&info.Twitter, "twitter", "", "twitter link")
	f.StringVar(&info.Telegram, "telegram", "", "telegram link")
	f.StringVar(&info.Website, "website", "", "website link")
	f.BoolVar(&info.HideName, "hide-name", false, "hide the name on the metadata page")
	f.StringVar(&uri, "uri", "", "existing metadata uri (skips upload)")
	f.StringVar(&imagePath, "image", "", "PNG image to upload with the metadata")
	f.StringVar(&vanitySuffix, "vanity-suffix", "", "search for a mint address ending in this suffix (e.g. pump)")
	f.StringVar(&mintKeyOut, "mint-key-out", "", "write the mint private key (base58) to this file")
	f.StringVar(&devBuy, "buy", "", "first buy in the same transaction; "+solAmountHelp)
	f.StringVar(&slippage, "slippage", "100", "slippage for --buy")
	sf.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func newMintKey(cmd *cobra.Command, deps *runtimeDeps, suffix string) (wallet.Local, error) {
	if suffix == "" {
		return wallet.NewRandom()
	}
	deps.log.Info().
		Str("suffix", suffix).
		Uint64("expectedAttempts", vanity.EstimateDifficulty(len(suffix))).
		Msg("searching vanity mint")
	res, err := vanity.Generate(cmd.Context(), vanity.Options{
		Suffix:  suffix,
		Timeout: 10 * time.Minute,
		Logger:  deps.log,
	})
	if err != nil {
		return wallet.Local{}, err
	}
	deps.log.Info().Uint64("attempts", res.Attempts).Dur("took", res.Duration).Msg("vanity mint found")
	return wallet.NewLocalFromPrivateKey(res.PrivateKey), nil
}

// firstBuy prices a buy against the curve the create instruction is about to open.
func firstBuy(deps *runtimeDeps, mint, payer solana.PublicKey, amount, slippage string) ([]solana.Instruction, error) {
	lamports, err := parseSol(amount)
	if err != nil {
		return nil, err
	}
	bps, err := parseSlippage(slippage)
	if err != nil {
		return nil, err
	}
	reserves, err := deps.sdk.InitialReserves(payer)
	if err != nil {
		return nil, err
	}
	q, err := deps.sdk.QuoteToBase(lamports, reserves, bps, quote.WithApply())
	if err != nil {
		return nil, err
	}
	return deps.sdk.Buy(mint, q.BaseAmountOut, q.QuoteInMax, payer, reserves)
}

func newCollectCmd(opts *globalOpts) *cobra.Command {
	var sf submitFlags
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect accrued creator fees to the fee payer",
		RunE: func(cmd *cobra.Command, args []string) error {
			payer, err := opts.signer()
			if err != nil {
				return err
			}
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			vault, err := deps.sdk.Resolver().CreatorVault(payer.PublicKey())
			if err != nil {
				return err
			}
			bal, err := deps.rpc.GetBalance(ctx, vault)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "creator vault %s holds %d lamports\n", vault, bal)

			ixs, err := deps.sdk.CollectCreatorFee(payer.PublicKey())
			if err != nil {
				return err
			}
			return sf.submit(ctx, cmd, opts, deps, payer, nil, ixs)
		},
	}
	sf.register(cmd)
	return cmd
}
