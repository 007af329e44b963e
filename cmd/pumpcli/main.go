package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/config"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/jito"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/pumpfun"
	sdkrpc "github.com/ninja0404/pumpfun-curve-sdk/pkg/rpc"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/txbuilder"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/wallet"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOpts struct {
	envFile        string
	rpcURL         string
	wsURL          string
	commitment     string
	programID      string
	feePayer       string
	skipPreflight  bool
	retryAttempts  int
	retryBackoffMs int
	rateLimitRPS   float64
	logLevel       string
	timeoutSec     int
	offline        bool
	cuLimit        uint32
	cuPrice        uint64
	jito           bool
	jitoTip        uint64
	confirm        string
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:           "pumpcli",
		Short:         "pump.fun bonding curve client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with PUMP_* settings")
	f.StringVar(&opts.rpcURL, "rpc-url", "", "RPC endpoint (default mainnet if empty)")
	f.StringVar(&opts.wsURL, "ws-url", "", "websocket endpoint (derived from rpc-url if empty)")
	f.StringVar(&opts.commitment, "commitment", "", "RPC commitment level")
	f.StringVar(&opts.programID, "program-id", "", "override the pump program id")
	f.StringVar(&opts.feePayer, "fee-payer", "", "solana-keygen json path or base58 private key")
	f.BoolVar(&opts.skipPreflight, "skip-preflight", false, "skip preflight checks")
	f.IntVar(&opts.retryAttempts, "retry-attempts", 3, "RPC retry attempts")
	f.IntVar(&opts.retryBackoffMs, "retry-backoff-ms", 150, "initial backoff in ms")
	f.Float64Var(&opts.rateLimitRPS, "rate-limit-rps", 8, "rate limit RPS (0 to disable)")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	f.IntVar(&opts.timeoutSec, "timeout-sec", 20, "RPC timeout seconds")
	f.BoolVar(&opts.offline, "offline", false, "use the built-in global snapshot instead of fetching it")
	f.Uint32Var(&opts.cuLimit, "cu-limit", 0, "compute unit limit (0 = runtime default)")
	f.Uint64Var(&opts.cuPrice, "cu-price", 0, "compute unit price in micro-lamports")
	f.BoolVar(&opts.jito, "jito", false, "send through the Jito block engine")
	f.Uint64Var(&opts.jitoTip, "jito-tip", 100_000, "Jito tip in lamports")
	f.StringVar(&opts.confirm, "confirm", "confirmed", "wait for processed|confirmed|finalized")

	root.AddCommand(
		newConfigCmd(opts),
		newGlobalCmd(opts),
		newReservesCmd(opts),
		newQuoteCmd(opts),
		newBuyCmd(opts),
		newSellCmd(opts),
		newCreateCmd(opts),
		newCollectCmd(opts),
		newAccountCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

func newConfigCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			rpcCfg, progCfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "network=%s\nrpc=%s\nws=%s\ncommitment=%s\n",
				rpcCfg.Network, rpcCfg.ResolveRPCURL(), rpcCfg.ResolveWSURL(), rpcCfg.Commitment)
			fmt.Fprintf(out, "program=%s\nfeeRecipient=%s\nmetadataUpload=%s\n",
				progCfg.ProgramID, progCfg.FeeReceipt, progCfg.MetadataUploadURL)
			return nil
		},
	}
}

// load merges defaults, the env file, PUMP_* variables and flags, in that order.
func (o *globalOpts) load(cmd *cobra.Command) (config.RPCConfig, config.ProgramConfig, error) {
	if err := config.LoadEnv(o.envFile); err != nil {
		return config.RPCConfig{}, config.ProgramConfig{}, err
	}
	rpcCfg, progCfg, err := config.FromEnv()
	if err != nil {
		return rpcCfg, progCfg, err
	}
	if o.rpcURL != "" {
		rpcCfg.RPCURL = o.rpcURL
	}
	if o.wsURL != "" {
		rpcCfg.WSURL = o.wsURL
	}
	if o.commitment != "" {
		rpcCfg.Commitment = o.commitment
	}
	if o.programID != "" {
		pk, err := parsePubkey("program-id", o.programID)
		if err != nil {
			return rpcCfg, progCfg, err
		}
		progCfg.ProgramID = pk
	}
	if cmd.Flags().Changed("rate-limit-rps") {
		rpcCfg.RateLimit.RPS = o.rateLimitRPS
	}
	rpcCfg.Retry.Enabled = o.retryAttempts > 1
	rpcCfg.Retry.MaxAttempts = o.retryAttempts
	if o.retryBackoffMs > 0 {
		rpcCfg.Retry.InitialBackoff = time.Duration(o.retryBackoffMs) * time.Millisecond
	}
	if o.timeoutSec > 0 {
		rpcCfg.Timeout = time.Duration(o.timeoutSec) * time.Second
	}
	rpcCfg.Logger = o.logger(cmd)
	return rpcCfg, progCfg, nil
}

func (o *globalOpts) logger(cmd *cobra.Command) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(parseLogLevel(o.logLevel)).
		With().Timestamp().Logger()
}

type runtimeDeps struct {
	rpcCfg  config.RPCConfig
	rpc     *sdkrpc.Client
	sdk     *pumpfun.Client
	builder *txbuilder.Builder
	log     zerolog.Logger
}

// newRuntime wires the SDK client and loads the global config unless offline.
func newRuntime(cmd *cobra.Command, opts *globalOpts) (*runtimeDeps, error) {
	rpcCfg, progCfg, err := opts.load(cmd)
	if err != nil {
		return nil, err
	}
	client := sdkrpc.NewClient(rpcCfg)

	sdkOpts := []pumpfun.Option{
		pumpfun.WithProgramConfig(progCfg),
		pumpfun.WithLogger(rpcCfg.Logger),
	}
	if opts.offline {
		sdkOpts = append(sdkOpts, pumpfun.WithDefaultGlobal())
	}
	sdk := pumpfun.New(client, sdkOpts...)
	if err := sdk.Ready(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load global config: %w", err)
	}

	txOpts := []txbuilder.Option{
		txbuilder.WithSkipPreflight(opts.skipPreflight),
		txbuilder.WithComputeBudget(txbuilder.ComputeBudget{UnitLimit: opts.cuLimit, UnitPrice: opts.cuPrice}),
		txbuilder.WithLogger(rpcCfg.Logger),
	}
	if opts.jito {
		jc := jito.NewClient(jito.MainnetBlockEngines, jito.WithLogger(rpcCfg.Logger))
		txOpts = append(txOpts, txbuilder.WithJito(jc, opts.jitoTip))
	}

	return &runtimeDeps{
		rpcCfg:  rpcCfg,
		rpc:     client,
		sdk:     sdk,
		builder: txbuilder.NewBuilder(client, txOpts...),
		log:     rpcCfg.Logger,
	}, nil
}

func (o *globalOpts) signer() (wallet.Signer, error) {
	if o.feePayer == "" {
		return nil, fmt.Errorf("fee payer is required (use --fee-payer)")
	}
	return wallet.Load(o.feePayer)
}

func parseLogLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
