// Package pumpfun is the SDK entry point. A Client binds a program
// deployment, its protocol configuration and an account reader, and exposes
// pricing and instruction building on top of them.
//
// A Client is constructed in two phases: New wires collaborators, Ready
// loads the global configuration. Until Ready succeeds every pricing and
// instruction call fails with types.ErrConfigNotLoaded.
//
// Example usage:
//
//	client := pumpfun.New(rpc.NewClient(config.DefaultRPCConfig()))
//	if err := client.Ready(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	reserves, err := client.GetReserves(ctx, mint)
//	...
//	q, err := client.QuoteToBase(fixedpoint.Sol(0.1), reserves, 100)
//	ixs, err := client.Buy(mint, q.BaseAmountOut, q.QuoteInMax, user, reserves)
package pumpfun

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/config"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/fixedpoint"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/instructions"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/metadata"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/pda"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/quote"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

// AccountReader fetches raw account data. A missing account yields nil data
// and a nil error. *rpc.Client satisfies it.
type AccountReader interface {
	GetAccountInfo(ctx context.Context, address solana.PublicKey) ([]byte, error)
}

// Client is safe for concurrent use. Reserves passed to it stay owned by the
// caller.
type Client struct {
	reader   AccountReader
	cfg      config.ProgramConfig
	resolver *pda.Resolver
	encoder  instructions.Encoder
	uploader *metadata.Uploader
	log      zerolog.Logger
	static   *curve.Global

	readyMu sync.Mutex
	state   atomic.Pointer[readyState]
}

type readyState struct {
	global  curve.Global
	engine  *quote.Engine
	builder *instructions.Builder
}

// Option configures a Client.
type Option func(*Client)

// WithProgramConfig targets another deployment. Zero fields keep mainnet values.
func WithProgramConfig(cfg config.ProgramConfig) Option {
	return func(c *Client) { c.cfg = cfg }
}

// WithGlobal uses g instead of fetching the global account; the client is
// ready immediately.
func WithGlobal(g curve.Global) Option {
	return func(c *Client) { c.static = &g }
}

// WithDefaultGlobal uses the built-in mainnet snapshot of the global account.
func WithDefaultGlobal() Option {
	return WithGlobal(curve.DefaultGlobal())
}

// WithEncoder installs an instruction payload override.
func WithEncoder(enc instructions.Encoder) Option {
	return func(c *Client) { c.encoder = enc }
}

func WithUploader(u *metadata.Uploader) Option {
	return func(c *Client) { c.uploader = u }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client. reader may be nil when WithGlobal is used and
// GetReserves is never called.
func New(reader AccountReader, opts ...Option) *Client {
	c := &Client{
		reader: reader,
		cfg:    config.DefaultProgramConfig(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg = c.cfg.WithDefaults()
	c.resolver = pda.NewResolver(c.cfg)
	if c.uploader == nil {
		c.uploader = metadata.NewUploader(metadata.WithURL(c.cfg.MetadataUploadURL), metadata.WithLogger(c.log))
	}
	if c.static != nil {
		c.state.Store(c.newState(*c.static))
	}
	return c
}

func (c *Client) newState(g curve.Global) *readyState {
	s := &readyState{global: g}
	s.engine = quote.NewEngine(&s.global, quote.WithLogger(c.log))
	opts := []instructions.Option{instructions.WithLogger(c.log)}
	if c.encoder != nil {
		opts = append(opts, instructions.WithEncoder(c.encoder))
	}
	s.builder = instructions.NewBuilder(c.resolver, c.cfg, opts...)
	return s
}

// Ready loads the global configuration once. Concurrent and repeated calls
// are safe; after a failure the next call tries again.
func (c *Client) Ready(ctx context.Context) error {
	if c.state.Load() != nil {
		return nil
	}
	c.readyMu.Lock()
	defer c.readyMu.Unlock()
	if c.state.Load() != nil {
		return nil
	}

	g, err := c.fetchGlobal(ctx)
	if err != nil {
		return err
	}
	c.state.Store(c.newState(g))
	c.log.Debug().
		Uint64("feeBps", g.FeeBasisPoints).
		Uint64("creatorFeeBps", g.CreatorFeeBasisPoints).
		Msg("global config loaded")
	return nil
}

// IsReady reports whether Ready has completed.
func (c *Client) IsReady() bool {
	return c.state.Load() != nil
}

// Global returns the loaded protocol configuration.
func (c *Client) Global() (curve.Global, error) {
	s, err := c.ready()
	if err != nil {
		return curve.Global{}, err
	}
	return s.global, nil
}

func (c *Client) ready() (*readyState, error) {
	s := c.state.Load()
	if s == nil {
		return nil, types.ErrConfigNotLoaded
	}
	return s, nil
}

// ProgramConfig returns the deployment the client targets.
func (c *Client) ProgramConfig() config.ProgramConfig {
	return c.cfg
}

// Resolver returns the address resolver of the deployment.
func (c *Client) Resolver() *pda.Resolver {
	return c.resolver
}

func (c *Client) read(ctx context.Context, address solana.PublicKey, schema string) ([]byte, error) {
	if c.reader == nil {
		return nil, types.ErrNilRPC
	}
	data, err := c.reader.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, &types.AccountError{Schema: schema, Address: address, Err: err}
	}
	if len(data) == 0 {
		return nil, &types.AccountError{Schema: schema, Address: address, Err: types.ErrAccountNotFound}
	}
	return data, nil
}

func (c *Client) fetchGlobal(ctx context.Context) (curve.Global, error) {
	addr, err := c.resolver.Global()
	if err != nil {
		return curve.Global{}, err
	}
	data, err := c.read(ctx, addr, pump.AccountGlobal)
	if err != nil {
		return curve.Global{}, err
	}
	decoded, err := pump.DecodeAccount(pump.AccountGlobal, data)
	if err != nil {
		return curve.Global{}, &types.AccountError{Schema: pump.AccountGlobal, Address: addr, Err: err}
	}
	return curve.GlobalFromAccount(decoded.(*pump.Global)), nil
}

// GetReserves fetches the bonding curve of mint.
func (c *Client) GetReserves(ctx context.Context, mint solana.PublicKey) (*curve.Reserves, error) {
	addr, err := c.resolver.BondingCurve(mint)
	if err != nil {
		return nil, err
	}
	data, err := c.read(ctx, addr, pump.AccountBondingCurve)
	if err != nil {
		return nil, err
	}
	decoded, err := pump.DecodeAccount(pump.AccountBondingCurve, data)
	if err != nil {
		return nil, &types.AccountError{Schema: pump.AccountBondingCurve, Address: addr, Err: err}
	}
	return curve.ReservesFromAccount(decoded.(*pump.BondingCurve)), nil
}

// InitialReserves returns the reserves of a curve about to be launched by creator.
func (c *Client) InitialReserves(creator solana.PublicKey) (*curve.Reserves, error) {
	s, err := c.ready()
	if err != nil {
		return nil, err
	}
	return curve.InitialReserves(&s.global, creator), nil
}

// QuoteToBase prices a buy with a fixed lamport input.
func (c *Client) QuoteToBase(quoteAmountIn math.Int, reserves *curve.Reserves, slippage fixedpoint.Bps, opts ...quote.Option) (curve.BuyQuote, error) {
	s, err := c.ready()
	if err != nil {
		return curve.BuyQuote{}, fmt.Errorf("quoteToBase: %w", err)
	}
	return s.engine.QuoteToBase(quoteAmountIn, reserves, slippage, opts...)
}

// BaseToQuote prices a sell of a fixed token input.
func (c *Client) BaseToQuote(baseAmountIn math.Int, reserves *curve.Reserves, slippage fixedpoint.Bps, opts ...quote.Option) (curve.SellQuote, error) {
	s, err := c.ready()
	if err != nil {
		return curve.SellQuote{}, fmt.Errorf("baseToQuote: %w", err)
	}
	return s.engine.BaseToQuote(baseAmountIn, reserves, slippage, opts...)
}

// BaseToQuoteIn prices a buy of an exact token output.
func (c *Client) BaseToQuoteIn(baseAmountOut math.Int, reserves *curve.Reserves, slippage fixedpoint.Bps, opts ...quote.Option) (curve.BuyQuote, error) {
	s, err := c.ready()
	if err != nil {
		return curve.BuyQuote{}, fmt.Errorf("baseToQuoteIn: %w", err)
	}
	return s.engine.BaseToQuoteIn(baseAmountOut, reserves, slippage, opts...)
}

// Create builds the launch instruction for a new mint.
func (c *Client) Create(p instructions.CreateParams) ([]solana.Instruction, error) {
	s, err := c.ready()
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return s.builder.Create(p)
}

// Buy builds the instructions buying baseOut tokens for at most quoteInMax lamports.
func (c *Client) Buy(mint solana.PublicKey, baseOut, quoteInMax math.Int, user solana.PublicKey, reserves *curve.Reserves) ([]solana.Instruction, error) {
	s, err := c.ready()
	if err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	return s.builder.Buy(mint, baseOut, quoteInMax, user, reserves)
}

// Sell builds the instructions selling baseIn tokens for at least quoteOutMin lamports.
func (c *Client) Sell(mint solana.PublicKey, baseIn, quoteOutMin math.Int, user solana.PublicKey, reserves *curve.Reserves) ([]solana.Instruction, error) {
	s, err := c.ready()
	if err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}
	return s.builder.Sell(mint, baseIn, quoteOutMin, user, reserves)
}

// CollectCreatorFee builds the creator fee sweep.
func (c *Client) CollectCreatorFee(creator solana.PublicKey) ([]solana.Instruction, error) {
	s, err := c.ready()
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	return s.builder.CollectCreatorFee(creator)
}

// CreateMetadata uploads token metadata and returns its URI for Create.
// It does not require Ready.
func (c *Client) CreateMetadata(ctx context.Context, info metadata.Info) (string, error) {
	return c.uploader.Upload(ctx, info)
}
