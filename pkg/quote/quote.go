// Package quote prices swaps against a bonding curve.
//
// All amounts are base units held in arbitrary-precision integers. Quotes are
// pure: reserves are only mutated when WithApply is passed.
//
// Example usage:
//
//	engine := quote.NewEngine(&global)
//	reserves := curve.InitialReserves(&global, creator)
//	q, err := engine.QuoteToBase(fixedpoint.Sol(0.001), reserves, 100, quote.WithApply())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("tokens out: %s, max cost: %s\n", q.BaseAmountOut, q.QuoteInMax)
package quote

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/fixedpoint"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

var bpsDenominator = math.NewInt(fixedpoint.BpsDenominator)

// Engine computes quotes using one protocol fee schedule.
type Engine struct {
	global *curve.Global
	log    zerolog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger attaches a logger for debug traces of computed quotes.
func WithLogger(l zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine builds an engine over global. A nil global is allowed; every
// quote then fails with types.ErrConfigNotLoaded.
func NewEngine(global *curve.Global, opts ...EngineOption) *Engine {
	e := &Engine{global: global, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Global returns the fee schedule in use, or nil.
func (e *Engine) Global() *curve.Global {
	return e.global
}

type options struct {
	apply bool
}

// Option tunes a single quote call.
type Option func(*options)

// WithApply synchronizes the computed quote into the reserves before
// returning. Zero quotes are never applied.
func WithApply() Option {
	return func(o *options) { o.apply = true }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (e *Engine) precheck(op string, reserves *curve.Reserves) error {
	if e == nil || e.global == nil {
		return fmt.Errorf("%s: %w", op, types.ErrConfigNotLoaded)
	}
	if reserves == nil {
		return fmt.Errorf("%s: %w", op, types.ErrNilReserves)
	}
	if reserves.Complete {
		return &types.CurveError{
			Op:                   op,
			VirtualTokenReserves: reserves.VirtualTokenReserves,
			VirtualSolReserves:   reserves.VirtualSolReserves,
			RealTokenReserves:    reserves.RealTokenReserves,
			Err:                  types.ErrCurveComplete,
		}
	}
	if err := reserves.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// bound applies signed slippage to v. Bounds never go below zero, so a
// tolerance beyond 100% only removes the floor.
func bound(v math.Int, slippage fixedpoint.Bps) math.Int {
	b := fixedpoint.ApplySlippage(v, slippage)
	if b.IsNegative() {
		return math.ZeroInt()
	}
	return b
}

func requireAmount(op, field string, v math.Int) error {
	if v.IsNil() {
		return fmt.Errorf("%s: %w", op, types.NewValidationError(field, "is required"))
	}
	return nil
}

// fee is amount * (protocol + creator bps) / 10000.
func (e *Engine) fee(amount math.Int) math.Int {
	return amount.Mul(e.global.TotalFeeBps()).Quo(bpsDenominator)
}

// netFactor is the share of curve output a seller keeps, scaled by 1e9.
func (e *Engine) netFactor() math.Int {
	return bpsDenominator.Sub(e.global.TotalFeeBps()).Mul(fixedpoint.Precision).Quo(bpsDenominator)
}

// QuoteToBase prices buying base with quoteAmountIn lamports. The output is
// capped at the real token reserves.
func (e *Engine) QuoteToBase(quoteAmountIn math.Int, reserves *curve.Reserves, slippage fixedpoint.Bps, opts ...Option) (curve.BuyQuote, error) {
	const op = "quoteToBase"
	if err := e.precheck(op, reserves); err != nil {
		return curve.BuyQuote{}, err
	}
	if err := requireAmount(op, "quoteAmountIn", quoteAmountIn); err != nil {
		return curve.BuyQuote{}, err
	}
	if !quoteAmountIn.IsPositive() {
		return curve.ZeroBuyQuote(), nil
	}

	vSol, vTok := reserves.VirtualSolReserves, reserves.VirtualTokenReserves
	k := vSol.Mul(vTok)
	newSol := vSol.Add(quoteAmountIn)
	newTok := k.Quo(newSol).AddRaw(1)
	baseOut := math.MinInt(vTok.Sub(newTok), reserves.RealTokenReserves)

	userIn := quoteAmountIn.Add(e.fee(quoteAmountIn))
	q := curve.BuyQuote{
		BaseAmountOut:     baseOut,
		QuoteAmountIn:     quoteAmountIn,
		UserQuoteAmountIn: userIn,
		QuoteInMax:        bound(userIn, slippage),
	}
	return q, e.finishBuy(op, q, reserves, opts)
}

// BaseToQuote prices selling baseAmountIn base units. Fees are taken from the
// curve output through a 1e9-scaled net factor.
func (e *Engine) BaseToQuote(baseAmountIn math.Int, reserves *curve.Reserves, slippage fixedpoint.Bps, opts ...Option) (curve.SellQuote, error) {
	const op = "baseToQuote"
	if err := e.precheck(op, reserves); err != nil {
		return curve.SellQuote{}, err
	}
	if err := requireAmount(op, "baseAmountIn", baseAmountIn); err != nil {
		return curve.SellQuote{}, err
	}
	if !baseAmountIn.IsPositive() {
		return curve.ZeroSellQuote(), nil
	}

	vSol, vTok := reserves.VirtualSolReserves, reserves.VirtualTokenReserves
	quoteOut := baseAmountIn.Mul(vSol).Quo(vTok.Add(baseAmountIn))
	userOut := quoteOut.Mul(e.netFactor()).Quo(fixedpoint.Precision)

	q := curve.SellQuote{
		BaseAmountIn:       baseAmountIn,
		QuoteAmountOut:     quoteOut,
		UserQuoteAmountOut: userOut,
		QuoteOutMin:        bound(userOut, -slippage),
	}

	e.log.Debug().
		Str("op", op).
		Str("baseIn", baseAmountIn.String()).
		Str("quoteOut", quoteOut.String()).
		Str("quoteOutMin", q.QuoteOutMin.String()).
		Msg("quote")

	if collect(opts).apply {
		if err := reserves.Apply(q.Sync()); err != nil {
			return curve.SellQuote{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return q, nil
}

// BaseToQuoteIn prices buying exactly baseAmountOut base units.
func (e *Engine) BaseToQuoteIn(baseAmountOut math.Int, reserves *curve.Reserves, slippage fixedpoint.Bps, opts ...Option) (curve.BuyQuote, error) {
	const op = "baseToQuoteIn"
	if err := e.precheck(op, reserves); err != nil {
		return curve.BuyQuote{}, err
	}
	if err := requireAmount(op, "baseAmountOut", baseAmountOut); err != nil {
		return curve.BuyQuote{}, err
	}
	if !baseAmountOut.IsPositive() {
		return curve.ZeroBuyQuote(), nil
	}

	vSol, vTok := reserves.VirtualSolReserves, reserves.VirtualTokenReserves
	if baseAmountOut.GTE(vTok) {
		return curve.BuyQuote{}, &types.CurveError{
			Op:                   op,
			Amount:               baseAmountOut,
			VirtualTokenReserves: vTok,
			VirtualSolReserves:   vSol,
			RealTokenReserves:    reserves.RealTokenReserves,
			Err:                  types.ErrInsufficientLiquidity,
		}
	}

	quoteIn := vSol.Mul(baseAmountOut).Quo(vTok.Sub(baseAmountOut))
	userIn := quoteIn.Add(e.fee(quoteIn))
	q := curve.BuyQuote{
		BaseAmountOut:     baseAmountOut,
		QuoteAmountIn:     quoteIn,
		UserQuoteAmountIn: userIn,
		QuoteInMax:        bound(userIn, slippage),
	}
	return q, e.finishBuy(op, q, reserves, opts)
}

func (e *Engine) finishBuy(op string, q curve.BuyQuote, reserves *curve.Reserves, opts []Option) error {
	e.log.Debug().
		Str("op", op).
		Str("baseOut", q.BaseAmountOut.String()).
		Str("quoteIn", q.QuoteAmountIn.String()).
		Str("quoteInMax", q.QuoteInMax.String()).
		Msg("quote")

	if !collect(opts).apply {
		return nil
	}
	if err := reserves.Apply(q.Sync()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetQuoteInMax bounds a known quote input from above.
func GetQuoteInMax(quoteAmountIn math.Int, slippage fixedpoint.Bps) (math.Int, error) {
	if err := requireAmount("getQuoteInMax", "quoteAmountIn", quoteAmountIn); err != nil {
		return math.Int{}, err
	}
	return bound(quoteAmountIn, slippage), nil
}

// GetQuoteOutMin bounds a known quote output from below.
func GetQuoteOutMin(quoteAmountOut math.Int, slippage fixedpoint.Bps) (math.Int, error) {
	if err := requireAmount("getQuoteOutMin", "quoteAmountOut", quoteAmountOut); err != nil {
		return math.Int{}, err
	}
	return bound(quoteAmountOut, -slippage), nil
}

// GetQuoteInMax is the engine form of the package function.
func (e *Engine) GetQuoteInMax(quoteAmountIn math.Int, slippage fixedpoint.Bps) (math.Int, error) {
	return GetQuoteInMax(quoteAmountIn, slippage)
}

// GetQuoteOutMin is the engine form of the package function.
func (e *Engine) GetQuoteOutMin(quoteAmountOut math.Int, slippage fixedpoint.Bps) (math.Int, error) {
	return GetQuoteOutMin(quoteAmountOut, slippage)
}
