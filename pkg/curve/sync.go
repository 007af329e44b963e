package curve

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

// BuyQuote is the result of buying base with quote, either from a fixed
// quote input or for an exact base output.
type BuyQuote struct {
	BaseAmountOut     math.Int
	QuoteAmountIn     math.Int // curve input, fees excluded
	UserQuoteAmountIn math.Int // with protocol and creator fees
	QuoteInMax        math.Int // worst-case pay ceiling
}

// SellQuote is the result of selling a fixed base input.
type SellQuote struct {
	BaseAmountIn       math.Int
	QuoteAmountOut     math.Int // curve output, fees excluded
	UserQuoteAmountOut math.Int // net of fees
	QuoteOutMin        math.Int // worst-case receive floor
}

// ZeroBuyQuote is returned for non-positive inputs.
func ZeroBuyQuote() BuyQuote {
	z := math.ZeroInt()
	return BuyQuote{BaseAmountOut: z, QuoteAmountIn: z, UserQuoteAmountIn: z, QuoteInMax: z}
}

// ZeroSellQuote is returned for non-positive inputs.
func ZeroSellQuote() SellQuote {
	z := math.ZeroInt()
	return SellQuote{BaseAmountIn: z, QuoteAmountOut: z, UserQuoteAmountOut: z, QuoteOutMin: z}
}

func (q BuyQuote) IsZero() bool {
	return isZeroOrNil(q.BaseAmountOut) && isZeroOrNil(q.QuoteAmountIn)
}

func (q SellQuote) IsZero() bool {
	return isZeroOrNil(q.BaseAmountIn) && isZeroOrNil(q.QuoteAmountOut)
}

func isZeroOrNil(v math.Int) bool {
	return v.IsNil() || v.IsZero()
}

// Sync wraps q as a synchronization input.
func (q BuyQuote) Sync() SyncInput {
	return SyncInput{Buy: &q}
}

// Sync wraps q as a synchronization input.
func (q SellQuote) Sync() SyncInput {
	return SyncInput{Sell: &q}
}

// Trade is a swap observed on chain.
type Trade struct {
	IsBuy       bool
	SolAmount   math.Int
	TokenAmount math.Int
}

// Sync wraps t as a synchronization input.
func (t Trade) Sync() SyncInput {
	return SyncInput{Trade: &t}
}

// SyncInput selects what Apply and Rollback act on. Exactly one field must be set.
type SyncInput struct {
	Buy   *BuyQuote
	Sell  *SellQuote
	Trade *Trade
}

// delta resolves the input to signed token and sol movements of the pool
// for a forward (apply) step.
func (in SyncInput) delta() (token, sol math.Int, err error) {
	set := 0
	for _, ok := range []bool{in.Buy != nil, in.Sell != nil, in.Trade != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return math.Int{}, math.Int{}, fmt.Errorf("%w: expected exactly one of buy, sell or trade, got %d", types.ErrInvalidSyncInput, set)
	}

	var base, quote math.Int
	var isBuy bool
	switch {
	case in.Buy != nil:
		base, quote, isBuy = in.Buy.BaseAmountOut, in.Buy.QuoteAmountIn, true
	case in.Sell != nil:
		base, quote, isBuy = in.Sell.BaseAmountIn, in.Sell.QuoteAmountOut, false
	default:
		base, quote, isBuy = in.Trade.TokenAmount, in.Trade.SolAmount, in.Trade.IsBuy
	}
	if base.IsNil() || quote.IsNil() {
		return math.Int{}, math.Int{}, fmt.Errorf("%w: base and quote amounts are required", types.ErrInvalidSyncInput)
	}
	if isBuy {
		return base.Neg(), quote, nil
	}
	return base, quote.Neg(), nil
}

// Apply moves the swap described by in into r: a buy removes tokens from and
// adds sol to both the real and virtual reserves, a sell does the opposite.
func (r *Reserves) Apply(in SyncInput) error {
	return r.shift(in, false)
}

// Rollback exactly undoes Apply for the same input.
func (r *Reserves) Rollback(in SyncInput) error {
	return r.shift(in, true)
}

func (r *Reserves) shift(in SyncInput, reverse bool) error {
	if r == nil {
		return types.ErrNilReserves
	}
	token, sol, err := in.delta()
	if err != nil {
		return err
	}
	if reverse {
		token, sol = token.Neg(), sol.Neg()
	}
	if r.VirtualTokenReserves.IsNil() || r.VirtualSolReserves.IsNil() ||
		r.RealTokenReserves.IsNil() || r.RealSolReserves.IsNil() {
		return fmt.Errorf("%w: reserve fields are unset", types.ErrInvalidReserves)
	}

	r.RealTokenReserves = r.RealTokenReserves.Add(token)
	r.RealSolReserves = r.RealSolReserves.Add(sol)
	r.VirtualTokenReserves = r.VirtualTokenReserves.Add(token)
	r.VirtualSolReserves = r.VirtualSolReserves.Add(sol)
	return nil
}
