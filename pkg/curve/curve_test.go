package curve_test

import (
	"errors"
	"testing"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

func initial(t *testing.T) *curve.Reserves {
	t.Helper()
	g := curve.DefaultGlobal()
	return curve.InitialReserves(&g, solana.NewWallet().PublicKey())
}

func buy() curve.BuyQuote {
	return curve.BuyQuote{
		BaseAmountOut:     math.NewInt(35_765_474_484),
		QuoteAmountIn:     math.NewInt(1_000_000),
		UserQuoteAmountIn: math.NewInt(1_010_000),
		QuoteInMax:        math.NewInt(1_010_000),
	}
}

func TestApplyBuy(t *testing.T) {
	r := initial(t)
	require.NoError(t, r.Apply(buy().Sync()))

	assert.Equal(t, "1072964234525516", r.VirtualTokenReserves.String())
	assert.Equal(t, "30001000000", r.VirtualSolReserves.String())
	assert.Equal(t, "793064234525516", r.RealTokenReserves.String())
	assert.Equal(t, "1000000", r.RealSolReserves.String())
}

func TestApplyRollbackIsExact(t *testing.T) {
	r := initial(t)
	before := r.Clone()

	inputs := []curve.SyncInput{
		buy().Sync(),
		curve.SellQuote{BaseAmountIn: math.NewInt(10_000_000), QuoteAmountOut: math.NewInt(279_000)}.Sync(),
		curve.Trade{IsBuy: true, SolAmount: math.NewInt(5), TokenAmount: math.NewInt(170_000)}.Sync(),
		curve.Trade{IsBuy: false, SolAmount: math.NewInt(3), TokenAmount: math.NewInt(99_000)}.Sync(),
	}
	for _, in := range inputs {
		require.NoError(t, r.Apply(in))
	}
	assert.False(t, before.Equal(r))
	for i := len(inputs) - 1; i >= 0; i-- {
		require.NoError(t, r.Rollback(inputs[i]))
	}
	assert.True(t, before.Equal(r), "got %s want %s", r, before)
}

func TestSellMovesOppositeToBuy(t *testing.T) {
	r := initial(t)
	q := curve.SellQuote{BaseAmountIn: math.NewInt(100), QuoteAmountOut: math.NewInt(2)}
	require.NoError(t, r.Apply(q.Sync()))
	assert.Equal(t, "1073000000000100", r.VirtualTokenReserves.String())
	assert.Equal(t, "29999999998", r.VirtualSolReserves.String())
	assert.Equal(t, "-2", r.RealSolReserves.String())
}

func TestInvalidSyncInput(t *testing.T) {
	b := buy()
	cases := map[string]curve.SyncInput{
		"none": {},
		"both": {Buy: &b, Sell: &curve.SellQuote{BaseAmountIn: math.NewInt(1), QuoteAmountOut: math.NewInt(1)}},
		"nil amount": {Trade: &curve.Trade{IsBuy: true, SolAmount: math.NewInt(1)}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			r := initial(t)
			before := r.Clone()
			assert.ErrorIs(t, r.Apply(in), types.ErrInvalidSyncInput)
			assert.ErrorIs(t, r.Rollback(in), types.ErrInvalidSyncInput)
			assert.True(t, before.Equal(r), "failed sync must not mutate reserves")
		})
	}
}

func TestApplyNilReserves(t *testing.T) {
	var r *curve.Reserves
	assert.ErrorIs(t, r.Apply(buy().Sync()), types.ErrNilReserves)

	empty := &curve.Reserves{}
	assert.ErrorIs(t, empty.Apply(buy().Sync()), types.ErrInvalidReserves)
}

func TestValidate(t *testing.T) {
	r := initial(t)
	require.NoError(t, r.Validate())

	r.VirtualSolReserves = math.ZeroInt()
	err := r.Validate()
	var ce *types.CurveError
	require.True(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, types.ErrInvalidReserves)

	r.Complete = true
	assert.NoError(t, r.Validate())
}

func TestMetrics(t *testing.T) {
	r := initial(t)
	assert.Equal(t, "27958993476", curve.MarketCap(r).String())
	assert.Equal(t, "27958", curve.Price(r).String())
	assert.Equal(t, "0", curve.ProgressScaled(r).String())

	r.RealTokenReserves = math.ZeroInt()
	assert.Equal(t, 1.0, curve.Progress(r))

	r.TokenTotalSupply = math.ZeroInt()
	assert.Equal(t, "27958993476", curve.MarketCap(r).String(), "missing supply falls back to the default")

	r.VirtualTokenReserves = math.ZeroInt()
	assert.True(t, curve.MarketCap(r).IsZero())
	assert.True(t, curve.Price(r).IsZero())
}

func TestReservesFromAccount(t *testing.T) {
	creator := solana.NewWallet().PublicKey()
	r := curve.ReservesFromAccount(&pump.BondingCurve{
		VirtualTokenReserves: 1,
		VirtualSolReserves:   2,
		RealTokenReserves:    3,
		RealSolReserves:      4,
		TokenTotalSupply:     5,
		Creator:              creator,
	})
	assert.Equal(t, "4", r.RealSolReserves.String())
	assert.True(t, r.HasCreator())
	assert.Equal(t, creator, r.Creator)

	r.Creator = solana.PublicKey{}
	assert.False(t, r.HasCreator())
}

func TestGlobalFees(t *testing.T) {
	g := curve.DefaultGlobal()
	assert.Equal(t, "100", g.TotalFeeBps().String())

	back := curve.GlobalFromAccount(&pump.Global{FeeBasisPoints: 95, CreatorFeeBasisPoints: 5, TokenTotalSupply: 9})
	assert.Equal(t, "100", back.TotalFeeBps().String())
	assert.Equal(t, "9", back.TokenTotalSupply.String())
}

func TestZeroQuotes(t *testing.T) {
	assert.True(t, curve.ZeroBuyQuote().IsZero())
	assert.True(t, curve.ZeroSellQuote().IsZero())
	assert.False(t, buy().IsZero())
}
