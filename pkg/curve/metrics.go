package curve

import (
	"cosmossdk.io/math"
)

var (
	// DefaultInitialRealTokenReserves is the real token supply every curve starts with.
	DefaultInitialRealTokenReserves = math.NewInt(793_100_000_000_000)
	// DefaultTokenTotalSupply is used when a reserves snapshot carries no supply.
	DefaultTokenTotalSupply = math.NewInt(1_000_000_000_000_000)

	scale = math.NewInt(1_000_000_000)
)

// ProgressScaled returns the sold share of the initial real token reserves,
// scaled by 1e9.
func ProgressScaled(r *Reserves) math.Int {
	if r.RealTokenReserves.IsNil() {
		return math.ZeroInt()
	}
	sold := DefaultInitialRealTokenReserves.Sub(r.RealTokenReserves)
	return sold.Mul(scale).Quo(DefaultInitialRealTokenReserves)
}

// Progress is ProgressScaled as a fraction in [0, 1] for display.
func Progress(r *Reserves) float64 {
	return float64(ProgressScaled(r).Int64()) / 1e9
}

// MarketCap returns supply * price in lamports. Zero virtual token reserves yield zero.
func MarketCap(r *Reserves) math.Int {
	if r.VirtualTokenReserves.IsNil() || r.VirtualTokenReserves.IsZero() {
		return math.ZeroInt()
	}
	supply := r.TokenTotalSupply
	if supply.IsNil() || supply.IsZero() {
		supply = DefaultTokenTotalSupply
	}
	return supply.Mul(r.VirtualSolReserves).Quo(r.VirtualTokenReserves)
}

// Price returns lamports per token base unit, scaled by 1e9.
// Zero virtual token reserves yield zero.
func Price(r *Reserves) math.Int {
	if r.VirtualTokenReserves.IsNil() || r.VirtualTokenReserves.IsZero() {
		return math.ZeroInt()
	}
	return r.VirtualSolReserves.Mul(scale).Quo(r.VirtualTokenReserves)
}
