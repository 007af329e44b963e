// Package curve models the bonding curve state mirrored from chain: protocol
// configuration, per-mint reserves, quote records and their synchronization.
package curve

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

// Reserves is a local mirror of one bonding curve account. It is owned by
// the caller; mutations on one instance must be serialized by the caller.
type Reserves struct {
	VirtualTokenReserves math.Int
	VirtualSolReserves   math.Int
	RealTokenReserves    math.Int
	RealSolReserves      math.Int
	TokenTotalSupply     math.Int
	Complete             bool
	Creator              solana.PublicKey // zero when the curve has no creator
}

// InitialReserves returns the state of a curve that is about to be created.
func InitialReserves(g *Global, creator solana.PublicKey) *Reserves {
	return &Reserves{
		VirtualTokenReserves: g.InitialVirtualTokenReserves,
		VirtualSolReserves:   g.InitialVirtualSolReserves,
		RealTokenReserves:    g.InitialRealTokenReserves,
		RealSolReserves:      math.ZeroInt(),
		TokenTotalSupply:     g.TokenTotalSupply,
		Creator:              creator,
	}
}

// ReservesFromAccount converts a decoded bonding curve account.
func ReservesFromAccount(a *pump.BondingCurve) *Reserves {
	return &Reserves{
		VirtualTokenReserves: math.NewIntFromUint64(a.VirtualTokenReserves),
		VirtualSolReserves:   math.NewIntFromUint64(a.VirtualSolReserves),
		RealTokenReserves:    math.NewIntFromUint64(a.RealTokenReserves),
		RealSolReserves:      math.NewIntFromUint64(a.RealSolReserves),
		TokenTotalSupply:     math.NewIntFromUint64(a.TokenTotalSupply),
		Complete:             a.Complete,
		Creator:              a.Creator,
	}
}

// HasCreator reports whether a creator is recorded.
func (r *Reserves) HasCreator() bool {
	return !r.Creator.IsZero()
}

// Clone returns an independent copy. math.Int values are immutable, so a
// shallow copy is enough.
func (r *Reserves) Clone() *Reserves {
	c := *r
	return &c
}

// Equal reports field-by-field equality.
func (r *Reserves) Equal(o *Reserves) bool {
	if r == nil || o == nil {
		return r == o
	}
	return intEqual(r.VirtualTokenReserves, o.VirtualTokenReserves) &&
		intEqual(r.VirtualSolReserves, o.VirtualSolReserves) &&
		intEqual(r.RealTokenReserves, o.RealTokenReserves) &&
		intEqual(r.RealSolReserves, o.RealSolReserves) &&
		intEqual(r.TokenTotalSupply, o.TokenTotalSupply) &&
		r.Complete == o.Complete &&
		r.Creator.Equals(o.Creator)
}

func intEqual(a, b math.Int) bool {
	if a.IsNil() || b.IsNil() {
		return a.IsNil() && b.IsNil()
	}
	return a.Equal(b)
}

// Validate checks that pricing can run against r: the reserves used by the
// curve formulas are set, and virtual reserves are positive while the curve
// is active.
func (r *Reserves) Validate() error {
	if r == nil {
		return types.ErrNilReserves
	}
	if r.VirtualTokenReserves.IsNil() || r.VirtualSolReserves.IsNil() || r.RealTokenReserves.IsNil() {
		return fmt.Errorf("%w: reserve fields are unset", types.ErrInvalidReserves)
	}
	if r.Complete {
		return nil
	}
	if !r.VirtualTokenReserves.IsPositive() || !r.VirtualSolReserves.IsPositive() {
		return &types.CurveError{
			Op:                   "validate reserves",
			VirtualTokenReserves: r.VirtualTokenReserves,
			VirtualSolReserves:   r.VirtualSolReserves,
			Err:                  types.ErrInvalidReserves,
		}
	}
	return nil
}

func (r *Reserves) String() string {
	return fmt.Sprintf("Reserves{vTok=%s vSol=%s rTok=%s rSol=%s supply=%s complete=%t creator=%s}",
		r.VirtualTokenReserves, r.VirtualSolReserves, r.RealTokenReserves, r.RealSolReserves,
		r.TokenTotalSupply, r.Complete, r.Creator)
}
