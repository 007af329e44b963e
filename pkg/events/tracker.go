package events

import (
	"context"
	"sync"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

// Tracker keeps a local Reserves of one mint in step with observed trades.
// Its methods may be called concurrently.
type Tracker struct {
	mu       sync.Mutex
	mint     solana.PublicKey
	reserves *curve.Reserves
	applied  uint64
	log      zerolog.Logger
}

// NewTracker starts tracking from reserves, which the tracker takes over.
func NewTracker(mint solana.PublicKey, reserves *curve.Reserves, log zerolog.Logger) (*Tracker, error) {
	if err := types.ValidatePublicKey("mint", mint); err != nil {
		return nil, err
	}
	if reserves == nil {
		return nil, types.ErrNilReserves
	}
	return &Tracker{mint: mint, reserves: reserves, log: log}, nil
}

// Apply mirrors ev into the reserves. Events of other mints are ignored and
// report false.
func (t *Tracker) Apply(ev pump.TradeEvent) (bool, error) {
	return t.shift(ev, false)
}

// Rollback undoes a previously applied ev, e.g. after a fork drops it.
func (t *Tracker) Rollback(ev pump.TradeEvent) (bool, error) {
	return t.shift(ev, true)
}

func (t *Tracker) shift(ev pump.TradeEvent, reverse bool) (bool, error) {
	if !ev.Mint.Equals(t.mint) {
		return false, nil
	}
	in := TradeFromEvent(ev).Sync()

	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	if reverse {
		err = t.reserves.Rollback(in)
	} else {
		err = t.reserves.Apply(in)
	}
	if err != nil {
		return false, err
	}
	if reverse {
		if t.applied > 0 {
			t.applied--
		}
		return true, nil
	}
	t.applied++

	// Events carry the post-trade virtual reserves; a mismatch means the
	// local view missed a trade.
	if !t.reserves.VirtualSolReserves.Equal(math.NewIntFromUint64(ev.VirtualSolReserves)) ||
		!t.reserves.VirtualTokenReserves.Equal(math.NewIntFromUint64(ev.VirtualTokenReserves)) {
		t.log.Warn().
			Str("mint", t.mint.String()).
			Str("localVSol", t.reserves.VirtualSolReserves.String()).
			Uint64("eventVSol", ev.VirtualSolReserves).
			Msg("reserves drifted from chain")
	}
	return true, nil
}

// Snapshot returns a copy of the current reserves.
func (t *Tracker) Snapshot() *curve.Reserves {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reserves.Clone()
}

// Applied is the net number of trades applied.
func (t *Tracker) Applied() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applied
}

// Resync replaces the reserves, e.g. after refetching the curve account.
func (t *Tracker) Resync(r *curve.Reserves) error {
	if r == nil {
		return types.ErrNilReserves
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reserves = r.Clone()
	return nil
}

// Handle adapts the tracker to a watcher Handler.
func (t *Tracker) Handle(_ context.Context, ev Event) error {
	_, err := t.Apply(ev.Trade)
	return err
}
