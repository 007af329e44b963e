package pumpfun_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/instructions"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/pda"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/pumpfun"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/quote"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

var (
	mint    = solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")
	user    = solana.MustPublicKeyFromBase58("7VtfL8fvgNfhz17qKRMjzQEXgbdpnHHHQRh54R9jP2RJ")
	creator = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
)

type fakeReader struct {
	accounts map[solana.PublicKey][]byte
	calls    atomic.Int32
	err      error
}

func (f *fakeReader) GetAccountInfo(_ context.Context, addr solana.PublicKey) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts[addr], nil
}

func encode(t *testing.T, v interface{ MarshalWithEncoder(*bin.Encoder) error }) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, v.MarshalWithEncoder(bin.NewBorshEncoder(&buf)))
	return buf.Bytes()
}

func newReader(t *testing.T) *fakeReader {
	globalAddr, err := pda.Default().Global()
	require.NoError(t, err)
	curveAddr, err := pda.Default().BondingCurve(mint)
	require.NoError(t, err)

	g := pump.Global{
		Initialized:                 true,
		InitialVirtualTokenReserves: 1_073_000_000_000_000,
		InitialVirtualSolReserves:   30_000_000_000,
		InitialRealTokenReserves:    793_100_000_000_000,
		TokenTotalSupply:            1_000_000_000_000_000,
		FeeBasisPoints:              95,
		CreatorFeeBasisPoints:       5,
	}
	c := pump.BondingCurve{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
		TokenTotalSupply:     1_000_000_000_000_000,
		Creator:              creator,
	}
	return &fakeReader{accounts: map[solana.PublicKey][]byte{
		globalAddr: encode(t, g),
		curveAddr:  encode(t, c),
	}}
}

func TestConfigNotLoadedBeforeReady(t *testing.T) {
	client := pumpfun.New(newReader(t))
	assert.False(t, client.IsReady())

	r := &curve.Reserves{}
	_, err := client.QuoteToBase(math.NewInt(1), r, 0)
	assert.ErrorIs(t, err, types.ErrConfigNotLoaded)
	_, err = client.BaseToQuote(math.NewInt(1), r, 0)
	assert.ErrorIs(t, err, types.ErrConfigNotLoaded)
	_, err = client.BaseToQuoteIn(math.NewInt(1), r, 0)
	assert.ErrorIs(t, err, types.ErrConfigNotLoaded)
	_, err = client.Buy(mint, math.NewInt(1), math.NewInt(1), user, r)
	assert.ErrorIs(t, err, types.ErrConfigNotLoaded)
	_, err = client.CollectCreatorFee(creator)
	assert.ErrorIs(t, err, types.ErrConfigNotLoaded)
	_, err = client.Global()
	assert.ErrorIs(t, err, types.ErrConfigNotLoaded)
}

func TestReadyIsIdempotent(t *testing.T) {
	reader := newReader(t)
	client := pumpfun.New(reader)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, client.Ready(context.Background()))
		}()
	}
	wg.Wait()
	require.NoError(t, client.Ready(context.Background()))

	assert.True(t, client.IsReady())
	assert.Equal(t, int32(1), reader.calls.Load())

	g, err := client.Global()
	require.NoError(t, err)
	assert.Equal(t, uint64(95), g.FeeBasisPoints)
	assert.Equal(t, uint64(5), g.CreatorFeeBasisPoints)
}

func TestReadyRetriesAfterFailure(t *testing.T) {
	reader := newReader(t)
	boom := errors.New("boom")
	reader.err = boom
	client := pumpfun.New(reader)

	err := client.Ready(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, client.IsReady())

	reader.err = nil
	require.NoError(t, client.Ready(context.Background()))
	assert.True(t, client.IsReady())
}

func TestReadyMissingGlobal(t *testing.T) {
	client := pumpfun.New(&fakeReader{})
	err := client.Ready(context.Background())
	assert.ErrorIs(t, err, types.ErrAccountNotFound)

	var accErr *types.AccountError
	require.True(t, errors.As(err, &accErr))
	assert.Equal(t, pump.AccountGlobal, accErr.Schema)
}

func TestGetReservesAndTrade(t *testing.T) {
	client := pumpfun.New(newReader(t))
	require.NoError(t, client.Ready(context.Background()))

	reserves, err := client.GetReserves(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, creator, reserves.Creator)

	q, err := client.QuoteToBase(math.NewInt(1_000_000), reserves, 0, quote.WithApply())
	require.NoError(t, err)
	assert.Equal(t, "35765474484", q.BaseAmountOut.String())
	assert.Equal(t, "30001000000", reserves.VirtualSolReserves.String())

	ixs, err := client.Buy(mint, q.BaseAmountOut, q.QuoteInMax, user, reserves)
	require.NoError(t, err)
	assert.Len(t, ixs, 2)
}

func TestGetReservesMissingCurve(t *testing.T) {
	client := pumpfun.New(newReader(t), pumpfun.WithDefaultGlobal())
	other := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	_, err := client.GetReserves(context.Background(), other)
	assert.ErrorIs(t, err, types.ErrAccountNotFound)
}

func TestStaticGlobalAndEncoder(t *testing.T) {
	payload := []byte{0xde, 0xad}
	enc := instructions.EncoderFunc(func(op string, _ any) ([]byte, error) {
		if op == instructions.OpBuy {
			return payload, nil
		}
		return nil, nil
	})
	client := pumpfun.New(nil, pumpfun.WithDefaultGlobal(), pumpfun.WithEncoder(enc))
	require.True(t, client.IsReady())

	reserves, err := client.InitialReserves(creator)
	require.NoError(t, err)
	ixs, err := client.Buy(mint, math.NewInt(10), math.NewInt(20), user, reserves)
	require.NoError(t, err)
	data, err := ixs[1].Data()
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = client.GetReserves(context.Background(), mint)
	assert.ErrorIs(t, err, types.ErrNilRPC)
}
