package pump_test

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
)

func TestDiscriminators(t *testing.T) {
	assert.Equal(t, []byte{102, 6, 61, 18, 1, 218, 235, 234}, pump.BuyDiscriminator.Bytes())
	assert.Equal(t, []byte{51, 230, 133, 164, 1, 127, 131, 173}, pump.SellDiscriminator.Bytes())
	assert.Equal(t, []byte{24, 30, 200, 40, 5, 28, 7, 119}, pump.CreateDiscriminator.Bytes())
	assert.Equal(t, []byte{23, 183, 248, 55, 96, 216, 172, 96}, pump.BondingCurveDiscriminator.Bytes())
	assert.Equal(t, []byte{189, 219, 127, 211, 78, 230, 97, 238}, pump.TradeEventDiscriminator.Bytes())
}

func encode(t *testing.T, v interface {
	MarshalWithEncoder(*bin.Encoder) error
}) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, v.MarshalWithEncoder(bin.NewBorshEncoder(buf)))
	return buf.Bytes()
}

func TestBuyData(t *testing.T) {
	data, err := pump.EncodeData(pump.BuyDiscriminator, pump.BuyArgs{Amount: 1, MaxSolCost: 2})
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, pump.BuyDiscriminator.Bytes(), data[:8])
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, data[8:16])
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0}, data[16:])

	bare, err := pump.EncodeData(pump.CollectCreatorFeeDiscriminator, nil)
	require.NoError(t, err)
	assert.Len(t, bare, 8)
}

func TestCreateData(t *testing.T) {
	creator := solana.NewWallet().PublicKey()
	data, err := pump.EncodeData(pump.CreateDiscriminator, pump.CreateArgs{Name: "ab", Symbol: "c", URI: "", Creator: creator})
	require.NoError(t, err)
	// disc + (4+2) + (4+1) + (4+0) + 32
	require.Len(t, data, 8+6+5+4+32)
	assert.Equal(t, []byte{2, 0, 0, 0, 'a', 'b'}, data[8:14])
	assert.Equal(t, creator[:], data[len(data)-32:])
}

func TestBondingCurveRoundTrip(t *testing.T) {
	want := pump.BondingCurve{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
		TokenTotalSupply:     1_000_000_000_000_000,
		Creator:              solana.NewWallet().PublicKey(),
	}
	data := encode(t, want)
	require.Len(t, data, 8+5*8+1+32)

	schema, ok := pump.IdentifyAccount(data)
	require.True(t, ok)
	assert.Equal(t, pump.AccountBondingCurve, schema)

	decoded, err := pump.DecodeAccount(schema, data)
	require.NoError(t, err)
	assert.Equal(t, &want, decoded)
}

func TestBondingCurveWithoutCreator(t *testing.T) {
	full := encode(t, pump.BondingCurve{VirtualTokenReserves: 7, Complete: true, Creator: solana.NewWallet().PublicKey()})
	legacy := full[:len(full)-32]

	var c pump.BondingCurve
	require.NoError(t, c.Unmarshal(legacy))
	assert.Equal(t, uint64(7), c.VirtualTokenReserves)
	assert.True(t, c.Complete)
	assert.True(t, c.Creator.IsZero())
}

func TestBondingCurveWrongDiscriminator(t *testing.T) {
	data := encode(t, pump.BondingCurve{})
	copy(data, pump.GlobalDiscriminator[:])

	var c pump.BondingCurve
	assert.ErrorContains(t, c.Unmarshal(data), "wrong BondingCurve discriminator")

	_, err := pump.DecodeAccount("Nope", data)
	assert.Error(t, err)
}

func TestGlobalLegacyLayouts(t *testing.T) {
	want := pump.Global{
		Initialized:           true,
		Authority:             solana.NewWallet().PublicKey(),
		FeeBasisPoints:        95,
		EnableMigrate:         true,
		PoolMigrationFee:      15_000_001,
		CreatorFeeBasisPoints: 5,
		SetCreatorAuthority:   solana.NewWallet().PublicKey(),
	}
	want.FeeRecipients[3] = solana.NewWallet().PublicKey()
	full := encode(t, want)

	var g pump.Global
	require.NoError(t, g.Unmarshal(full))
	assert.Equal(t, want, g)

	// Before creator fees and fee recipient rotation.
	v1 := full[:8+1+32+32+5*8+32+1+8]
	var old pump.Global
	require.NoError(t, old.Unmarshal(v1))
	assert.Equal(t, uint64(95), old.FeeBasisPoints)
	assert.Equal(t, uint64(15_000_001), old.PoolMigrationFee)
	assert.Zero(t, old.CreatorFeeBasisPoints)
	assert.True(t, old.SetCreatorAuthority.IsZero())

	schema, ok := pump.IdentifyAccount(full)
	assert.True(t, ok)
	assert.Equal(t, pump.AccountGlobal, schema)

	_, ok = pump.IdentifyAccount(full[:4])
	assert.False(t, ok)
}

func TestTradeEvent(t *testing.T) {
	ev := pump.TradeEvent{
		Mint:                 solana.NewWallet().PublicKey(),
		SolAmount:            1_000_000,
		TokenAmount:          35_765_474_484,
		IsBuy:                true,
		User:                 solana.NewWallet().PublicKey(),
		Timestamp:            1_700_000_000,
		VirtualSolReserves:   30_001_000_000,
		VirtualTokenReserves: 1_072_964_234_525_516,
	}
	data := encode(t, ev)
	// Later program versions append fields after the common prefix.
	data = append(data, make([]byte, 48)...)

	require.True(t, pump.IsTradeEvent(data))
	got, err := pump.DecodeTradeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	cpi := append([]byte{0xe4, 0x45, 0xa5, 0x2e, 0x51, 0xcb, 0x9a, 0x1d}, data...)
	require.True(t, pump.IsTradeEvent(cpi))
	got, err = pump.DecodeTradeEvent(cpi)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	assert.False(t, pump.IsTradeEvent(pump.BuyDiscriminator.Bytes()))
}

func TestProgramErrMessage(t *testing.T) {
	assert.Equal(t, "Not Enough", pump.ProgramErr{Name: "NotEnough"}.Message())
	assert.Equal(t, "unknown error", pump.ProgramErr{}.Message())
}

func TestErrorFromCode(t *testing.T) {
	e, ok := pump.ErrorFromCode(pump.ErrCodeTooMuchSolRequired)
	require.True(t, ok)
	assert.Equal(t, "TooMuchSolRequired", e.Name)

	e, ok = pump.ErrorFromCode(pump.ErrCodeNotEnoughTokensToSell)
	require.True(t, ok)
	assert.Equal(t, "Not Enough Tokens To Sell", e.Message())

	_, ok = pump.ErrorFromCode(1)
	assert.False(t, ok)
}
