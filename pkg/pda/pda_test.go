package pda_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/config"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/constants"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/pda"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

func TestMainnetAddresses(t *testing.T) {
	r := pda.Default()

	global, err := r.Global()
	require.NoError(t, err)
	assert.Equal(t, "4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf", global.String())

	eventAuthority, err := r.EventAuthority()
	require.NoError(t, err)
	assert.Equal(t, constants.PumpEventAuthority, eventAuthority)
}

func TestDeterministic(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	a := pda.NewResolver(config.DefaultProgramConfig())
	b := pda.Default()

	x, err := a.BondingCurve(mint)
	require.NoError(t, err)
	y, err := b.BondingCurve(mint)
	require.NoError(t, err)
	assert.Equal(t, x, y)

	want, _, err := solana.FindProgramAddress([][]byte{[]byte("bonding-curve"), mint[:]}, constants.PumpProgramID)
	require.NoError(t, err)
	assert.Equal(t, want, x)

	vault, err := a.AssociatedBondingCurve(mint, x)
	require.NoError(t, err)
	ata, _, err := solana.FindAssociatedTokenAddress(x, mint)
	require.NoError(t, err)
	assert.Equal(t, ata, vault)
}

func TestCustomProgram(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	r := pda.NewResolver(config.ProgramConfig{ProgramID: program})
	assert.Equal(t, program, r.ProgramID())

	mint := solana.NewWallet().PublicKey()
	custom, err := r.BondingCurve(mint)
	require.NoError(t, err)
	mainnet, err := pda.Default().BondingCurve(mint)
	require.NoError(t, err)
	assert.NotEqual(t, mainnet, custom)

	// Token addresses do not depend on the program.
	user := solana.NewWallet().PublicKey()
	x, err := r.AssociatedToken(user, mint)
	require.NoError(t, err)
	y, err := pda.Default().AssociatedToken(user, mint)
	require.NoError(t, err)
	assert.Equal(t, x, y)
}

func TestDistinctSeeds(t *testing.T) {
	r := pda.Default()
	key := solana.NewWallet().PublicKey()
	vault, err := r.CreatorVault(key)
	require.NoError(t, err)
	volume, err := r.UserVolumeAccumulator(key)
	require.NoError(t, err)
	curve, err := r.BondingCurve(key)
	require.NoError(t, err)
	assert.NotEqual(t, vault, volume)
	assert.NotEqual(t, vault, curve)
}

func TestZeroKeysRejected(t *testing.T) {
	r := pda.Default()
	var zero solana.PublicKey

	_, err := r.BondingCurve(zero)
	assert.ErrorAs(t, err, new(types.ValidationError))
	_, err = r.CreatorVault(zero)
	assert.Error(t, err)
	_, err = r.Metadata(zero)
	assert.Error(t, err)
	_, err = r.AssociatedToken(zero, solana.NewWallet().PublicKey())
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	pk, err := pda.ParseAddress("mint", constants.PumpProgramID.String())
	require.NoError(t, err)
	assert.Equal(t, constants.PumpProgramID, pk)

	_, err = pda.ParseAddress("mint", "")
	assert.ErrorContains(t, err, "mint - is required")
	_, err = pda.ParseAddress("mint", "xyz0")
	assert.ErrorAs(t, err, new(types.ValidationError))
}
