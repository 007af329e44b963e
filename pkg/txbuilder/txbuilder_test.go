package txbuilder_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/jito"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/txbuilder"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/wallet"
)

func transfer(t *testing.T, from, to solana.PublicKey) solana.Instruction {
	t.Helper()
	ix, err := system.NewTransferInstruction(5000, from, to).ValidateAndBuild()
	require.NoError(t, err)
	return ix
}

func TestParseConfirmationLevel(t *testing.T) {
	l, err := txbuilder.ParseConfirmationLevel("")
	require.NoError(t, err)
	assert.Equal(t, txbuilder.ConfirmationConfirmed, l)

	l, err = txbuilder.ParseConfirmationLevel("finalized")
	require.NoError(t, err)
	assert.Equal(t, txbuilder.ConfirmationFinalized, l)

	_, err = txbuilder.ParseConfirmationLevel("landed")
	var valErr types.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestAssemble(t *testing.T) {
	payer, err := wallet.NewRandom()
	require.NoError(t, err)
	to := solana.NewWallet().PublicKey()
	ix := transfer(t, payer.PublicKey(), to)

	b := txbuilder.NewBuilder(nil)
	_, err = b.Assemble(payer.PublicKey(), nil)
	assert.ErrorIs(t, err, types.ErrNoInstructions)

	out, err := b.Assemble(payer.PublicKey(), []solana.Instruction{ix})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	b = txbuilder.NewBuilder(nil,
		txbuilder.WithComputeBudget(txbuilder.ComputeBudget{UnitLimit: 200_000, UnitPrice: 1_000}),
		txbuilder.WithJito(jito.NewClient(nil), 10_000),
	)
	out, err = b.Assemble(payer.PublicKey(), []solana.Instruction{ix})
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, solana.ComputeBudget, out[0].ProgramID())
	assert.Equal(t, solana.ComputeBudget, out[1].ProgramID())
	assert.Equal(t, ix, out[2])
	assert.Equal(t, solana.SystemProgramID, out[3].ProgramID())
	assert.True(t, jito.IsTipAccount(out[3].Accounts()[1].PublicKey))
}

func TestBuildWithoutRPC(t *testing.T) {
	payer, err := wallet.NewRandom()
	require.NoError(t, err)
	b := txbuilder.NewBuilder(nil)

	_, err = b.Build(context.Background(), payer, nil, transfer(t, payer.PublicKey(), solana.SystemProgramID))
	assert.ErrorIs(t, err, types.ErrNilRPC)
	_, err = b.Build(context.Background(), nil, nil)
	assert.ErrorIs(t, err, types.ErrNilSigner)
	_, err = b.Send(context.Background(), &solana.Transaction{})
	assert.ErrorIs(t, err, types.ErrNilRPC)
}

func TestSignTransaction(t *testing.T) {
	payer, err := wallet.NewRandom()
	require.NoError(t, err)
	mint, err := wallet.NewRandom()
	require.NoError(t, err)

	// the mint is a second signer, as in a launch
	ix, err := system.NewCreateAccountInstruction(1_000_000, 82, solana.TokenProgramID, payer.PublicKey(), mint.PublicKey()).ValidateAndBuild()
	require.NoError(t, err)
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{1}, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)

	err = txbuilder.SignTransaction(context.Background(), tx, payer)
	assert.ErrorContains(t, err, "missing signer")

	require.NoError(t, txbuilder.SignTransaction(context.Background(), tx, payer, mint))
	require.Len(t, tx.Signatures, 2)
	assert.NoError(t, tx.VerifySignatures())
}
