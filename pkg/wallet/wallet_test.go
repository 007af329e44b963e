package wallet_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/wallet"
)

func TestLoadBase58(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	l, err := wallet.Load("  " + key.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), l.PublicKey())

	_, err = wallet.Load("")
	assert.Error(t, err)
	_, err = wallet.Load("definitely-not-base58-0OIl")
	assert.Error(t, err)
}

func TestLoadKeygenFile(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	nums := make([]string, len(key))
	for i, b := range key {
		nums[i] = fmt.Sprint(b)
	}
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, []byte("["+strings.Join(nums, ",")+"]"), 0o600))

	l, err := wallet.Load(path)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), l.PublicKey())
}

func TestLocalSign(t *testing.T) {
	l, err := wallet.NewRandom()
	require.NoError(t, err)
	msg := []byte("hello")

	sig, err := l.SignMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, sig.Verify(l.PublicKey(), msg))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.SignMessage(ctx, msg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteSigner(t *testing.T) {
	local, err := wallet.NewRandom()
	require.NoError(t, err)

	remote := wallet.NewRemoteSigner(local.PublicKey(), func(ctx context.Context, message []byte) ([]byte, error) {
		sig, err := local.PrivateKey().Sign(message)
		return sig[:], err
	})
	sig, err := remote.SignMessage(context.Background(), []byte("m"))
	require.NoError(t, err)
	assert.True(t, sig.Verify(local.PublicKey(), []byte("m")))

	short := wallet.NewRemoteSigner(local.PublicKey(), func(context.Context, []byte) ([]byte, error) {
		return make([]byte, 10), nil
	})
	_, err = short.SignMessage(context.Background(), nil)
	assert.ErrorContains(t, err, "invalid signature length")

	boom := errors.New("hsm offline")
	failing := wallet.NewRemoteSigner(local.PublicKey(), func(context.Context, []byte) ([]byte, error) {
		return nil, boom
	})
	_, err = failing.SignMessage(context.Background(), nil)
	assert.ErrorIs(t, err, boom)

	_, err = wallet.RemoteSigner{}.SignMessage(context.Background(), nil)
	assert.Error(t, err)
}
