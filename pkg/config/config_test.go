package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/constants"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{EnvRPCURL, EnvWSURL, EnvNetwork, EnvCommitment, EnvTimeout, EnvRateRPS, EnvProgramID, EnvUploadURL} {
		t.Setenv(k, "")
	}
	rpcCfg, progCfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultRPCConfig().RPCURL, rpcCfg.RPCURL)
	assert.Equal(t, "finalized", rpcCfg.Commitment)
	assert.Equal(t, constants.PumpProgramID, progCfg.ProgramID)
}

func TestFromEnvOverrides(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	t.Setenv(EnvNetwork, "devnet")
	t.Setenv(EnvWSURL, "")
	t.Setenv(EnvRPCURL, "")
	t.Setenv(EnvCommitment, "confirmed")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvRateRPS, "2.5")
	t.Setenv(EnvProgramID, program.String())
	t.Setenv(EnvUploadURL, "http://localhost:9000/ipfs")

	rpcCfg, progCfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://api.devnet.solana.com", rpcCfg.RPCURL)
	assert.Equal(t, "wss://api.devnet.solana.com", rpcCfg.ResolveWSURL())
	assert.Equal(t, "confirmed", rpcCfg.Commitment)
	assert.Equal(t, 5*time.Second, rpcCfg.Timeout)
	assert.Equal(t, 2.5, rpcCfg.RateLimit.RPS)
	assert.Equal(t, program, progCfg.ProgramID)
	assert.Equal(t, "http://localhost:9000/ipfs", progCfg.MetadataUploadURL)
}

func TestFromEnvInvalid(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")
	_, _, err := FromEnv()
	assert.ErrorContains(t, err, EnvTimeout)

	t.Setenv(EnvTimeout, "")
	t.Setenv(EnvProgramID, "not-a-key")
	_, _, err = FromEnv()
	assert.ErrorContains(t, err, EnvProgramID)
}

func TestResolveURLs(t *testing.T) {
	c := RPCConfig{Network: NetworkCustom, RPCURL: "http://127.0.0.1:8899"}
	assert.Equal(t, "ws://127.0.0.1:8899", c.ResolveWSURL())

	c = RPCConfig{Network: NetworkMainnet}
	assert.Equal(t, "https://api.mainnet-beta.solana.com", c.ResolveRPCURL())
	assert.Equal(t, "wss://api.mainnet-beta.solana.com", c.ResolveWSURL())

	c.WSURL = "wss://example.invalid"
	assert.Equal(t, "wss://example.invalid", c.ResolveWSURL())

	assert.Empty(t, RPCConfig{Network: NetworkCustom}.ResolveWSURL())
}

func TestProgramConfigWithDefaults(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	c := ProgramConfig{ProgramID: program}.WithDefaults()
	assert.Equal(t, program, c.ProgramID)
	assert.Equal(t, constants.TokenProgramID, c.TokenProgramID)
	assert.Equal(t, constants.MetadataUploadURL, c.MetadataUploadURL)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PUMP_COMMITMENT=processed\n"), 0o600))
	t.Setenv(EnvCommitment, "")
	require.NoError(t, os.Unsetenv(EnvCommitment))

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "processed", os.Getenv(EnvCommitment))
}
