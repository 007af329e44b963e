package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

// Environment variables understood by FromEnv.
const (
	EnvRPCURL     = "PUMP_RPC_URL"
	EnvWSURL      = "PUMP_WS_URL"
	EnvNetwork    = "PUMP_NETWORK"
	EnvCommitment = "PUMP_COMMITMENT"
	EnvTimeout    = "PUMP_TIMEOUT"
	EnvRateRPS    = "PUMP_RATE_LIMIT_RPS"
	EnvProgramID  = "PUMP_PROGRAM_ID"
	EnvUploadURL  = "PUMP_METADATA_UPLOAD_URL"
)

// LoadEnv loads a .env file into the process environment. A missing file is not an error.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv overlays environment settings on the defaults.
func FromEnv() (RPCConfig, ProgramConfig, error) {
	rpcCfg := DefaultRPCConfig()
	progCfg := DefaultProgramConfig()

	if v := os.Getenv(EnvNetwork); v != "" {
		rpcCfg.Network = Network(v)
		rpcCfg.RPCURL = DefaultRPCURL(rpcCfg.Network)
	}
	if v := os.Getenv(EnvRPCURL); v != "" {
		rpcCfg.RPCURL = v
	}
	if v := os.Getenv(EnvWSURL); v != "" {
		rpcCfg.WSURL = v
	}
	if v := os.Getenv(EnvCommitment); v != "" {
		rpcCfg.Commitment = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return rpcCfg, progCfg, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		rpcCfg.Timeout = d
	}
	if v := os.Getenv(EnvRateRPS); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return rpcCfg, progCfg, fmt.Errorf("%s: %w", EnvRateRPS, err)
		}
		rpcCfg.RateLimit.RPS = rps
	}
	if v := os.Getenv(EnvProgramID); v != "" {
		pk, err := solana.PublicKeyFromBase58(v)
		if err != nil {
			return rpcCfg, progCfg, fmt.Errorf("%s: %w", EnvProgramID, err)
		}
		progCfg.ProgramID = pk
	}
	if v := os.Getenv(EnvUploadURL); v != "" {
		progCfg.MetadataUploadURL = v
	}
	return rpcCfg, progCfg, nil
}
