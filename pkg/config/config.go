package config

import (
	"io"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/constants"
)

// Network defines the target Solana cluster.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
	NetworkCustom  Network = "custom"
)

// DefaultRPCURL returns the standard RPC endpoint for a known network.
func DefaultRPCURL(network Network) string {
	switch network {
	case NetworkMainnet:
		return "https://api.mainnet-beta.solana.com"
	case NetworkTestnet:
		return "https://api.testnet.solana.com"
	case NetworkDevnet:
		return "https://api.devnet.solana.com"
	default:
		return ""
	}
}

// DefaultWSURL returns the standard websocket endpoint for a known network.
func DefaultWSURL(network Network) string {
	switch network {
	case NetworkMainnet:
		return "wss://api.mainnet-beta.solana.com"
	case NetworkTestnet:
		return "wss://api.testnet.solana.com"
	case NetworkDevnet:
		return "wss://api.devnet.solana.com"
	default:
		return ""
	}
}

// RetryConfig controls RPC retry behavior.
type RetryConfig struct {
	Enabled        bool
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Jitter         bool
}

// RateLimitConfig throttles outbound calls.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// RPCConfig aggregates runtime settings for RPC usage.
type RPCConfig struct {
	Network    Network
	RPCURL     string
	WSURL      string
	Commitment string
	Timeout    time.Duration
	Retry      RetryConfig
	RateLimit  RateLimitConfig
	Logger     zerolog.Logger
}

// DefaultRPCConfig yields production-safe defaults (mainnet, finalized commitment).
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		Network:    NetworkMainnet,
		RPCURL:     DefaultRPCURL(NetworkMainnet),
		Commitment: "finalized",
		Timeout:    20 * time.Second,
		Retry: RetryConfig{
			Enabled:        true,
			MaxAttempts:    3,
			InitialBackoff: 150 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			Jitter:         true,
		},
		RateLimit: RateLimitConfig{
			RPS:   8,
			Burst: 16,
		},
		Logger: zerolog.New(io.Discard),
	}
}

// ResolveRPCURL returns RPCURL if set, otherwise falls back to network defaults.
func (c RPCConfig) ResolveRPCURL() string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	return DefaultRPCURL(c.Network)
}

// ResolveWSURL returns WSURL if set, then a URL derived from RPCURL, then the network default.
func (c RPCConfig) ResolveWSURL() string {
	if c.WSURL != "" {
		return c.WSURL
	}
	if u := c.ResolveRPCURL(); u != "" {
		switch {
		case strings.HasPrefix(u, "https://"):
			return "wss://" + strings.TrimPrefix(u, "https://")
		case strings.HasPrefix(u, "http://"):
			return "ws://" + strings.TrimPrefix(u, "http://")
		}
	}
	return DefaultWSURL(c.Network)
}

// ProgramConfig names the fixed addresses of a program deployment. Override
// it to target another cluster or a redeployed program.
type ProgramConfig struct {
	ProgramID                solana.PublicKey
	EventAuthority           solana.PublicKey
	FeeReceipt               solana.PublicKey
	MetadataProgramID        solana.PublicKey
	SystemProgramID          solana.PublicKey
	TokenProgramID           solana.PublicKey
	AssociatedTokenProgramID solana.PublicKey
	RentSysvar               solana.PublicKey
	MetadataUploadURL        string
}

// DefaultProgramConfig returns the mainnet deployment.
func DefaultProgramConfig() ProgramConfig {
	return ProgramConfig{
		ProgramID:                constants.PumpProgramID,
		EventAuthority:           constants.PumpEventAuthority,
		FeeReceipt:               constants.PumpFeeReceipt,
		MetadataProgramID:        constants.MetadataProgramID,
		SystemProgramID:          constants.SystemProgramID,
		TokenProgramID:           constants.TokenProgramID,
		AssociatedTokenProgramID: constants.AssociatedTokenProgramID,
		RentSysvar:               constants.SysvarRentProgramID,
		MetadataUploadURL:        constants.MetadataUploadURL,
	}
}

// WithDefaults fills zero fields from DefaultProgramConfig.
func (c ProgramConfig) WithDefaults() ProgramConfig {
	d := DefaultProgramConfig()
	fill := func(dst *solana.PublicKey, def solana.PublicKey) {
		if dst.IsZero() {
			*dst = def
		}
	}
	fill(&c.ProgramID, d.ProgramID)
	fill(&c.EventAuthority, d.EventAuthority)
	fill(&c.FeeReceipt, d.FeeReceipt)
	fill(&c.MetadataProgramID, d.MetadataProgramID)
	fill(&c.SystemProgramID, d.SystemProgramID)
	fill(&c.TokenProgramID, d.TokenProgramID)
	fill(&c.AssociatedTokenProgramID, d.AssociatedTokenProgramID)
	fill(&c.RentSysvar, d.RentSysvar)
	if c.MetadataUploadURL == "" {
		c.MetadataUploadURL = d.MetadataUploadURL
	}
	return c
}
