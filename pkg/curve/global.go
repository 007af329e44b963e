package curve

import (
	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
)

// Global is the protocol configuration shared by every curve: fee schedule
// and the parameters new curves start from. Treat it as read-only once built.
type Global struct {
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves math.Int
	InitialVirtualSolReserves   math.Int
	InitialRealTokenReserves    math.Int
	TokenTotalSupply            math.Int
	FeeBasisPoints              uint64
	WithdrawAuthority           solana.PublicKey
	EnableMigrate               bool
	PoolMigrationFee            math.Int
	CreatorFeeBasisPoints       uint64
	FeeRecipients               [pump.FeeRecipientCount]solana.PublicKey
	SetCreatorAuthority         solana.PublicKey
}

// TotalFeeBps is the protocol plus creator fee.
func (g *Global) TotalFeeBps() math.Int {
	return math.NewIntFromUint64(g.FeeBasisPoints).Add(math.NewIntFromUint64(g.CreatorFeeBasisPoints))
}

// DefaultGlobal returns a snapshot of the mainnet global account, usable
// without a network round trip.
func DefaultGlobal() Global {
	return Global{
		Initialized:                 true,
		Authority:                   solana.MustPublicKeyFromBase58("FFWtrEQ4B4PKQoVuHYzZq8FabGkVatYzDpEVHsK5rrhF"),
		FeeRecipient:                solana.MustPublicKeyFromBase58("62qc2CNXwrYqQScmEdiZFFAnJR262PxWEuNQtxfafNgV"),
		InitialVirtualTokenReserves: math.NewInt(1_073_000_000_000_000),
		InitialVirtualSolReserves:   math.NewInt(30_000_000_000),
		InitialRealTokenReserves:    math.NewInt(793_100_000_000_000),
		TokenTotalSupply:            math.NewInt(1_000_000_000_000_000),
		FeeBasisPoints:              95,
		WithdrawAuthority:           solana.MustPublicKeyFromBase58("39azUYFWPz3VHgKCf3VChUwbpURdCHRxjWVowf5jUJjg"),
		EnableMigrate:               true,
		PoolMigrationFee:            math.NewInt(15_000_001),
		CreatorFeeBasisPoints:       5,
		FeeRecipients: [pump.FeeRecipientCount]solana.PublicKey{
			solana.MustPublicKeyFromBase58("7VtfL8fvgNfhz17qKRMjzQEXgbdpnHHHQRh54R9jP2RJ"),
			solana.MustPublicKeyFromBase58("7hTckgnGnLQR6sdH7YkqFTAA7VwTfYFaZ6EhEsU3saCX"),
			solana.MustPublicKeyFromBase58("9rPYyANsfQZw3DnDmKE3YCQF5E8oD89UXoHn9JFEhJUz"),
			solana.MustPublicKeyFromBase58("AVmoTthdrX6tKt4nDjco2D775W2YK3sDhxPcMmzUAmTY"),
			solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM"),
			solana.MustPublicKeyFromBase58("FWsW1xNtWscwNmKv6wVsU1iTzRN6wmmk3MjxRP5tT7hz"),
			solana.MustPublicKeyFromBase58("G5UZAVbAf46s7cKWoyKu8kYTip9DGTpbLZ2qa9Aq69dP"),
		},
		SetCreatorAuthority: solana.MustPublicKeyFromBase58("39azUYFWPz3VHgKCf3VChUwbpURdCHRxjWVowf5jUJjg"),
	}
}

// GlobalFromAccount converts a decoded global account.
func GlobalFromAccount(a *pump.Global) Global {
	return Global{
		Initialized:                 a.Initialized,
		Authority:                   a.Authority,
		FeeRecipient:                a.FeeRecipient,
		InitialVirtualTokenReserves: math.NewIntFromUint64(a.InitialVirtualTokenReserves),
		InitialVirtualSolReserves:   math.NewIntFromUint64(a.InitialVirtualSolReserves),
		InitialRealTokenReserves:    math.NewIntFromUint64(a.InitialRealTokenReserves),
		TokenTotalSupply:            math.NewIntFromUint64(a.TokenTotalSupply),
		FeeBasisPoints:              a.FeeBasisPoints,
		WithdrawAuthority:           a.WithdrawAuthority,
		EnableMigrate:               a.EnableMigrate,
		PoolMigrationFee:            math.NewIntFromUint64(a.PoolMigrationFee),
		CreatorFeeBasisPoints:       a.CreatorFeeBasisPoints,
		FeeRecipients:               a.FeeRecipients,
		SetCreatorAuthority:         a.SetCreatorAuthority,
	}
}
