// Package pda derives the program-owned addresses used by the bonding curve
// program. Every function is pure and deterministic.
package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/config"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/constants"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

// Resolver derives addresses for one program deployment.
type Resolver struct {
	programID       solana.PublicKey
	metadataProgram solana.PublicKey
	tokenProgram    solana.PublicKey
	ataProgram      solana.PublicKey
}

// NewResolver builds a resolver for cfg; zero fields fall back to mainnet.
func NewResolver(cfg config.ProgramConfig) *Resolver {
	cfg = cfg.WithDefaults()
	return &Resolver{
		programID:       cfg.ProgramID,
		metadataProgram: cfg.MetadataProgramID,
		tokenProgram:    cfg.TokenProgramID,
		ataProgram:      cfg.AssociatedTokenProgramID,
	}
}

var defaultResolver = NewResolver(config.DefaultProgramConfig())

// Default returns the mainnet resolver.
func Default() *Resolver {
	return defaultResolver
}

// ProgramID returns the program the resolver derives for.
func (r *Resolver) ProgramID() solana.PublicKey {
	return r.programID
}

// Derive finds the canonical program address for seeds under program.
func Derive(program solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive pda: %w", err)
	}
	return addr, bump, nil
}

func (r *Resolver) derive(seeds ...[]byte) (solana.PublicKey, error) {
	addr, _, err := Derive(r.programID, seeds...)
	return addr, err
}

// Global returns the global config account.
func (r *Resolver) Global() (solana.PublicKey, error) {
	return r.derive([]byte(constants.SeedGlobal))
}

// MintAuthority returns the program's mint authority.
func (r *Resolver) MintAuthority() (solana.PublicKey, error) {
	return r.derive([]byte(constants.SeedMintAuthority))
}

// EventAuthority returns the self-CPI event authority.
func (r *Resolver) EventAuthority() (solana.PublicKey, error) {
	return r.derive([]byte(constants.SeedEventAuthority))
}

// GlobalVolumeAccumulator returns the global volume accumulator.
func (r *Resolver) GlobalVolumeAccumulator() (solana.PublicKey, error) {
	return r.derive([]byte(constants.SeedGlobalVolumeAccumulator))
}

// BondingCurve returns the curve account of mint.
func (r *Resolver) BondingCurve(mint solana.PublicKey) (solana.PublicKey, error) {
	if err := types.ValidatePublicKey("mint", mint); err != nil {
		return solana.PublicKey{}, err
	}
	return r.derive([]byte(constants.SeedBondingCurve), mint.Bytes())
}

// CreatorVault returns the fee vault of creator.
func (r *Resolver) CreatorVault(creator solana.PublicKey) (solana.PublicKey, error) {
	if err := types.ValidatePublicKey("creator", creator); err != nil {
		return solana.PublicKey{}, err
	}
	return r.derive([]byte(constants.SeedCreatorVault), creator.Bytes())
}

// UserVolumeAccumulator returns the volume accumulator of user.
func (r *Resolver) UserVolumeAccumulator(user solana.PublicKey) (solana.PublicKey, error) {
	if err := types.ValidatePublicKey("user", user); err != nil {
		return solana.PublicKey{}, err
	}
	return r.derive([]byte(constants.SeedUserVolumeAccumulator), user.Bytes())
}

// AssociatedToken returns the associated token account of owner for mint.
// Owner may be off-curve (e.g. a bonding curve PDA).
func (r *Resolver) AssociatedToken(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	if err := types.ValidatePublicKeys(map[string]solana.PublicKey{"owner": owner, "mint": mint}); err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := Derive(r.ataProgram, owner[:], r.tokenProgram[:], mint[:])
	return addr, err
}

// AssociatedBondingCurve returns the token vault held by the bonding curve.
func (r *Resolver) AssociatedBondingCurve(mint, bondingCurve solana.PublicKey) (solana.PublicKey, error) {
	return r.AssociatedToken(bondingCurve, mint)
}

// Metadata returns the token metadata account of mint.
func (r *Resolver) Metadata(mint solana.PublicKey) (solana.PublicKey, error) {
	if err := types.ValidatePublicKey("mint", mint); err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := Derive(r.metadataProgram, []byte(constants.SeedMetadata), r.metadataProgram[:], mint[:])
	return addr, err
}

// ParseAddress decodes a base58 address, reporting label on failure.
func ParseAddress(label, v string) (solana.PublicKey, error) {
	if v == "" {
		return solana.PublicKey{}, types.NewValidationError(label, "is required")
	}
	pk, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		return solana.PublicKey{}, types.NewValidationError(label, fmt.Sprintf("invalid base58 address: %v", err))
	}
	return pk, nil
}
