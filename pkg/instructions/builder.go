// Package instructions assembles ready-to-sign bonding curve instructions from
// quotes and derived addresses. Nothing here touches the network.
package instructions

import (
	"encoding/json"
	"fmt"
	"io"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/config"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/pda"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

// Builder turns operation parameters into instructions for one program
// deployment. It is safe for concurrent use.
type Builder struct {
	resolver *pda.Resolver
	cfg      config.ProgramConfig
	encoder  Encoder
	preview  io.Writer
	log      zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithEncoder installs a payload override consulted before the built-in
// encoding.
func WithEncoder(enc Encoder) Option {
	return func(b *Builder) { b.encoder = enc }
}

// WithPreview writes a JSON line describing every built program instruction
// to w.
func WithPreview(w io.Writer) Option {
	return func(b *Builder) { b.preview = w }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// NewBuilder creates a builder. A nil resolver derives addresses for cfg.
func NewBuilder(resolver *pda.Resolver, cfg config.ProgramConfig, opts ...Option) *Builder {
	cfg = cfg.WithDefaults()
	if resolver == nil {
		resolver = pda.NewResolver(cfg)
	}
	b := &Builder{resolver: resolver, cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resolver returns the address resolver in use.
func (b *Builder) Resolver() *pda.Resolver {
	return b.resolver
}

// CreateParams describes a new token launch.
type CreateParams struct {
	Mint    solana.PublicKey // new mint keypair's public key; signs the transaction
	User    solana.PublicKey // payer
	Name    string
	Symbol  string
	URI     string
	Creator solana.PublicKey // defaults to User
}

// Create builds the single create instruction.
func (b *Builder) Create(p CreateParams) ([]solana.Instruction, error) {
	if err := types.ValidatePublicKeys(map[string]solana.PublicKey{"mint": p.Mint, "user": p.User}); err != nil {
		return nil, err
	}
	if p.Name == "" || p.Symbol == "" {
		return nil, types.NewValidationError("name/symbol", "must not be empty")
	}
	creator := p.Creator
	if creator.IsZero() {
		creator = p.User
	}

	mintAuthority, err := b.resolver.MintAuthority()
	if err != nil {
		return nil, err
	}
	bondingCurve, err := b.resolver.BondingCurve(p.Mint)
	if err != nil {
		return nil, err
	}
	associatedBondingCurve, err := b.resolver.AssociatedBondingCurve(p.Mint, bondingCurve)
	if err != nil {
		return nil, err
	}
	global, err := b.resolver.Global()
	if err != nil {
		return nil, err
	}
	metadata, err := b.resolver.Metadata(p.Mint)
	if err != nil {
		return nil, err
	}

	accts := pump.CreateAccounts{
		Mint:                   p.Mint,
		MintAuthority:          mintAuthority,
		BondingCurve:           bondingCurve,
		AssociatedBondingCurve: associatedBondingCurve,
		Global:                 global,
		MplTokenMetadata:       b.cfg.MetadataProgramID,
		Metadata:               metadata,
		User:                   p.User,
		SystemProgram:          b.cfg.SystemProgramID,
		TokenProgram:           b.cfg.TokenProgramID,
		AssociatedTokenProgram: b.cfg.AssociatedTokenProgramID,
		Rent:                   b.cfg.RentSysvar,
		EventAuthority:         b.cfg.EventAuthority,
		Program:                b.cfg.ProgramID,
	}
	args := pump.CreateArgs{Name: p.Name, Symbol: p.Symbol, URI: p.URI, Creator: creator}

	ix, err := b.program(OpCreate, args, accts.Metas(), accts)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{ix}, nil
}

// Buy builds [create user token account (idempotent), buy] for receiving
// baseOut tokens while paying at most quoteInMax lamports. reserves supplies
// the curve creator.
func (b *Builder) Buy(mint solana.PublicKey, baseOut, quoteInMax math.Int, user solana.PublicKey, reserves *curve.Reserves) ([]solana.Instruction, error) {
	amount, err := types.ValidateU64("baseAmountOut", baseOut)
	if err != nil {
		return nil, err
	}
	maxCost, err := types.ValidateU64("quoteInMax", quoteInMax)
	if err != nil {
		return nil, err
	}
	s, err := b.swapAccounts(mint, user, reserves)
	if err != nil {
		return nil, err
	}
	globalVolume, err := b.resolver.GlobalVolumeAccumulator()
	if err != nil {
		return nil, err
	}
	userVolume, err := b.resolver.UserVolumeAccumulator(user)
	if err != nil {
		return nil, err
	}

	accts := pump.BuyAccounts{
		Global:                  s.global,
		FeeRecipient:            b.cfg.FeeReceipt,
		Mint:                    mint,
		BondingCurve:            s.bondingCurve,
		AssociatedBondingCurve:  s.associatedBondingCurve,
		AssociatedUser:          s.associatedUser,
		User:                    user,
		SystemProgram:           b.cfg.SystemProgramID,
		TokenProgram:            b.cfg.TokenProgramID,
		CreatorVault:            s.creatorVault,
		EventAuthority:          b.cfg.EventAuthority,
		Program:                 b.cfg.ProgramID,
		GlobalVolumeAccumulator: globalVolume,
		UserVolumeAccumulator:   userVolume,
	}
	args := pump.BuyArgs{Amount: amount, MaxSolCost: maxCost}

	ix, err := b.program(OpBuy, args, accts.Metas(), accts)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{b.createATAIdempotent(user, s.associatedUser, user, mint), ix}, nil
}

// Sell builds [create user token account (idempotent), sell] for selling
// baseIn tokens for at least quoteOutMin lamports.
func (b *Builder) Sell(mint solana.PublicKey, baseIn, quoteOutMin math.Int, user solana.PublicKey, reserves *curve.Reserves) ([]solana.Instruction, error) {
	amount, err := types.ValidateU64("baseAmountIn", baseIn)
	if err != nil {
		return nil, err
	}
	minOut, err := types.ValidateU64("quoteOutMin", quoteOutMin)
	if err != nil {
		return nil, err
	}
	s, err := b.swapAccounts(mint, user, reserves)
	if err != nil {
		return nil, err
	}

	accts := pump.SellAccounts{
		Global:                 s.global,
		FeeRecipient:           b.cfg.FeeReceipt,
		Mint:                   mint,
		BondingCurve:           s.bondingCurve,
		AssociatedBondingCurve: s.associatedBondingCurve,
		AssociatedUser:         s.associatedUser,
		User:                   user,
		SystemProgram:          b.cfg.SystemProgramID,
		CreatorVault:           s.creatorVault,
		TokenProgram:           b.cfg.TokenProgramID,
		EventAuthority:         b.cfg.EventAuthority,
		Program:                b.cfg.ProgramID,
	}
	args := pump.SellArgs{Amount: amount, MinSolOutput: minOut}

	ix, err := b.program(OpSell, args, accts.Metas(), accts)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{b.createATAIdempotent(user, s.associatedUser, user, mint), ix}, nil
}

// CollectCreatorFee builds the instruction that sweeps creator's vault.
func (b *Builder) CollectCreatorFee(creator solana.PublicKey) ([]solana.Instruction, error) {
	vault, err := b.resolver.CreatorVault(creator)
	if err != nil {
		return nil, err
	}
	accts := pump.CollectCreatorFeeAccounts{
		Creator:        creator,
		CreatorVault:   vault,
		SystemProgram:  b.cfg.SystemProgramID,
		EventAuthority: b.cfg.EventAuthority,
		Program:        b.cfg.ProgramID,
	}
	ix, err := b.program(OpCollectCreatorFee, nil, accts.Metas(), accts)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{ix}, nil
}

type swapAddresses struct {
	global                 solana.PublicKey
	bondingCurve           solana.PublicKey
	associatedBondingCurve solana.PublicKey
	associatedUser         solana.PublicKey
	creatorVault           solana.PublicKey
}

func (b *Builder) swapAccounts(mint, user solana.PublicKey, reserves *curve.Reserves) (swapAddresses, error) {
	var s swapAddresses
	if err := types.ValidatePublicKeys(map[string]solana.PublicKey{"mint": mint, "user": user}); err != nil {
		return s, err
	}
	if reserves == nil {
		return s, types.ErrNilReserves
	}
	if !reserves.HasCreator() {
		return s, types.NewValidationError("reserves.creator", "is required to derive the creator vault")
	}

	var err error
	if s.global, err = b.resolver.Global(); err != nil {
		return s, err
	}
	if s.bondingCurve, err = b.resolver.BondingCurve(mint); err != nil {
		return s, err
	}
	if s.associatedBondingCurve, err = b.resolver.AssociatedBondingCurve(mint, s.bondingCurve); err != nil {
		return s, err
	}
	if s.associatedUser, err = b.resolver.AssociatedToken(user, mint); err != nil {
		return s, err
	}
	if s.creatorVault, err = b.resolver.CreatorVault(reserves.Creator); err != nil {
		return s, err
	}
	return s, nil
}

// program encodes args for op and wraps the result into a program instruction.
func (b *Builder) program(op string, args any, metas solana.AccountMetaSlice, accounts any) (solana.Instruction, error) {
	data, err := b.encode(op, args)
	if err != nil {
		return nil, err
	}
	if b.preview != nil {
		_ = json.NewEncoder(b.preview).Encode(struct {
			Op       string `json:"op"`
			Accounts any    `json:"accounts"`
			Args     any    `json:"args"`
		}{op, accounts, args})
	}
	b.log.Debug().Str("op", op).Int("accounts", len(metas)).Int("dataLen", len(data)).Msg("instruction built")
	return solana.NewInstruction(b.cfg.ProgramID, metas, data), nil
}

func (b *Builder) encode(op string, args any) ([]byte, error) {
	if b.encoder != nil {
		data, err := b.encoder.Encode(op, args)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", op, err)
		}
		if data != nil {
			return data, nil
		}
	}
	data, err := BorshEncoder{}.Encode(op, args)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", op, err)
	}
	return data, nil
}

// createATAIdempotent creates owner's associated token account for mint
// unless it already exists.
func (b *Builder) createATAIdempotent(payer, ata, owner, mint solana.PublicKey) solana.Instruction {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(ata, true, false),
		solana.NewAccountMeta(owner, false, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(b.cfg.SystemProgramID, false, false),
		solana.NewAccountMeta(b.cfg.TokenProgramID, false, false),
	}
	// CreateIdempotent
	return solana.NewInstruction(b.cfg.AssociatedTokenProgramID, metas, []byte{1})
}
