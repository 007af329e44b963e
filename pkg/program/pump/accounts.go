package pump

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// FeeRecipientCount is the number of rotating fee recipients stored in Global.
const FeeRecipientCount = 7

// Global is the on-chain protocol configuration account.
type Global struct {
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
	WithdrawAuthority           solana.PublicKey
	EnableMigrate               bool
	PoolMigrationFee            uint64
	CreatorFeeBasisPoints       uint64
	FeeRecipients               [FeeRecipientCount]solana.PublicKey
	SetCreatorAuthority         solana.PublicKey
}

// BondingCurve is the per-mint curve account. Creator is zero on accounts
// created before creator fees existed.
type BondingCurve struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
}

func readDiscriminator(dec *bin.Decoder, want Discriminator, name string) error {
	got, err := dec.ReadNBytes(8)
	if err != nil {
		return fmt.Errorf("read %s discriminator: %w", name, err)
	}
	if !bytes.Equal(got, want[:]) {
		return fmt.Errorf("wrong %s discriminator: got %v", name, got)
	}
	return nil
}

func readPubkey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}

// UnmarshalWithDecoder decodes a Global account. Fields appended by later
// program upgrades are optional; trailing bytes beyond the known layout are ignored.
func (g *Global) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = readDiscriminator(dec, GlobalDiscriminator, AccountGlobal); err != nil {
		return err
	}
	if g.Initialized, err = dec.ReadBool(); err != nil {
		return fmt.Errorf("initialized: %w", err)
	}
	if g.Authority, err = readPubkey(dec); err != nil {
		return fmt.Errorf("authority: %w", err)
	}
	if g.FeeRecipient, err = readPubkey(dec); err != nil {
		return fmt.Errorf("feeRecipient: %w", err)
	}
	for _, f := range []struct {
		name string
		dst  *uint64
	}{
		{"initialVirtualTokenReserves", &g.InitialVirtualTokenReserves},
		{"initialVirtualSolReserves", &g.InitialVirtualSolReserves},
		{"initialRealTokenReserves", &g.InitialRealTokenReserves},
		{"tokenTotalSupply", &g.TokenTotalSupply},
		{"feeBasisPoints", &g.FeeBasisPoints},
	} {
		if *f.dst, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}

	if dec.Remaining() < solana.PublicKeyLength+1+8 {
		return nil
	}
	if g.WithdrawAuthority, err = readPubkey(dec); err != nil {
		return fmt.Errorf("withdrawAuthority: %w", err)
	}
	if g.EnableMigrate, err = dec.ReadBool(); err != nil {
		return fmt.Errorf("enableMigrate: %w", err)
	}
	if g.PoolMigrationFee, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("poolMigrationFee: %w", err)
	}

	if dec.Remaining() < 8 {
		return nil
	}
	if g.CreatorFeeBasisPoints, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("creatorFeeBasisPoints: %w", err)
	}

	if dec.Remaining() < (FeeRecipientCount+1)*solana.PublicKeyLength {
		return nil
	}
	for i := range g.FeeRecipients {
		if g.FeeRecipients[i], err = readPubkey(dec); err != nil {
			return fmt.Errorf("feeRecipients[%d]: %w", i, err)
		}
	}
	if g.SetCreatorAuthority, err = readPubkey(dec); err != nil {
		return fmt.Errorf("setCreatorAuthority: %w", err)
	}
	return nil
}

// Unmarshal decodes raw account data.
func (g *Global) Unmarshal(data []byte) error {
	return g.UnmarshalWithDecoder(bin.NewBorshDecoder(data))
}

// MarshalWithEncoder writes the full current layout.
func (g Global) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(GlobalDiscriminator[:], false); err != nil {
		return err
	}
	if err := enc.WriteBool(g.Initialized); err != nil {
		return err
	}
	for _, pk := range []solana.PublicKey{g.Authority, g.FeeRecipient} {
		if err := enc.WriteBytes(pk[:], false); err != nil {
			return err
		}
	}
	for _, v := range []uint64{
		g.InitialVirtualTokenReserves,
		g.InitialVirtualSolReserves,
		g.InitialRealTokenReserves,
		g.TokenTotalSupply,
		g.FeeBasisPoints,
	} {
		if err := enc.WriteUint64(v, binary.LittleEndian); err != nil {
			return err
		}
	}
	if err := enc.WriteBytes(g.WithdrawAuthority[:], false); err != nil {
		return err
	}
	if err := enc.WriteBool(g.EnableMigrate); err != nil {
		return err
	}
	if err := enc.WriteUint64(g.PoolMigrationFee, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint64(g.CreatorFeeBasisPoints, binary.LittleEndian); err != nil {
		return err
	}
	for _, pk := range g.FeeRecipients {
		if err := enc.WriteBytes(pk[:], false); err != nil {
			return err
		}
	}
	return enc.WriteBytes(g.SetCreatorAuthority[:], false)
}

// UnmarshalWithDecoder decodes a BondingCurve account.
func (c *BondingCurve) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = readDiscriminator(dec, BondingCurveDiscriminator, AccountBondingCurve); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		dst  *uint64
	}{
		{"virtualTokenReserves", &c.VirtualTokenReserves},
		{"virtualSolReserves", &c.VirtualSolReserves},
		{"realTokenReserves", &c.RealTokenReserves},
		{"realSolReserves", &c.RealSolReserves},
		{"tokenTotalSupply", &c.TokenTotalSupply},
	} {
		if *f.dst, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	if c.Complete, err = dec.ReadBool(); err != nil {
		return fmt.Errorf("complete: %w", err)
	}
	if dec.Remaining() >= solana.PublicKeyLength {
		if c.Creator, err = readPubkey(dec); err != nil {
			return fmt.Errorf("creator: %w", err)
		}
	}
	return nil
}

// Unmarshal decodes raw account data.
func (c *BondingCurve) Unmarshal(data []byte) error {
	return c.UnmarshalWithDecoder(bin.NewBorshDecoder(data))
}

// MarshalWithEncoder writes the current layout, creator included.
func (c BondingCurve) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(BondingCurveDiscriminator[:], false); err != nil {
		return err
	}
	for _, v := range []uint64{
		c.VirtualTokenReserves,
		c.VirtualSolReserves,
		c.RealTokenReserves,
		c.RealSolReserves,
		c.TokenTotalSupply,
	} {
		if err := enc.WriteUint64(v, binary.LittleEndian); err != nil {
			return err
		}
	}
	if err := enc.WriteBool(c.Complete); err != nil {
		return err
	}
	return enc.WriteBytes(c.Creator[:], false)
}

// DecodeAccount decodes data according to a schema name ("Global" or "BondingCurve").
func DecodeAccount(schema string, data []byte) (interface{}, error) {
	switch schema {
	case AccountGlobal:
		var g Global
		if err := g.Unmarshal(data); err != nil {
			return nil, err
		}
		return &g, nil
	case AccountBondingCurve:
		var c BondingCurve
		if err := c.Unmarshal(data); err != nil {
			return nil, err
		}
		return &c, nil
	default:
		return nil, fmt.Errorf("unknown account schema %q", schema)
	}
}

// IdentifyAccount returns the schema name matching the account discriminator.
func IdentifyAccount(data []byte) (string, bool) {
	if len(data) < 8 {
		return "", false
	}
	switch {
	case bytes.Equal(data[:8], GlobalDiscriminator[:]):
		return AccountGlobal, true
	case bytes.Equal(data[:8], BondingCurveDiscriminator[:]):
		return AccountBondingCurve, true
	}
	return "", false
}
