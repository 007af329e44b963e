package pump

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// eventCPITag prefixes events emitted through the self-CPI path
// (sha256("anchor:event")[:8], little-endian).
var eventCPITag = []byte{0xe4, 0x45, 0xa5, 0x2e, 0x51, 0xcb, 0x9a, 0x1d}

// TradeEvent is emitted by buy and sell. Only the leading fields common to
// all program versions are decoded.
type TradeEvent struct {
	Mint                 solana.PublicKey
	SolAmount            uint64
	TokenAmount          uint64
	IsBuy                bool
	User                 solana.PublicKey
	Timestamp            int64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
}

func (e *TradeEvent) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = readDiscriminator(dec, TradeEventDiscriminator, EventTrade); err != nil {
		return err
	}
	if e.Mint, err = readPubkey(dec); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	if e.SolAmount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("solAmount: %w", err)
	}
	if e.TokenAmount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("tokenAmount: %w", err)
	}
	if e.IsBuy, err = dec.ReadBool(); err != nil {
		return fmt.Errorf("isBuy: %w", err)
	}
	if e.User, err = readPubkey(dec); err != nil {
		return fmt.Errorf("user: %w", err)
	}
	if e.Timestamp, err = dec.ReadInt64(binary.LittleEndian); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if e.VirtualSolReserves, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("virtualSolReserves: %w", err)
	}
	if e.VirtualTokenReserves, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("virtualTokenReserves: %w", err)
	}
	return nil
}

func (e TradeEvent) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(TradeEventDiscriminator[:], false); err != nil {
		return err
	}
	if err := enc.WriteBytes(e.Mint[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint64(e.SolAmount, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint64(e.TokenAmount, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteBool(e.IsBuy); err != nil {
		return err
	}
	if err := enc.WriteBytes(e.User[:], false); err != nil {
		return err
	}
	if err := enc.WriteInt64(e.Timestamp, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint64(e.VirtualSolReserves, binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteUint64(e.VirtualTokenReserves, binary.LittleEndian)
}

// DecodeTradeEvent decodes a trade event from a "Program data:" payload or
// from self-CPI instruction data.
func DecodeTradeEvent(data []byte) (TradeEvent, error) {
	if len(data) >= 16 && bytes.Equal(data[:8], eventCPITag) {
		data = data[8:]
	}
	var ev TradeEvent
	if err := ev.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return TradeEvent{}, err
	}
	return ev, nil
}

// IsTradeEvent reports whether data carries the trade event discriminator.
func IsTradeEvent(data []byte) bool {
	if len(data) >= 16 && bytes.Equal(data[:8], eventCPITag) {
		data = data[8:]
	}
	return len(data) >= 8 && bytes.Equal(data[:8], TradeEventDiscriminator[:])
}
