// Package pump reproduces the published ABI of the pump.fun bonding curve
// program: discriminators, instruction arguments and account lists, account
// layouts, emitted events and error codes.
package pump

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// ProgramKey is the mainnet deployment of the bonding curve program.
var ProgramKey = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

// Instruction names as declared by the program.
const (
	InstructionCreate            = "create"
	InstructionBuy               = "buy"
	InstructionSell              = "sell"
	InstructionCollectCreatorFee = "collect_creator_fee"
)

// Account and event names.
const (
	AccountGlobal       = "Global"
	AccountBondingCurve = "BondingCurve"
	EventTrade          = "TradeEvent"
)

// Discriminator is the 8-byte Anchor type tag prefixed to instruction data,
// account data and event payloads.
type Discriminator [8]byte

func (d Discriminator) Bytes() []byte {
	return d[:]
}

func discriminator(namespace, name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

// InstructionDiscriminator returns sha256("global:<name>")[:8].
func InstructionDiscriminator(name string) Discriminator {
	return discriminator("global", name)
}

// AccountDiscriminator returns sha256("account:<Name>")[:8].
func AccountDiscriminator(name string) Discriminator {
	return discriminator("account", name)
}

// EventDiscriminator returns sha256("event:<Name>")[:8].
func EventDiscriminator(name string) Discriminator {
	return discriminator("event", name)
}

var (
	CreateDiscriminator            = InstructionDiscriminator(InstructionCreate)
	BuyDiscriminator               = InstructionDiscriminator(InstructionBuy)
	SellDiscriminator              = InstructionDiscriminator(InstructionSell)
	CollectCreatorFeeDiscriminator = InstructionDiscriminator(InstructionCollectCreatorFee)

	GlobalDiscriminator       = AccountDiscriminator(AccountGlobal)
	BondingCurveDiscriminator = AccountDiscriminator(AccountBondingCurve)

	TradeEventDiscriminator = EventDiscriminator(EventTrade)
)
