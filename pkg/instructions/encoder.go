package instructions

import (
	"fmt"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
)

// Operation names passed to an Encoder.
const (
	OpCreate            = pump.InstructionCreate
	OpBuy               = pump.InstructionBuy
	OpSell              = pump.InstructionSell
	OpCollectCreatorFee = pump.InstructionCollectCreatorFee
)

// Encoder produces the data payload of an instruction. args is the
// operation's argument struct from package pump (pump.BuyArgs for OpBuy), or
// nil for operations without arguments.
//
// Returning nil data and a nil error defers to the built-in Borsh encoding.
// Any other data is used verbatim.
type Encoder interface {
	Encode(op string, args any) ([]byte, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(op string, args any) ([]byte, error)

func (f EncoderFunc) Encode(op string, args any) ([]byte, error) {
	return f(op, args)
}

// BorshEncoder is the built-in encoding: the 8-byte discriminator followed by
// the Borsh-encoded arguments.
type BorshEncoder struct{}

func (BorshEncoder) Encode(op string, args any) ([]byte, error) {
	switch op {
	case OpCreate:
		a, ok := args.(pump.CreateArgs)
		if !ok {
			return nil, argsTypeError(op, args)
		}
		return pump.EncodeData(pump.CreateDiscriminator, a)
	case OpBuy:
		a, ok := args.(pump.BuyArgs)
		if !ok {
			return nil, argsTypeError(op, args)
		}
		return pump.EncodeData(pump.BuyDiscriminator, a)
	case OpSell:
		a, ok := args.(pump.SellArgs)
		if !ok {
			return nil, argsTypeError(op, args)
		}
		return pump.EncodeData(pump.SellDiscriminator, a)
	case OpCollectCreatorFee:
		return pump.EncodeData(pump.CollectCreatorFeeDiscriminator, nil)
	default:
		return nil, fmt.Errorf("unknown instruction %q", op)
	}
}

func argsTypeError(op string, args any) error {
	return fmt.Errorf("%s: unexpected args type %T", op, args)
}
