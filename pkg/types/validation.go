package types

import (
	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
)

var maxU64 = math.NewIntFromUint64(^uint64(0))

// ValidatePublicKey validates a public key is not zero.
func ValidatePublicKey(name string, key solana.PublicKey) error {
	if key.IsZero() {
		return NewValidationError(name, "cannot be zero")
	}
	return nil
}

// ValidatePublicKeys validates multiple public keys.
func ValidatePublicKeys(keys map[string]solana.PublicKey) error {
	for name, key := range keys {
		if err := ValidatePublicKey(name, key); err != nil {
			return err
		}
	}
	return nil
}

// ValidateU64 checks that an amount is set, non-negative and fits an on-chain u64.
func ValidateU64(name string, v math.Int) (uint64, error) {
	if v.IsNil() {
		return 0, NewValidationError(name, "is required")
	}
	if v.IsNegative() {
		return 0, NewValidationError(name, "must not be negative")
	}
	if v.GT(maxU64) {
		return 0, NewValidationError(name, "exceeds u64 range")
	}
	return v.Uint64(), nil
}
