// Package fixedpoint converts between human amounts and base units and
// computes slippage bounds with integer arithmetic only.
package fixedpoint

import (
	"fmt"
	stdmath "math"
	"math/big"
	"strconv"
	"strings"

	"cosmossdk.io/math"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/constants"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

const (
	BaseDecimals  = constants.BaseDecimals
	QuoteDecimals = constants.QuoteDecimals

	// BpsDenominator is 100% in basis points.
	BpsDenominator = 10_000
)

// Precision is the internal fixed-point scale of slippage factors.
var Precision = math.NewInt(1_000_000_000)

// Bps is a signed amount of basis points.
type Bps int64

// NormalizeBaseAmount converts v to token base units (6 decimals).
// Integers are taken as base units; floats and decimal strings are scaled.
func NormalizeBaseAmount(v any) (math.Int, error) {
	return normalize("baseAmount", v, BaseDecimals)
}

// NormalizeQuoteAmount converts v to lamports (9 decimals).
// Integers are taken as lamports; floats and decimal strings are scaled.
func NormalizeQuoteAmount(v any) (math.Int, error) {
	return normalize("quoteAmount", v, QuoteDecimals)
}

func normalize(field string, v any, decimals int) (math.Int, error) {
	switch x := v.(type) {
	case math.Int:
		if x.IsNil() {
			return math.Int{}, types.NewValidationError(field, "is nil")
		}
		return x, nil
	case *big.Int:
		if x == nil {
			return math.Int{}, types.NewValidationError(field, "is nil")
		}
		return math.NewIntFromBigInt(x), nil
	case int:
		return math.NewInt(int64(x)), nil
	case int32:
		return math.NewInt(int64(x)), nil
	case int64:
		return math.NewInt(x), nil
	case uint:
		return math.NewIntFromUint64(uint64(x)), nil
	case uint32:
		return math.NewIntFromUint64(uint64(x)), nil
	case uint64:
		return math.NewIntFromUint64(x), nil
	case float32:
		return scaleFloat(field, float64(x), decimals)
	case float64:
		return scaleFloat(field, x, decimals)
	case string:
		return parseAmount(field, x, decimals)
	default:
		return math.Int{}, types.NewValidationError(field, fmt.Sprintf("unsupported amount type %T", v))
	}
}

func scaleFloat(field string, x float64, decimals int) (math.Int, error) {
	if stdmath.IsNaN(x) || stdmath.IsInf(x, 0) {
		return math.Int{}, types.NewValidationError(field, "must be finite")
	}
	scaled := stdmath.Round(x * stdmath.Pow10(decimals))
	bi, _ := new(big.Float).SetFloat64(scaled).Int(nil)
	return math.NewIntFromBigInt(bi), nil
}

func parseAmount(field, s string, decimals int) (math.Int, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		v, ok := math.NewIntFromString(s)
		if !ok {
			return math.Int{}, types.NewValidationError(field, fmt.Sprintf("invalid integer %q", s))
		}
		return v, nil
	}
	dec, err := math.LegacyNewDecFromStr(s)
	if err != nil {
		return math.Int{}, types.NewValidationError(field, fmt.Sprintf("invalid decimal %q: %v", s, err))
	}
	return roundHalfAway(dec.MulInt64(pow10(decimals))), nil
}

// roundHalfAway rounds to 0 decimal places, halves away from zero.
func roundHalfAway(d math.LegacyDec) math.Int {
	trunc := d.TruncateInt()
	frac := d.Sub(math.LegacyNewDecFromInt(trunc)).Abs()
	if frac.GTE(math.LegacyNewDecWithPrec(5, 1)) {
		if d.IsNegative() {
			return trunc.SubRaw(1)
		}
		return trunc.AddRaw(1)
	}
	return trunc
}

func pow10(n int) int64 {
	out := int64(1)
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}

// NormalizeSlippageBps converts v to basis points. Floats (and decimal
// strings) are fractional rates: 0.01 -> 100. Integers are already bps.
func NormalizeSlippageBps(v any) (Bps, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case Bps:
		return x, nil
	case int:
		return Bps(x), nil
	case int64:
		return Bps(x), nil
	case uint64:
		if x > stdmath.MaxInt64 {
			return 0, types.NewValidationError("slippage", "out of range")
		}
		return Bps(x), nil
	case float32:
		return floorRate(float64(x))
	case float64:
		return floorRate(x)
	case math.Int:
		if x.IsNil() || !x.IsInt64() {
			return 0, types.NewValidationError("slippage", "out of range")
		}
		return Bps(x.Int64()), nil
	case string:
		s := strings.TrimSpace(x)
		if strings.Contains(s, ".") {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, types.NewValidationError("slippage", fmt.Sprintf("invalid rate %q", s))
			}
			return floorRate(f)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, types.NewValidationError("slippage", fmt.Sprintf("invalid bps %q", s))
		}
		return Bps(n), nil
	default:
		return 0, types.NewValidationError("slippage", fmt.Sprintf("unsupported slippage type %T", v))
	}
}

func floorRate(f float64) (Bps, error) {
	if stdmath.IsNaN(f) || stdmath.IsInf(f, 0) {
		return 0, types.NewValidationError("slippage", "must be finite")
	}
	return Bps(stdmath.Floor(f * BpsDenominator)), nil
}

// SlippageFactor returns (10000 + bps) * 1e9 / 10000.
func SlippageFactor(bps Bps) math.Int {
	return math.NewInt(BpsDenominator + int64(bps)).Mul(Precision).QuoRaw(BpsDenominator)
}

// ApplySlippage returns value * (10000 + bps) / 10000 evaluated through a
// 1e9-scaled factor with truncating division. Positive bps raise the bound,
// negative bps lower it.
func ApplySlippage(value math.Int, bps Bps) math.Int {
	return value.Mul(SlippageFactor(bps)).Quo(Precision)
}

// Sol converts a SOL amount to lamports. Non-finite input yields zero.
func Sol(x float64) math.Int {
	v, err := scaleFloat("sol", x, QuoteDecimals)
	if err != nil {
		return math.ZeroInt()
	}
	return v
}

// Tokens converts a whole-token amount to base units. Non-finite input yields zero.
func Tokens(x float64) math.Int {
	v, err := scaleFloat("tokens", x, BaseDecimals)
	if err != nil {
		return math.ZeroInt()
	}
	return v
}

// FormatUnits renders base units as a decimal string with trailing zeros trimmed.
func FormatUnits(v math.Int, decimals int) string {
	if v.IsNil() {
		return "0"
	}
	s := math.LegacyNewDecFromIntWithPrec(v, int64(decimals)).String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// FormatSol renders lamports as SOL.
func FormatSol(v math.Int) string {
	return FormatUnits(v, QuoteDecimals)
}

// FormatTokens renders base units as whole tokens.
func FormatTokens(v math.Int) string {
	return FormatUnits(v, BaseDecimals)
}
