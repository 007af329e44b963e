package pump

import "strings"

// Custom error codes raised by the program.
const (
	ErrCodeNotAuthorized                = 6000
	ErrCodeAlreadyInitialized           = 6001
	ErrCodeTooMuchSolRequired           = 6002
	ErrCodeTooLittleSolReceived         = 6003
	ErrCodeMintDoesNotMatchBondingCurve = 6004
	ErrCodeBondingCurveComplete         = 6005
	ErrCodeBondingCurveNotComplete      = 6006
	ErrCodeNotInitialized               = 6007
	ErrCodeNotEnoughTokensToSell        = 6023
)

// ProgramErr is an entry of the program error table.
type ProgramErr struct {
	Code uint32
	Name string
	Msg  string
}

// Message returns Msg, or Name split into words when Msg is empty.
func (e ProgramErr) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Name == "" {
		return "unknown error"
	}
	var b strings.Builder
	for i, c := range e.Name {
		if i > 0 && c >= 'A' && c <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	return b.String()
}

var programErrors = map[uint32]ProgramErr{
	ErrCodeNotAuthorized:                {ErrCodeNotAuthorized, "NotAuthorized", "The given account is not authorized to execute this instruction."},
	ErrCodeAlreadyInitialized:           {ErrCodeAlreadyInitialized, "AlreadyInitialized", "The program is already initialized."},
	ErrCodeTooMuchSolRequired:           {ErrCodeTooMuchSolRequired, "TooMuchSolRequired", "slippage: Too much SOL required to buy the given amount of tokens."},
	ErrCodeTooLittleSolReceived:         {ErrCodeTooLittleSolReceived, "TooLittleSolReceived", "slippage: Too little SOL received to sell the given amount of tokens."},
	ErrCodeMintDoesNotMatchBondingCurve: {ErrCodeMintDoesNotMatchBondingCurve, "MintDoesNotMatchBondingCurve", "The mint does not match the bonding curve."},
	ErrCodeBondingCurveComplete:         {ErrCodeBondingCurveComplete, "BondingCurveComplete", "The bonding curve has completed and liquidity migrated to raydium."},
	ErrCodeBondingCurveNotComplete:      {ErrCodeBondingCurveNotComplete, "BondingCurveNotComplete", "The bonding curve has not completed."},
	ErrCodeNotInitialized:               {ErrCodeNotInitialized, "NotInitialized", "The program is not initialized."},
	ErrCodeNotEnoughTokensToSell:        {ErrCodeNotEnoughTokensToSell, "NotEnoughTokensToSell", ""},
}

// ErrorFromCode looks up a program error code.
func ErrorFromCode(code uint32) (ProgramErr, bool) {
	e, ok := programErrors[code]
	return e, ok
}
