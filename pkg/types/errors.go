package types

import (
	"errors"
	"fmt"
	"strings"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
)

// Common SDK errors
var (
	// Parameter validation errors
	ErrNilRPC           = errors.New("rpc client is nil")
	ErrNilSigner        = errors.New("signer is nil")
	ErrNilReserves      = errors.New("reserves are nil")
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrNoInstructions   = errors.New("requires at least one instruction")

	// Curve errors
	ErrConfigNotLoaded       = errors.New("global config not loaded")
	ErrCurveComplete         = errors.New("bonding curve is complete")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInvalidReserves       = errors.New("invalid reserves")
	ErrInvalidSyncInput      = errors.New("invalid sync input")

	// Collaborator errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrMetadataUploadFailed = errors.New("metadata upload failed")

	// Transaction errors
	ErrSimulationFailed    = errors.New("simulation failed")
	ErrConfirmationTimeout = errors.New("confirmation timeout")
)

// CurveError reports a pricing failure together with the values that caused it.
type CurveError struct {
	Op                   string
	Amount               math.Int
	VirtualTokenReserves math.Int
	VirtualSolReserves   math.Int
	RealTokenReserves    math.Int
	Err                  error
}

func (e *CurveError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Op, e.Err)
	fields := []struct {
		name string
		v    math.Int
	}{
		{"amount", e.Amount},
		{"virtualTokenReserves", e.VirtualTokenReserves},
		{"virtualSolReserves", e.VirtualSolReserves},
		{"realTokenReserves", e.RealTokenReserves},
	}
	sep := " ("
	for _, f := range fields {
		if f.v.IsNil() {
			continue
		}
		fmt.Fprintf(&b, "%s%s=%s", sep, f.name, f.v)
		sep = ", "
	}
	if sep == ", " {
		b.WriteString(")")
	}
	return b.String()
}

func (e *CurveError) Unwrap() error {
	return e.Err
}

// AccountError reports a failed account read or decode.
type AccountError struct {
	Schema  string
	Address solana.PublicKey
	Err     error
}

func (e *AccountError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("account %s: %v", e.Address, e.Err)
	}
	return fmt.Sprintf("%s account %s: %v", e.Schema, e.Address, e.Err)
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

// UploadError reports a failed metadata upload.
type UploadError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	msg := ErrMetadataUploadFailed.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is lets errors.Is match ErrMetadataUploadFailed for every UploadError.
func (e *UploadError) Is(target error) bool {
	return target == ErrMetadataUploadFailed
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// RPCError wraps RPC failures with operation context.
type RPCError struct {
	Op  string
	Err error
}

func (e RPCError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e RPCError) Unwrap() error {
	return e.Err
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// ProgramError represents on-chain program execution errors.
type ProgramError struct {
	Program string
	Code    int
	Message string
	Logs    []string
}

func (e ProgramError) Error() string {
	return fmt.Sprintf("program %s error [%d]: %s", e.Program, e.Code, e.Message)
}

// SimulationError contains simulation failure details.
type SimulationError struct {
	Err  interface{}
	Logs []string
}

func (e SimulationError) Error() string {
	return fmt.Sprintf("simulation failed: %v", e.Err)
}

func (e SimulationError) Unwrap() error {
	return ErrSimulationFailed
}

// ParsePumpError converts a pump program error code to a ProgramError.
func ParsePumpError(code int) error {
	if err, ok := pump.ErrorFromCode(uint32(code)); ok {
		return &ProgramError{
			Program: "pump",
			Code:    code,
			Message: err.Message(),
		}
	}
	return fmt.Errorf("pump error code %d", code)
}

// ParseSimulationError extracts error details from a simulation result.
func ParseSimulationError(errVal interface{}, logs []string) error {
	if errVal == nil {
		return nil
	}

	if code, ok := customErrorCode(errVal); ok {
		account := extractAccountFromLogs(logs)
		return &ProgramError{
			Program: "pump",
			Code:    code,
			Message: parseErrorCode(code, account),
			Logs:    logs,
		}
	}

	return &SimulationError{Err: errVal, Logs: logs}
}

// customErrorCode digs {"InstructionError":[idx,{"Custom":code}]} out of an RPC error value.
func customErrorCode(errVal interface{}) (int, bool) {
	errMap, ok := errVal.(map[string]interface{})
	if !ok {
		return 0, false
	}
	instErr, ok := errMap["InstructionError"].([]interface{})
	if !ok || len(instErr) < 2 {
		return 0, false
	}
	custom, ok := instErr[1].(map[string]interface{})
	if !ok {
		return 0, false
	}
	code, ok := custom["Custom"].(float64)
	if !ok {
		return 0, false
	}
	return int(code), true
}

// extractAccountFromLogs extracts the account name from Anchor error logs.
func extractAccountFromLogs(logs []string) string {
	const marker = "caused by account: "
	for _, line := range logs {
		idx := strings.Index(line, marker)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(marker):]
		if end := strings.Index(rest, "."); end >= 0 {
			return rest[:end]
		}
		return rest
	}
	return ""
}

func parseErrorCode(code int, account string) string {
	// Anchor framework errors
	switch code {
	case 3012:
		if account != "" {
			return fmt.Sprintf("account '%s' not initialized", account)
		}
		return "account not initialized"
	case 2023:
		return "token program constraint violated (wrong token program for mint)"
	case 3008:
		return "program ID was not as expected (wrong program)"
	}

	if err, ok := pump.ErrorFromCode(uint32(code)); ok {
		msg := err.Message()
		if account != "" && err.Code == pump.ErrCodeNotEnoughTokensToSell {
			return fmt.Sprintf("%s (account: %s)", msg, account)
		}
		return msg
	}

	return fmt.Sprintf("error code %d", code)
}

// IsRetryableError reports whether a caller may reasonably retry after err.
// Curve and validation failures need adjusted inputs, not a retry.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrSimulationFailed):
		return true
	case errors.Is(err, ErrConfigNotLoaded),
		errors.Is(err, ErrCurveComplete),
		errors.Is(err, ErrInsufficientLiquidity),
		errors.Is(err, ErrInvalidSyncInput),
		errors.Is(err, ErrInvalidReserves):
		return false
	}
	var progErr *ProgramError
	if errors.As(err, &progErr) {
		return false
	}
	var valErr ValidationError
	return !errors.As(err, &valErr)
}
