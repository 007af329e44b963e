// Package txbuilder turns instruction lists into signed transactions and
// submits them over RPC or the Jito block engine.
package txbuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/jito"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/rpc"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/wallet"
)

// ConfirmationLevel is the depth WaitForConfirmation waits for.
type ConfirmationLevel string

const (
	ConfirmationProcessed ConfirmationLevel = "processed"
	ConfirmationConfirmed ConfirmationLevel = "confirmed"
	ConfirmationFinalized ConfirmationLevel = "finalized"
)

// ParseConfirmationLevel accepts processed, confirmed or finalized.
func ParseConfirmationLevel(s string) (ConfirmationLevel, error) {
	switch l := ConfirmationLevel(s); l {
	case ConfirmationProcessed, ConfirmationConfirmed, ConfirmationFinalized:
		return l, nil
	case "":
		return ConfirmationConfirmed, nil
	}
	return "", types.NewValidationError("confirmation", fmt.Sprintf("unknown level %q", s))
}

func (l ConfirmationLevel) reached(status solanarpc.ConfirmationStatusType) bool {
	switch l {
	case ConfirmationFinalized:
		return status == solanarpc.ConfirmationStatusFinalized
	case ConfirmationConfirmed:
		return status == solanarpc.ConfirmationStatusConfirmed ||
			status == solanarpc.ConfirmationStatusFinalized
	}
	return true
}

// ComputeBudget prepends compute budget instructions when non-zero.
type ComputeBudget struct {
	UnitLimit uint32
	UnitPrice uint64 // micro-lamports per unit
}

func (c ComputeBudget) instructions() ([]solana.Instruction, error) {
	var out []solana.Instruction
	if c.UnitLimit > 0 {
		ix, err := computebudget.NewSetComputeUnitLimitInstruction(c.UnitLimit).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("compute unit limit: %w", err)
		}
		out = append(out, ix)
	}
	if c.UnitPrice > 0 {
		ix, err := computebudget.NewSetComputeUnitPriceInstruction(c.UnitPrice).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("compute unit price: %w", err)
		}
		out = append(out, ix)
	}
	return out, nil
}

// Builder ties together RPC, compute budget, optional Jito routing and signing.
type Builder struct {
	client        *rpc.Client
	skipPreflight bool
	budget        ComputeBudget
	jito          *jito.Client
	tipLamports   uint64
	pollInterval  time.Duration
	log           zerolog.Logger
}

type Option func(*Builder)

func WithSkipPreflight(skip bool) Option {
	return func(b *Builder) { b.skipPreflight = skip }
}

func WithComputeBudget(cb ComputeBudget) Option {
	return func(b *Builder) { b.budget = cb }
}

// WithJito routes sends through the block engine and appends a tip of
// tipLamports to every built transaction.
func WithJito(c *jito.Client, tipLamports uint64) Option {
	return func(b *Builder) {
		b.jito = c
		b.tipLamports = tipLamports
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(b *Builder) { b.pollInterval = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

func NewBuilder(client *rpc.Client, opts ...Option) *Builder {
	b := &Builder{
		client:       client,
		pollInterval: 400 * time.Millisecond,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HasJito reports whether sends go through the block engine.
func (b *Builder) HasJito() bool {
	return b.jito != nil
}

// Assemble prepends compute budget instructions and appends the Jito tip.
func (b *Builder) Assemble(feePayer solana.PublicKey, ixs []solana.Instruction) ([]solana.Instruction, error) {
	if len(ixs) == 0 {
		return nil, types.ErrNoInstructions
	}
	out, err := b.budget.instructions()
	if err != nil {
		return nil, err
	}
	out = append(out, ixs...)
	if b.jito != nil && b.tipLamports > 0 {
		tip, err := jito.TipInstruction(feePayer, b.tipLamports, solana.PublicKey{})
		if err != nil {
			return nil, err
		}
		out = append(out, tip)
	}
	return out, nil
}

// BuildTransaction assembles ixs under a fresh blockhash.
func (b *Builder) BuildTransaction(ctx context.Context, feePayer solana.PublicKey, ixs ...solana.Instruction) (*solana.Transaction, error) {
	if b.client == nil {
		return nil, types.ErrNilRPC
	}
	all, err := b.Assemble(feePayer, ixs)
	if err != nil {
		return nil, err
	}
	latest, err := b.client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := solana.NewTransaction(all, latest.Value.Blockhash, solana.TransactionPayer(feePayer))
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	return tx, nil
}

// SignTransaction signs tx with the signers matching its required keys.
func SignTransaction(ctx context.Context, tx *solana.Transaction, signers ...wallet.Signer) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Message.AccountKeys) < required {
		return fmt.Errorf("message has %d keys for %d signatures", len(tx.Message.AccountKeys), required)
	}
	byKey := make(map[solana.PublicKey]wallet.Signer, len(signers))
	for _, s := range signers {
		if s == nil {
			return types.ErrNilSigner
		}
		byKey[s.PublicKey()] = s
	}
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	tx.Signatures = make([]solana.Signature, required)
	for i, key := range tx.Message.AccountKeys[:required] {
		s, ok := byKey[key]
		if !ok {
			return fmt.Errorf("missing signer for %s", key)
		}
		sig, err := s.SignMessage(ctx, msg)
		if err != nil {
			return fmt.Errorf("sign for %s: %w", key, err)
		}
		tx.Signatures[i] = sig
	}
	return nil
}

// Build assembles and signs. feePayer signs first, extra signers (such as a
// new mint) follow.
func (b *Builder) Build(ctx context.Context, feePayer wallet.Signer, extra []wallet.Signer, ixs ...solana.Instruction) (*solana.Transaction, error) {
	if feePayer == nil {
		return nil, types.ErrNilSigner
	}
	tx, err := b.BuildTransaction(ctx, feePayer.PublicKey(), ixs...)
	if err != nil {
		return nil, err
	}
	if err := SignTransaction(ctx, tx, append([]wallet.Signer{feePayer}, extra...)...); err != nil {
		return nil, err
	}
	return tx, nil
}

// Simulate runs tx through simulateTransaction and decodes program errors.
func (b *Builder) Simulate(ctx context.Context, tx *solana.Transaction) ([]string, error) {
	if b.client == nil {
		return nil, types.ErrNilRPC
	}
	res, err := b.client.SimulateTransaction(ctx, tx, &solanarpc.SimulateTransactionOpts{
		SigVerify:              false,
		ReplaceRecentBlockhash: true,
		Commitment:             b.client.Commitment(),
	})
	if err != nil {
		return nil, err
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("empty simulation result")
	}
	if err := types.ParseSimulationError(res.Value.Err, res.Value.Logs); err != nil {
		return res.Value.Logs, err
	}
	return res.Value.Logs, nil
}

// Send submits a signed transaction through Jito when configured, RPC otherwise.
func (b *Builder) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if b.jito != nil {
		res, err := b.jito.SendTransactionWithBundleID(ctx, tx)
		if err != nil {
			return solana.Signature{}, err
		}
		b.log.Info().Str("signature", res.Signature.String()).Str("bundle", res.BundleID).Msg("sent via jito")
		return res.Signature, nil
	}
	if b.client == nil {
		return solana.Signature{}, types.ErrNilRPC
	}
	sig, err := b.client.SendTransaction(ctx, tx, solanarpc.TransactionOpts{
		SkipPreflight:       b.skipPreflight,
		PreflightCommitment: b.client.Commitment(),
	})
	if err != nil {
		return solana.Signature{}, err
	}
	b.log.Info().Str("signature", sig.String()).Msg("sent")
	return sig, nil
}

// SendBundle submits signed transactions atomically. Requires WithJito.
func (b *Builder) SendBundle(ctx context.Context, txs []*solana.Transaction) (string, error) {
	if b.jito == nil {
		return "", fmt.Errorf("jito is not configured")
	}
	return b.jito.SendBundle(ctx, txs)
}

// SendAndConfirm sends tx and waits for level. Confirmation always polls
// RPC signature statuses, even for Jito sends.
func (b *Builder) SendAndConfirm(ctx context.Context, tx *solana.Transaction, level ConfirmationLevel) (solana.Signature, error) {
	sig, err := b.Send(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := b.WaitForConfirmation(ctx, sig, level); err != nil {
		return sig, fmt.Errorf("confirm %s: %w", sig, err)
	}
	return sig, nil
}

// WaitForConfirmation polls until sig reaches level, fails on chain, or ctx
// ends. A ctx deadline is reported as types.ErrConfirmationTimeout.
func (b *Builder) WaitForConfirmation(ctx context.Context, sig solana.Signature, level ConfirmationLevel) error {
	if b.client == nil {
		return types.ErrNilRPC
	}
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return types.ErrConfirmationTimeout
			}
			return ctx.Err()
		case <-ticker.C:
		}
		statuses, err := b.client.GetSignatureStatuses(ctx, sig)
		if err != nil {
			b.log.Debug().Err(err).Msg("signature status")
			continue
		}
		if len(statuses) == 0 || statuses[0] == nil {
			continue
		}
		status := statuses[0]
		if status.Err != nil {
			return fmt.Errorf("transaction failed: %w", types.ParseSimulationError(status.Err, nil))
		}
		if level.reached(status.ConfirmationStatus) {
			return nil
		}
	}
}
