// Package jito submits transactions and bundles through the Jito Block
// Engine and builds the tip transfer that makes a bundle eligible.
package jito

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	jitorpc "github.com/jito-labs/jito-go-rpc"
	"github.com/rs/zerolog"
)

const (
	MainnetBlockEngine = "https://mainnet.block-engine.jito.wtf/api/v1"
	TestnetBlockEngine = "https://testnet.block-engine.jito.wtf/api/v1"

	// MinTipLamports is the smallest tip the block engine accepts.
	MinTipLamports uint64 = 1000
)

// MainnetBlockEngines are the regional mainnet endpoints, rotated per call.
var MainnetBlockEngines = []string{
	"https://mainnet.block-engine.jito.wtf/api/v1",
	"https://amsterdam.mainnet.block-engine.jito.wtf/api/v1",
	"https://frankfurt.mainnet.block-engine.jito.wtf/api/v1",
	"https://ny.mainnet.block-engine.jito.wtf/api/v1",
	"https://tokyo.mainnet.block-engine.jito.wtf/api/v1",
}

// MainnetTipAccounts are the published tip accounts.
var MainnetTipAccounts = []solana.PublicKey{
	solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"),
	solana.MustPublicKeyFromBase58("HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe"),
	solana.MustPublicKeyFromBase58("Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY"),
	solana.MustPublicKeyFromBase58("ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49"),
	solana.MustPublicKeyFromBase58("DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh"),
	solana.MustPublicKeyFromBase58("ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt"),
	solana.MustPublicKeyFromBase58("DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL"),
	solana.MustPublicKeyFromBase58("3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT"),
}

// RandomTipAccount picks one of MainnetTipAccounts without a network call.
func RandomTipAccount() solana.PublicKey {
	return MainnetTipAccounts[rand.IntN(len(MainnetTipAccounts))]
}

// IsTipAccount reports whether addr is a known tip account.
func IsTipAccount(addr solana.PublicKey) bool {
	for _, a := range MainnetTipAccounts {
		if a.Equals(addr) {
			return true
		}
	}
	return false
}

// TipInstruction transfers lamports from payer to a tip account. A zero
// tipAccount picks a random one.
func TipInstruction(payer solana.PublicKey, lamports uint64, tipAccount solana.PublicKey) (solana.Instruction, error) {
	if lamports < MinTipLamports {
		return nil, fmt.Errorf("tip %d below minimum %d lamports", lamports, MinTipLamports)
	}
	if tipAccount.IsZero() {
		tipAccount = RandomTipAccount()
	}
	return system.NewTransferInstruction(lamports, payer, tipAccount).ValidateAndBuild()
}

// Client rotates over block engine endpoints and retries rate-limited calls.
type Client struct {
	endpoints []string
	uuid      string
	next      atomic.Uint32
	attempts  uint
	delay     time.Duration
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetries sets the attempt count and the initial delay between attempts.
func WithRetries(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

func WithUUID(uuid string) Option {
	return func(c *Client) { c.uuid = uuid }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client over endpoints; none means MainnetBlockEngines.
func NewClient(endpoints []string, opts ...Option) *Client {
	if len(endpoints) == 0 {
		endpoints = MainnetBlockEngines
	}
	c := &Client{
		endpoints: endpoints,
		attempts:  uint(len(endpoints) + 2),
		delay:     100 * time.Millisecond,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attempts == 0 {
		c.attempts = 1
	}
	return c
}

func (c *Client) rpc() (*jitorpc.JitoJsonRpcClient, string) {
	idx := c.next.Add(1)
	endpoint := c.endpoints[int(idx)%len(c.endpoints)]
	return jitorpc.NewJitoJsonRpcClient(endpoint, c.uuid), endpoint
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "congested") ||
		strings.Contains(msg, "429")
}

// do runs fn against rotating endpoints. Only rate limiting is retried.
func do[T any](ctx context.Context, c *Client, op string, fn func(*jitorpc.JitoJsonRpcClient) (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.delay
	policy.MaxInterval = 2 * time.Second

	out, err := backoff.Retry(ctx, func() (T, error) {
		client, endpoint := c.rpc()
		v, err := fn(client)
		if err == nil {
			return v, nil
		}
		if !isRateLimited(err) {
			return v, backoff.Permanent(err)
		}
		c.log.Debug().Str("op", op).Str("endpoint", endpoint).Err(err).Msg("jito rate limited")
		return v, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.attempts),
	)
	if err != nil {
		return out, fmt.Errorf("jito %s: %w", op, err)
	}
	return out, nil
}

// GetTipAccounts asks the block engine for the current tip accounts.
func (c *Client) GetTipAccounts(ctx context.Context) ([]solana.PublicKey, error) {
	raw, err := do(ctx, c, "getTipAccounts", func(r *jitorpc.JitoJsonRpcClient) (json.RawMessage, error) {
		return r.GetTipAccounts()
	})
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decode tip accounts: %w", err)
	}
	out := make([]solana.PublicKey, 0, len(accounts))
	for _, a := range accounts {
		pk, err := solana.PublicKeyFromBase58(a)
		if err != nil {
			continue
		}
		out = append(out, pk)
	}
	return out, nil
}

// SendResult identifies a submitted single-transaction bundle.
type SendResult struct {
	Signature solana.Signature
	BundleID  string
}

// SendTransaction submits a signed transaction as a bundle of one.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	res, err := c.SendTransactionWithBundleID(ctx, tx)
	return res.Signature, err
}

// SendTransactionWithBundleID is SendTransaction that also returns the bundle ID.
func (c *Client) SendTransactionWithBundleID(ctx context.Context, tx *solana.Transaction) (SendResult, error) {
	id, err := c.SendBundle(ctx, []*solana.Transaction{tx})
	if err != nil {
		return SendResult{}, err
	}
	res := SendResult{BundleID: id}
	if len(tx.Signatures) > 0 {
		res.Signature = tx.Signatures[0]
	}
	return res, nil
}

// SendBundle submits signed transactions that land atomically.
func (c *Client) SendBundle(ctx context.Context, txs []*solana.Transaction) (string, error) {
	if len(txs) == 0 {
		return "", errors.New("bundle requires at least one transaction")
	}
	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		b, err := tx.MarshalBinary()
		if err != nil {
			return "", fmt.Errorf("marshal transaction: %w", err)
		}
		encoded = append(encoded, base64.StdEncoding.EncodeToString(b))
	}

	raw, err := do(ctx, c, "sendBundle", func(r *jitorpc.JitoJsonRpcClient) (json.RawMessage, error) {
		return r.SendBundle([][]string{encoded})
	})
	if err != nil {
		return "", err
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", fmt.Errorf("decode bundle id: %w", err)
	}
	c.log.Debug().Str("bundle", id).Int("txs", len(txs)).Msg("bundle submitted")
	return id, nil
}

// GetBundleStatuses returns the landed status of bundles.
func (c *Client) GetBundleStatuses(ctx context.Context, ids []string) (*jitorpc.BundleStatusResponse, error) {
	return do(ctx, c, "getBundleStatuses", func(r *jitorpc.JitoJsonRpcClient) (*jitorpc.BundleStatusResponse, error) {
		return r.GetBundleStatuses(ids)
	})
}

// WaitForBundleConfirmation polls until the bundle is confirmed, fails or ctx ends.
func (c *Client) WaitForBundleConfirmation(ctx context.Context, id string) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		statuses, err := c.GetBundleStatuses(ctx, []string{id})
		if err != nil || statuses == nil || len(statuses.Value) == 0 {
			continue
		}
		status := statuses.Value[0]
		switch status.ConfirmationStatus {
		case "confirmed", "finalized":
			return nil
		}
		if status.Err.Ok == nil {
			return fmt.Errorf("bundle %s failed: %v", id, status.Err)
		}
	}
}
