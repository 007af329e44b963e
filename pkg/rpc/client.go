// Package rpc wraps the Solana JSON-RPC client with timeouts, rate limiting
// and retries, and exposes the account reads the SDK needs.
package rpc

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/config"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

// Client wraps solana-go rpc.Client with retry, timeout, and rate limiting.
type Client struct {
	raw     *solanarpc.Client
	cfg     config.RPCConfig
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient builds a configured Client.
func NewClient(cfg config.RPCConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst == 0 {
			burst = int(cfg.RateLimit.RPS * 2)
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}

	log := cfg.Logger
	if log.GetLevel() == zerolog.NoLevel {
		log = zerolog.Nop()
	}

	return &Client{
		raw:     solanarpc.New(cfg.ResolveRPCURL()),
		cfg:     cfg,
		limiter: limiter,
		log:     log,
	}
}

// Raw exposes the underlying solana-go client.
func (c *Client) Raw() *solanarpc.Client {
	return c.raw
}

// Commitment returns the configured commitment level.
func (c *Client) Commitment() solanarpc.CommitmentType {
	return solanarpc.CommitmentType(c.cfg.Commitment)
}

// GetAccountInfo returns the raw data of address, or nil data when the
// account does not exist.
func (c *Client) GetAccountInfo(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	var data []byte
	err := c.call(ctx, "getAccountInfo", func(ctx context.Context) error {
		res, err := c.raw.GetAccountInfoWithOpts(ctx, address, &solanarpc.GetAccountInfoOpts{
			Commitment: c.Commitment(),
		})
		if errors.Is(err, solanarpc.ErrNotFound) {
			data = nil
			return nil
		}
		if err != nil {
			return err
		}
		if res == nil || res.Value == nil || res.Value.Data == nil {
			data = nil
			return nil
		}
		data = res.Value.Data.GetBinary()
		return nil
	})
	return data, err
}

// GetAccountData reads address and fails with an *types.AccountError
// wrapping types.ErrAccountNotFound when it is absent. schema names the
// expected layout for error context.
func (c *Client) GetAccountData(ctx context.Context, address solana.PublicKey, schema string) ([]byte, error) {
	data, err := c.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, &types.AccountError{Schema: schema, Address: address, Err: err}
	}
	if len(data) == 0 {
		return nil, &types.AccountError{Schema: schema, Address: address, Err: types.ErrAccountNotFound}
	}
	return data, nil
}

// GetMultipleAccounts fetches addrs in one call. Missing accounts map to nil.
func (c *Client) GetMultipleAccounts(ctx context.Context, addrs ...solana.PublicKey) (map[solana.PublicKey][]byte, error) {
	out := make(map[solana.PublicKey][]byte, len(addrs))
	if len(addrs) == 0 {
		return out, nil
	}
	err := c.call(ctx, "getMultipleAccounts", func(ctx context.Context) error {
		res, err := c.raw.GetMultipleAccountsWithOpts(ctx, addrs, &solanarpc.GetMultipleAccountsOpts{
			Commitment: c.Commitment(),
		})
		if err != nil {
			return err
		}
		for i, v := range res.Value {
			if i >= len(addrs) {
				break
			}
			if v == nil || v.Data == nil {
				out[addrs[i]] = nil
				continue
			}
			out[addrs[i]] = v.Data.GetBinary()
		}
		return nil
	})
	return out, err
}

// GetBalance returns the lamport balance of address.
func (c *Client) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	var lamports uint64
	err := c.call(ctx, "getBalance", func(ctx context.Context) error {
		res, err := c.raw.GetBalance(ctx, address, c.Commitment())
		if err != nil {
			return err
		}
		lamports = res.Value
		return nil
	})
	return lamports, err
}

// GetTokenBalance returns the raw amount held by a token account. A missing
// account has a zero balance.
func (c *Client) GetTokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (uint64, error) {
	var amount uint64
	err := c.call(ctx, "getTokenAccountBalance", func(ctx context.Context) error {
		res, err := c.raw.GetTokenAccountBalance(ctx, tokenAccount, c.Commitment())
		if errors.Is(err, solanarpc.ErrNotFound) {
			amount = 0
			return nil
		}
		if err != nil {
			return err
		}
		if res == nil || res.Value == nil {
			return nil
		}
		amount, err = strconv.ParseUint(res.Value.Amount, 10, 64)
		return err
	})
	return amount, err
}

// GetLatestBlockhash fetches the latest blockhash at the configured commitment.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*solanarpc.GetLatestBlockhashResult, error) {
	var out *solanarpc.GetLatestBlockhashResult
	err := c.call(ctx, "getLatestBlockhash", func(ctx context.Context) error {
		var err error
		out, err = c.raw.GetLatestBlockhash(ctx, c.Commitment())
		return err
	})
	return out, err
}

// GetSignatureStatuses looks up the status of submitted transactions.
func (c *Client) GetSignatureStatuses(ctx context.Context, sigs ...solana.Signature) ([]*solanarpc.SignatureStatusesResult, error) {
	var out []*solanarpc.SignatureStatusesResult
	err := c.call(ctx, "getSignatureStatuses", func(ctx context.Context) error {
		res, err := c.raw.GetSignatureStatuses(ctx, true, sigs...)
		if err != nil {
			return err
		}
		out = res.Value
		return nil
	})
	return out, err
}

// SendTransaction submits a signed transaction. Sends are never retried.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.raw.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return solana.Signature{}, types.RPCError{Op: "sendTransaction", Err: err}
	}
	return sig, nil
}

// SimulateTransaction simulates a transaction for debugging.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction, opts *solanarpc.SimulateTransactionOpts) (*solanarpc.SimulateTransactionResponse, error) {
	var res *solanarpc.SimulateTransactionResponse
	err := c.call(ctx, "simulateTransaction", func(ctx context.Context) error {
		var err error
		res, err = c.raw.SimulateTransactionWithOpts(ctx, tx, opts)
		return err
	})
	return res, err
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	attempt := func() (struct{}, error) {
		if err := c.wait(ctx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		err := fn(ctx)
		if err != nil && !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	if !c.cfg.Retry.Enabled {
		if _, err := attempt(); err != nil {
			return types.RPCError{Op: op, Err: unwrapPermanent(err)}
		}
		return nil
	}

	attempts := c.cfg.Retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(c.policy()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, d time.Duration) {
			c.log.Debug().
				Str("op", op).
				Dur("backoff", d).
				Err(err).
				Msg("rpc retry")
		}),
	)
	if err != nil {
		return types.RPCError{Op: op, Err: unwrapPermanent(err)}
	}
	return nil
}

func (c *Client) policy() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.Retry.InitialBackoff
	if b.InitialInterval <= 0 {
		b.InitialInterval = 100 * time.Millisecond
	}
	if c.cfg.Retry.MaxBackoff > 0 {
		b.MaxInterval = c.cfg.Retry.MaxBackoff
	}
	if !c.cfg.Retry.Jitter {
		b.RandomizationFactor = 0
	}
	return b
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func unwrapPermanent(err error) error {
	var p *backoff.PermanentError
	if errors.As(err, &p) {
		return p.Err
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return types.IsRetryableError(err)
}
