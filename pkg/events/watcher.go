package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/rs/zerolog"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
)

// Event is a trade observed in a confirmed transaction.
type Event struct {
	Signature solana.Signature
	Slot      uint64
	Trade     pump.TradeEvent
}

// Handler receives events in arrival order. Returning an error stops the
// watcher with that error.
type Handler func(ctx context.Context, ev Event) error

// Watcher streams trade events of one program from a websocket endpoint,
// reconnecting with exponential backoff when the connection drops.
type Watcher struct {
	url        string
	program    solana.PublicKey
	mint       solana.PublicKey
	commitment solanarpc.CommitmentType
	maxElapsed time.Duration
	log        zerolog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithMint drops events of other mints.
func WithMint(mint solana.PublicKey) WatcherOption {
	return func(w *Watcher) { w.mint = mint }
}

func WithCommitment(c solanarpc.CommitmentType) WatcherOption {
	return func(w *Watcher) { w.commitment = c }
}

// WithMaxReconnectTime bounds how long the watcher keeps reconnecting after
// consecutive failures. Zero retries forever.
func WithMaxReconnectTime(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.maxElapsed = d }
}

func WithWatcherLogger(l zerolog.Logger) WatcherOption {
	return func(w *Watcher) { w.log = l }
}

// NewWatcher creates a watcher for program on the websocket endpoint url.
func NewWatcher(url string, program solana.PublicKey, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		url:        url,
		program:    program,
		commitment: solanarpc.CommitmentConfirmed,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type handlerError struct{ err error }

func (e handlerError) Error() string { return e.err.Error() }
func (e handlerError) Unwrap() error { return e.err }

// Run blocks until ctx is done, the handler fails, or reconnecting gives up.
// The reconnect budget restarts every time a subscription is established.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	for {
		client, sub, err := w.subscribe(ctx)
		if err != nil {
			return err
		}
		err = w.stream(ctx, sub, handle)
		sub.Unsubscribe()
		client.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		var herr handlerError
		if errors.As(err, &herr) {
			return herr.err
		}
		w.log.Warn().Err(err).Dur("backoff", reconnectInitial).Msg("log subscription lost, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectInitial):
		}
	}
}

const (
	reconnectInitial = 500 * time.Millisecond
	reconnectMax     = 30 * time.Second
)

type session struct {
	client *ws.Client
	sub    *ws.LogSubscription
}

// subscribe connects and subscribes, retrying with exponential backoff for
// at most maxElapsed.
func (w *Watcher) subscribe(ctx context.Context) (*ws.Client, *ws.LogSubscription, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = reconnectInitial
	policy.MaxInterval = reconnectMax

	c, err := backoff.Retry(ctx, func() (session, error) {
		client, err := ws.Connect(ctx, w.url)
		if err != nil {
			return session{}, fmt.Errorf("connect %s: %w", w.url, err)
		}
		sub, err := client.LogsSubscribeMentions(w.program, w.commitment)
		if err != nil {
			client.Close()
			return session{}, fmt.Errorf("subscribe logs: %w", err)
		}
		return session{client: client, sub: sub}, nil
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(w.maxElapsed),
		backoff.WithNotify(func(err error, d time.Duration) {
			w.log.Warn().Err(err).Dur("backoff", d).Msg("log subscription failed, retrying")
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, err
	}
	w.log.Debug().Str("program", w.program.String()).Msg("log subscription established")
	return c.client, c.sub, nil
}

// stream delivers events from sub until it fails or the handler does.
func (w *Watcher) stream(ctx context.Context, sub *ws.LogSubscription, handle Handler) error {
	for {
		res, err := sub.Recv(ctx)
		if err != nil {
			return fmt.Errorf("recv logs: %w", err)
		}
		if res == nil || res.Value.Err != nil {
			continue
		}
		for _, trade := range ParseLogs(res.Value.Logs) {
			if !w.mint.IsZero() && !trade.Mint.Equals(w.mint) {
				continue
			}
			ev := Event{Signature: res.Value.Signature, Slot: res.Context.Slot, Trade: trade}
			if err := handle(ctx, ev); err != nil {
				return handlerError{err}
			}
		}
	}
}
