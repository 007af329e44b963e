// Package vanity searches for mint keypairs whose address has a given prefix
// or suffix, such as the "pump" suffix of pump.fun launches.
package vanity

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var errFound = errors.New("match found")

// Options configures a search.
type Options struct {
	Prefix          string
	Suffix          string
	Workers         int           // default runtime.NumCPU()
	Timeout         time.Duration // 0 = until ctx is done
	CaseInsensitive bool
	Logger          zerolog.Logger // progress is logged at debug level
}

// Result is a matching keypair.
type Result struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
	Attempts   uint64
	Duration   time.Duration
}

// Validate rejects patterns that no base58 address can contain.
func (o Options) Validate() error {
	if o.Prefix == "" && o.Suffix == "" {
		return fmt.Errorf("prefix or suffix is required")
	}
	for _, r := range o.Prefix + o.Suffix {
		if isBase58(r) || (o.CaseInsensitive && isBase58(flipCase(r))) {
			continue
		}
		return fmt.Errorf("%q is not a base58 character", r)
	}
	return nil
}

func isBase58(r rune) bool {
	_, err := base58.Decode(string(r))
	return err == nil
}

func flipCase(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return r - 'a' + 'A'
	case r >= 'A' && r <= 'Z':
		return r - 'A' + 'a'
	}
	return r
}

// Generate searches until a keypair matches, ctx is done or the timeout hits.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	prefix, suffix := opts.Prefix, opts.Suffix
	if opts.CaseInsensitive {
		prefix, suffix = strings.ToLower(prefix), strings.ToLower(suffix)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		attempts atomic.Uint64
		once     sync.Once
		result   *Result
	)
	start := time.Now()

	match := func(addr string) bool {
		if opts.CaseInsensitive {
			addr = strings.ToLower(addr)
		}
		return strings.HasPrefix(addr, prefix) && strings.HasSuffix(addr, suffix)
	}

	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for gctx.Err() == nil {
				key, err := solana.NewRandomPrivateKey()
				if err != nil {
					continue
				}
				n := attempts.Add(1)
				if !match(key.PublicKey().String()) {
					continue
				}
				once.Do(func() {
					result = &Result{
						PrivateKey: key,
						PublicKey:  key.PublicKey(),
						Attempts:   n,
						Duration:   time.Since(start),
					}
				})
				return errFound
			}
			return nil
		})
	}

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return
			case <-ticker.C:
				opts.Logger.Debug().
					Uint64("attempts", attempts.Load()).
					Dur("elapsed", time.Since(start)).
					Msg("vanity search")
			}
		}
	}()

	if err := g.Wait(); errors.Is(err, errFound) {
		return result, nil
	}
	return nil, fmt.Errorf("search cancelled after %d attempts: %w", attempts.Load(), context.Cause(ctx))
}

// EstimateDifficulty returns the expected attempts for a case-sensitive
// pattern of the given length.
func EstimateDifficulty(patternLen int) uint64 {
	n := uint64(1)
	for i := 0; i < patternLen; i++ {
		n *= 58
	}
	return n
}
