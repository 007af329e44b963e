// Package wallet provides transaction signers: local keys loaded from
// keygen files or base58 strings, and a remote signer hook.
package wallet

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Signer performs detached signatures for transaction messages.
type Signer interface {
	PublicKey() solana.PublicKey
	SignMessage(ctx context.Context, message []byte) (solana.Signature, error)
}

// Local wraps a private key held in memory.
type Local struct {
	key solana.PrivateKey
}

// Load accepts either a path to a solana-keygen JSON file or a base58
// encoded private key.
func Load(keyOrPath string) (Local, error) {
	keyOrPath = strings.TrimSpace(keyOrPath)
	if keyOrPath == "" {
		return Local{}, fmt.Errorf("empty key")
	}
	if _, err := os.Stat(keyOrPath); err == nil {
		return NewLocalFromKeygen(keyOrPath)
	}
	return NewLocalFromBase58(keyOrPath)
}

// NewLocalFromKeygen loads a solana-keygen JSON file.
func NewLocalFromKeygen(path string) (Local, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return Local{}, fmt.Errorf("load keypair: %w", err)
	}
	return Local{key: key}, nil
}

// NewLocalFromBase58 constructs a local signer from a base58 key.
func NewLocalFromBase58(privateKey string) (Local, error) {
	key, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return Local{}, fmt.Errorf("decode base58 key: %w", err)
	}
	return Local{key: key}, nil
}

func NewLocalFromPrivateKey(key solana.PrivateKey) Local {
	return Local{key: key}
}

// NewRandom generates a fresh keypair, e.g. for a new mint.
func NewRandom() (Local, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return Local{}, fmt.Errorf("generate key: %w", err)
	}
	return Local{key: key}, nil
}

func (l Local) PublicKey() solana.PublicKey {
	return l.key.PublicKey()
}

// PrivateKey exposes the key, e.g. to persist a generated mint keypair.
func (l Local) PrivateKey() solana.PrivateKey {
	return l.key
}

func (l Local) SignMessage(ctx context.Context, message []byte) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}
	sig, err := l.key.Sign(message)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sign message: %w", err)
	}
	return sig, nil
}

// RemoteSigner delegates signing to an external function such as an HSM
// or signing service client.
type RemoteSigner struct {
	pub      solana.PublicKey
	SignFunc func(ctx context.Context, message []byte) ([]byte, error)
}

func NewRemoteSigner(pub solana.PublicKey, fn func(ctx context.Context, message []byte) ([]byte, error)) RemoteSigner {
	return RemoteSigner{pub: pub, SignFunc: fn}
}

func (r RemoteSigner) PublicKey() solana.PublicKey {
	return r.pub
}

func (r RemoteSigner) SignMessage(ctx context.Context, message []byte) (solana.Signature, error) {
	if r.SignFunc == nil {
		return solana.Signature{}, fmt.Errorf("sign func not set")
	}
	raw, err := r.SignFunc(ctx, message)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("remote sign: %w", err)
	}
	if len(raw) != solana.SignatureLength {
		return solana.Signature{}, fmt.Errorf("invalid signature length: got %d", len(raw))
	}
	var sig solana.Signature
	copy(sig[:], raw)
	return sig, nil
}
