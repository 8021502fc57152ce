package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"runtime"
	"strings"
	"time"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/semaphore"
)

type (
	// Params controls the cost of scrypt and the size of salts and keys.
	// Verifiers can only be checked by a Hasher using the same Params
	// that produced them.
	Params struct {
		N       int
		R       int
		P       int
		KeyLen  int
		SaltLen int
	}

	// Hasher derives and checks password verifiers.
	//
	// Derivations run on their own goroutine and at most N of them run
	// at the same time (N is the workers argument of NewHasher), callers
	// wait on a completion channel and can give up when their context
	// is cancelled.
	Hasher struct {
		params  Params
		slots   *semaphore.Weighted
		entropy io.Reader
		observe func(op string, elapsed time.Duration)
	}

	derivation struct {
		key []byte
		err error
	}
)

const (
	verifierSeparator = "."
)

// DefaultParams matches the defaults used by node's crypto.scrypt,
// which keeps verifiers created by older deployments valid.
func DefaultParams() Params {
	return Params{
		N:       1 << 14,
		R:       8,
		P:       1,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// NewHasher returns a hasher using params, workers <= 0 means one
// derivation per CPU.
func NewHasher(params Params, workers int) *Hasher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Hasher{
		params:  params,
		slots:   semaphore.NewWeighted(int64(workers)),
		entropy: rand.Reader,
	}
}

// Observe registers fn to be called after every derivation.
// It must be called before the hasher is shared.
func (h *Hasher) Observe(fn func(op string, elapsed time.Duration)) {
	h.observe = fn
}

// Hash returns a new verifier for plaintext, every call uses a fresh salt.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(h.entropy, salt); err != nil {
		return "", DerivationError{Op: "generate salt", cause: err}
	}
	hexSalt := hex.EncodeToString(salt)
	key, err := h.derive(ctx, "hash", plaintext, hexSalt)
	if err != nil {
		return "", err
	}
	return hexSalt + verifierSeparator + hex.EncodeToString(key), nil
}

// Compare checks plaintext against verifier.
//
// A verifier that cannot be parsed yields false and a nil error, only a
// failure of the key derivation itself is reported as an error.
func (h *Hasher) Compare(ctx context.Context, plaintext string, verifier string) (bool, error) {
	salt, keyHex, found := strings.Cut(verifier, verifierSeparator)
	if !found || len(salt) == 0 || len(keyHex) == 0 {
		return false, nil
	}
	expected, err := hex.DecodeString(keyHex)
	if err != nil {
		return false, nil
	}
	actual, err := h.derive(ctx, "compare", plaintext, salt)
	if err != nil {
		return false, err
	}
	if len(actual) != len(expected) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

func (h *Hasher) derive(ctx context.Context, op string, plaintext, salt string) ([]byte, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return nil, DerivationError{Op: op, cause: err}
	}
	done := make(chan derivation, 1)
	go func() {
		defer h.slots.Release(1)
		start := time.Now()
		key, err := scrypt.Key([]byte(plaintext), []byte(salt), h.params.N, h.params.R, h.params.P, h.params.KeyLen)
		if h.observe != nil {
			h.observe(op, time.Since(start))
		}
		done <- derivation{key: key, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, DerivationError{Op: op, cause: ctx.Err()}
	case d := <-done:
		if d.err != nil {
			return nil, DerivationError{Op: op, cause: d.err}
		}
		return d.key, nil
	}
}
