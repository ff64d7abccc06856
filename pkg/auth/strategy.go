// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"k8s.io/utils/clock"
)

// Authorization header schemes.
const (
	SchemeBearer = "Bearer"
	SchemeEAN    = "EAN"
)

const (
	// DefaultSignatureValidity is how long a computed signature is reused.
	DefaultSignatureValidity = 5 * time.Minute

	// DefaultSignatureLeadWindow is how long before the end of its validity a
	// signature is recomputed.
	DefaultSignatureLeadWindow = 500 * time.Millisecond

	// signatureCacheSize bounds the number of scopes whose signature is kept.
	signatureCacheSize = 256
)

// Strategy produces the Authorization header value for a request in a scope.
type Strategy interface {
	// Name identifies the strategy in logs and configuration.
	Name() string
	// HeaderValue returns a complete header value such as "Bearer abc".
	HeaderValue(ctx context.Context, scope Scope) (string, error)
}

// BearerStrategy authenticates with tokens obtained through a Coordinator.
type BearerStrategy struct {
	coordinator *Coordinator
}

// NewBearerStrategy creates a bearer strategy backed by coordinator.
func NewBearerStrategy(coordinator *Coordinator) *BearerStrategy {
	return &BearerStrategy{coordinator: coordinator}
}

// Name returns "bearer".
func (*BearerStrategy) Name() string {
	return "bearer"
}

// HeaderValue renews the scope's token if needed and formats it.
func (b *BearerStrategy) HeaderValue(ctx context.Context, scope Scope) (string, error) {
	if scope.AuthURL == "" {
		return "", &Error{Kind: ErrRenewalFailed, Scope: scope.ID(), Err: ErrMissingAuthURL}
	}
	tok, err := b.coordinator.EnsureFresh(ctx, scope)
	if err != nil {
		return "", err
	}
	return SchemeBearer + " " + tok.Value, nil
}

// Signer computes a request signature from a key, secret and timestamp.
type Signer func(key, secret string, timestamp time.Time) (string, error)

// EANSigner signs with the EAN scheme: a hex SHA-512 digest of key, secret and
// the Unix timestamp in seconds, rendered with the key and timestamp.
func EANSigner(key, secret string, timestamp time.Time) (string, error) {
	if key == "" || secret == "" {
		return "", errors.New("key and secret are required to sign requests")
	}
	ts := strconv.FormatInt(timestamp.Unix(), 10)
	sum := sha512.Sum512([]byte(key + secret + ts))
	return fmt.Sprintf("APIKey=%s,Signature=%s,timestamp=%s", key, hex.EncodeToString(sum[:]), ts), nil
}

// SignatureStrategy authenticates with locally computed signatures. A
// signature is reused until it is about to leave its validity window.
// Computation is local, so a mutex is enough to keep it to one per scope.
// Signatures of the least recently used scopes are dropped past a fixed count.
type SignatureStrategy struct {
	signer     Signer
	clock      clock.PassiveClock
	validity   time.Duration
	leadWindow time.Duration

	mu         sync.Mutex
	signatures *lru.Cache[string, *Token]
}

// SignatureOption configures a SignatureStrategy.
type SignatureOption func(*SignatureStrategy)

// WithSigner replaces the EAN signer.
func WithSigner(signer Signer) SignatureOption {
	return func(s *SignatureStrategy) {
		s.signer = signer
	}
}

// WithSignatureValidity sets how long a signature is considered valid.
func WithSignatureValidity(d time.Duration) SignatureOption {
	return func(s *SignatureStrategy) {
		s.validity = d
	}
}

// WithSignatureLeadWindow sets how long before the end of validity a
// signature is recomputed.
func WithSignatureLeadWindow(d time.Duration) SignatureOption {
	return func(s *SignatureStrategy) {
		s.leadWindow = d
	}
}

// WithSignatureClock sets the clock used for timestamps and expiry checks.
func WithSignatureClock(c clock.PassiveClock) SignatureOption {
	return func(s *SignatureStrategy) {
		s.clock = c
	}
}

// NewSignatureStrategy creates a signature strategy.
func NewSignatureStrategy(opts ...SignatureOption) *SignatureStrategy {
	// lru.New only fails for a non-positive size.
	signatures, _ := lru.New[string, *Token](signatureCacheSize)
	s := &SignatureStrategy{
		signer:     EANSigner,
		clock:      clock.RealClock{},
		validity:   DefaultSignatureValidity,
		leadWindow: DefaultSignatureLeadWindow,
		signatures: signatures,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "signature".
func (*SignatureStrategy) Name() string {
	return "signature"
}

// HeaderValue returns "EAN <signature>", recomputing the signature when the
// cached one is about to expire.
func (s *SignatureStrategy) HeaderValue(_ context.Context, scope Scope) (string, error) {
	id := scope.ID()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if sig, ok := s.signatures.Get(id); ok && !sig.IsAboutToExpire(now, s.leadWindow) {
		return SchemeEAN + " " + sig.Value, nil
	}

	value, err := s.signer(scope.Credentials.Key(), scope.Credentials.Secret(), now)
	if err == nil && value == "" {
		err = errors.New("signer returned an empty signature")
	}
	if err != nil {
		return "", &Error{Kind: ErrSignatureFailed, Scope: id, Err: err}
	}

	s.signatures.Add(id, &Token{Value: value, ExpiresAt: now.Add(s.validity)})
	return SchemeEAN + " " + value, nil
}
