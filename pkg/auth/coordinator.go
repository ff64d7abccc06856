// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"

	"github.com/expediagroup/openworld-sdk-go/pkg/logger"
)

const (
	// DefaultBearerLeadWindow is how long before expiry a bearer token is renewed.
	DefaultBearerLeadWindow = 10 * time.Second

	// DefaultRenewTimeout bounds a single call to the identity endpoint.
	DefaultRenewTimeout = 30 * time.Second
)

// Coordinator caches tokens per scope and renews them with at most one
// in-flight call to the TokenIssuer per scope. Callers that observe the same
// stale token share the outcome of that call.
type Coordinator struct {
	issuer       TokenIssuer
	clock        clock.PassiveClock
	leadWindow   time.Duration
	renewTimeout time.Duration
	logger       *slog.Logger

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	telemetry      *renewalTelemetry

	// mu guards tokens. A cached token is replaced, never modified.
	mu     sync.Mutex
	tokens map[string]*Token

	flight singleflight.Group
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLeadWindow sets how long before expiry a token is renewed.
func WithLeadWindow(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.leadWindow = d
	}
}

// WithRenewTimeout bounds each call to the identity endpoint.
func WithRenewTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.renewTimeout = d
	}
}

// WithClock sets the clock used for expiry checks.
func WithClock(c clock.PassiveClock) CoordinatorOption {
	return func(co *Coordinator) {
		co.clock = c
	}
}

// WithLogger sets the logger. Defaults to the package logger.
func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithMeterProvider sets the meter provider for renewal metrics.
func WithMeterProvider(mp metric.MeterProvider) CoordinatorOption {
	return func(c *Coordinator) {
		c.meterProvider = mp
	}
}

// WithTracerProvider sets the tracer provider for renewal spans.
func WithTracerProvider(tp trace.TracerProvider) CoordinatorOption {
	return func(c *Coordinator) {
		c.tracerProvider = tp
	}
}

// NewCoordinator creates a coordinator renewing tokens through issuer.
func NewCoordinator(issuer TokenIssuer, opts ...CoordinatorOption) (*Coordinator, error) {
	if issuer == nil {
		return nil, ErrNilIssuer
	}

	c := &Coordinator{
		issuer:         issuer,
		clock:          clock.RealClock{},
		leadWindow:     DefaultBearerLeadWindow,
		renewTimeout:   DefaultRenewTimeout,
		logger:         logger.Get(),
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
		tokens:         make(map[string]*Token),
	}
	for _, opt := range opts {
		opt(c)
	}

	telemetry, err := newRenewalTelemetry(c.meterProvider, c.tracerProvider, c.clock)
	if err != nil {
		return nil, err
	}
	c.telemetry = telemetry

	return c, nil
}

// EnsureFresh returns a token for scope that is not about to expire, renewing
// it first if needed.
//
// If ctx ends while waiting for a renewal, EnsureFresh returns an
// ErrRenewalAbandoned error; the renewal continues and its token is cached
// for later callers.
func (c *Coordinator) EnsureFresh(ctx context.Context, scope Scope) (*Token, error) {
	id := scope.ID()
	if tok := c.freshToken(id); tok != nil {
		return tok, nil
	}

	ch := c.flight.DoChan(id, func() (interface{}, error) {
		return c.renew(ctx, scope, id)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Token), nil
	case <-ctx.Done():
		return nil, &Error{Kind: ErrRenewalAbandoned, Scope: id, Err: ctx.Err()}
	}
}

// Cached returns the cached token for scope, fresh or not.
func (c *Coordinator) Cached(scope Scope) (*Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, ok := c.tokens[scope.ID()]
	return tok, ok
}

// Invalidate drops the cached token for scope so the next call renews.
func (c *Coordinator) Invalidate(scope Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.tokens, scope.ID())
}

// LeadWindow returns the configured renewal lead window.
func (c *Coordinator) LeadWindow() time.Duration {
	return c.leadWindow
}

func (c *Coordinator) freshToken(id string) *Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok := c.tokens[id]
	if tok.IsAboutToExpire(c.clock.Now(), c.leadWindow) {
		return nil
	}
	return tok
}

// renew runs inside the single flight for id. It detaches from the caller's
// cancellation so that one caller giving up does not fail the others.
func (c *Coordinator) renew(parent context.Context, scope Scope, id string) (_ *Token, retErr error) {
	// A flight that finished between our cache check and DoChan may already
	// have stored a fresh token.
	if tok := c.freshToken(id); tok != nil {
		return tok, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.renewTimeout)
	defer cancel()

	ctx, done := c.telemetry.start(ctx, id)
	defer func() { done(retErr) }()

	c.logger.Debug("renewing token", "scope", id)

	tok, err := c.issuer.Issue(ctx, scope)
	if err == nil && (tok == nil || tok.Value == "") {
		err = errors.New("token issuer returned an empty token")
	}
	if err != nil {
		renewalErr := asRenewalError(id, err)
		c.logger.Warn("token renewal failed", "scope", id, "error", renewalErr)
		return nil, renewalErr
	}

	c.mu.Lock()
	c.tokens[id] = tok
	c.mu.Unlock()

	c.logger.Debug("token renewed", "scope", id, "expires_at", tok.ExpiresAt)
	return tok, nil
}

func asRenewalError(id string, err error) error {
	var authErr *Error
	if errors.As(err, &authErr) && errors.Is(authErr.Kind, ErrRenewalFailed) {
		return authErr
	}
	return &Error{Kind: ErrRenewalFailed, Scope: id, Err: err}
}
